package cmd

import (
	"fmt"
	"time"

	"github.com/grovetools/extender/cli"
	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/logging"
	"github.com/grovetools/extender/pkg/views"
	"github.com/spf13/cobra"
)

// NewReloadCmd creates the reload command.
func NewReloadCmd() *cobra.Command {
	var (
		profileType string
		viewNames   []string
	)

	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Refresh profiles and signal every view",
		Long: `Refresh the profile cache from the configuration, then ask the data set,
filesystem and job views to rebuild their sessions, in that order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown, err := parseViews(viewNames)
			if err != nil {
				return err
			}

			logger := cli.GetLogger(cmd)
			b, err := newBroker(cmd)
			if err != nil {
				return err
			}

			ctx := logging.WithWriter(cmd.Context(), cmd.OutOrStdout())
			pretty := logging.NewPrettyLogger(ctx)

			start := time.Now()
			if err := b.reload(ctx, profileType); err != nil {
				return err
			}
			logger.WithField("took", time.Since(start)).Debug("Reload finished")

			pretty.Success(fmt.Sprintf("Reloaded %d profiles", len(b.cache.All())))
			for _, kind := range shown {
				tree, ok := b.trees[kind]
				if !ok {
					pretty.Field(kind.String(), "disabled")
					continue
				}
				pretty.Field(kind.String(), fmt.Sprintf("%d sessions", len(tree.Sessions())))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileType, "type", "t", "", "Profile type that changed")
	cmd.Flags().StringSliceVar(&viewNames, "view", nil, "Only report these views: dataset, filesystem, job (repeatable)")
	return cmd
}

// parseViews returns the named views in signalling order, or every view
// when names is empty.
func parseViews(names []string) ([]views.Kind, error) {
	if len(names) == 0 {
		return views.Kinds(), nil
	}
	want := make(map[views.Kind]bool, len(names))
	for _, name := range names {
		kind, err := views.ParseKind(name)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid --view")
		}
		want[kind] = true
	}
	var kinds []views.Kind
	for _, kind := range views.Kinds() {
		if want[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}
