package cmd

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/logging"
	"github.com/grovetools/extender/pkg/views"
	"github.com/grovetools/extender/tui"
	"github.com/grovetools/extender/tui/explorer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewExploreCmd creates the interactive explorer command.
func NewExploreCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the data set, filesystem and job views interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New(errors.ErrCodeInvalidInput, "explore needs an interactive terminal")
			}

			b, err := newBroker(cmd)
			if err != nil {
				return err
			}

			tui.InitializeTUI()
			// Logs written while the alt screen is up would corrupt it.
			logging.SetGlobalOutput(io.Discard)
			defer logging.SetGlobalOutput(os.Stderr)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			p := tea.NewProgram(explorer.New(ctx, b.ext, b.trees), tea.WithAltScreen(), tea.WithContext(ctx))
			for _, tree := range b.trees {
				tree.OnChange(func(kind views.Kind, sessions []*views.Session) {
					p.Send(explorer.SessionsChangedMsg{Kind: kind, Sessions: sessions})
				})
			}

			watchEnabled := b.cfg.Watch == nil || b.cfg.Watch.Enabled == nil || *b.cfg.Watch.Enabled
			if watchEnabled && !noWatch {
				w, err := newConfigWatcher(b, nil)
				if err != nil {
					return err
				}
				go func() { _ = w.Run(ctx) }()
			}

			_, err = p.Run()
			if stderrors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload when configuration files change")
	return cmd
}
