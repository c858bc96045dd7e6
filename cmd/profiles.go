package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/extender/cli"
	"github.com/grovetools/extender/errors"
	"github.com/grovetools/extender/pkg/profilelink"
	"github.com/grovetools/extender/pkg/profiles"
	"github.com/grovetools/extender/tui/components/table"
	"github.com/grovetools/extender/tui/theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewProfilesCmd creates the profiles command group.
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect the profiles known to the broker",
	}
	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesShowCmd())
	cmd.AddCommand(newProfilesLinkedCmd())
	return cmd
}

// profileRow is the JSON form of a listed profile.
type profileRow struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	Default bool              `json:"default"`
	Links   map[string]string `json:"links,omitempty"`
	Source  string            `json:"source,omitempty"`
}

func newProfilesListCmd() *cobra.Command {
	var (
		profileType string
		patterns    []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Long: `List the profiles from the merged configuration.

--match takes gitignore-style patterns; a leading '!' excludes.`,
		Example: `  extender profiles list
  extender profiles list --type zosmf
  extender profiles list --match 'lpar*' --match '!lpar3'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBroker(cmd)
			if err != nil {
				return err
			}
			if err := b.reload(cmd.Context(), profileType); err != nil {
				return err
			}

			list := b.cache.All()
			if profileType != "" {
				list = b.cache.GetProfiles(profileType)
			}
			list, err = profiles.MatchNames(list, patterns)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid --match pattern")
			}

			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				rows := make([]profileRow, 0, len(list))
				for _, p := range list {
					rows = append(rows, profileRow{Name: p.Name, Type: p.Type, Default: p.Default, Links: p.Links, Source: p.Source})
				}
				data, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No profiles found.")
				return nil
			}
			fmt.Fprintln(out, renderProfileTable(list))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileType, "type", "t", "", "Only list profiles of this type")
	cmd.Flags().StringSliceVarP(&patterns, "match", "m", nil, "Filter profile names by pattern (repeatable)")
	return cmd
}

func renderProfileTable(list []*profiles.Profile) string {
	t := theme.DefaultTheme
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		def := ""
		if p.Default {
			def = theme.IconDefault
		}
		var links []string
		for _, linkType := range p.LinkTypes() {
			links = append(links, fmt.Sprintf("%s=%s", linkType, p.Links[linkType]))
		}
		rows = append(rows, []string{p.Name, p.Type, def, strings.Join(links, ", ")})
	}

	return table.NewBuilder().
		WithHeaders("NAME", "TYPE", "DEFAULT", "LINKS").
		WithRows(rows...).
		WithCellStyle(func(row, col int) (lipgloss.Style, bool) {
			if col == 1 && row >= 0 && row < len(list) {
				return t.ProfileTypeStyle(list[row].Type), true
			}
			return lipgloss.Style{}, false
		}).
		Build().
		Render()
}

func newProfilesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show one profile with its properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBroker(cmd)
			if err != nil {
				return err
			}
			if err := b.reload(cmd.Context(), ""); err != nil {
				return err
			}

			p, err := b.ext.GetProfile(profileNode(args[0]))
			if err != nil {
				return err
			}

			doc := map[string]interface{}{
				"name":    p.Name,
				"type":    p.Type,
				"default": p.Default,
			}
			if len(p.Properties) > 0 {
				doc["properties"] = p.Properties
			}
			if len(p.Links) > 0 {
				doc["links"] = p.Links
			}

			var conn connection
			if err := p.Decode(&conn); err != nil {
				return errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid profile properties").
					WithDetail("profile", p.Name)
			}
			if conn.Host != "" {
				doc["connection"] = conn.String()
			}

			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				data, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if p.Source != "" {
				fmt.Fprintf(out, "# Source: %s\n", p.Source)
			}
			data, err := yaml.Marshal(doc)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newProfilesLinkedCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "linked NAME [TYPE]",
		Short: "Resolve the profile linked to NAME for a profile type",
		Example: `  extender profiles linked lpar1 ssh
  extender profiles linked lpar1 --all`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) != 2 {
				return errors.New(errors.ErrCodeInvalidInput, "a profile type is required unless --all is set")
			}

			b, err := newBroker(cmd)
			if err != nil {
				return err
			}
			if err := b.reload(cmd.Context(), ""); err != nil {
				return err
			}

			node := profileNode(args[0])
			var linkTypes []string
			if all {
				primary, err := b.ext.GetProfile(node)
				if err != nil {
					return err
				}
				linkTypes = primary.LinkTypes()
			} else {
				linkTypes = []string{args[1]}
			}

			resolved := make(map[string]string, len(linkTypes))
			for _, linkType := range linkTypes {
				linked, err := b.ext.GetLinkedProfile(cmd.Context(), node, linkType)
				if err != nil {
					return err
				}
				resolved[linkType] = linked.Name
			}

			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				data, err := json.MarshalIndent(resolved, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			keys := make([]string, 0, len(resolved))
			for k := range resolved {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s %s %s %s\n", args[0], theme.IconArrow, k, resolved[k])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Resolve every link of the profile")
	return cmd
}

// connection holds the properties every remote profile type shares.
type connection struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
}

func (c connection) String() string {
	s := c.Host
	if c.User != "" {
		s = c.User + "@" + s
	}
	if c.Port != 0 {
		s = fmt.Sprintf("%s:%d", s, c.Port)
	}
	return s
}

// profileNode is a tree node that refers to a profile by name.
type profileNode string

func (n profileNode) Label() string            { return string(n) }
func (n profileNode) ProfileName() string      { return string(n) }
func (n profileNode) Parent() profilelink.Node { return nil }
