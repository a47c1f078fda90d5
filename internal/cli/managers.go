package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/godepscan/pkg/deps/golang"
)

// managerInfo describes a supported manager for listings.
type managerInfo struct {
	Name        string `json:"name"`
	Manifest    string `json:"manifest"`
	Pattern     string `json:"pattern"`
	Remediation string `json:"remediation"`
}

func listManagers() []managerInfo {
	var out []managerInfo
	for _, m := range golang.Managers() {
		out = append(out, managerInfo{
			Name:        m.String(),
			Manifest:    m.Manifest(),
			Pattern:     m.Pattern(),
			Remediation: m.Remediation(),
		})
	}
	return out
}

// managersCommand creates the managers command.
func (c *CLI) managersCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "managers",
		Short: "List supported dependency managers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			infos := listManagers()

			switch format {
			case formatJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			case formatTable:
				t := table.New().
					Border(lipgloss.RoundedBorder()).
					BorderStyle(StyleDim).
					Headers("MANAGER", "MANIFEST", "PATTERN", "CREATE WITH").
					StyleFunc(func(row, col int) lipgloss.Style {
						if row == table.HeaderRow {
							return styleHeader
						}
						return styleCell
					})
				for _, m := range infos {
					t.Row(m.Name, m.Manifest, m.Pattern, m.Remediation)
				}
				fmt.Fprintln(w, t.Render())
				printDetail(w, "Source extensions: %s", strings.Join(golang.SourceExtensions, " "))
				return nil
			default:
				return fmt.Errorf("unknown format %q (want %s or %s)", format, formatTable, formatJSON)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}
