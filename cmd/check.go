package cmd

import (
	"fmt"

	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/agentic-research/rosgraph/internal/report"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [node-id]",
	Short: "Report modeling errors: duplicate names, argument conflicts, invalid rosparam YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) == 1 {
			id = args[0]
		}
		return withProject(cmd.Context(), false, func(p *project.Project) error {
			diags, err := p.Check(cmd.Context(), id)
			if err != nil {
				return err
			}
			printDiagnostics(cmd.OutOrStdout(), diags)
			rep := report.Report{Diagnostics: diags}
			if rep.HasErrors() {
				return fmt.Errorf("check: %d findings", len(diags))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
