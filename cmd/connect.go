package cmd

import (
	"log"

	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect [launch-id]",
	Short: "Derive topic connections between publishers and subscribers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) == 1 {
			id = args[0]
		}
		return withProject(cmd.Context(), true, func(p *project.Project) error {
			rep, err := p.Connect(cmd.Context(), id)
			printDiagnostics(cmd.ErrOrStderr(), rep.Diagnostics)
			if err != nil {
				return err
			}
			log.Printf("connect: %s", rep)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
