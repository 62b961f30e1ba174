package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create an empty project with the category prototypes and libraries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSuffix(filepath.Base(projectPath), filepath.Ext(projectPath))
		if len(args) == 1 {
			name = args[0]
		}
		p, err := project.Create(cmd.Context(), projectPath, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created project %q in %s\n", name, projectPath)
		return p.Close()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
