package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.launch>...",
	Short: "Add launch files to the project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProject(cmd.Context(), true, func(p *project.Project) error {
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}
				name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				id, rep, err := p.Import(cmd.Context(), name, f)
				_ = f.Close()
				if err != nil {
					return err
				}
				printDiagnostics(cmd.ErrOrStderr(), rep.Diagnostics)
				log.Printf("import: %s -> %s: %s", path, id, rep)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
