package cmd

import (
	"fmt"
	"log"

	"github.com/agentic-research/rosgraph/internal/artifact"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

var outDir string

var exportCmd = &cobra.Command{
	Use:   "export [launch-id]",
	Short: "Write .launch files for the project's launch files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("out") {
			outDir = cfg.OutDir
		}
		w := artifact.NewWriter(osfs.New(outDir))
		return withProject(cmd.Context(), false, func(p *project.Project) error {
			if len(args) == 1 {
				name, rep, err := w.Write(p.Store, args[0])
				if err != nil {
					return err
				}
				printDiagnostics(cmd.ErrOrStderr(), rep.Diagnostics)
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			}
			files, rep, err := w.WriteAll(cmd.Context(), p.Store, graph.RootID)
			printDiagnostics(cmd.ErrOrStderr(), rep.Diagnostics)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			log.Printf("export: %d files in %s", len(files), outDir)
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config, \"launch\")")
	rootCmd.AddCommand(exportCmd)
}
