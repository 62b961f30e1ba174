package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/agentic-research/rosgraph/internal/config"
	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/agentic-research/rosgraph/internal/report"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	projectPath string

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to rosgraph.hcl (default $"+config.EnvVar+" or ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", "", "Project file (.db or .json)")
}

var rootCmd = &cobra.Command{
	Use:           "rosgraph",
	Short:         "Model ROS launch configurations as a graph and generate launch files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		if !cmd.Flags().Changed("project") {
			projectPath = cfg.Project
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withProject opens the project, runs fn and saves the project when save is
// set and fn succeeded.
func withProject(ctx context.Context, save bool, fn func(p *project.Project) error) error {
	p, err := project.Open(ctx, projectPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("project: close %s: %v", projectPath, err)
		}
	}()
	if err := fn(p); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return p.Save(ctx)
}

func printDiagnostics(w io.Writer, diags []report.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d)
	}
}
