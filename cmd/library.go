package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/library"
	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the node, test and include template libraries",
}

var libraryUpdateCmd = &cobra.Command{
	Use:   "update [feed.json]",
	Short: "Replace the library templates with the packages listed in a feed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feedPath := cfg.Library.Feed
		if len(args) == 1 {
			feedPath = args[0]
		}
		if feedPath == "" {
			return errors.New("library update: no feed given")
		}
		data, err := os.ReadFile(feedPath)
		if err != nil {
			return fmt.Errorf("library update: %w", err)
		}
		feed, err := library.ParseFeed(data)
		if err != nil {
			return err
		}
		return withProject(cmd.Context(), true, func(p *project.Project) error {
			rep, err := library.Update(cmd.Context(), p.Store, graph.RootID, feed)
			if err != nil {
				return err
			}
			printDiagnostics(cmd.ErrOrStderr(), rep.Diagnostics)
			log.Printf("library: %d packages from %s: %s", len(feed), feedPath, rep)
			return nil
		})
	},
}

func init() {
	libraryCmd.AddCommand(libraryUpdateCmd)
	rootCmd.AddCommand(libraryCmd)
}
