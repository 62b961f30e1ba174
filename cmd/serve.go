package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agentic-research/rosgraph/internal/artifact"
	"github.com/agentic-research/rosgraph/internal/graph"
	"github.com/agentic-research/rosgraph/internal/project"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated launch files read-only over NFS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("listen") {
			listenAddr = cfg.Serve.Listen
		}
		fs := memfs.New()
		err := withProject(cmd.Context(), false, func(p *project.Project) error {
			files, rep, err := artifact.NewWriter(fs).WriteAll(cmd.Context(), p.Store, graph.RootID)
			printDiagnostics(cmd.ErrOrStderr(), rep.Diagnostics)
			log.Printf("serve: rendered %d launch files", len(files))
			return err
		})
		if err != nil {
			return err
		}

		srv, err := artifact.NewServer(fs, listenAddr)
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()

		mountpoint := cfg.Serve.Mountpoint
		if mountpoint == "" {
			mountpoint = "<mountpoint>"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on port %d\n", projectPath, srv.Port())
		if mount, err := artifact.HostMountCommand(srv.Port(), mountpoint); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Mount with: %s\n", strings.Join(mount, " "))
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
			fmt.Fprintln(cmd.OutOrStdout(), "\nStopping...")
			return nil
		case err := <-srv.Done():
			return fmt.Errorf("serve: %w", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config, 127.0.0.1:0)")
	rootCmd.AddCommand(serveCmd)
}
