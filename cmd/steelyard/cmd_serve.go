package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steelyard-dev/steelyard/internal/history"
	"github.com/steelyard-dev/steelyard/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var (
		port          int
		policyPath    string
		dbPath        string
		retentionDays int
		maxRecords    int64
		pruneSchedule string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the decision API over HTTP",
		Long: `Start a local HTTP server exposing evaluation, decision history,
the active policy, and Prometheus metrics.

The policy file is watched for changes and reloaded without a restart.
Every evaluation is recorded in a SQLite history database; retention
pruning runs on a cron schedule when configured.

The server binds to loopback only.

Endpoints:
  GET  /api/decisions       List recent decisions
  GET  /api/decisions/{id}  Fetch one decision with diagnostics
  POST /api/evaluate        Evaluate a facts snapshot
  GET  /api/policy          Show the active policy document
  GET  /healthz             Health check
  GET  /metrics             Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if policyPath == "" {
				return fmt.Errorf("--policy is required")
			}

			hist, err := history.Open(history.DefaultConfig(dbPath))
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer hist.Close() //nolint:errcheck

			cfg := webserver.Config{
				Port:       port,
				PolicyPath: policyPath,
				History:    hist,
			}
			if retentionDays > 0 || maxRecords > 0 {
				cfg.Retention = &history.RetentionConfig{
					RetentionDays: retentionDays,
					MaxRecords:    maxRecords,
					Schedule:      pruneSchedule,
				}
			}

			srv, err := webserver.New(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Handle graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8315, "Port to listen on")
	cmd.Flags().StringVarP(&policyPath, "policy", "p", "", "Policy YAML file to serve (required)")
	cmd.Flags().StringVar(&dbPath, "db", "steelyard.db", "SQLite history database path")
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "Days of history to keep (0 keeps everything)")
	cmd.Flags().Int64Var(&maxRecords, "max-records", 0, "Cap on stored decisions (0 keeps everything)")
	cmd.Flags().StringVar(&pruneSchedule, "prune-schedule", "", "Cron schedule for retention pruning (e.g. @daily)")

	return cmd
}
