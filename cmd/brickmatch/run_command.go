package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"brickmatch/internal/marketplace/amazon"
	"brickmatch/internal/match"
	"brickmatch/internal/resolution"
	"brickmatch/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var resumeFrom int64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve pending catalog records against the marketplace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, store, err := buildRunner(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printer := newProgressPrinter(cmd.OutOrStdout())
			report, err := r.Run(runCtx, runner.Options{
				Limit:        limit,
				ResumeFromID: resumeFrom,
				Progress:     printer.update,
			})
			printer.stop()
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to process (0 = all pending)")
	cmd.Flags().Int64Var(&resumeFrom, "resume-from", 0, "Skip catalog records at or below this id")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Re-run not_found records that are still under the attempt cap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, store, err := buildRunner(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := r.Retry(runCtx, limit)
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to retry (0 = all eligible)")
	return cmd
}

func buildRunner(ctx *commandContext) (*runner.Runner, *resolution.Store, error) {
	store, cfg, err := ctx.openStore()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ctx.newLogger()
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	timeout := time.Duration(cfg.Amazon.TimeoutSeconds) * time.Second
	client, err := amazon.New(cfg.Amazon.APIKey, cfg.Amazon.BaseURL, cfg.Amazon.Marketplace,
		amazon.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("configure marketplace client: %w", err)
	}

	pipeline := match.NewPipeline(client, cfg.Matching, logger)
	return runner.New(store, pipeline, cfg, logger), store, nil
}
