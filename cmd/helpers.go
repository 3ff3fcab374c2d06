package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing/internal/analytics"
	"billing/internal/config"
	"billing/internal/store"
	"github.com/rs/zerolog"
)

// createCommandContext creates a context with timeout and signal handling.
// A zero timeout waits for a signal only. log travels with the context.
func createCommandContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	ctx = log.WithContext(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func openStore(cfg *config.Config, log zerolog.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("database", cfg.DatabasePath).
			Msg("Failed to open database")
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}
	log.Debug().Str("database", cfg.DatabasePath).Msg("Database opened")
	return st, nil
}

func newEngine(cfg *config.Config) (*analytics.Engine, error) {
	analyticsMethods, err := analytics.NewEstimator(cfg.AnalyticsEstimator, cfg.MethodSharesFile)
	if err != nil {
		return nil, fmt.Errorf("analytics estimator: %w", err)
	}
	paymentMethods, err := analytics.NewEstimator(cfg.PaymentsEstimator, cfg.MethodSharesFile)
	if err != nil {
		return nil, fmt.Errorf("payments estimator: %w", err)
	}
	return analytics.NewEngine(analyticsMethods, paymentMethods), nil
}

// resolveWindow parses --from/--to, defaulting to the current calendar month.
func resolveWindow(from, to string, now time.Time, loc *time.Location) (analytics.Window, error) {
	if from == "" && to == "" {
		month := analytics.MonthBuckets(now.In(loc), 1)[0]
		from = month.Start.Format(analytics.DateLayout)
		to = month.End.Format(analytics.DateLayout)
	}
	if from == "" || to == "" {
		return analytics.Window{}, fmt.Errorf("both --from and --to are required")
	}
	return analytics.ParseWindow(from, to, loc)
}

// writeOutput writes data to outputPath, or to stdout when it is empty.
func writeOutput(data []byte, outputPath string, log zerolog.Logger) error {
	if outputPath == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Println()
		}
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(data)).
		Msg("Output written to file")
	return nil
}

func writeJSONOutput(v any, outputPath string, log zerolog.Logger) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	return writeOutput(data, outputPath, log)
}
