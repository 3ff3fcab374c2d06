package cmd

import (
	"time"

	"billing/internal/analytics"
	"billing/internal/logger"
	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print the analytics report for a date range as JSON",
	Long: `Compute the analytics report (overview, six-month revenue trend, status
distribution, client acquisition and estimated payment methods) for the
given date range. Dates are calendar days in BILLING_TIMEZONE; --to covers
the whole day. Without dates the current month is used.`,
	Example: `  # Current month
  billing analytics

  # A quarter, written to a file
  billing analytics --from 2026-07-01 --to 2026-09-30 -o q3.json

  # Every record, ignoring the date range
  billing analytics --all`,
	Args: cobra.NoArgs,
	RunE: runAnalytics,
}

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Print the payments report for a date range as JSON",
	Long: `Compute the payments report (payment overview, 30-day payment trend and
estimated payment methods) for the given date range.`,
	Example: `  billing payments --from 2026-10-01 --to 2026-10-31`,
	Args:    cobra.NoArgs,
	RunE:    runPayments,
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(paymentsCmd)

	for _, c := range []*cobra.Command{analyticsCmd, paymentsCmd} {
		c.Flags().String("from", "", "First day of the range (YYYY-MM-DD)")
		c.Flags().String("to", "", "Last day of the range (YYYY-MM-DD)")
		c.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
		c.Flags().Int("timeout", 60, "Timeout in seconds")
	}
	analyticsCmd.Flags().Bool("all", false, "Aggregate every record instead of a date range")
}

// loadSnapshot reads the shared flags and fetches the snapshot to aggregate.
func loadSnapshot(cmd *cobra.Command, component string, all bool) (*analytics.Engine, analytics.Snapshot, time.Time, error) {
	log := logger.WithComponent(component)

	cfg, err := requireConfig()
	if err != nil {
		return nil, analytics.Snapshot{}, time.Time{}, err
	}
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	now := time.Now().In(cfg.Location())

	engine, err := newEngine(cfg)
	if err != nil {
		return nil, analytics.Snapshot{}, now, err
	}

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, analytics.Snapshot{}, now, err
	}
	defer st.Close()

	ctx, cancel := createCommandContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	if all {
		snap, err := st.SnapshotAll(ctx)
		return engine, snap, now, err
	}

	window, err := resolveWindow(from, to, now, cfg.Location())
	if err != nil {
		return nil, analytics.Snapshot{}, now, err
	}
	log.Info().
		Time("start", window.Start).
		Time("end", window.End).
		Msg("Loading records for window")

	snap, err := st.Snapshot(ctx, window)
	return engine, snap, now, err
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("analytics")
	all, _ := cmd.Flags().GetBool("all")
	outputPath, _ := cmd.Flags().GetString("output")

	engine, snap, now, err := loadSnapshot(cmd, "analytics", all)
	if err != nil {
		return err
	}

	report := engine.Analytics(snap, now)
	log.Info().
		Int64("total_revenue", report.Overview.TotalRevenue).
		Int("invoices", report.Overview.TotalInvoices).
		Msg("Analytics computed")

	return writeJSONOutput(report, outputPath, log)
}

func runPayments(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("payments")
	outputPath, _ := cmd.Flags().GetString("output")

	engine, snap, now, err := loadSnapshot(cmd, "payments", false)
	if err != nil {
		return err
	}

	report := engine.Payments(snap, now)
	log.Info().
		Int64("total_revenue", report.Overview.TotalRevenue).
		Float64("success_rate", report.Overview.SuccessRate).
		Msg("Payments computed")

	return writeJSONOutput(report, outputPath, log)
}
