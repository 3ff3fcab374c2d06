package cmd

import (
	"billing/internal/checkout"
	"billing/internal/logger"
	"billing/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Start the HTTP server that backs the dashboard, analytics, payments and
record management pages.

Checkout routes are only enabled when MIDTRANS_SERVER_KEY is set.`,
	Example: `  # Listen on the configured address (BILLING_LISTEN_ADDR, default :8080)
  billing serve

  # Listen on a different port
  billing serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: BILLING_LISTEN_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ListenAddr
	}

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	opts := server.Options{
		Records:    st,
		Engine:     engine,
		AgencyName: cfg.AgencyName,
		Location:   cfg.Location(),
		Timeout:    cfg.RequestTimeout,
	}
	if err := cfg.RequireCheckout(); err == nil {
		client, err := checkout.NewClient(cfg.MidtransServerKey, cfg.MidtransBaseURL)
		if err != nil {
			return err
		}
		opts.Checkout = client
	} else {
		log.Warn().Err(err).Msg("Checkout routes disabled")
	}

	ctx, cancel := createCommandContext(0, log)
	defer cancel()

	return server.New(opts).ListenAndServe(ctx, addr)
}
