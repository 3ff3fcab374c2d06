package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"billing/internal/analytics"
	"billing/internal/checkout"
	"billing/internal/ledger"
	"billing/internal/logger"
	"billing/internal/report"
	"billing/internal/store"
	"billing/pkg/models"
	"github.com/spf13/cobra"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Manage invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice from line items",
	Long: `Create an invoice. Each --item is "description=amount" with the amount in
Rupiah; Indonesian grouping is accepted ("1.500.000"). The invoice total
is the sum of its items.`,
	Example: `  billing invoice create --client 6f1c... --description "Website redesign" \
    --item "Design=1.500.000" --item "Development=3.000.000"`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, newest first",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <invoice-id>",
	Short: "Print one invoice as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceStatusCmd = &cobra.Command{
	Use:     "status <invoice-id> <paid|unpaid>",
	Short:   "Set the payment status of an invoice",
	Example: `  billing invoice status 0f8e... paid`,
	Args:    cobra.ExactArgs(2),
	RunE:    runInvoiceStatus,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete <invoice-id>",
	Short: "Delete an invoice and its items",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

var invoiceCheckoutCmd = &cobra.Command{
	Use:   "checkout <invoice-id>",
	Short: "Open a Midtrans Snap checkout session for an unpaid invoice",
	Long: `Create a hosted checkout session and print its token and payment URL.

Required environment variables:
  MIDTRANS_SERVER_KEY - Snap server key
  MIDTRANS_BASE_URL   - https://app.sandbox.midtrans.com (default) or https://app.midtrans.com`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceCheckout,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceListCmd, invoiceShowCmd,
		invoiceStatusCmd, invoiceDeleteCmd, invoiceCheckoutCmd)

	invoiceCreateCmd.Flags().String("client", "", "Client ID")
	invoiceCreateCmd.Flags().String("description", "", "Invoice description, shown at checkout")
	invoiceCreateCmd.Flags().String("date", "", "Invoice date (YYYY-MM-DD, default: today)")
	invoiceCreateCmd.Flags().StringArray("item", nil, `Line item "description=amount" (repeatable) [REQUIRED]`)
	invoiceCreateCmd.Flags().Bool("paid", false, "Create the invoice as already paid")
	_ = invoiceCreateCmd.MarkFlagRequired("item")

	invoiceListCmd.Flags().String("from", "", "First day of the range (YYYY-MM-DD)")
	invoiceListCmd.Flags().String("to", "", "Last day of the range (YYYY-MM-DD)")
	invoiceListCmd.Flags().Bool("json", false, "Output as JSON")
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	clientID, _ := cmd.Flags().GetString("client")
	description, _ := cmd.Flags().GetString("description")
	dateStr, _ := cmd.Flags().GetString("date")
	itemSpecs, _ := cmd.Flags().GetStringArray("item")
	paid, _ := cmd.Flags().GetBool("paid")

	inv := models.Invoice{
		ClientID:    clientID,
		Description: description,
		Status:      models.StatusUnpaid,
	}
	if paid {
		inv.Status = models.StatusPaid
	}
	for _, spec := range itemSpecs {
		item, err := ledger.ParseItem(spec)
		if err != nil {
			return err
		}
		inv.Items = append(inv.Items, item)
	}

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if dateStr != "" {
		date, err := time.ParseInLocation(analytics.DateLayout, dateStr, cfg.Location())
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", dateStr, err)
		}
		inv.Date = date
	}

	for _, warning := range ledger.NewReconciler().Reconcile(&inv).Warnings {
		log.Warn().Msg(warning)
	}

	return withStore("invoice", func(ctx context.Context, st *store.Store) error {
		created, err := st.CreateInvoice(ctx, inv)
		if err != nil {
			return err
		}
		fmt.Printf("Created invoice %s for %s (%s)\n",
			created.ID, report.FormatIDR(created.Total), displayClient(created))
		return nil
	})
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	var window *analytics.Window
	if from != "" || to != "" {
		w, err := resolveWindow(from, to, time.Now(), cfg.Location())
		if err != nil {
			return err
		}
		window = &w
	}

	return withStore("invoice", func(ctx context.Context, st *store.Store) error {
		invoices, err := st.ListInvoices(ctx, window)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSONOutput(invoices, "", *logger.WithContext(ctx))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCLIENT\tTOTAL\tSTATUS\tCREATED\tPAID")
		for i := range invoices {
			inv := &invoices[i]
			paidAt := "-"
			if inv.PaidAt != nil {
				paidAt = report.FormatDate(inv.PaidAt.In(cfg.Location()))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				inv.ID, displayClient(inv), report.FormatIDR(inv.Total), inv.Status,
				report.FormatDate(inv.CreatedAt.In(cfg.Location())), paidAt)
		}
		return tw.Flush()
	})
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, st *store.Store) error {
		inv, err := st.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		return writeJSONOutput(inv, "", *logger.WithContext(ctx))
	})
}

func runInvoiceStatus(cmd *cobra.Command, args []string) error {
	status, err := models.ParseInvoiceStatus(args[1])
	if err != nil {
		return err
	}

	return withStore("invoice", func(ctx context.Context, st *store.Store) error {
		inv, err := st.UpdateInvoiceStatus(ctx, args[0], status, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Invoice %s is now %s\n", inv.ID, inv.Status)
		return nil
	})
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	return withStore("invoice", func(ctx context.Context, st *store.Store) error {
		if err := st.DeleteInvoice(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted invoice %s\n", args[0])
		return nil
	})
}

func runInvoiceCheckout(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireCheckout(); err != nil {
		return err
	}
	client, err := checkout.NewClient(cfg.MidtransServerKey, cfg.MidtransBaseURL)
	if err != nil {
		return err
	}

	return withStore("invoice", func(ctx context.Context, st *store.Store) error {
		inv, err := st.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}
		session, err := client.CreateSession(ctx, inv)
		if err != nil {
			return err
		}
		fmt.Printf("Order:  %s\nToken:  %s\n", session.OrderID, session.Token)
		if session.RedirectURL != "" {
			fmt.Printf("Pay at: %s\n", session.RedirectURL)
		}
		return nil
	})
}

func displayClient(inv *models.Invoice) string {
	if inv.ClientName == "" {
		return "no client"
	}
	return inv.ClientName
}
