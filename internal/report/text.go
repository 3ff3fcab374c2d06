package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"billing/internal/analytics"
)

const rule = "==============================================="

// DefaultAgencyName heads the text report when none is configured.
const DefaultAgencyName = "AKUSARA DIGITAL AGENCY"

// TextOptions controls the header of the plain-text report.
type TextOptions struct {
	AgencyName  string
	StartDate   string
	EndDate     string
	GeneratedAt time.Time
}

// WriteText writes the fixed-layout plain-text report.
func WriteText(w io.Writer, r *analytics.AnalyticsReport, opts TextOptions) error {
	agency := opts.AgencyName
	if agency == "" {
		agency = DefaultAgencyName
	}
	o := r.Overview

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s - ANALYTICS REPORT\n", agency)
	fmt.Fprintf(&b, "Generated on: %s\n", FormatDate(opts.GeneratedAt))
	fmt.Fprintf(&b, "Period: %s to %s\n", opts.StartDate, opts.EndDate)
	b.WriteString(rule + "\n")

	section(&b, "OVERVIEW METRICS")
	fmt.Fprintf(&b, "Total Revenue: %s\n", FormatIDR(o.TotalRevenue))
	fmt.Fprintf(&b, "New Clients: %d\n", o.NewClients)
	fmt.Fprintf(&b, "Total Invoices: %d\n", o.TotalInvoices)
	fmt.Fprintf(&b, "Paid Invoices: %d\n", o.PaidInvoices)
	fmt.Fprintf(&b, "Completion Rate: %d%%\n", o.CompletionRate)
	fmt.Fprintf(&b, "Average Payment Time: %d days\n", o.AveragePaymentTime)

	section(&b, "REVENUE TREND")
	for _, p := range r.RevenueTrend {
		fmt.Fprintf(&b, "%s: %s (%d invoices, %d new clients)\n",
			FormatMonth(p.Month), FormatIDR(p.Revenue), p.Invoices, p.Clients)
	}

	section(&b, "PROJECT STATUS DISTRIBUTION")
	total := statusTotal(r.ProjectStatus)
	for _, s := range r.ProjectStatus {
		fmt.Fprintf(&b, "%s: %d projects (%s%%)\n", s.Status, s.Count, statusPercentage(s.Count, total))
	}

	section(&b, "PAYMENT METHODS")
	for _, m := range r.PaymentMethods {
		fmt.Fprintf(&b, "%s: %d transactions, %s\n", m.Method, m.Count, FormatIDR(m.Amount))
	}

	b.WriteString("\n" + rule + "\nEnd of Report\n" + rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n" + title + "\n" + rule + "\n")
}
