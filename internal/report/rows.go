// Package report serializes analytics reports for download and for external
// spreadsheets.
//
// Two formats exist: a quoted CSV table and a fixed-layout plain-text
// document. The UI historically labelled the text document "PDF"; the
// format is plain text and "pdf" is accepted only as an alias of FormatText.
package report

import (
	"fmt"
	"strconv"

	"billing/internal/analytics"
)

// Rows builds the flat table behind the CSV export. Sections are separated
// by one empty row; each section after the overview starts with its own
// header row.
func Rows(r *analytics.AnalyticsReport, startDate, endDate string) [][]string {
	period := fmt.Sprintf("%s to %s", startDate, endDate)
	o := r.Overview

	rows := [][]string{
		{"Report Type", "Metric", "Value", "Period"},
		{"Overview", "Total Revenue", FormatIDR(o.TotalRevenue), period},
		{"Overview", "New Clients", strconv.Itoa(o.NewClients), period},
		{"Overview", "Total Invoices", strconv.Itoa(o.TotalInvoices), period},
		{"Overview", "Paid Invoices", strconv.Itoa(o.PaidInvoices), period},
		{"Overview", "Completion Rate", fmt.Sprintf("%d%%", o.CompletionRate), period},
		{"Overview", "Average Payment Time", fmt.Sprintf("%d days", o.AveragePaymentTime), period},
	}

	rows = append(rows, []string{}, []string{"Revenue Trend", "Month", "Revenue", "Invoices", "New Clients"})
	for _, p := range r.RevenueTrend {
		rows = append(rows, []string{
			"Revenue Trend",
			p.Month,
			FormatIDR(p.Revenue),
			strconv.Itoa(p.Invoices),
			strconv.Itoa(p.Clients),
		})
	}

	rows = append(rows, []string{}, []string{"Project Status", "Status", "Count", "Percentage"})
	total := statusTotal(r.ProjectStatus)
	for _, s := range r.ProjectStatus {
		rows = append(rows, []string{
			"Project Status",
			s.Status,
			strconv.Itoa(s.Count),
			statusPercentage(s.Count, total) + "%",
		})
	}

	rows = append(rows, []string{}, []string{"Payment Methods", "Method", "Transactions", "Total Amount"})
	for _, m := range r.PaymentMethods {
		rows = append(rows, []string{
			"Payment Methods",
			m.Method,
			strconv.Itoa(m.Count),
			FormatIDR(m.Amount),
		})
	}

	return rows
}

func statusTotal(statuses []analytics.StatusCount) int {
	total := 0
	for _, s := range statuses {
		total += s.Count
	}
	return total
}

// statusPercentage is the share with one decimal, or "0" for an empty total.
func statusPercentage(count, total int) string {
	if total == 0 {
		return "0"
	}
	return strconv.FormatFloat(100*float64(count)/float64(total), 'f', 1, 64)
}
