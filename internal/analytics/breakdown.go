package analytics

import "billing/pkg/models"

// Status labels of the distribution chart, in display order.
const (
	LabelCompleted  = "Completed"
	LabelInProgress = "In Progress"
	LabelPending    = "Pending"
)

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Color  string `json:"color"`
}

var statusPalette = []StatusCount{
	{Status: LabelCompleted, Color: "#10b981"},
	{Status: LabelInProgress, Color: "#3b82f6"},
	{Status: LabelPending, Color: "#f59e0b"},
}

// StatusLabel maps an invoice status onto the distribution taxonomy.
// Pending is unreachable while the schema only knows paid and unpaid.
func StatusLabel(status models.InvoiceStatus) string {
	switch status {
	case models.StatusPaid:
		return LabelCompleted
	case models.StatusUnpaid:
		return LabelInProgress
	default:
		return LabelPending
	}
}

// StatusBreakdown counts invoices per status label. Labels with no invoices
// are left out.
func StatusBreakdown(invoices []models.Invoice) []StatusCount {
	counts := make(map[string]int, len(statusPalette))
	for i := range invoices {
		counts[StatusLabel(invoices[i].Status)]++
	}

	out := make([]StatusCount, 0, len(statusPalette))
	for _, entry := range statusPalette {
		if n := counts[entry.Status]; n > 0 {
			entry.Count = n
			out = append(out, entry)
		}
	}
	return out
}
