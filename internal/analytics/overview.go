package analytics

import (
	"math"
	"time"

	"billing/pkg/models"
)

// Overview summarises a window of invoices and clients.
type Overview struct {
	TotalRevenue       int64 `json:"totalRevenue"`
	NewClients         int   `json:"newClients"`
	TotalInvoices      int   `json:"totalInvoices"`
	PaidInvoices       int   `json:"paidInvoices"`
	CompletionRate     int   `json:"completionRate"`
	AveragePaymentTime int   `json:"averagePaymentTime"`
}

// UnpaidInvoices is the complement of PaidInvoices.
func (o Overview) UnpaidInvoices() int {
	return o.TotalInvoices - o.PaidInvoices
}

// PaymentsOverview summarises a window of invoices for the payments page.
// The schema has no failed or refunded states, so those fields are always 0.
type PaymentsOverview struct {
	TotalRevenue            int64   `json:"totalRevenue"`
	PendingPayments         int     `json:"pendingPayments"`
	FailedPayments          int     `json:"failedPayments"`
	RefundAmount            int64   `json:"refundAmount"`
	AverageTransactionValue int64   `json:"averageTransactionValue"`
	SuccessRate             float64 `json:"successRate"`
}

// ComputeOverview reduces already-windowed invoices and clients to totals.
func ComputeOverview(invoices []models.Invoice, clients []models.Client) Overview {
	o := Overview{
		NewClients:    len(clients),
		TotalInvoices: len(invoices),
	}

	var daysSum float64
	var daysCount int
	for i := range invoices {
		inv := &invoices[i]
		if !inv.IsPaid() {
			continue
		}
		o.PaidInvoices++
		o.TotalRevenue += inv.Total

		if days, ok := paymentDays(inv); ok {
			daysSum += days
			daysCount++
		}
	}

	o.CompletionRate = int(percent(o.PaidInvoices, o.TotalInvoices))
	if daysCount > 0 {
		o.AveragePaymentTime = int(roundHalfUp(daysSum / float64(daysCount)))
	}
	return o
}

// ComputePaymentsOverview reduces already-windowed invoices to payment totals.
func ComputePaymentsOverview(invoices []models.Invoice) PaymentsOverview {
	var o PaymentsOverview
	paid := 0
	for i := range invoices {
		if invoices[i].IsPaid() {
			paid++
			o.TotalRevenue += invoices[i].Total
		} else {
			o.PendingPayments++
		}
	}

	if paid > 0 {
		o.AverageTransactionValue = int64(roundHalfUp(float64(o.TotalRevenue) / float64(paid)))
	}
	if len(invoices) > 0 {
		o.SuccessRate = roundTenth(100 * float64(paid) / float64(len(invoices)))
	}
	return o
}

// paymentDays is the number of started days between creation and payment.
// Invoices without both timestamps are excluded.
func paymentDays(inv *models.Invoice) (float64, bool) {
	if inv.PaidAt == nil || inv.PaidAt.IsZero() || inv.CreatedAt.IsZero() {
		return 0, false
	}
	elapsed := inv.PaidAt.Sub(inv.CreatedAt)
	return math.Ceil(float64(elapsed) / float64(24*time.Hour)), true
}

// percent is round(100*part/whole), 0 for an empty whole.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return roundHalfUp(100 * float64(part) / float64(whole))
}

// roundHalfUp rounds .5 towards positive infinity, matching the rounding the
// existing dashboards were produced with.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func roundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
