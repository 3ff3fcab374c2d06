// Package analytics turns a snapshot of invoice and client records into the
// metrics shown on the dashboard, analytics and payments pages.
//
// Everything in this package is a pure function of its inputs. Callers fetch
// the rows (see internal/store), pass them in together with the instant that
// counts as "now", and receive a freshly allocated result. Nothing is cached
// and nothing is shared between calls.
//
// Two result variants exist:
//   - AnalyticsReport: overview, 6-month revenue trend, status distribution,
//     client acquisition and estimated payment methods.
//   - PaymentsReport: payment overview, 30-day payment trend and estimated
//     payment methods.
//
// JSON field names of both variants are consumed by chart components and the
// export route and must not change.
package analytics

import (
	"fmt"
	"time"

	"billing/pkg/models"
)

const (
	// MonthlyBuckets is the fixed length of the revenue trend.
	MonthlyBuckets = 6

	// DailyBuckets is the fixed length of the payment trend.
	DailyBuckets = 30
)

// Window is the caller-supplied date range, inclusive on both ends.
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate checks that the window is not inverted.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidWindow)
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow,
			w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t lies within [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DateLayout is the calendar date format accepted for window bounds.
const DateLayout = "2006-01-02"

// ParseWindow builds a window from two calendar dates or RFC 3339 instants.
// A calendar date start begins at local midnight; a calendar date end covers
// the whole day.
func ParseWindow(startDate, endDate string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	start, _, err := parseBound(startDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start: %v", ErrInvalidWindow, err)
	}
	end, endIsDate, err := parseBound(endDate, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end: %v", ErrInvalidWindow, err)
	}
	if endIsDate {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func parseBound(value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is neither %s nor RFC 3339", value, DateLayout)
	}
	return t, false, nil
}

// Snapshot is the immutable input of one aggregation run.
//
// Invoices and Clients are already restricted to Window by the caller.
// AllInvoices and AllClients feed the fixed-length trends, which ignore the
// window so that chart axes keep a constant length.
type Snapshot struct {
	Window      Window
	Invoices    []models.Invoice
	Clients     []models.Client
	AllInvoices []models.Invoice
	AllClients  []models.Client
}

// AnalyticsReport is the analytics-page variant of the aggregation output.
type AnalyticsReport struct {
	Overview          Overview           `json:"overview"`
	RevenueTrend      []MonthPoint       `json:"revenueTrend"`
	ProjectStatus     []StatusCount      `json:"projectStatus"`
	ClientAcquisition []AcquisitionPoint `json:"clientAcquisition"`
	PaymentMethods    []MethodBreakdown  `json:"paymentMethods"`
}

// PaymentsReport is the payments-page variant of the aggregation output.
type PaymentsReport struct {
	Overview       PaymentsOverview  `json:"overview"`
	PaymentTrend   []DayPoint        `json:"paymentTrend"`
	PaymentMethods []MethodBreakdown `json:"paymentMethods"`
}

// Engine bundles the payment-method strategies used by each variant.
type Engine struct {
	analyticsMethods MethodEstimator
	paymentMethods   MethodEstimator
}

// NewEngine creates an engine. Nil estimators fall back to the defaults the
// existing reports were built with: fixed shares for the analytics variant,
// amount tiers for the payments variant.
func NewEngine(analyticsMethods, paymentMethods MethodEstimator) *Engine {
	if analyticsMethods == nil {
		analyticsMethods = NewFixedShareEstimator(DefaultShares())
	}
	if paymentMethods == nil {
		paymentMethods = NewAmountTierEstimator()
	}
	return &Engine{
		analyticsMethods: analyticsMethods,
		paymentMethods:   paymentMethods,
	}
}

// Analytics computes the analytics-page report.
func (e *Engine) Analytics(s Snapshot, now time.Time) *AnalyticsReport {
	trend := MonthlyTrend(s.AllInvoices, s.AllClients, now)

	return &AnalyticsReport{
		Overview:          ComputeOverview(s.Invoices, s.Clients),
		RevenueTrend:      trend,
		ProjectStatus:     StatusBreakdown(s.Invoices),
		ClientAcquisition: ClientAcquisition(trend),
		PaymentMethods:    e.analyticsMethods.Estimate(s.Invoices),
	}
}

// Payments computes the payments-page report.
func (e *Engine) Payments(s Snapshot, now time.Time) *PaymentsReport {
	return &PaymentsReport{
		Overview:       ComputePaymentsOverview(s.Invoices),
		PaymentTrend:   DailyTrend(s.AllInvoices, now),
		PaymentMethods: e.paymentMethods.Estimate(s.Invoices),
	}
}
