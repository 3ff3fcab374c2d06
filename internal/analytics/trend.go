package analytics

import (
	"time"

	"billing/pkg/models"
)

// Boundary selects how a bucket's end bound is interpreted.
//
// Monthly and daily trends historically used different rules and reports
// depend on both, so each is kept as its own value.
type Boundary int

const (
	// HalfOpen buckets hold timestamps in [Start, End).
	HalfOpen Boundary = iota

	// InclusiveLastDay buckets hold timestamps from Start through the whole
	// calendar day that End falls on.
	InclusiveLastDay
)

// Bucket is one fixed interval of a trend series.
type Bucket struct {
	Start    time.Time
	End      time.Time
	Boundary Boundary
}

// Contains reports whether t falls inside the bucket.
func (b Bucket) Contains(t time.Time) bool {
	if t.Before(b.Start) {
		return false
	}
	switch b.Boundary {
	case InclusiveLastDay:
		return t.Before(b.End.AddDate(0, 0, 1))
	default:
		return t.Before(b.End)
	}
}

// MonthBuckets returns n calendar-month buckets ending with the month of now,
// oldest first. Each bucket runs from the 1st to the month's last day in
// now's location.
func MonthBuckets(now time.Time, n int) []Bucket {
	loc := now.Location()
	year, month, _ := now.Date()

	buckets := make([]Bucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, loc)
		// day 0 of the following month is the last day of this one
		end := time.Date(start.Year(), start.Month()+1, 0, 0, 0, 0, 0, loc)
		buckets = append(buckets, Bucket{Start: start, End: end, Boundary: InclusiveLastDay})
	}
	return buckets
}

// DayBuckets returns n calendar-day buckets ending with today, oldest first.
func DayBuckets(now time.Time, n int) []Bucket {
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	buckets := make([]Bucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		buckets = append(buckets, Bucket{Start: start, End: start.AddDate(0, 0, 1), Boundary: HalfOpen})
	}
	return buckets
}

// MonthPoint is one entry of the revenue trend.
type MonthPoint struct {
	Month    string `json:"month"` // YYYY-MM
	Revenue  int64  `json:"revenue"`
	Invoices int    `json:"invoices"`
	Clients  int    `json:"clients"`
}

// DayPoint is one entry of the payment trend.
type DayPoint struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Revenue      int64   `json:"revenue"`
	Transactions int     `json:"transactions"`
	SuccessRate  float64 `json:"successRate"`
}

// AcquisitionPoint is one entry of the client acquisition series.
type AcquisitionPoint struct {
	Month      string `json:"month"`
	NewClients int    `json:"newClients"`
}

// MonthlyTrend buckets invoices and clients into the last six calendar
// months. It always returns MonthlyBuckets entries.
func MonthlyTrend(invoices []models.Invoice, clients []models.Client, now time.Time) []MonthPoint {
	buckets := MonthBuckets(now, MonthlyBuckets)
	points := make([]MonthPoint, len(buckets))

	for i, b := range buckets {
		p := MonthPoint{Month: b.Start.Format("2006-01")}
		for j := range invoices {
			inv := &invoices[j]
			if !b.Contains(inv.CreatedAt) {
				continue
			}
			p.Invoices++
			if inv.IsPaid() {
				p.Revenue += inv.Total
			}
		}
		for j := range clients {
			if b.Contains(clients[j].CreatedAt) {
				p.Clients++
			}
		}
		points[i] = p
	}
	return points
}

// DailyTrend buckets invoices into the last thirty days. It always returns
// DailyBuckets entries.
func DailyTrend(invoices []models.Invoice, now time.Time) []DayPoint {
	buckets := DayBuckets(now, DailyBuckets)
	points := make([]DayPoint, len(buckets))

	for i, b := range buckets {
		p := DayPoint{Date: b.Start.Format("2006-01-02")}
		paid := 0
		for j := range invoices {
			inv := &invoices[j]
			if !b.Contains(inv.CreatedAt) {
				continue
			}
			p.Transactions++
			if inv.IsPaid() {
				paid++
				p.Revenue += inv.Total
			}
		}
		if p.Transactions > 0 {
			p.SuccessRate = roundTenth(100 * float64(paid) / float64(p.Transactions))
		}
		points[i] = p
	}
	return points
}

// ClientAcquisition projects the new-client counts out of a revenue trend.
func ClientAcquisition(trend []MonthPoint) []AcquisitionPoint {
	out := make([]AcquisitionPoint, len(trend))
	for i, p := range trend {
		out[i] = AcquisitionPoint{Month: p.Month, NewClients: p.Clients}
	}
	return out
}
