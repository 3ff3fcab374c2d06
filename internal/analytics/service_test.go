package analytics

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"billing/pkg/models"
)

func TestEngineAnalyticsOnEmptySnapshot(t *testing.T) {
	report := NewEngine(nil, nil).Analytics(Snapshot{}, testNow)

	if report.Overview != (Overview{}) {
		t.Fatalf("overview not zero: %+v", report.Overview)
	}
	if len(report.ProjectStatus) != 0 || len(report.PaymentMethods) != 0 {
		t.Fatalf("breakdowns should be empty: %+v %+v", report.ProjectStatus, report.PaymentMethods)
	}
	if len(report.RevenueTrend) != MonthlyBuckets || len(report.ClientAcquisition) != MonthlyBuckets {
		t.Fatalf("trend lengths %d/%d", len(report.RevenueTrend), len(report.ClientAcquisition))
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, key := range []string{`"projectStatus":[]`, `"paymentMethods":[]`, `"totalRevenue":0`, `"averagePaymentTime":0`} {
		if !strings.Contains(body, key) {
			t.Fatalf("JSON %s does not contain %s", body, key)
		}
	}
}

func TestEngineAnalyticsUsesHistoryForTrend(t *testing.T) {
	old := testNow.AddDate(0, -3, 0)
	recent := testNow.AddDate(0, 0, -2)

	windowed := []models.Invoice{paidInvoice(500, recent, nil)}
	all := []models.Invoice{paidInvoice(500, recent, nil), paidInvoice(700, old, nil)}

	report := NewEngine(nil, nil).Analytics(Snapshot{Invoices: windowed, AllInvoices: all}, testNow)
	if report.Overview.TotalRevenue != 500 {
		t.Fatalf("overview revenue = %d, want 500", report.Overview.TotalRevenue)
	}
	if report.RevenueTrend[2].Revenue != 700 || report.RevenueTrend[5].Revenue != 500 {
		t.Fatalf("trend ignored history: %+v", report.RevenueTrend)
	}
}

func TestEnginePayments(t *testing.T) {
	invoices := []models.Invoice{
		paidInvoice(2_000_000, testNow.AddDate(0, 0, -1), nil),
		unpaidInvoice(2_000_000, testNow.AddDate(0, 0, -1)),
	}
	report := NewEngine(nil, nil).Payments(Snapshot{Invoices: invoices, AllInvoices: invoices}, testNow)

	if report.Overview.PendingPayments != 1 || report.Overview.SuccessRate != 50 {
		t.Fatalf("unexpected overview %+v", report.Overview)
	}
	if len(report.PaymentTrend) != DailyBuckets {
		t.Fatalf("trend length %d", len(report.PaymentTrend))
	}
	yesterday := report.PaymentTrend[DailyBuckets-2]
	if yesterday.Transactions != 2 || yesterday.SuccessRate != 50 || yesterday.Revenue != 2_000_000 {
		t.Fatalf("unexpected day %+v", yesterday)
	}
	if len(report.PaymentMethods) != 1 || report.PaymentMethods[0].Method != MethodBankTransfer {
		t.Fatalf("unexpected methods %+v", report.PaymentMethods)
	}
}

func TestView(t *testing.T) {
	loading := Loading[AnalyticsReport]()
	if loading.State != StateLoading || loading.IsReady() {
		t.Fatalf("unexpected loading view %+v", loading)
	}

	zero := NewEngine(nil, nil).Analytics(Snapshot{}, testNow)
	ready := Ready(zero)
	if !ready.IsReady() {
		t.Fatal("computed all-zero report must be ready")
	}

	failed := Unavailable[AnalyticsReport](errors.New("store offline"))
	if failed.IsReady() || failed.Data != nil || failed.Error != "store offline" {
		t.Fatalf("unexpected unavailable view %+v", failed)
	}
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("2026-10-01", "2026-10-31", wib)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Start.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, wib)) {
		t.Fatalf("start = %v", w.Start)
	}
	if !w.Contains(time.Date(2026, 10, 31, 23, 59, 59, 0, wib)) {
		t.Fatal("end date should cover the whole day")
	}
	if w.Contains(time.Date(2026, 11, 1, 0, 0, 0, 0, wib)) {
		t.Fatal("window leaks into the next day")
	}

	w, err = ParseWindow("2026-10-01T00:00:00Z", "2026-10-02T12:00:00Z", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !w.End.Equal(time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("instant end was changed: %v", w.End)
	}

	for _, bad := range [][2]string{{"2026-10-31", "2026-10-01"}, {"", "2026-10-01"}, {"2026-10-01", "soon"}} {
		if _, err := ParseWindow(bad[0], bad[1], wib); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("ParseWindow(%q, %q) = %v, want ErrInvalidWindow", bad[0], bad[1], err)
		}
	}
}
