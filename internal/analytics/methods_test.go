package analytics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"billing/pkg/models"
)

func TestStatusBreakdownDropsEmptyLabels(t *testing.T) {
	created := testNow
	got := StatusBreakdown([]models.Invoice{
		unpaidInvoice(1, created),
		unpaidInvoice(1, created),
	})
	if len(got) != 1 || got[0].Status != LabelInProgress || got[0].Count != 2 || got[0].Color != "#3b82f6" {
		t.Fatalf("unexpected breakdown %+v", got)
	}

	got = StatusBreakdown([]models.Invoice{
		unpaidInvoice(1, created),
		paidInvoice(1, created, nil),
	})
	if len(got) != 2 || got[0].Status != LabelCompleted || got[1].Status != LabelInProgress {
		t.Fatalf("labels out of order: %+v", got)
	}

	if got := StatusBreakdown(nil); got == nil || len(got) != 0 {
		t.Fatalf("empty input should give an empty, non-nil slice, got %#v", got)
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusLabel(models.StatusPaid) != LabelCompleted {
		t.Fatal("paid should map to Completed")
	}
	if StatusLabel(models.StatusUnpaid) != LabelInProgress {
		t.Fatal("unpaid should map to In Progress")
	}
	if StatusLabel("refunded") != LabelPending {
		t.Fatal("unknown status should map to Pending")
	}
}

func TestFixedShareEstimator(t *testing.T) {
	est := NewFixedShareEstimator(DefaultShares())

	got := est.Estimate([]models.Invoice{
		paidInvoice(100000, testNow, nil),
		paidInvoice(200000, testNow, nil),
		paidInvoice(300000, testNow, nil),
		unpaidInvoice(50000, testNow),
	})
	want := []MethodBreakdown{
		{Method: MethodBankTransfer, Count: 1, Amount: 420000},
		{Method: MethodCreditCard, Count: 0, Amount: 150000},
		{Method: MethodEWallet, Count: 0, Amount: 30000},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Method != want[i].Method || got[i].Count != want[i].Count || got[i].Amount != want[i].Amount {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], want[i])
		}
		if got[i].SuccessRate != nil {
			t.Fatalf("row %d should not carry a success rate", i)
		}
	}

	if rows := est.Estimate([]models.Invoice{unpaidInvoice(1, testNow)}); rows == nil || len(rows) != 0 {
		t.Fatalf("no paid invoices should give no rows, got %#v", rows)
	}
}

func TestFixedShareCountsNeverExceedPaid(t *testing.T) {
	est := NewFixedShareEstimator(DefaultShares())
	for paid := 1; paid <= 50; paid++ {
		invoices := make([]models.Invoice, paid)
		for i := range invoices {
			invoices[i] = paidInvoice(1, testNow, nil)
		}
		sum := 0
		for _, row := range est.Estimate(invoices) {
			sum += row.Count
		}
		if sum > paid || paid-sum > 2 {
			t.Fatalf("paid=%d: synthesized counts sum to %d", paid, sum)
		}
	}
}

func TestFixedShareAmountsAreWholeRupiah(t *testing.T) {
	rows := NewFixedShareEstimator(DefaultShares()).Estimate([]models.Invoice{
		paidInvoice(1_000_001, testNow, nil),
	})
	want := []int64{700_000, 250_000, 50_000}
	for i, amount := range want {
		if rows[i].Amount != amount {
			t.Fatalf("row %d amount = %d, want %d", i, rows[i].Amount, amount)
		}
	}
}

func TestAmountTierEstimator(t *testing.T) {
	est := NewAmountTierEstimator()

	cases := map[int64]string{
		0:          MethodBankTransfer,
		999_999:    MethodEWallet,
		1_000_000:  MethodBankTransfer,
		10_000_000: MethodBankTransfer,
		10_000_001: MethodCreditCard,
	}
	for total, want := range cases {
		if got := est.Classify(total); got != want {
			t.Errorf("Classify(%d) = %s, want %s", total, got, want)
		}
	}

	rows := est.Estimate([]models.Invoice{
		paidInvoice(20_000_000, testNow, nil),
		unpaidInvoice(500_000, testNow),
		paidInvoice(500_000, testNow, nil),
		paidInvoice(2_000_000, testNow, nil),
	})
	if len(rows) != 3 {
		t.Fatalf("got %d rows: %+v", len(rows), rows)
	}
	if rows[0].Method != MethodCreditCard || rows[1].Method != MethodEWallet || rows[2].Method != MethodBankTransfer {
		t.Fatalf("rows not in first-seen order: %+v", rows)
	}
	if rows[1].Count != 2 || rows[1].Amount != 1_000_000 || rows[1].SuccessRate == nil || *rows[1].SuccessRate != 50 {
		t.Fatalf("unexpected e-wallet row %+v", rows[1])
	}
}

func TestLoadShares(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "shares.yaml")
	content := "shares:\n" +
		"  - method: Bank Transfer\n    count_percent: 80\n    amount_percent: 90\n" +
		"  - method: QRIS\n    count_percent: 20\n    amount_percent: 10\n"
	if err := os.WriteFile(valid, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	shares, err := LoadShares(valid)
	if err != nil {
		t.Fatalf("LoadShares: %v", err)
	}
	if len(shares) != 2 || shares[1].Method != "QRIS" || shares[1].CountPercent != 20 {
		t.Fatalf("unexpected shares %+v", shares)
	}

	tooMuch := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(tooMuch, []byte("shares:\n  - method: A\n    count_percent: 70\n  - method: B\n    count_percent: 40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadShares(tooMuch); !errors.Is(err, ErrInvalidShares) {
		t.Fatalf("expected ErrInvalidShares, got %v", err)
	}

	if _, err := LoadShares(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewEstimator(t *testing.T) {
	if est, err := NewEstimator("", ""); err != nil {
		t.Fatalf("default estimator: %v", err)
	} else if _, ok := est.(*FixedShareEstimator); !ok {
		t.Fatalf("default estimator is %T", est)
	}
	if est, err := NewEstimator(EstimatorAmountTier, ""); err != nil {
		t.Fatalf("amount tier estimator: %v", err)
	} else if _, ok := est.(*AmountTierEstimator); !ok {
		t.Fatalf("amount tier estimator is %T", est)
	}
	if _, err := NewEstimator("observed", ""); !errors.Is(err, ErrUnknownEstimator) {
		t.Fatalf("expected ErrUnknownEstimator, got %v", err)
	}
}
