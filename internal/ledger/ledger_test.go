package ledger

import (
	"testing"

	"billing/pkg/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1500000", want: 1500000},
		{in: "1.500.000", want: 1500000},
		{in: "Rp 1.500.000", want: 1500000},
		{in: "Rp. 250.000", want: 250000},
		{in: "IDR 1.500.000,00", want: 1500000},
		{in: " 0 ", want: 0},
		{in: "", wantErr: true},
		{in: "-5000", wantErr: true},
		{in: "1.500,50", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseItem(t *testing.T) {
	item, err := ParseItem("Logo = design=1.250.000")
	if err != nil {
		t.Fatal(err)
	}
	if item.Description != "Logo = design" || item.Amount != 1250000 {
		t.Fatalf("unexpected item %+v", item)
	}

	for _, bad := range []string{"no amount", "=1000", "Hosting=lots"} {
		if _, err := ParseItem(bad); err == nil {
			t.Errorf("ParseItem(%q) should fail", bad)
		}
	}
}

func TestReconcile(t *testing.T) {
	r := NewReconciler()
	items := []models.InvoiceItem{{Description: "a", Amount: 100}, {Description: "b", Amount: 250}}

	inv := &models.Invoice{Items: items}
	res := r.Reconcile(inv)
	if inv.Total != 350 || res.HasDiscrepancy {
		t.Fatalf("missing total not filled: %+v %+v", inv, res)
	}

	inv = &models.Invoice{Total: 400, Items: items}
	res = r.Reconcile(inv)
	if !res.HasDiscrepancy || len(res.Warnings) != 1 || inv.Total != 400 {
		t.Fatalf("mismatch not reported: %+v", res)
	}

	res = r.Reconcile(&models.Invoice{Total: 10})
	if res.HasDiscrepancy || len(res.Warnings) != 1 {
		t.Fatalf("itemless invoice: %+v", res)
	}
}
