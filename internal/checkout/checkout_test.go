package checkout

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billing/pkg/models"
	"github.com/midtrans/midtrans-go/snap"
)

var fixedNow = time.UnixMilli(1_760_000_123_456)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("SB-Mid-server-test", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestNewClientRequiresServerKey(t *testing.T) {
	if _, err := NewClient("  ", ""); !errors.Is(err, ErrMissingServerKey) {
		t.Fatalf("expected ErrMissingServerKey, got %v", err)
	}
}

func TestOrderID(t *testing.T) {
	got := OrderID("0f8e4c2a-1111-2222-3333-444455556666", fixedNow)
	if got != "INV-0f8e4c2a-123456" {
		t.Fatalf("OrderID = %s", got)
	}
	if got := OrderID("abc", time.UnixMilli(1_000_000_000_042)); got != "INV-abc-000042" {
		t.Fatalf("OrderID short = %s", got)
	}
}

func TestCreateSession(t *testing.T) {
	var got snap.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != transactionsPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("SB-Mid-server-test:"))
		if r.Header.Get("Authorization") != wantAuth {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"snap-token","redirect_url":"https://pay.example/snap-token"}`))
	})

	inv := &models.Invoice{ID: "0f8e4c2a-aaaa", Total: 2_500_000, Status: models.StatusUnpaid}
	session, err := c.CreateSession(context.Background(), inv)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Token != "snap-token" || session.OrderID != "INV-0f8e4c2a-123456" {
		t.Fatalf("unexpected session %+v", session)
	}

	if got.TransactionDetails.GrossAmt != 2_500_000 || got.TransactionDetails.OrderID != session.OrderID {
		t.Errorf("transaction details %+v", got.TransactionDetails)
	}
	if got.Items == nil || len(*got.Items) != 1 || (*got.Items)[0].Name != "Invoice" || (*got.Items)[0].Qty != 1 {
		t.Errorf("item details %+v", got.Items)
	}
	if got.CustomerDetail == nil || got.CustomerDetail.FName != "Client" || got.CustomField1 != inv.ID {
		t.Errorf("customer %+v custom field %q", got.CustomerDetail, got.CustomField1)
	}
}

func TestCreateSessionErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error_messages":["Access denied"]}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	})
	ctx := context.Background()

	_, err := c.CreateSession(ctx, &models.Invoice{ID: "x", Total: 100, Status: models.StatusPaid})
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
	_, err = c.CreateSession(ctx, &models.Invoice{ID: "x", Total: 0})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if calls != 0 {
		t.Fatal("gateway must not be called for rejected invoices")
	}

	_, err = c.CreateSession(ctx, &models.Invoice{ID: "x", Total: 100})
	var checkoutErr *CheckoutError
	if !errors.As(err, &checkoutErr) || checkoutErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 CheckoutError, got %v", err)
	}

	_, err = c.CreateSession(ctx, &models.Invoice{ID: "x", Total: 100})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		status, fraud string
		want          models.InvoiceStatus
		ok            bool
	}{
		{status: "settlement", want: models.StatusPaid, ok: true},
		{status: "capture", fraud: "accept", want: models.StatusPaid, ok: true},
		{status: "capture", want: models.StatusPaid, ok: true},
		{status: "capture", fraud: "challenge"},
		{status: "pending"},
		{status: "deny"},
		{status: "cancel"},
		{status: "expire"},
		{status: "failure"},
		{status: "refund"},
	}
	for _, tt := range tests {
		var n Notification
		n.TransactionStatus = tt.status
		n.FraudStatus = tt.fraud
		got, ok := Outcome(&n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Outcome(%s/%s) = %q, %v; want %q, %v", tt.status, tt.fraud, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVerify(t *testing.T) {
	c, err := NewClient("secret", "")
	if err != nil {
		t.Fatal(err)
	}
	n := &Notification{}
	n.OrderID, n.StatusCode, n.GrossAmount = "INV-1", "200", "100000.00"
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "secret")
	if err := c.Verify(n); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	n.GrossAmount = "1.00"
	if err := c.Verify(n); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestNotificationMatches(t *testing.T) {
	inv := &models.Invoice{ID: "0f8e4c2a-aaaa", Total: 150_000}
	other := &models.Invoice{ID: "9a9a9a9a-bbbb", Total: 150_000}

	tests := []struct {
		name    string
		inv     *models.Invoice
		orderID string
		gross   string
		ok      bool
	}{
		{name: "issued order and exact amount", inv: inv, orderID: "INV-0f8e4c2a-123456", gross: "150000.00", ok: true},
		{name: "amount without decimals", inv: inv, orderID: "INV-0f8e4c2a-123456", gross: "150000", ok: true},
		{name: "order of another invoice", inv: other, orderID: "INV-0f8e4c2a-123456", gross: "150000.00"},
		{name: "amount lower than total", inv: inv, orderID: "INV-0f8e4c2a-123456", gross: "1000.00"},
		{name: "fractional amount", inv: inv, orderID: "INV-0f8e4c2a-123456", gross: "150000.50"},
		{name: "garbage amount", inv: inv, orderID: "INV-0f8e4c2a-123456", gross: "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Notification
			n.OrderID, n.GrossAmount = tt.orderID, tt.gross

			err := n.Matches(tt.inv)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrNotificationMismatch) {
				t.Fatalf("expected ErrNotificationMismatch, got %v", err)
			}
		})
	}
}
