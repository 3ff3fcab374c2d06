package checkout

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"billing/pkg/models"
	"github.com/midtrans/midtrans-go/coreapi"
)

// Gateway transaction states.
const (
	TransactionCapture    = "capture"
	TransactionSettlement = "settlement"
	TransactionPending    = "pending"
	TransactionDeny       = "deny"
	TransactionCancel     = "cancel"
	TransactionExpire     = "expire"
	TransactionFailure    = "failure"

	FraudAccept    = "accept"
	FraudChallenge = "challenge"
	FraudDeny      = "deny"
)

// Notification is the terminal-result payload the gateway posts back. It has
// the shape of a transaction status response.
type Notification struct {
	coreapi.TransactionStatusResponse
}

// InvoiceID is the invoice the notification claims to refer to. The field
// is not covered by the signature; see Matches.
func (n *Notification) InvoiceID() string {
	return n.CustomField1
}

// Matches checks that a verified notification belongs to inv: the order id
// must have been issued for inv and the charged amount must equal its total.
func (n *Notification) Matches(inv *models.Invoice) error {
	const op = "Matches"

	if !strings.HasPrefix(n.OrderID, orderPrefix(inv.ID)) {
		return &CheckoutError{Op: op, Err: ErrNotificationMismatch,
			Details: fmt.Sprintf("order %s was not issued for invoice %s", n.OrderID, inv.ID)}
	}
	amount, err := parseGrossAmount(n.GrossAmount)
	if err != nil {
		return &CheckoutError{Op: op, Err: ErrNotificationMismatch, Details: err.Error()}
	}
	if amount != inv.Total {
		return &CheckoutError{Op: op, Err: ErrNotificationMismatch,
			Details: fmt.Sprintf("gross amount %d does not match invoice total %d", amount, inv.Total)}
	}
	return nil
}

// parseGrossAmount reads the gateway's decimal amount ("150000.00") as whole
// Rupiah. Non-zero fractions are rejected.
func parseGrossAmount(s string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if strings.Trim(frac, "0") != "" {
		return 0, fmt.Errorf("gross amount %q has a fractional part", s)
	}
	amount, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid gross amount %q", s)
	}
	return amount, nil
}

// Outcome maps a transaction result onto an invoice status. ok is false when
// the result does not change the invoice: pending results, challenged
// captures, failed payments, and unknown states.
//
// Failed payments (deny, cancel, expire, failure) leave the invoice unpaid
// so that a new checkout can be started.
func Outcome(n *Notification) (status models.InvoiceStatus, ok bool) {
	switch strings.ToLower(n.TransactionStatus) {
	case TransactionSettlement:
		return models.StatusPaid, true
	case TransactionCapture:
		switch strings.ToLower(n.FraudStatus) {
		case "", FraudAccept:
			return models.StatusPaid, true
		}
	}
	return "", false
}

// Signature computes the gateway signature:
// hex(SHA-512(order_id + status_code + gross_amount + server key)).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// Verify checks the notification signature against the client's server key.
func (c *Client) Verify(n *Notification) error {
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, c.serverKey)
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) != 1 {
		return &CheckoutError{Op: "Verify", Err: ErrInvalidSignature, Details: n.OrderID}
	}
	return nil
}
