package server

import (
	"net/http"

	"billing/internal/checkout"
	"github.com/rs/zerolog/hlog"
)

// handleCreatePayment opens a checkout session for the invoice in ?id=.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	if s.checkout == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "checkout is not configured")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "missing invoice ID")
		return
	}

	inv, err := s.records.GetInvoice(r.Context(), id)
	if err != nil {
		fail(w, r, err, "Failed to load invoice")
		return
	}

	session, err := s.checkout.CreateSession(r.Context(), inv)
	if err != nil {
		fail(w, r, err, "Checkout gateway request failed")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handlePaymentNotification applies a gateway transaction result.
func (s *Server) handlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	if s.checkout == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "checkout is not configured")
		return
	}

	var n checkout.Notification
	if err := decodeJSON(r, &n); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.checkout.Verify(&n); err != nil {
		fail(w, r, err, "Failed to verify notification")
		return
	}
	if n.InvoiceID() == "" {
		writeJSONError(w, http.StatusBadRequest, "missing invoice ID")
		return
	}

	log := hlog.FromRequest(r).With().
		Str("invoice_id", n.InvoiceID()).
		Str("order_id", n.OrderID).
		Str("transaction_status", n.TransactionStatus).
		Logger()

	inv, err := s.records.GetInvoice(r.Context(), n.InvoiceID())
	if err != nil {
		fail(w, r, err, "Failed to load invoice")
		return
	}
	if err := n.Matches(inv); err != nil {
		log.Warn().Err(err).Msg("Rejected notification for another invoice")
		fail(w, r, err, "Failed to verify notification")
		return
	}

	status, ok := checkout.Outcome(&n)
	if !ok {
		log.Info().Msg("Transaction result leaves invoice unchanged")
		writeJSON(w, http.StatusOK, map[string]any{"updated": false})
		return
	}

	inv, err = s.records.UpdateInvoiceStatus(r.Context(), inv.ID, status, s.now())
	if err != nil {
		fail(w, r, err, "Failed to update invoice status")
		return
	}
	log.Info().Str("status", string(inv.Status)).Msg("Invoice status updated from checkout")
	writeJSON(w, http.StatusOK, map[string]any{"updated": true, "invoice": inv})
}
