// Package ledger holds input helpers for invoice amounts: parsing Rupiah
// amounts typed by an operator, parsing line items, and reconciling an
// invoice total against its line items.
package ledger

import (
	"fmt"
	"strings"

	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/rs/zerolog"
)

// ParseItem parses a "description=amount" line item, e.g.
// "Landing page design=1.500.000".
func ParseItem(spec string) (models.InvoiceItem, error) {
	const op = "ParseItem"

	idx := strings.LastIndex(spec, "=")
	if idx < 0 {
		return models.InvoiceItem{}, fmt.Errorf("%s: expected description=amount, got %q", op, spec)
	}

	description := strings.TrimSpace(spec[:idx])
	if description == "" {
		return models.InvoiceItem{}, fmt.Errorf("%s: missing description in %q", op, spec)
	}

	amount, err := ParseAmount(spec[idx+1:])
	if err != nil {
		return models.InvoiceItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.InvoiceItem{Description: description, Amount: amount}, nil
}

// Reconciliation is the outcome of comparing an invoice total with its items.
type Reconciliation struct {
	Total          int64
	ItemsTotal     int64
	HasDiscrepancy bool
	Warnings       []string
}

// Reconciler checks invoice totals against line items.
type Reconciler struct {
	log zerolog.Logger
}

// NewReconciler creates a reconciler with its own component logger.
func NewReconciler() *Reconciler {
	return &Reconciler{
		log: logger.WithComponent("ledger"),
	}
}

// Reconcile fills a missing total from the items and reports a mismatch
// between an explicit total and the items. The invoice is modified in place
// only when its total was zero.
func (r *Reconciler) Reconcile(inv *models.Invoice) *Reconciliation {
	result := &Reconciliation{
		Total:      inv.Total,
		ItemsTotal: inv.ItemsTotal(),
		Warnings:   []string{},
	}

	if len(inv.Items) == 0 {
		result.Warnings = append(result.Warnings, "invoice has no line items")
		r.log.Debug().Str("invoice_id", inv.ID).Msg("Invoice has no line items")
		return result
	}

	if inv.Total == 0 {
		inv.Total = result.ItemsTotal
		result.Total = result.ItemsTotal
		r.log.Debug().
			Int64("calculated_total", inv.Total).
			Msg("Calculated missing total from line items")
		return result
	}

	if inv.Total != result.ItemsTotal {
		result.HasDiscrepancy = true
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"total %d differs from line items sum %d (difference: %d)",
			inv.Total, result.ItemsTotal, inv.Total-result.ItemsTotal))

		r.log.Warn().
			Str("invoice_id", inv.ID).
			Int64("total", inv.Total).
			Int64("items_total", result.ItemsTotal).
			Msg("Invoice total does not match line items")
	}

	return result
}
