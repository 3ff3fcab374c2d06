package models

import (
	"fmt"
	"time"
)

// InvoiceStatus is the closed payment state of an invoice.
type InvoiceStatus string

const (
	StatusPaid   InvoiceStatus = "paid"
	StatusUnpaid InvoiceStatus = "unpaid"
)

// ParseInvoiceStatus accepts only the two stored status values.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch InvoiceStatus(s) {
	case StatusPaid, StatusUnpaid:
		return InvoiceStatus(s), nil
	default:
		return "", fmt.Errorf("unknown invoice status %q", s)
	}
}

type Invoice struct {
	// Core identifiers
	ID         string `json:"id"`         // UUID assigned by the store
	ClientID   string `json:"clientId"`   // Owning client
	ClientName string `json:"clientName"` // Embedded from the clients table, empty if the client is gone

	// Dates
	Date      time.Time  `json:"date"`             // Invoice date shown on the document
	CreatedAt time.Time  `json:"createdAt"`        // Record creation timestamp, drives all bucketing
	PaidAt    *time.Time `json:"paidAt,omitempty"` // Set when the invoice was marked paid

	// Amounts in the smallest currency unit (whole Rupiah)
	Total int64 `json:"total"`

	Status      InvoiceStatus `json:"status"`
	Description string        `json:"description"` // Used as the checkout item name

	Items []InvoiceItem `json:"items"` // Ordered line items
}

// IsPaid reports whether the invoice is in the paid state.
func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

// ItemsTotal sums the line item amounts.
func (inv *Invoice) ItemsTotal() int64 {
	var sum int64
	for _, item := range inv.Items {
		sum += item.Amount
	}
	return sum
}

type InvoiceItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}
