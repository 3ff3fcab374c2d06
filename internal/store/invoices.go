package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"billing/internal/analytics"
	"billing/pkg/models"
	"github.com/google/uuid"
)

const invoiceColumns = `i.id, i.client_id, COALESCE(c.name, ''), i.date, i.total, i.status,
	i.description, i.created_at, i.paid_at`

const invoiceFrom = `FROM invoices i LEFT JOIN clients c ON c.id = i.client_id`

// CreateInvoice inserts an invoice and its line items in one transaction.
//
// When items are present the stored total is their sum, whatever Total the
// caller passed. Status defaults to unpaid; an invoice created as paid gets
// PaidAt stamped with CreatedAt.
func (s *Store) CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	const op = "CreateInvoice"

	if inv.Status == "" {
		inv.Status = models.StatusUnpaid
	}
	if _, err := models.ParseInvoiceStatus(string(inv.Status)); err != nil {
		return nil, wrap(op, ErrInvalidInput, err.Error())
	}
	for _, item := range inv.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, wrap(op, ErrInvalidInput, "line item description is required")
		}
		if item.Amount < 0 {
			return nil, wrap(op, ErrInvalidInput, "line item amount must not be negative")
		}
	}
	if len(inv.Items) > 0 {
		inv.Total = inv.ItemsTotal()
	}
	if inv.Total < 0 {
		return nil, wrap(op, ErrInvalidInput, "total must not be negative")
	}

	inv.ID = uuid.NewString()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	inv.CreatedAt = fromMillis(toMillis(inv.CreatedAt))
	if inv.Date.IsZero() {
		inv.Date = inv.CreatedAt
	}
	inv.Date = fromMillis(toMillis(inv.Date))
	inv.PaidAt = nil
	if inv.IsPaid() {
		paidAt := inv.CreatedAt
		inv.PaidAt = &paidAt
	}
	if inv.Items == nil {
		inv.Items = []models.InvoiceItem{}
	}

	err := s.transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO invoices (id, client_id, date, total, status, description, created_at, paid_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, nullString(inv.ClientID), toMillis(inv.Date), inv.Total, string(inv.Status),
			strings.TrimSpace(inv.Description), toMillis(inv.CreatedAt), nullMillis(inv.PaidAt),
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("client %s: %w", inv.ClientID, ErrNotFound)
			}
			return fmt.Errorf("insert invoice: %w", err)
		}

		for i, item := range inv.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO invoice_items (invoice_id, position, description, amount) VALUES (?, ?, ?, ?)`,
				inv.ID, i, strings.TrimSpace(item.Description), item.Amount,
			)
			if err != nil {
				return fmt.Errorf("insert line item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap(op, err, "")
	}

	if inv.ClientID != "" {
		if err := s.sqlDB.QueryRowContext(ctx, `SELECT name FROM clients WHERE id = ?`, inv.ClientID).
			Scan(&inv.ClientName); err != nil {
			return nil, wrap(op, err, "load client name")
		}
	}
	return &inv, nil
}

// GetInvoice returns one invoice with client name and items.
func (s *Store) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	const op = "GetInvoice"

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+invoiceColumns+` `+invoiceFrom+` WHERE i.id = ?`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrap(op, ErrNotFound, "invoice "+id)
	}
	if err != nil {
		return nil, wrap(op, err, "scan invoice")
	}

	items, err := s.itemsByInvoice(ctx, `WHERE invoice_id = ?`, id)
	if err != nil {
		return nil, wrap(op, err, "load line items")
	}
	inv.Items = items[inv.ID]
	if inv.Items == nil {
		inv.Items = []models.InvoiceItem{}
	}
	return &inv, nil
}

// ListInvoices returns invoices newest first. A non-nil window restricts the
// result to invoices created inside it.
func (s *Store) ListInvoices(ctx context.Context, w *analytics.Window) ([]models.Invoice, error) {
	const op = "ListInvoices"

	query := `SELECT ` + invoiceColumns + ` ` + invoiceFrom
	var args []any
	if w != nil {
		if err := w.Validate(); err != nil {
			return nil, wrap(op, err, "")
		}
		query += ` WHERE i.created_at >= ? AND i.created_at <= ?`
		args = append(args, toMillis(w.Start), toMillis(w.End))
	}
	query += ` ORDER BY i.created_at DESC, i.id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err, "query invoices")
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, wrap(op, err, "scan invoice")
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err, "iterate invoices")
	}

	items, err := s.itemsByInvoice(ctx, ``)
	if err != nil {
		return nil, wrap(op, err, "load line items")
	}
	for i := range invoices {
		invoices[i].Items = items[invoices[i].ID]
		if invoices[i].Items == nil {
			invoices[i].Items = []models.InvoiceItem{}
		}
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice and its items.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	const op = "DeleteInvoice"

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return wrap(op, err, "delete invoice")
	}
	return requireAffected(op, res, id)
}

// UpdateInvoiceStatus moves an invoice to status. Marking an unpaid invoice
// paid stamps PaidAt with at; marking it unpaid clears PaidAt. Re-marking a
// paid invoice keeps the original PaidAt.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus, at time.Time) (*models.Invoice, error) {
	const op = "UpdateInvoiceStatus"

	if _, err := models.ParseInvoiceStatus(string(status)); err != nil {
		return nil, wrap(op, ErrInvalidInput, err.Error())
	}

	var res sql.Result
	var err error
	if status == models.StatusPaid {
		res, err = s.sqlDB.ExecContext(ctx,
			`UPDATE invoices SET status = 'paid', paid_at = COALESCE(paid_at, ?) WHERE id = ?`,
			toMillis(at), id)
	} else {
		res, err = s.sqlDB.ExecContext(ctx,
			`UPDATE invoices SET status = 'unpaid', paid_at = NULL WHERE id = ?`, id)
	}
	if err != nil {
		if isCheckViolation(err) {
			return nil, wrap(op, ErrInvalidInput, string(status))
		}
		return nil, wrap(op, err, "update status")
	}
	if err := requireAffected(op, res, id); err != nil {
		return nil, err
	}
	return s.GetInvoice(ctx, id)
}

func (s *Store) itemsByInvoice(ctx context.Context, where string, args ...any) (map[string][]models.InvoiceItem, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT invoice_id, description, amount FROM invoice_items `+where+` ORDER BY invoice_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.InvoiceItem)
	for rows.Next() {
		var invoiceID string
		var item models.InvoiceItem
		if err := rows.Scan(&invoiceID, &item.Description, &item.Amount); err != nil {
			return nil, err
		}
		out[invoiceID] = append(out[invoiceID], item)
	}
	return out, rows.Err()
}

func scanInvoice(row rowScanner) (models.Invoice, error) {
	var (
		inv       models.Invoice
		clientID  sql.NullString
		date      int64
		status    string
		createdAt int64
		paidAt    sql.NullInt64
	)
	if err := row.Scan(&inv.ID, &clientID, &inv.ClientName, &date, &inv.Total, &status,
		&inv.Description, &createdAt, &paidAt); err != nil {
		return models.Invoice{}, err
	}
	inv.ClientID = clientID.String
	inv.Date = fromMillis(date)
	inv.Status = models.InvoiceStatus(status)
	inv.CreatedAt = fromMillis(createdAt)
	if paidAt.Valid {
		t := fromMillis(paidAt.Int64)
		inv.PaidAt = &t
	}
	return inv, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}
