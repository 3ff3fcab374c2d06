// Package store persists clients, projects, invoices and invoice items in
// SQLite and builds the snapshots the analytics engine consumes.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"billing/internal/analytics"
	"billing/pkg/models"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

// Store is the SQLite record store.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	const op = "Open"

	if strings.TrimSpace(path) == "" {
		return nil, wrap(op, ErrInvalidInput, "storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrap(op, err, "open sqlite db")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, wrap(op, err, "ping sqlite db")
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, wrap(op, err, "apply schema")
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// transaction runs fn inside a transaction and commits when fn succeeds.
func (s *Store) transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Snapshot loads the rows for one aggregation run: invoices and clients
// created inside w, plus every invoice and client for the fixed-length
// trends.
func (s *Store) Snapshot(ctx context.Context, w analytics.Window) (analytics.Snapshot, error) {
	const op = "Snapshot"

	if err := w.Validate(); err != nil {
		return analytics.Snapshot{}, wrap(op, err, "")
	}

	all, err := s.SnapshotAll(ctx)
	if err != nil {
		return analytics.Snapshot{}, err
	}

	snap := analytics.Snapshot{
		Window:      w,
		Invoices:    []models.Invoice{},
		Clients:     []models.Client{},
		AllInvoices: all.AllInvoices,
		AllClients:  all.AllClients,
	}
	for _, inv := range all.AllInvoices {
		if w.Contains(inv.CreatedAt) {
			snap.Invoices = append(snap.Invoices, inv)
		}
	}
	for _, c := range all.AllClients {
		if w.Contains(c.CreatedAt) {
			snap.Clients = append(snap.Clients, c)
		}
	}
	return snap, nil
}

// SnapshotAll loads every invoice and client with no window restriction.
// The windowed and all-time slices are the same rows.
func (s *Store) SnapshotAll(ctx context.Context) (analytics.Snapshot, error) {
	const op = "SnapshotAll"

	invoices, err := s.ListInvoices(ctx, nil)
	if err != nil {
		return analytics.Snapshot{}, wrap(op, err, "load invoices")
	}
	clients, err := s.ListClients(ctx)
	if err != nil {
		return analytics.Snapshot{}, wrap(op, err, "load clients")
	}

	var w analytics.Window
	if len(invoices) > 0 {
		// invoices are newest first
		w = analytics.Window{Start: invoices[len(invoices)-1].CreatedAt, End: invoices[0].CreatedAt}
	}
	return analytics.Snapshot{
		Window:      w,
		Invoices:    invoices,
		Clients:     clients,
		AllInvoices: invoices,
		AllClients:  clients,
	}, nil
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_CHECK
	}
	return strings.Contains(strings.ToLower(err.Error()), "check constraint failed")
}
