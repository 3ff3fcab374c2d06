// Package server exposes the records, analytics, export and checkout
// operations over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"billing/internal/analytics"
	"billing/internal/checkout"
	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Records is the persistence the handlers need.
type Records interface {
	Ping(ctx context.Context) error
	Snapshot(ctx context.Context, w analytics.Window) (analytics.Snapshot, error)
	SnapshotAll(ctx context.Context) (analytics.Snapshot, error)

	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, c models.Client) (*models.Client, error)
	UpdateClient(ctx context.Context, c models.Client) error
	DeleteClient(ctx context.Context, id string) error
	AddProject(ctx context.Context, p models.Project) (*models.Project, error)

	ListInvoices(ctx context.Context, w *analytics.Window) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	CreateInvoice(ctx context.Context, inv models.Invoice) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus, at time.Time) (*models.Invoice, error)
}

// Checkout opens payment sessions and authenticates their results.
type Checkout interface {
	CreateSession(ctx context.Context, inv *models.Invoice) (*checkout.Session, error)
	Verify(n *checkout.Notification) error
}

// Options configures a Server.
type Options struct {
	Records    Records
	Engine     *analytics.Engine
	Checkout   Checkout // nil disables the payment routes
	AgencyName string
	Location   *time.Location
	Timeout    time.Duration
	Now        func() time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	records    Records
	engine     *analytics.Engine
	checkout   Checkout
	agencyName string
	loc        *time.Location
	timeout    time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// New creates a server from opts, filling in defaults for optional fields.
func New(opts Options) *Server {
	s := &Server{
		records:    opts.Records,
		engine:     opts.Engine,
		checkout:   opts.Checkout,
		agencyName: opts.AgencyName,
		loc:        opts.Location,
		timeout:    opts.Timeout,
		now:        opts.Now,
		log:        logger.WithComponent("server"),
	}
	if s.engine == nil {
		s.engine = analytics.NewEngine(nil, nil)
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Router builds the chi router with all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	for _, mw := range logger.HTTPMiddleware(s.log, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}) {
		r.Use(mw)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)

		r.Post("/analytics/overview", s.handleAnalyticsOverview)
		r.Post("/analytics/simple", s.handleAnalyticsSimple)
		r.Post("/analytics/export", s.handleExport)
		r.Post("/payments/analytics", s.handlePaymentsAnalytics)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.handleListClients)
			r.Post("/", s.handleCreateClient)
			r.Put("/{id}", s.handleUpdateClient)
			r.Delete("/{id}", s.handleDeleteClient)
			r.Post("/{id}/projects", s.handleAddProject)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.handleListInvoices)
			r.Post("/", s.handleCreateInvoice)
			r.Get("/{id}", s.handleGetInvoice)
			r.Delete("/{id}", s.handleDeleteInvoice)
		})

		r.Post("/paid-status", s.handlePaidStatus)
		r.Get("/payment", s.handleCreatePayment)
		r.Post("/payment/notification", s.handlePaymentNotification)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
