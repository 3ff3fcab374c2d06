package server

import (
	"net/http"
	"time"

	"billing/internal/analytics"
	"billing/internal/ledger"
	"billing/pkg/models"
	"github.com/go-chi/chi/v5"
)

// ClientRequest is the body of client create and update calls.
type ClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ProjectRequest is the body of a project creation call.
type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// InvoiceRequest is the body of an invoice creation call.
type InvoiceRequest struct {
	ClientID    string               `json:"clientId"`
	Date        string               `json:"date"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	Total       int64                `json:"total"`
	Items       []models.InvoiceItem `json:"items"`
}

// InvoiceResponse carries a created invoice with reconciliation warnings.
type InvoiceResponse struct {
	Invoice  *models.Invoice `json:"invoice"`
	Warnings []string        `json:"warnings"`
}

// StatusRequest is the body of the paid-status route.
type StatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.records.ListClients(r.Context())
	if err != nil {
		fail(w, r, err, "Failed to list clients")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.records.CreateClient(r.Context(), models.Client{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: s.now(),
	})
	if err != nil {
		fail(w, r, err, "Failed to create client")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"client": c})
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.records.UpdateClient(r.Context(), models.Client{
		ID:    chi.URLParam(r, "id"),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		fail(w, r, err, "Failed to update client")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err, "Failed to delete client")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAddProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.records.AddProject(r.Context(), models.Project{
		ClientID:    chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   s.now(),
	})
	if err != nil {
		fail(w, r, err, "Failed to add project")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"project": p})
}

// handleListInvoices lists invoices newest first, optionally restricted by
// the startDate and endDate query parameters.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	var window *analytics.Window
	req := WindowRequest{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if req.StartDate != "" || req.EndDate != "" {
		parsed, err := s.parseWindow(req)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		window = &parsed
	}

	invoices, err := s.records.ListInvoices(r.Context(), window)
	if err != nil {
		fail(w, r, err, "Failed to list invoices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv := models.Invoice{
		ClientID:    req.ClientID,
		Description: req.Description,
		Status:      models.InvoiceStatus(req.Status),
		Total:       req.Total,
		Items:       req.Items,
		CreatedAt:   s.now(),
	}
	if req.Date != "" {
		date, err := parseDate(req.Date, s.loc)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid invoice date")
			return
		}
		inv.Date = date
	}

	check := ledger.NewReconciler().Reconcile(&inv)

	created, err := s.records.CreateInvoice(r.Context(), inv)
	if err != nil {
		fail(w, r, err, "Failed to create invoice")
		return
	}
	writeJSON(w, http.StatusCreated, InvoiceResponse{Invoice: created, Warnings: check.Warnings})
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.records.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err, "Failed to get invoice")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		fail(w, r, err, "Failed to delete invoice")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handlePaidStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing invoice ID")
		return
	}
	status, err := models.ParseInvoiceStatus(req.Status)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := s.records.UpdateInvoiceStatus(r.Context(), req.ID, status, s.now())
	if err != nil {
		fail(w, r, err, "Failed to update invoice status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(analytics.DateLayout, value, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
