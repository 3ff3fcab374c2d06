package server

import (
	"errors"
	"net/http"
	"strconv"

	"billing/internal/analytics"
	"billing/internal/report"
	"github.com/rs/zerolog/hlog"
)

// WindowRequest is the body of the analytics routes.
type WindowRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

var errWindowRequired = errors.New("start date and end date are required")

func (s *Server) parseWindow(req WindowRequest) (analytics.Window, error) {
	if req.StartDate == "" || req.EndDate == "" {
		return analytics.Window{}, errWindowRequired
	}
	return analytics.ParseWindow(req.StartDate, req.EndDate, s.loc)
}

func (s *Server) windowFromBody(w http.ResponseWriter, r *http.Request) (analytics.Window, bool) {
	var req WindowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return analytics.Window{}, false
	}
	window, err := s.parseWindow(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return analytics.Window{}, false
	}
	return window, true
}

func (s *Server) handleAnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	window, ok := s.windowFromBody(w, r)
	if !ok {
		return
	}

	snap, err := s.records.Snapshot(r.Context(), window)
	if err != nil {
		fail(w, r, err, "Failed to fetch analytics data")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Analytics(snap, s.now().In(s.loc)))
}

// handleAnalyticsSimple ignores the window and aggregates every record.
func (s *Server) handleAnalyticsSimple(w http.ResponseWriter, r *http.Request) {
	snap, err := s.records.SnapshotAll(r.Context())
	if err != nil {
		fail(w, r, err, "Failed to fetch analytics data")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Analytics(snap, s.now().In(s.loc)))
}

func (s *Server) handlePaymentsAnalytics(w http.ResponseWriter, r *http.Request) {
	window, ok := s.windowFromBody(w, r)
	if !ok {
		return
	}

	snap, err := s.records.Snapshot(r.Context(), window)
	if err != nil {
		fail(w, r, err, "Failed to fetch invoice data")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Payments(snap, s.now().In(s.loc)))
}

// handleDashboard reports the analytics variant in a state envelope. The
// window defaults to the current calendar month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(s.loc)

	req := WindowRequest{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if req.StartDate == "" && req.EndDate == "" {
		first := analytics.MonthBuckets(now, 1)[0]
		req.StartDate = first.Start.Format(analytics.DateLayout)
		req.EndDate = first.End.Format(analytics.DateLayout)
	}
	window, err := s.parseWindow(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, analytics.Unavailable[analytics.AnalyticsReport](err))
		return
	}

	snap, err := s.records.Snapshot(r.Context(), window)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Dashboard data unavailable")
		writeJSON(w, http.StatusServiceUnavailable,
			analytics.Unavailable[analytics.AnalyticsReport](errors.New("analytics data is unavailable")))
		return
	}
	writeJSON(w, http.StatusOK, analytics.Ready(s.engine.Analytics(snap, now)))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req report.ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := report.Render(req, s.agencyName, s.now().In(s.loc))
	if err != nil {
		fail(w, r, err, "Failed to export analytics")
		return
	}

	w.Header().Set("Content-Type", doc.Format.ContentType())
	w.Header().Set("Content-Disposition", doc.ContentDisposition())
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}
