package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"billing/internal/analytics"
)

var (
	// ErrMissingData is returned when an export request carries no report.
	ErrMissingData = errors.New("analytics data is required")

	// ErrUnsupportedFormat is returned for formats other than csv and text.
	ErrUnsupportedFormat = errors.New("invalid format, use csv or pdf")
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// ParseFormat maps a requested format name onto a Format. "pdf" and "txt"
// are aliases of FormatText.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "text", "txt", "pdf":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Extension is the attachment file extension.
func (f Format) Extension() string {
	if f == FormatCSV {
		return "csv"
	}
	return "txt"
}

// ContentType is the HTTP content type of the rendered document.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "text/plain"
}

// ExportRequest is the body of an export call.
type ExportRequest struct {
	Format    string                     `json:"format"`
	StartDate string                     `json:"startDate"`
	EndDate   string                     `json:"endDate"`
	Data      *analytics.AnalyticsReport `json:"data"`
}

// Document is a rendered export ready to be sent as an attachment.
type Document struct {
	Format   Format
	Filename string
	Body     []byte
}

// ContentDisposition is the attachment header value.
func (d *Document) ContentDisposition() string {
	return fmt.Sprintf("attachment; filename=%q", d.Filename)
}

// Filename embeds both dates of the period: analytics-<start>-<end>.<ext>.
func Filename(f Format, startDate, endDate string) string {
	return fmt.Sprintf("analytics-%s-%s.%s", startDate, endDate, f.Extension())
}

// Render produces the requested document. agencyName and now only affect
// the text report header.
func Render(req ExportRequest, agencyName string, now time.Time) (*Document, error) {
	const op = "Render"

	if req.Data == nil {
		return nil, ErrMissingData
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, req.Data, req.StartDate, req.EndDate)
	default:
		err = WriteText(&buf, req.Data, TextOptions{
			AgencyName:  agencyName,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			GeneratedAt: now,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to write %s report: %w", op, format, err)
	}

	return &Document{
		Format:   format,
		Filename: Filename(format, req.StartDate, req.EndDate),
		Body:     buf.Bytes(),
	}, nil
}
