package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0", want: "1AbC-d_9"},
		{url: "https://docs.google.com/spreadsheets/d/xyz", want: "xyz"},
		{url: "https://example.com/not-a-sheet", wantErr: true},
	}
	for _, tt := range tests {
		got, err := extractSpreadsheetID(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("extractSpreadsheetID(%q) = %q, want error", tt.url, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("extractSpreadsheetID(%q) = %q, %v; want %q", tt.url, got, err, tt.want)
		}
	}
}

func TestWriteRowsCreatesSheetAndReplacesValues(t *testing.T) {
	var (
		batchUpdates int
		cleared      bool
		written      sheets.ValueRange
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/v4/spreadsheets/sheet123", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet123","sheets":[{"properties":{"sheetId":1,"title":"Other"}}]}`))
	})
	mux.HandleFunc("/v4/spreadsheets/sheet123:batchUpdate", func(w http.ResponseWriter, r *http.Request) {
		batchUpdates++
		if batchUpdates == 1 {
			_, _ = w.Write([]byte(`{"replies":[{"addSheet":{"properties":{"sheetId":42,"title":"Analytics"}}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"replies":[{},{}]}`))
	})
	mux.HandleFunc("/v4/spreadsheets/sheet123/values/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":clear"):
			cleared = true
		case r.Method == http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&written); err != nil {
				t.Errorf("decode values: %v", err)
			}
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"range":"Analytics!A1:B1","values":[["Report Type","Metric"]]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	svc, err := newService(ctx, "https://docs.google.com/spreadsheets/d/sheet123/edit",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatal(err)
	}

	rows := [][]string{
		{"Report Type", "Metric", "Value", "Period"},
		{},
		{"Revenue Trend", "Month", "Revenue", "Invoices", "New Clients"},
	}
	if err := svc.WriteRows(ctx, "Analytics", rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}

	if batchUpdates != 2 {
		t.Errorf("expected add-sheet and format batch updates, got %d", batchUpdates)
	}
	if !cleared {
		t.Error("sheet was not cleared before writing")
	}
	if len(written.Values) != 3 || len(written.Values[1]) != 0 || written.Values[2][4] != "New Clients" {
		t.Errorf("unexpected written values %v", written.Values)
	}

	got, err := svc.ReadRange(ctx, "Analytics!A1:B1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0][1] != "Metric" {
		t.Errorf("ReadRange = %v", got)
	}

	header, err := svc.Header(ctx, "Analytics")
	if err != nil {
		t.Fatal(err)
	}
	if len(header) != 2 || header[0] != "Report Type" || header[1] != "Metric" {
		t.Errorf("Header = %v", header)
	}
}

func TestWidest(t *testing.T) {
	if got := widest([][]string{{"a"}, {}, {"a", "b", "c"}}); got != 3 {
		t.Fatalf("widest = %d", got)
	}
}
