package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(LogConfig{Level: "loud", Output: "stderr"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing.log")
	if err := Setup(LogConfig{Level: "info", Format: "json", Output: path}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	l := WithComponent("test")
	l.Info().Msg("hello")
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	mws := HTTPMiddleware(base, func(*http.Request) string { return "req-1" })
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("access line is not JSON: %v (%q)", err, buf.String())
	}
	if line["request_id"] != "req-1" || line["path"] != "/api/dashboard" || line["status"] != float64(http.StatusTeapot) {
		t.Fatalf("unexpected access line %v", line)
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).With().Str("component", "export").Logger().WithContext(context.Background())

	WithContext(ctx).Info().Msg("from context")
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"export"`)) {
		t.Fatalf("context logger not used: %q", buf.String())
	}

	if l := WithContext(context.Background()); l.GetLevel() == zerolog.Disabled {
		t.Fatal("expected the global logger for a bare context")
	}
}
