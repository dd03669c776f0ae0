package httpserver

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/tokstore/internal/telemetry/logger"
	"github.com/yndnr/tokstore/internal/telemetry/metric"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "a,b,c" {
		t.Errorf("order = %s, want a,b,c", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(HeaderRequestID)
		if !strings.HasPrefix(id, "req-") || len(id) != len("req-")+26 {
			t.Errorf("generated id = %q", id)
		}
		if seen != id {
			t.Errorf("context id = %q, header id = %q", seen, id)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "caller-id")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(HeaderRequestID); got != "caller-id" {
			t.Errorf("header = %q", got)
		}
		if seen != "caller-id" {
			t.Errorf("context = %q", seen)
		}
	})

	t.Run("oversized replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", maxRequestIDLength+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(HeaderRequestID); !strings.HasPrefix(got, "req-") {
			t.Errorf("header = %q, want generated id", got)
		}
	})
}

func TestAccessLogLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "DEBUG"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			h := Chain(inner, WithLogger(l), RequestID(), AccessLog())
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			out := buf.String()
			if !strings.Contains(out, `"level":"`+tt.level+`"`) {
				t.Errorf("log = %s, want level %s", out, tt.level)
			}
			if !strings.Contains(out, `"request_id":"req-`) {
				t.Errorf("log missing request_id: %s", out)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), WithLogger(logger.Discard()), Recover())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "TS-SYS-5000") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMetricsMiddleware(t *testing.T) {
	reg := metric.NewRegistry()
	h := Metrics(reg, "/tokens/{key}")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tokens/abc", nil))
	}

	got := testutil.ToFloat64(reg.HTTPRequests.WithLabelValues(http.MethodGet, "/tokens/{key}", "404"))
	if got != 3 {
		t.Errorf("requests = %v, want 3", got)
	}
}

func TestMetricsMiddlewareNilRegistry(t *testing.T) {
	h := Metrics(nil, "/")(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("burst should be allowed")
	}
	if l.Allow("1.1.1.1") {
		t.Error("third request within burst window should be denied")
	}
	if !l.Allow("2.2.2.2") {
		t.Error("other IP should have its own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.1.1.1") {
		t.Error("token should refill after one second")
	}

	now = now.Add(2 * ipLimiterIdle)
	l.Allow("3.3.3.3")
	if got := l.Len(); got != 1 {
		t.Errorf("Len after sweep = %d, want 1", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	h := Chain(okHandler(), WithLogger(logger.Discard()), RateLimit(l))

	req := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	if rec := req(); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := req()
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if !strings.Contains(rec.Body.String(), "TS-SYS-4290") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
