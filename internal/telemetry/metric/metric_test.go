package metric

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/tokstore/internal/core/service"
	"github.com/yndnr/tokstore/internal/infra/buildinfo"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/internal/storage/memory"
)

var _ service.Observer = (*Registry)(nil)

type failingBackend struct{ err error }

func (f failingBackend) StoreKey(context.Context, string, time.Duration, []byte) error {
	return f.err
}

func (f failingBackend) GetKey(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingBackend) DeleteKeys(context.Context, []string) (int, error) {
	return 0, f.err
}

func (f failingBackend) Quit(context.Context) (storage.Release, error) {
	return storage.ReleaseFailed, f.err
}

func TestInstrumentBackend(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	b := InstrumentBackend(memory.New(storage.MemoryConfig{}), storage.AdapterMemory, reg)

	if err := b.StoreKey(ctx, "token:a", time.Minute, []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := b.GetKey(ctx, "token:a"); !found {
		t.Fatal("stored key not found through decorator")
	}
	b.GetKey(ctx, "token:missing")
	if n, _ := b.DeleteKeys(ctx, []string{"token:a"}); n != 1 {
		t.Errorf("DeleteKeys = %d, want 1", n)
	}
	if err := b.(storage.Pinger).Ping(ctx); err != nil {
		t.Errorf("Ping on non-pinger = %v, want nil", err)
	}
	if rel, _ := b.Quit(ctx); rel != storage.Released {
		t.Errorf("Quit = %v, want released", rel)
	}

	tests := []struct {
		op, result string
		want       float64
	}{
		{"store", "ok", 1},
		{"get", "ok", 1},
		{"get", "miss", 1},
		{"delete", "ok", 1},
		{"quit", "released", 1},
		{"ping", "ok", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(reg.BackendOps.WithLabelValues("memory", tt.op, tt.result))
		if got != tt.want {
			t.Errorf("backend_operations_total{op=%s,result=%s} = %v, want %v", tt.op, tt.result, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(reg.BackendDuration); n != 4 {
		t.Errorf("duration series = %d, want 4", n)
	}
}

func TestInstrumentBackend_Errors(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry()
	boom := errors.New("boom")
	b := InstrumentBackend(failingBackend{err: boom}, storage.AdapterRedis, reg)

	if err := b.StoreKey(ctx, "k", time.Second, nil); err != boom {
		t.Errorf("StoreKey = %v, want boom", err)
	}
	if _, _, err := b.GetKey(ctx, "k"); err != boom {
		t.Errorf("GetKey = %v, want boom", err)
	}
	b.Quit(ctx)

	if got := testutil.ToFloat64(reg.BackendOps.WithLabelValues("redis", "store", "error")); got != 1 {
		t.Errorf("store errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.BackendOps.WithLabelValues("redis", "get", "error")); got != 1 {
		t.Errorf("get errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(reg.BackendOps.WithLabelValues("redis", "quit", "release_failed")); got != 1 {
		t.Errorf("quit release_failed = %v, want 1", got)
	}
}

func TestInstrumentBackend_NilStaysNil(t *testing.T) {
	if b := InstrumentBackend(nil, storage.AdapterNone, NewRegistry()); b != nil {
		t.Errorf("InstrumentBackend(nil) = %v, want nil", b)
	}
}

func TestRegistry_Observers(t *testing.T) {
	reg := NewRegistry()

	reg.ObserveTokenOperation("confirm", "invalid", 3*time.Millisecond)
	reg.ObserveTokenOperation("confirm", "invalid", time.Millisecond)
	reg.ObserveHTTPRequest(http.MethodPost, "/tokens", http.StatusCreated)

	if got := testutil.ToFloat64(reg.TokenOps.WithLabelValues("confirm", "invalid")); got != 2 {
		t.Errorf("token_operations_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(reg.HTTPRequests.WithLabelValues("POST", "/tokens", "201")); got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterBuildInfo(buildinfo.Info{Version: "v1.2.3", Commit: "abc", GoVersion: "go1.24"})
	reg.RegisterBuildInfo(buildinfo.Info{Version: "again"})
	reg.ObserveTokenOperation("store", "ok", time.Millisecond)

	srv := httptest.NewServer(reg.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	out := string(body)

	for _, want := range []string{
		`tokstore_token_operations_total{op="store",result="ok"} 1`,
		`tokstore_build_info{goversion="go1.24",revision="abc",version="v1.2.3"} 1`,
		`go_goroutines`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
	if strings.Contains(out, `version="again"`) {
		t.Error("second RegisterBuildInfo should be ignored")
	}
}
