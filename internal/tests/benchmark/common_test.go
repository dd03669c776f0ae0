package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/core/service"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/internal/storage/file"
	"github.com/yndnr/tokstore/internal/storage/memory"
	"github.com/yndnr/tokstore/internal/telemetry/logger"
	"github.com/yndnr/tokstore/pkg/secret"
)

// TokenCounts defines the prefill sizes for lookup benchmarks.
var TokenCounts = []int{1000, 10000, 100000}

// SmallTokenCounts for quick benchmarks.
var SmallTokenCounts = []int{1000, 5000}

// backendFactory opens a fresh backend for one benchmark.
type backendFactory struct {
	name string
	open func(b *testing.B) storage.Backend
}

func backends() []backendFactory {
	return []backendFactory{
		{"memory", func(b *testing.B) storage.Backend {
			return memory.New(storage.MemoryConfig{ShardCount: 64})
		}},
		{"file", func(b *testing.B) storage.Backend {
			cfg := storage.DefaultConfig().File
			cfg.Dir = b.TempDir()
			s, err := file.Open(cfg, file.WithLogger(logger.Discard()))
			if err != nil {
				b.Fatalf("file.Open: %v", err)
			}
			return s
		}},
	}
}

// cheapHasher keeps hashing out of storage-bound measurements.
func cheapHasher(b *testing.B) secret.Hasher {
	b.Helper()
	cfg := secret.DefaultConfig()
	cfg.Algorithm = secret.AlgorithmPBKDF2
	cfg.Iterations = 1000
	h, err := secret.New(cfg)
	if err != nil {
		b.Fatalf("secret.New: %v", err)
	}
	return h
}

// newStore wires a token store over backend and releases it when b ends.
func newStore(b *testing.B, backend storage.Backend) *service.TokenStore {
	b.Helper()
	s := service.NewTokenStore(backend, cheapHasher(b), service.WithLogger(logger.Discard()))
	b.Cleanup(func() { s.Quit(context.Background()) })
	return s
}

// createToken creates a test token expiring in a day.
func createToken(i int, withSecret bool) *domain.Token {
	t := &domain.Token{
		Key:     fmt.Sprintf("bench-%08d", i),
		Expires: time.Now().Add(24 * time.Hour).UnixMilli(),
		Claims: map[string]any{
			"user_id":    fmt.Sprintf("user-%d", i%1000),
			"ip_address": "192.168.1.1",
			"user_agent": "BenchmarkTest/1.0",
		},
	}
	if withSecret {
		t.Secret = "bench-secret"
	}
	return t
}

// prefillStore stores count tokens and returns their keys.
func prefillStore(b *testing.B, s *service.TokenStore, count int, withSecret bool) []string {
	b.Helper()
	ctx := context.Background()
	keys := make([]string, count)
	for i := 0; i < count; i++ {
		t := createToken(i, withSecret)
		if _, err := s.StoreToken(ctx, t); err != nil {
			b.Fatalf("prefill: %v", err)
		}
		keys[i] = t.Key
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithTokenCounts runs a benchmark function with various prefill sizes.
func runWithTokenCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("tokens_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

func sizeLabel(size int) string {
	if size >= 1024 {
		return fmt.Sprintf("%dKB", size/1024)
	}
	return fmt.Sprintf("%dB", size)
}
