package file

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/storage"
)

func testConfig(t *testing.T) storage.FileConfig {
	t.Helper()
	cfg := storage.DefaultConfig().File
	cfg.Dir = t.TempDir()
	cfg.SyncWrites = false
	cfg.GCInterval = time.Hour // keep auto GC out of the way
	return cfg
}

func openStore(t *testing.T, cfg storage.FileConfig, opts ...Option) *Store {
	t.Helper()
	s, err := Open(cfg, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Quit(context.Background()) })
	return s
}

func TestOpen_RequiresDir(t *testing.T) {
	if _, err := Open(storage.FileConfig{}); err == nil {
		t.Fatal("Open without dir should fail")
	}
}

func TestStore_BasicOperations(t *testing.T) {
	s := openStore(t, testConfig(t))
	ctx := context.Background()

	t.Run("store and get", func(t *testing.T) {
		if err := s.StoreKey(ctx, "token:a", time.Minute, []byte("value-a")); err != nil {
			t.Fatal(err)
		}
		got, found, err := s.GetKey(ctx, "token:a")
		if err != nil {
			t.Fatal(err)
		}
		if !found || string(got) != "value-a" {
			t.Errorf("GetKey = %q, %v; want value-a, true", got, found)
		}
	})

	t.Run("get absent key", func(t *testing.T) {
		_, found, err := s.GetKey(ctx, "token:none")
		if err != nil || found {
			t.Errorf("GetKey = found %v, err %v; want false, nil", found, err)
		}
	})

	t.Run("delete keys", func(t *testing.T) {
		s.StoreKey(ctx, "token:b", time.Minute, []byte("b"))
		s.StoreKey(ctx, "token:c", time.Minute, []byte("c"))

		n, err := s.DeleteKeys(ctx, []string{"token:b", "token:c", "token:none"})
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("DeleteKeys = %d, want 2", n)
		}
		if _, found, _ := s.GetKey(ctx, "token:b"); found {
			t.Error("token:b should be deleted")
		}
	})

	t.Run("non-positive ttl evicts", func(t *testing.T) {
		s.StoreKey(ctx, "token:d", time.Minute, []byte("d"))
		if err := s.StoreKey(ctx, "token:d", -time.Millisecond, []byte("dead")); err != nil {
			t.Fatal(err)
		}
		if _, found, _ := s.GetKey(ctx, "token:d"); found {
			t.Error("entry stored with negative ttl must not be observable")
		}
	})
}

func TestStore_MillisecondExpiry(t *testing.T) {
	now := time.Now()
	s := openStore(t, testConfig(t), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	s.StoreKey(ctx, "k", 1500*time.Millisecond, []byte("v"))

	now = now.Add(1499 * time.Millisecond)
	if _, found, _ := s.GetKey(ctx, "k"); !found {
		t.Fatal("entry should be live before its deadline")
	}

	now = now.Add(time.Millisecond)
	if _, found, _ := s.GetKey(ctx, "k"); found {
		t.Fatal("entry should be expired at its deadline")
	}
}

func TestStore_DeleteCountsOnlyLiveEntries(t *testing.T) {
	now := time.Now()
	s := openStore(t, testConfig(t), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	// Badger keeps both items visible for a whole second.
	s.StoreKey(ctx, "short", 200*time.Millisecond, []byte("v"))
	s.StoreKey(ctx, "long", time.Hour, []byte("v"))

	now = now.Add(300 * time.Millisecond)
	n, err := s.DeleteKeys(ctx, []string{"short", "long", "absent"})
	if err != nil {
		t.Fatalf("DeleteKeys: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteKeys = %d, want 1 (expired envelope not counted)", n)
	}
	if _, found, _ := s.GetKey(ctx, "long"); found {
		t.Error("long should be deleted")
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	s, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StoreKey(ctx, "token:durable", time.Hour, []byte("still here")); err != nil {
		t.Fatal(err)
	}
	if r, err := s.Quit(ctx); err != nil || r != storage.Released {
		t.Fatalf("Quit = %v, %v", r, err)
	}

	reopened := openStore(t, cfg)
	got, found, err := reopened.GetKey(ctx, "token:durable")
	if err != nil || !found || string(got) != "still here" {
		t.Fatalf("GetKey after reopen = %q, %v, %v", got, found, err)
	}
}

func TestStore_Encryption(t *testing.T) {
	cfg := testConfig(t)
	cfg.EncryptionKey = strings.Repeat("ab", 32)
	s := openStore(t, cfg)
	ctx := context.Background()

	secret := []byte(`{"key":"abc","salt":"00ff"}`)
	if err := s.StoreKey(ctx, "token:abc", time.Minute, secret); err != nil {
		t.Fatal(err)
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("token:abc"))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "salt") {
		t.Fatal("value should be encrypted at rest")
	}

	got, found, err := s.GetKey(ctx, "token:abc")
	if err != nil || !found || string(got) != string(secret) {
		t.Fatalf("GetKey = %q, %v, %v", got, found, err)
	}
}

func TestOpen_BadEncryptionKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.EncryptionKey = "too-short"
	if _, err := Open(cfg); err == nil {
		t.Fatal("Open with invalid encryption key should fail")
	}
}

func TestStore_QuitIdempotent(t *testing.T) {
	s, err := Open(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if r, err := s.Quit(ctx); err != nil || r != storage.Released {
		t.Fatalf("Quit = %v, %v; want Released", r, err)
	}
	if r, err := s.Quit(ctx); err != nil || r != storage.NothingToRelease {
		t.Fatalf("second Quit = %v, %v; want NothingToRelease", r, err)
	}
	if err := s.Ping(ctx); !errors.Is(err, domain.ErrBackendClosed) {
		t.Errorf("Ping after Quit = %v, want ErrBackendClosed", err)
	}
	if _, _, err := s.GetKey(ctx, "k"); !errors.Is(err, domain.ErrBackendClosed) {
		t.Errorf("GetKey after Quit = %v, want ErrBackendClosed", err)
	}
}

func TestStore_GCAndMetrics(t *testing.T) {
	s := openStore(t, testConfig(t))

	if _, err := s.GC(context.Background()); err != nil {
		t.Fatalf("GC: %v", err)
	}
	if s.lastGCTime.Load() == 0 {
		t.Error("GC should record its run time")
	}

	reg := prometheus.NewRegistry()
	if err := s.RegisterMetrics(reg); err != nil {
		t.Fatalf("RegisterMetrics: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 3 {
		t.Errorf("gathered %d metric families, want 3", len(families))
	}
}

func TestRoundUpSecond(t *testing.T) {
	tests := map[time.Duration]time.Duration{
		time.Millisecond:        time.Second,
		time.Second:             time.Second,
		1500 * time.Millisecond: 2 * time.Second,
	}
	for in, want := range tests {
		if got := roundUpSecond(in); got != want {
			t.Errorf("roundUpSecond(%v) = %v, want %v", in, got, want)
		}
	}
}
