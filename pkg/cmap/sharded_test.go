package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{8, 8},
		{64, 64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[int](tt.input)
			if got := m.ShardCount(); got != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	m := New[int]()

	if _, replaced := m.Set("key1", 100); replaced {
		t.Error("first Set should not report a previous value")
	}
	old, replaced := m.Set("key1", 200)
	if !replaced || old != 100 {
		t.Errorf("Set() = %d, %v; want 100, true", old, replaced)
	}

	if v, ok := m.Get("key1"); !ok || v != 200 {
		t.Errorf("Get(key1) = %d, %v; want 200, true", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) should return false")
	}
}

func TestCompute(t *testing.T) {
	m := New[int]()

	m.Compute("counter", func(old int, exists bool) (int, bool) {
		if exists {
			t.Error("counter should not exist yet")
		}
		return 1, true
	})
	m.Compute("counter", func(old int, exists bool) (int, bool) {
		return old + 1, true
	})
	if v, _ := m.Get("counter"); v != 2 {
		t.Errorf("counter = %d, want 2", v)
	}

	m.Compute("counter", func(int, bool) (int, bool) { return 0, false })
	if _, ok := m.Get("counter"); ok {
		t.Error("Compute with keep=false should remove the key")
	}
}

func TestRemoveIf(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)

	if _, ok := m.RemoveIf("a", func(v int) bool { return v == 2 }); ok {
		t.Error("RemoveIf should keep a value that fails the condition")
	}
	if v, ok := m.RemoveIf("a", func(v int) bool { return v == 1 }); !ok || v != 1 {
		t.Errorf("RemoveIf() = %d, %v; want 1, true", v, ok)
	}
	if _, ok := m.Remove("a"); ok {
		t.Error("Remove of absent key should return false")
	}
}

func TestDrain(t *testing.T) {
	m := NewWithShards[int](4)
	for i := 0; i < 20; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	drained := 0
	m.Drain(func(string, int) { drained++ })

	if drained != 20 {
		t.Errorf("drained = %d, want 20", drained)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after Drain, want 0", m.Count())
	}
}

func TestRangeAndKeys(t *testing.T) {
	m := New[int]()
	m.Set("b", 2)
	m.Set("a", 1)
	m.Set("c", 3)

	keys := m.Keys()
	sort.Strings(keys)
	if fmt.Sprint(keys) != "[a b c]" {
		t.Errorf("Keys() = %v", keys)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Range should stop after callback returns false, visited %d", visited)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("g%d-%d", g, i)
				m.Set(key, i)
				m.Get(key)
				if i%2 == 0 {
					m.Remove(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if got := m.Count(); got != 8*100 {
		t.Errorf("Count() = %d, want %d", got, 8*100)
	}
}
