package store

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	s := New(16)

	s.Set("foo", "bar")

	val, ok := s.Get("foo")
	if !ok || val != "bar" {
		t.Errorf("Get(foo) = (%q, %v), want (%q, true)", val, ok, "bar")
	}
}

func TestGetMissing(t *testing.T) {
	s := New(16)

	if _, ok := s.Get("never-set"); ok {
		t.Error("Get on a key never set should report absent")
	}
}

func TestSetOverwrites(t *testing.T) {
	s := New(16)

	s.Set("key", "first")
	s.Set("key", "second")

	val, ok := s.Get("key")
	if !ok || val != "second" {
		t.Errorf("Get(key) = (%q, %v), want (%q, true)", val, ok, "second")
	}
}

func TestTTLExpiry(t *testing.T) {
	s := New(16)

	s.SetWithTTL("short", "lived", 10*time.Millisecond)

	if val, ok := s.Get("short"); !ok || val != "lived" {
		t.Errorf("Get before expiry = (%q, %v), want (%q, true)", val, ok, "lived")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := s.Get("short"); ok {
		t.Error("Get after expiry should report absent")
	}
}

func TestZeroTTLExpiresImmediately(t *testing.T) {
	s := New(16)

	s.SetWithTTL("instant", "gone", 0)
	time.Sleep(time.Millisecond)

	if _, ok := s.Get("instant"); ok {
		t.Error("zero TTL should expire on the first read after any delay")
	}
}

func TestLazyExpirationKeepsEntry(t *testing.T) {
	s := New(16)

	s.SetWithTTL("stale", "data", 0)
	time.Sleep(time.Millisecond)

	// Expired reads do not evict.
	if _, ok := s.Get("stale"); ok {
		t.Fatal("entry should read as absent")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (expired entry lingers until overwritten)", s.Len())
	}
}

func TestOverwriteClearsTTL(t *testing.T) {
	s := New(16)

	s.SetWithTTL("key", "expiring", 5*time.Millisecond)
	s.Set("key", "persistent")

	time.Sleep(10 * time.Millisecond)

	val, ok := s.Get("key")
	if !ok || val != "persistent" {
		t.Errorf("Get(key) = (%q, %v), want (%q, true): overwrite must replace the timer", val, ok, "persistent")
	}
}

func TestEntryExpired(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		expired bool
	}{
		{
			name:    "no timer",
			entry:   Entry{Data: "x", SetAt: time.Now().Add(-time.Hour)},
			expired: false,
		},
		{
			name:    "timer elapsed",
			entry:   Entry{Data: "x", SetAt: time.Now().Add(-time.Second), TTL: 500 * time.Millisecond, HasTTL: true},
			expired: true,
		},
		{
			name:    "timer pending",
			entry:   Entry{Data: "x", SetAt: time.Now(), TTL: time.Hour, HasTTL: true},
			expired: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Expired(); got != tt.expired {
				t.Errorf("Expired() = %v, want %v", got, tt.expired)
			}
		})
	}
}

func TestConcurrentLastWriteWins(t *testing.T) {
	s := New(16)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set("contested", fmt.Sprintf("writer-%d", i))
		}(i)
	}
	wg.Wait()

	val, ok := s.Get("contested")
	if !ok {
		t.Fatal("contested key should exist")
	}

	found := false
	for i := 0; i < writers; i++ {
		if val == fmt.Sprintf("writer-%d", i) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("final value %q is not one of the written values", val)
	}
}
