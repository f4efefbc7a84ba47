package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pastemark/pastemark/core/paste"
)

func TestLRUBasicOperations(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 3})

	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Remove = true, want false")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 2})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most recently used
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b not evicted, want least recently used dropped")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a evicted despite recent use")
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 2})

	c.Put("a", 1)
	c.Put("a", 10)

	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d, want 10", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 10, TTL: 10 * time.Millisecond})

	c.Put("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) before expiry = false, want true")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after TTL = true, want false")
	}
}

func TestLRUOnEvict(t *testing.T) {
	var evicted []interface{}
	c := NewLRUCache[string, int](Config{
		MaxSize: 1,
		OnEvict: func(key, value interface{}) {
			evicted = append(evicted, key)
		},
	})

	c.Put("a", 1)
	c.Put("b", 2)

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("evicted = %v, want [a]", evicted)
	}
}

func TestLRUStats(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 5})

	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Size != 1 || stats.MaxSize != 5 {
		t.Errorf("Size = %d, MaxSize = %d; want 1, 5", stats.Size, stats.MaxSize)
	}
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := NewLRUCache[int, int](Config{MaxSize: 100})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put(n*100+j, j)
				c.Get(n * 100)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 100 {
		t.Errorf("Len() = %d, want 100", c.Len())
	}
}

func TestResultCache(t *testing.T) {
	rc := NewDefaultResultCache()
	key := Key("<p>doc</p>", nil)

	if _, ok := rc.Get(key); ok {
		t.Error("Get on empty cache = true, want false")
	}

	rc.Put(key, "<p>annotated</p>")
	if got, ok := rc.Get(key); !ok || got != "<p>annotated</p>" {
		t.Errorf("Get() = %q, %v; want annotated doc, true", got, ok)
	}

	rc.Clear()
	if rc.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", rc.Len())
	}
}

func TestKeyDistinguishesInputs(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []paste.Event{{Text: "pasted text", Timestamp: base}}

	tests := []struct {
		name     string
		document string
		events   []paste.Event
	}{
		{"different document", "<p>other</p>", events},
		{"different event text", "<p>doc</p>", []paste.Event{{Text: "other text", Timestamp: base}}},
		{"different timestamp", "<p>doc</p>", []paste.Event{{Text: "pasted text", Timestamp: base.Add(time.Second)}}},
		{"extra event", "<p>doc</p>", append([]paste.Event{}, events[0], events[0])},
		{"no events", "<p>doc</p>", nil},
	}

	baseKey := Key("<p>doc</p>", events)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.document, tt.events); got == baseKey {
				t.Errorf("Key() = %q, want different from base", got)
			}
		})
	}

	if Key("<p>doc</p>", events) != baseKey {
		t.Error("Key() not deterministic for identical input")
	}
}

func TestKeyOrderSensitive(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := paste.Event{Text: "first", Timestamp: base}
	b := paste.Event{Text: "second", Timestamp: base.Add(time.Minute)}

	if Key("d", []paste.Event{a, b}) == Key("d", []paste.Event{b, a}) {
		t.Error("Key() ignores event order, want order-sensitive")
	}
}

func BenchmarkLRUGet(b *testing.B) {
	c := NewLRUCache[string, string](Config{MaxSize: 1000})
	for i := 0; i < 1000; i++ {
		c.Put(fmt.Sprintf("key-%d", i), "value")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("key-%d", i%1000))
	}
}
