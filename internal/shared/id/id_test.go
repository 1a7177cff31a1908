package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestNewWindowID(t *testing.T) {
	id := NewWindowID()

	if !strings.HasPrefix(id.String(), "win_") {
		t.Errorf("Window ID should start with 'win_', got: %s", id)
	}
	if !IsWindowID(id.String()) {
		t.Errorf("Expected %s to be a window ID", id)
	}
}

func TestNewWidgetIDFormat(t *testing.T) {
	id := NewWidgetID()

	if !strings.HasPrefix(id.String(), "widget-") {
		t.Fatalf("Widget ID should start with 'widget-', got: %s", id)
	}
	if _, ok := StampOf(id.String()); !ok {
		t.Errorf("Widget ID should end in a timestamp, got: %s", id)
	}
}

func TestStampNeverRepeatsUnderFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	gen := NewGeneratorWithClock(func() time.Time { return frozen })

	first := gen.Stamp()
	second := gen.Stamp()
	third := gen.Stamp()

	if first != 1_700_000_000_000 {
		t.Errorf("Expected first stamp to equal the clock, got %d", first)
	}
	if second != first+1 || third != second+1 {
		t.Errorf("Expected strictly increasing stamps, got %d %d %d", first, second, third)
	}
}

func TestStampConcurrentUniqueness(t *testing.T) {
	gen := NewGenerator()
	const n = 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.GenerateStamped(WidgetPrefix)
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("Expected %d unique ids, got %d", n, len(seen))
	}
}

func TestStampOf(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"widget-1700000000000", 1700000000000, true},
		{"widget-", 0, false},
		{"clock", 0, false},
		{"widget-abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := StampOf(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("StampOf(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
