// Package id provides centralized ID generation for the backend.
//
// Two formats are in use:
//   - Widget record ids: "widget-<unix millis>", kept for compatibility with
//     stores written by earlier shells. The generator never hands out the
//     same timestamp twice within a process.
//   - Window ids: prefixed ULIDs ("win_<ulid>"), lexicographically sortable
//     by creation time.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// WidgetID identifies a persisted widget record
type WidgetID string

// WindowID identifies a shell window instance
type WindowID string

// ModuleID identifies a persisted non-widget module
type ModuleID string

const (
	WidgetPrefix = "widget"
	ModulePrefix = "module"
	WindowPrefix = "win"
)

// Generator generates ULIDs and timestamp ids
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader

	stampMu   sync.Mutex
	lastStamp int64
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
		now:     time.Now,
	}
}

// NewGeneratorWithClock creates a generator with a custom clock.
// Useful for testing timestamp collisions.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{
		entropy: rand.Reader,
		now:     now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// Stamp returns a unix-millis timestamp strictly greater than any
// previously returned by this generator
func (g *Generator) Stamp() int64 {
	g.stampMu.Lock()
	defer g.stampMu.Unlock()

	ts := g.now().UnixMilli()
	if ts <= g.lastStamp {
		ts = g.lastStamp + 1
	}
	g.lastStamp = ts
	return ts
}

// GenerateStamped creates "<prefix>-<stamp>"
func (g *Generator) GenerateStamped(prefix string) string {
	return prefix + "-" + strconv.FormatInt(g.Stamp(), 10)
}

// NewWidgetID generates a new widget record ID
func NewWidgetID() WidgetID {
	return WidgetID(Default().GenerateStamped(WidgetPrefix))
}

// NewModuleID generates a new module ID
func NewModuleID() ModuleID {
	return ModuleID(Default().GenerateStamped(ModulePrefix))
}

// NewWindowID generates a new window ID
func NewWindowID() WindowID {
	return WindowID(Default().GenerateWithPrefix(WindowPrefix))
}

func (id WidgetID) String() string { return string(id) }
func (id WindowID) String() string { return string(id) }
func (id ModuleID) String() string { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// IsWindowID checks for the "win_<ulid>" shape
func IsWindowID(id string) bool {
	rest, ok := strings.CutPrefix(id, WindowPrefix+"_")
	return ok && IsValid(rest)
}

// StampOf extracts the timestamp from a stamped id such as "widget-1700000000000"
func StampOf(id string) (int64, bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 || i == len(id)-1 {
		return 0, false
	}
	ts, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
