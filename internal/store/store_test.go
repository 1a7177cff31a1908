package store

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	v, err := s.Get(ctx, KeyWidgets)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v))

	v, err = s.Get(ctx, KeyWidgetBasePath)
	require.NoError(t, err)
	assert.JSONEq(t, `""`, string(v))

	_, err = s.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetRejectsInvalidJSON(t *testing.T) {
	s := NewMemory()
	err := s.Set(context.Background(), KeyWidgets, []byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestMemoryDeleteRestoresDefault(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Set(ctx, KeyWidgets, []byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Set(ctx, "custom", []byte(`1`)))

	require.NoError(t, s.Delete(ctx, KeyWidgets))
	require.NoError(t, s.Delete(ctx, "custom"))

	v, err := s.Get(ctx, KeyWidgets)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v))

	_, err = s.Get(ctx, "custom")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "k", []byte(`"abc"`)))

	v, _ := s.Get(ctx, "k")
	v[1] = 'z'

	again, _ := s.Get(ctx, "k")
	assert.Equal(t, `"abc"`, string(again))
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	type item struct {
		Name string `json:"name"`
	}
	require.NoError(t, SetJSON(ctx, s, "items", []item{{Name: "Clock"}}))

	var got []item
	require.NoError(t, GetJSON(ctx, s, "items", &got))
	assert.Equal(t, []item{{Name: "Clock"}}, got)
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	f, err := OpenFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, KeyWidgets, []byte(`[{"id":"widget-1","name":"Clock"}]`)))
	require.NoError(t, f.Set(ctx, KeyWidgetBasePath, []byte(`"/home/me/widgets"`)))

	reopened, err := OpenFile(path, nil)
	require.NoError(t, err)

	v, err := reopened.Get(ctx, KeyWidgets)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"widget-1","name":"Clock"}]`, string(v))

	v, err = reopened.Get(ctx, KeyWidgetBasePath)
	require.NoError(t, err)
	assert.JSONEq(t, `"/home/me/widgets"`, string(v))

	v, err = reopened.Get(ctx, KeyModules)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v))
}

func TestFileCorruptFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"widgets": [`), 0o600))

	f, err := OpenFile(path, nil)
	require.NoError(t, err)

	v, err := f.Get(ctx, KeyWidgets)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v))

	_, err = os.Stat(path + ".corrupt")
	assert.NoError(t, err)
}

func TestFileLeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	f, err := OpenFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, KeyWidgets, []byte(`[]`)))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileKeysAndDelete(t *testing.T) {
	ctx := context.Background()
	f, err := OpenFile(filepath.Join(t.TempDir(), "store.json"), nil)
	require.NoError(t, err)

	require.NoError(t, f.Set(ctx, KeyTheme, []byte(`{"id":"dark"}`)))
	keys, err := f.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyTheme, KeyModules, KeyWidgetBasePath, KeyWidgets}, keys)

	require.NoError(t, f.Delete(ctx, KeyTheme))
	_, err = f.Get(ctx, KeyTheme)
	assert.ErrorIs(t, err, ErrNotFound)
}

// slowStore blocks every call until its context is done
type slowStore struct {
	Store
	calls atomic.Int32
}

func (s *slowStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGuardedTimeout(t *testing.T) {
	g := NewGuarded(&slowStore{Store: NewMemory()}, GuardOptions{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := g.Get(context.Background(), KeyWidgets)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGuardedOpensAfterFailures(t *testing.T) {
	inner := &slowStore{Store: NewMemory()}
	g := NewGuarded(inner, GuardOptions{
		Timeout:     5 * time.Millisecond,
		MaxFailures: 2,
		OpenTimeout: time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, _ = g.Get(context.Background(), KeyWidgets)
	}
	_, err := g.Get(context.Background(), KeyWidgets)
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestGuardedNotFoundDoesNotTrip(t *testing.T) {
	var ops []string
	g := NewGuarded(NewMemory(), GuardOptions{
		MaxFailures: 1,
		Observer: func(op string, _ time.Duration, _ error) {
			ops = append(ops, op)
		},
	})

	for i := 0; i < 3; i++ {
		_, err := g.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}

	v, err := g.Get(context.Background(), KeyWidgets)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v))
	assert.Equal(t, []string{"get", "get", "get", "get"}, ops)
}
