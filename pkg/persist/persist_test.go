package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/pkg/reactive"
	"github.com/vango-dev/usershell/pkg/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mode string

func (m *mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "light", "dark":
		*m = mode(text)
		return nil
	}
	return fmt.Errorf("invalid mode %q", text)
}

type prefs struct {
	Mode    mode   `json:"mode"`
	Count   int    `json:"count"`
	History []int  `json:"history"`
	Scratch string `json:"scratch"`
}

func defaults() prefs {
	return prefs{Mode: "dark", History: []int{}}
}

// countingStorage records Set calls and can inject failures.
type countingStorage struct {
	storage.Storage

	mu      sync.Mutex
	sets    int
	failGet bool
	failSet bool
}

func (c *countingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if c.failGet {
		return nil, fmt.Errorf("backend unavailable")
	}
	return c.Storage.Get(ctx, key)
}

func (c *countingStorage) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	if c.failSet {
		return fmt.Errorf("quota exceeded")
	}
	return c.Storage.Set(ctx, key, value)
}

func (c *countingStorage) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

func attach(t *testing.T, s storage.Storage, fields ...string) (*reactive.Store[prefs], *Persister) {
	t.Helper()
	store := reactive.New("Prefs", defaults())
	p, err := Attach(context.Background(), store, Options{
		Name:    "Prefs",
		Fields:  fields,
		Storage: s,
	})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return store, p
}

func TestRoundTripKeepsOnlyWhitelistedFields(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()

	store, p := attach(t, mem, "mode", "count", "history")
	store.Update("edit", func(s *prefs) {
		s.Mode = "light"
		s.Count = 3
		s.History = []int{1, 2, 3}
		s.Scratch = "not persisted"
	})
	require.NoError(t, p.Flush(context.Background()))
	require.NoError(t, p.Close())

	raw, err := mem.Get(context.Background(), "Prefs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"state":{"mode":"light","count":3,"history":[1,2,3]}}`, string(raw))

	fresh, _ := attach(t, mem, "mode", "count", "history")
	got := fresh.Get()
	assert.Equal(t, mode("light"), got.Mode)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, []int{1, 2, 3}, got.History)
	assert.Empty(t, got.Scratch)
}

func TestInvalidFieldFallsBackToDefault(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()

	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "Prefs", []byte(
		`{"version":1,"state":{"mode":"purple","count":"seven","history":[4,5],"unknown":true}}`,
	)))

	store, _ := attach(t, mem, "mode", "count", "history")
	got := store.Get()
	assert.Equal(t, mode("dark"), got.Mode)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, []int{4, 5}, got.History)
}

func TestUnusableSnapshotKeepsDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"wrong shape", `["mode","light"]`},
		{"version mismatch", `{"version":7,"state":{"mode":"light"}}`},
		{"null state", `{"version":1,"state":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := storage.NewMemory()
			defer mem.Close()
			require.NoError(t, mem.Set(context.Background(), "Prefs", []byte(tt.raw)))

			store, _ := attach(t, mem, "mode", "count")
			assert.Equal(t, defaults(), store.Get())
		})
	}
}

func TestStorageFailuresAreSwallowed(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()
	cs := &countingStorage{Storage: mem, failGet: true, failSet: true}

	store, p := attach(t, cs, "count")
	assert.Equal(t, defaults(), store.Get())

	assert.True(t, store.Update("inc", func(s *prefs) { s.Count++ }))
	require.NoError(t, p.Flush(context.Background()))

	assert.Equal(t, 1, store.Get().Count)
	assert.Equal(t, 1, cs.Sets())
}

func TestUnchangedSnapshotIsNotRewritten(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()
	cs := &countingStorage{Storage: mem}

	store, p := attach(t, cs, "count")
	store.Update("scratch", func(s *prefs) { s.Scratch = "a" })
	require.NoError(t, p.Flush(context.Background()))
	assert.Equal(t, 1, cs.Sets(), "first change writes the snapshot")

	store.Update("scratch", func(s *prefs) { s.Scratch = "b" })
	require.NoError(t, p.Flush(context.Background()))
	assert.Equal(t, 1, cs.Sets(), "non-persisted change leaves the snapshot alone")

	store.Update("inc", func(s *prefs) { s.Count++ })
	require.NoError(t, p.Flush(context.Background()))
	assert.Equal(t, 2, cs.Sets())
}

func TestLatestStateWins(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()

	store, p := attach(t, mem, "count")
	for i := 0; i < 100; i++ {
		store.Update("inc", func(s *prefs) { s.Count++ })
	}
	require.NoError(t, p.Flush(context.Background()))

	raw, err := mem.Get(context.Background(), "Prefs")
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.JSONEq(t, `100`, string(snap.State["count"]))
}

func TestCloseWritesPendingChange(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()

	store, p := attach(t, mem, "count")
	store.Update("inc", func(s *prefs) { s.Count = 42 })
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	raw, err := mem.Get(context.Background(), "Prefs")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"count":42`)

	store.Update("inc", func(s *prefs) { s.Count = 43 })
	assert.NoError(t, p.Flush(context.Background()))
	raw, _ = mem.Get(context.Background(), "Prefs")
	assert.Contains(t, string(raw), `"count":42`, "detached store no longer persists")
}

func TestExternalChangeIsReapplied(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()

	first, p1 := attach(t, mem, "mode")
	second, _ := attach(t, mem, "mode")

	first.Update("toggle", func(s *prefs) { s.Mode = "light" })
	require.NoError(t, p1.Flush(context.Background()))

	assert.Equal(t, mode("light"), second.Get().Mode)
}

func TestAttachValidatesOptions(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()
	ctx := context.Background()

	store := reactive.New("Prefs", defaults())

	_, err := Attach(ctx, store, Options{Name: "Prefs", Fields: []string{"missing"}, Storage: mem})
	assert.True(t, errors.HasCode(err, "E004"))

	_, err = Attach(ctx, store, Options{Fields: []string{"mode"}, Storage: mem})
	assert.True(t, errors.HasCode(err, "E004"))

	_, err = Attach(ctx, store, Options{Name: "Prefs", Fields: []string{"mode"}})
	assert.True(t, errors.HasCode(err, "E081"))

	scalar := reactive.New("Scalar", 0)
	_, err = Attach(ctx, scalar, Options{Name: "Scalar", Fields: []string{"value"}, Storage: mem})
	assert.True(t, errors.HasCode(err, "E004"))
}
