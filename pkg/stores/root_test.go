package stores

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/internal/mockapi"
	"github.com/vango-dev/usershell/pkg/api"
	"github.com/vango-dev/usershell/pkg/httpclient"
	"github.com/vango-dev/usershell/pkg/storage"
)

func newRoot(t *testing.T, s storage.Storage) *Root {
	t.Helper()
	r, err := NewRoot(context.Background(), RootOptions{API: &fakeAPI{}, Storage: s})
	require.NoError(t, err)
	return r
}

func TestLocaleToggleSurvivesReload(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()

	first := newRoot(t, mem)
	assert.Equal(t, LocaleZH, first.Locale.Locale())
	first.Locale.Toggle()
	require.NoError(t, first.Close())

	second := newRoot(t, mem)
	defer second.Close()
	assert.Equal(t, LocaleEN, second.Locale.Locale())
}

func TestCounterRoundTripOnFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	fs, err := storage.NewFile(dir)
	require.NoError(t, err)

	first := newRoot(t, fs)
	first.Counter.Increment()
	first.Counter.Increment()
	first.Theme.Toggle()
	require.NoError(t, first.Flush(context.Background()))
	require.NoError(t, first.Close())
	require.NoError(t, fs.Close())

	reopened, err := storage.NewFile(dir)
	require.NoError(t, err)
	defer reopened.Close()

	second := newRoot(t, reopened)
	defer second.Close()
	assert.Equal(t, 2, second.Counter.Count())
	assert.Equal(t, []int{1, 2}, second.Counter.Get().History)
	assert.Equal(t, ThemeLight, second.Theme.Theme())
}

func TestMalformedSnapshotFallsBack(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, KeyTheme, []byte(`{"version":1,"state":{"theme":"purple"}}`)))
	require.NoError(t, mem.Set(ctx, KeyLocale, []byte(`not json at all`)))
	require.NoError(t, mem.Set(ctx, KeyCounter, []byte(`{"version":1,"state":{"count":"many","history":[3]}}`)))

	r := newRoot(t, mem)
	defer r.Close()

	assert.Equal(t, DefaultTheme, r.Theme.Theme())
	assert.Equal(t, DefaultLocale, r.Locale.Locale())
	assert.Equal(t, 0, r.Counter.Count())
	assert.Equal(t, []int{3}, r.Counter.Get().History)
}

func TestThemeApplierRunsAfterHydration(t *testing.T) {
	mem := storage.NewMemory()
	defer mem.Close()
	require.NoError(t, mem.Set(context.Background(), KeyTheme, []byte(`{"version":1,"state":{"theme":"light"}}`)))

	var applied []Theme
	r, err := NewRoot(context.Background(), RootOptions{
		Storage:      mem,
		ThemeApplier: func(th Theme) { applied = append(applied, th) },
	})
	require.NoError(t, err)
	defer r.Close()

	require.NotEmpty(t, applied)
	assert.Equal(t, ThemeLight, applied[len(applied)-1])
}

func TestRootWithoutStorage(t *testing.T) {
	r := newRoot(t, nil)
	r.Counter.Increment()
	assert.NoError(t, r.Flush(context.Background()))
	assert.NoError(t, r.Close())
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, isErr := rec.(error)
		require.True(t, isErr)
		assert.True(t, errors.HasCode(err, "E001"))
	}()

	r := newRoot(t, nil)
	got, ok := FromContext(WithRoot(ctx, r))
	assert.True(t, ok)
	assert.Same(t, r, got)
	assert.Same(t, r, MustFromContext(WithRoot(ctx, r)))

	MustFromContext(ctx)
}

func TestUserStoreAgainstBackend(t *testing.T) {
	backend := mockapi.New(mockapi.WithBcryptCost(bcrypt.MinCost))
	_, token, err := backend.AddUser(api.UserInfo{ID: "1", Username: "alice"}, "password")
	require.NoError(t, err)
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	mem := storage.NewMemory()
	defer mem.Close()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, KeyToken, []byte(token)))

	hc := httpclient.New(httpclient.Config{BaseURL: srv.URL},
		httpclient.WithInterceptors(httpclient.Bearer(httpclient.StorageToken(mem, KeyToken))))

	r, err := NewRoot(ctx, RootOptions{API: api.New(hc), Storage: mem})
	require.NoError(t, err)
	defer r.Close()

	info, err := r.User.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)

	_, err = r.User.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Hits("/user/info"))

	require.NoError(t, mem.Delete(ctx, KeyToken))
	_, err = r.User.Fetch(ctx, true)
	assert.True(t, httpclient.IsStatus(err, 401))
	assert.Equal(t, UserErrored, r.User.Get().Status)
}
