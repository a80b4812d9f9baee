package storage

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/usershell/internal/errors"
)

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.puts = append(f.puts, *in.Key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

// backends returns one fresh instance of every backend.
func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)

	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)

	return map[string]Storage{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
		"s3":     NewS3(newFakeS3(), "bucket", "shell/"),
	}
}

func TestStorageConformance(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			got, err := s.Get(ctx, "ThemeStore")
			require.NoError(t, err)
			assert.Nil(t, got, "missing key returns nil, nil")

			require.NoError(t, s.Set(ctx, "ThemeStore", []byte(`{"theme":"light"}`)))
			got, err = s.Get(ctx, "ThemeStore")
			require.NoError(t, err)
			assert.Equal(t, `{"theme":"light"}`, string(got))

			require.NoError(t, s.Set(ctx, "ThemeStore", []byte(`{"theme":"dark"}`)))
			got, err = s.Get(ctx, "ThemeStore")
			require.NoError(t, err)
			assert.Equal(t, `{"theme":"dark"}`, string(got), "Set fully overwrites")

			require.NoError(t, s.Delete(ctx, "ThemeStore"))
			got, err = s.Get(ctx, "ThemeStore")
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, s.Delete(ctx, "never-set"), "deleting a missing key is not an error")

			require.NoError(t, s.Close())
			require.NoError(t, s.Close(), "Close is idempotent")
			_, err = s.Get(ctx, "ThemeStore")
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'

	got, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, 1, m.Len())
}

func TestMemoryStorageWatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	var calls int
	stop, err := m.Watch("token", func() { calls++ })
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "token", []byte("abc")))
	require.NoError(t, m.Set(ctx, "other", []byte("x")))
	require.NoError(t, m.Delete(ctx, "token"))
	require.NoError(t, m.Delete(ctx, "token"))
	assert.Equal(t, 2, calls)

	stop()
	require.NoError(t, m.Set(ctx, "token", []byte("def")))
	assert.Equal(t, 2, calls)
}

func TestFileStorageRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)
	defer f.Close()

	for _, key := range []string{"", "../escape", "a/b", ".hidden", tempPrefix + "x"} {
		assert.ErrorIs(t, f.Set(ctx, key, []byte("x")), ErrInvalidKey, key)
	}
}

func TestFileStorageWatchSeesOtherWriters(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	reader, err := NewFile(dir)
	require.NoError(t, err)
	defer reader.Close()

	writer, err := NewFile(dir)
	require.NoError(t, err)
	defer writer.Close()

	changed := make(chan struct{}, 8)
	stop, err := reader.Watch("LocaleStore", func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer stop()

	require.NoError(t, writer.Set(ctx, "LocaleStore", []byte(`{"locale":"en"}`)))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for watch notification")
	}

	got, err := reader.Get(ctx, "LocaleStore")
	require.NoError(t, err)
	assert.Equal(t, `{"locale":"en"}`, string(got))
}

func TestS3StorageUsesPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	s := NewS3(fake, "bucket", "shell/")

	require.NoError(t, s.Set(ctx, "CounterStore", []byte(`{}`)))
	assert.Equal(t, []string{"shell/CounterStore.json"}, fake.puts)

	_, err := s.Get(ctx, "../x")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)
	s.Close()

	s, err = Open(ctx, Options{Driver: DriverFile, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStorage{}, s)
	s.Close()

	s, err = Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "nested")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStorage{}, s)
	s.Close()

	_, err = Open(ctx, Options{Driver: DriverS3})
	assert.True(t, errors.HasCode(err, "E081"))

	_, err = Open(ctx, Options{Driver: "redis"})
	assert.True(t, errors.HasCode(err, "E080"))
}
