// internal/storage/archive/localfs_test.go
package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte(`[{"close":185.6}]`)

	require.NoError(t, fs.Write(ctx, "history/yahoo/AAPL/a.json", data))
	require.NoError(t, fs.Write(ctx, "history/yahoo/AAPL/a.json", data)) // overwrite

	got, err := fs.Read(ctx, "history/yahoo/AAPL/a.json")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalFS_ReadMissing(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	_, err := fs.Read(context.Background(), "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFS_Exists(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	exists, err := fs.Exists(ctx, "nonexistent.json")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, fs.Write(ctx, "exists.json", []byte("{}")))
	exists, _ = fs.Exists(ctx, "exists.json")
	assert.True(t, exists)
}

func TestLocalFS_List(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "history/yahoo/MSFT/b.json", []byte("b"))
	fs.Write(ctx, "history/yahoo/AAPL/a.json", []byte("a"))
	fs.Write(ctx, "other/c.json", []byte("c"))

	paths, err := fs.List(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, []string{"history/yahoo/AAPL/a.json", "history/yahoo/MSFT/b.json"}, paths)

	paths, err = fs.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalFS_Delete(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Write(ctx, "a.json", []byte("a"))
	require.NoError(t, fs.Delete(ctx, "a.json"))
	require.NoError(t, fs.Delete(ctx, "a.json"), "deleting twice is not an error")

	exists, _ := fs.Exists(ctx, "a.json")
	assert.False(t, exists)
}

func TestLocalFS_RejectsEscape(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	err := fs.Write(context.Background(), "../outside.json", []byte("x"))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(Config{Type: "localfs", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalFS{}, s)

	_, err = New(Config{Type: "ftp"})
	assert.Error(t, err)
}
