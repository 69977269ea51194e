package sink

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreWritesSnapshot(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := s.Store(context.Background(), "https://example.com/articles/what-are-notes", []byte("<html></html>"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(data))
}

func TestStoreOverwritesSameURL(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := s.Store(ctx, "https://example.com/a", []byte("v1"))
	require.NoError(t, err)
	second, err := s.Store(ctx, "https://example.com/a", []byte("v2"))
	require.NoError(t, err)
	require.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestNewRequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := New("  ")
	require.Error(t, err)
}

func TestFileNameDegradesGracefully(t *testing.T) {
	t.Parallel()

	name := fileName("::")
	require.True(t, strings.HasPrefix(name, "snapshot-"))
	require.True(t, strings.HasSuffix(name, ".html"))
}

func TestFileNameDistinctForSanitizeCollisions(t *testing.T) {
	t.Parallel()

	// Both sanitize to the same stem; the hash suffix must keep them apart.
	a := fileName("https://example.com/notes")
	b := fileName("https://example.com/no_tes")
	require.NotEqual(t, a, b)

	// Same URL stays stable so re-ingestion overwrites its own snapshot.
	require.Equal(t, a, fileName("https://example.com/notes"))
}

func TestStoreDistinctURLsDoNotOverwrite(t *testing.T) {
	t.Parallel()

	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := s.Store(ctx, "https://example.com/notes", []byte("first"))
	require.NoError(t, err)
	second, err := s.Store(ctx, "https://example.com/no_tes", []byte("second"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, "first", string(data))
}
