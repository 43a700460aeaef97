package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ipmon/internal/config"
	"ipmon/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "public_ip.txt")
	s := NewFileStore(path, zaptest.NewLogger(t))

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, types.ErrIPNotFound)

	require.NoError(t, s.Save(ctx, "1.2.3.4"))
	ip, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)

	require.NoError(t, s.Save(ctx, "5.6.7.8"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "5.6.7.8", string(data), "file is overwritten wholesale")

	assert.NoError(t, s.Close())
}

func TestFileStore_TrimsAndBlank(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ip.txt")
	s := NewFileStore(path, nil)

	require.NoError(t, os.WriteFile(path, []byte("  1.2.3.4\n"), 0644))
	ip, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)

	require.NoError(t, os.WriteFile(path, []byte("\n"), 0644))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, types.ErrIPNotFound)
}

func TestFileStore_ReadErrorIsNotAbsent(t *testing.T) {
	// A directory in place of the file is a read error, not a missing value.
	dir := t.TempDir()
	s := NewFileStore(dir, nil)

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrIPNotFound)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ipmon", "ip.txt")
	s := NewFileStore(path, nil)

	require.NoError(t, s.Save(context.Background(), "1.2.3.4"))
	assert.FileExists(t, path)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, &config.StoreConfig{Backend: "file", File: filepath.Join(t.TempDir(), "ip")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = New(ctx, &config.StoreConfig{Backend: "s3"}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidBackend)

	_, err = New(ctx, &config.StoreConfig{Backend: "redis"}, nil)
	assert.Error(t, err)
}
