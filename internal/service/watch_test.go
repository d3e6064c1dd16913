package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hoard/internal/metrics"
	"github.com/zjrosen/hoard/internal/store"
	fixtures "github.com/zjrosen/hoard/internal/testutil"
)

func TestWatchAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	fs, err := store.NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initial := fixtures.NewBuilder(t).WithAsset("one", fixtures.Name("One")).Build()
	require.NoError(t, fs.Save(ctx, initial))

	svc, err := New(Options{Store: fs, Metrics: metrics.New()})
	require.NoError(t, err)
	require.NoError(t, svc.Load(ctx))
	require.Equal(t, 1, svc.Catalog().Len())

	done := make(chan error, 1)
	go func() { done <- svc.WatchAndReload(ctx, path, 20*time.Millisecond) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	other, err := store.NewFileStore(path)
	require.NoError(t, err)
	updated := fixtures.NewBuilder(t).
		WithAsset("one", fixtures.Name("One")).
		WithAsset("two", fixtures.Name("Two")).
		Build()
	require.NoError(t, other.Save(ctx, updated))

	require.Eventually(t, func() bool { return svc.Catalog().Len() == 2 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WatchAndReload did not return after cancel")
	}
}

func TestWatchAndReload_KeepsStateOnBadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	fs, err := store.NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, fs.Save(ctx, fixtures.NewBuilder(t).WithAsset("one").Build()))

	svc, err := New(Options{Store: fs})
	require.NoError(t, err)
	require.NoError(t, svc.Load(ctx))

	go func() { _ = svc.WatchAndReload(ctx, path, 20*time.Millisecond) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("schema_version: 9.0.0\nassets: []\n"), 0o600))

	// The reload is rejected by the schema gate, so the catalog keeps its asset.
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, 1, svc.Catalog().Len())
}

func TestWatchAndReload_MissingDirectory(t *testing.T) {
	svc, err := New(Options{Store: store.NewMemory()})
	require.NoError(t, err)

	err = svc.WatchAndReload(context.Background(), filepath.Join(t.TempDir(), "no", "such", "inventory.yaml"), 0)
	require.Error(t, err)
}
