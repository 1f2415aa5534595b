package local_test

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage"
	storageconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/storage/config"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage/local"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
)

func TestAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	conn, err := local.NewAdapter(storageconfig.StorageConfig{BaseDir: filepath.Join(t.TempDir(), "root"), BucketName: "exports"}, "export")
	require.NoError(t, err)

	require.NoError(t, conn.Upload(ctx, "", "releases/2024/a.parquet", strings.NewReader("abc"), "application/octet-stream"))
	require.NoError(t, conn.Upload(ctx, "", "releases/2024/b.parquet", strings.NewReader("de"), "application/octet-stream"))
	require.NoError(t, conn.Upload(ctx, "", "other/c.txt", strings.NewReader("f"), "text/plain"))

	r, err := conn.Download(ctx, "exports", "releases/2024/a.parquet")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "abc", string(data))

	var names []string
	require.NoError(t, conn.ListObjects(ctx, "", "releases/", func(name string) error {
		names = append(names, name)
		return nil
	}))
	assert.Equal(t, []string{"releases/2024/a.parquet", "releases/2024/b.parquet"}, names)

	require.NoError(t, conn.DeleteObject(ctx, "", "releases/2024/a.parquet"))
	require.NoError(t, conn.DeleteObject(ctx, "", "releases/2024/a.parquet"), "deleting a missing object is not an error")
	_, err = conn.Download(ctx, "", "releases/2024/a.parquet")
	assert.Error(t, err)
}

func TestAdapter_RejectsPathsOutsideBaseDir(t *testing.T) {
	conn, err := local.NewAdapter(storageconfig.StorageConfig{BaseDir: t.TempDir()}, "export")
	require.NoError(t, err)
	err = conn.Upload(context.Background(), "", "../escape.txt", strings.NewReader("x"), "text/plain")
	assert.ErrorContains(t, err, "outside of BaseDir")
}

func TestAdapter_RequiresBaseDir(t *testing.T) {
	_, err := local.NewAdapter(storageconfig.StorageConfig{}, "export")
	assert.ErrorContains(t, err, "BaseDir must be specified")
}

func TestConnectionResolver_DispatchesByType(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Intact.StorageConfigs["export"] = map[string]interface{}{"type": "local", "base_dir": t.TempDir()}
	cfg.Intact.StorageConfigs["archive"] = map[string]interface{}{"type": "s3"}

	r := storage.NewConnectionResolver(storage.ResolverParams{
		Config:    cfg,
		Providers: []storage.StorageProvider{local.NewProvider(cfg)},
	})
	ctx := context.Background()

	conn, err := r.ResolveStorageConnection(ctx, "export")
	require.NoError(t, err)
	assert.Equal(t, "local", conn.Type())
	again, err := r.ResolveStorageConnection(ctx, "export")
	require.NoError(t, err)
	assert.Same(t, conn, again)

	_, err = r.ResolveStorageConnection(ctx, "archive")
	assert.ErrorContains(t, err, "no storage provider found for type 's3'")
	_, err = r.ResolveStorageConnection(ctx, "missing")
	assert.ErrorContains(t, err, "storage configuration 'missing' not found")

	assert.NoError(t, r.CloseAll())
}
