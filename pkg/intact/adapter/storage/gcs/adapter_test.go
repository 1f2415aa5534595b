package gcs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	storageconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/storage/config"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage/gcs"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
)

func TestNewAdapter_RequiresBucket(t *testing.T) {
	_, err := gcs.NewAdapter(storageconfig.StorageConfig{Type: "gcs"}, "export", option.WithoutAuthentication())
	assert.ErrorContains(t, err, "bucket_name must be specified")
}

func TestNewAdapter_AnonymousClient(t *testing.T) {
	a, err := gcs.NewAdapter(storageconfig.StorageConfig{Type: "gcs", BucketName: "intact-releases"}, "export", option.WithoutAuthentication())
	require.NoError(t, err)
	assert.Equal(t, "gcs", a.Type())
	assert.Equal(t, "export", a.Name())
	assert.NoError(t, a.Close())
}

func TestProvider_RejectsTypeMismatch(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Intact.StorageConfigs["export"] = map[string]interface{}{"type": "local", "base_dir": t.TempDir()}
	_, err := gcs.NewProvider(cfg).GetConnection("export")
	assert.ErrorContains(t, err, "expected 'gcs', got 'local'")
}
