package app_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/internal/app"
	"github.com/tigerroll/intactdb/pkg/intact/component/migration"
	config "github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/core/lifecycle"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
)

func options(t *testing.T) app.Options {
	t.Helper()
	dir := t.TempDir()
	embedded := fmt.Sprintf(`
intact:
  system:
    logging:
      level: ERROR
  database:
    store:
      type: sqlite
      database: %s
      log_level: SILENT
`, filepath.Join(dir, "store.db"))
	return app.Options{
		EmbeddedConfig: config.EmbeddedConfig(embedded),
		EnvFilePath:    filepath.Join(dir, "absent.env"),
		DBAdaptors:     []string{"sqlite", "oracle"},
	}
}

func TestRun_ResolvesStoreComponents(t *testing.T) {
	var (
		migrator *migration.Migrator
		manager  *lifecycle.Manager
		tm       tx.TransactionManager
		stats    *metrics.Statistics
	)
	ran := false
	err := app.Run(context.Background(), options(t), func(ctx context.Context) error {
		ran = true
		return migrator.Up(ctx)
	}, &migrator, &manager, &tm, &stats)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.NotNil(t, manager)
	assert.NotNil(t, tm)
	assert.NotNil(t, stats)
}

func TestRun_ReturnsTaskError(t *testing.T) {
	boom := errors.New("boom")
	err := app.Run(context.Background(), options(t), func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRun_ConfigureAndMetricsAddr(t *testing.T) {
	opts := options(t)
	opts.MetricsAddr = "127.0.0.1:0"
	opts.Configure = func(cfg *config.Config) { cfg.Intact.Synchronizer.PageSize = 7 }

	var cfg *config.Config
	require.NoError(t, app.Run(context.Background(), opts, func(ctx context.Context) error { return nil }, &cfg))
	assert.Equal(t, 7, cfg.Intact.Synchronizer.PageSize)
	assert.True(t, cfg.Intact.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:0", cfg.Intact.Metrics.ListenAddress)
}

func TestRun_UnknownStoreConnectionFailsToBuild(t *testing.T) {
	opts := options(t)
	opts.Configure = func(cfg *config.Config) { cfg.Intact.Infrastructure.StoreDBRef = "missing" }

	var tm tx.TransactionManager
	err := app.RunWith(context.Background(), opts, []fx.Option{fx.NopLogger}, func(ctx context.Context) error {
		t.Fatal("task must not run")
		return nil
	}, &tm)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build application")
}
