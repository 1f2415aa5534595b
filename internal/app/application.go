// Package app assembles the curation store from its fx modules and runs one command against it.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	gormadapter "github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm/mysql"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm/postgres"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/database/gorm/sqlite"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage/gcs"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage/local"
	"github.com/tigerroll/intactdb/pkg/intact/component/export"
	"github.com/tigerroll/intactdb/pkg/intact/component/importer"
	"github.com/tigerroll/intactdb/pkg/intact/component/migration"
	config "github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/core/enrichment"
	"github.com/tigerroll/intactdb/pkg/intact/core/lifecycle"
	coremetrics "github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
	"github.com/tigerroll/intactdb/pkg/intact/infrastructure/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/infrastructure/synchronizer"
	logger "github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// Options carries the command-line inputs of a run.
type Options struct {
	EmbeddedConfig config.EmbeddedConfig
	EnvFilePath    string
	ConfigFilePath string
	// MetricsAddr overrides intact.metrics.listen_address and enables Prometheus when set.
	MetricsAddr string
	// DBAdaptors selects the dialect providers by name. Empty selects all of them.
	DBAdaptors []string
	// Configure adjusts the loaded configuration before any component reads it.
	Configure func(cfg *config.Config)
	// StopTimeout bounds the shutdown hooks. Zero uses 15 seconds.
	StopTimeout time.Duration
}

// DBProviderModules maps adaptor names to the modules registering their providers.
var DBProviderModules = map[string]fx.Option{
	"sqlite":   sqlite.Module,
	"postgres": postgres.Module,
	"mysql":    mysql.Module,
}

// dbProviderOptions returns the provider modules for names, warning on unknown ones.
func dbProviderOptions(names []string) []fx.Option {
	if len(names) == 0 {
		names = []string{"postgres", "mysql", "sqlite"}
	}
	options := make([]fx.Option, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if module, ok := DBProviderModules[name]; ok {
			options = append(options, module)
			logger.Debugf("DB Provider '%s' selected and registered.", name)
		} else {
			logger.Warnf("DB Provider '%s' is configured but not recognized/supported. Skipping.", name)
		}
	}
	return options
}

// Task is the work of one command. It runs between the start and the stop of the application.
type Task func(ctx context.Context) error

// NewStoreTransactionManager returns the transaction manager of the configured store connection.
func NewStoreTransactionManager(cfg *config.Config, resolver database.DBConnectionResolver, factory tx.TransactionManagerFactory) (tx.TransactionManager, error) {
	name := cfg.Intact.Infrastructure.StoreDBRef
	conn, err := resolver.ResolveDBConnection(context.Background(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store connection '%s': %w", name, err)
	}
	return factory.NewTransactionManager(conn), nil
}

// NewImporterStore exposes the Registry as the importer's view of the synchronizers.
func NewImporterStore(r *synchronizer.Registry) importer.Store {
	return r
}

// Modules returns every module of the store with the selected dialect providers. Components
// are constructed only when a command asks for them, so the export storage stays untouched by
// other commands.
func Modules(dbAdaptors []string) fx.Option {
	return fx.Options(
		logger.Module,
		config.Module,
		gormadapter.Module,
		fx.Options(dbProviderOptions(dbAdaptors)...),
		storage.Module,
		local.Module,
		gcs.Module,
		coremetrics.Module,
		metrics.Module,
		synchronizer.Module,
		enrichment.Module,
		lifecycle.Module,
		migration.Module,
		importer.Module,
		export.Module,
		fx.Provide(
			NewStoreTransactionManager,
			NewImporterStore,
		),
	)
}

// NewApplication builds the fx application. targets are filled through fx.Populate.
func NewApplication(opts Options, extra []fx.Option, targets ...interface{}) *fx.App {
	options := []fx.Option{
		fx.Supply(
			opts.EmbeddedConfig,
			fx.Annotate(opts.EnvFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(opts.ConfigFilePath, fx.ResultTags(`name:"configFilePath"`)),
		),
		Modules(opts.DBAdaptors),
		fx.Decorate(func(cfg *config.Config) *config.Config {
			if opts.MetricsAddr != "" {
				cfg.Intact.Metrics.Enabled = true
				cfg.Intact.Metrics.ListenAddress = opts.MetricsAddr
			}
			if opts.Configure != nil {
				opts.Configure(cfg)
			}
			return cfg
		}),
	}
	options = append(options, extra...)
	if len(targets) > 0 {
		options = append(options, fx.Populate(targets...))
	}
	return fx.New(options...)
}

// Run starts the application, runs task and stops the application. A task error is returned
// after the stop hooks ran, joined with any stop failure.
func Run(ctx context.Context, opts Options, task Task, targets ...interface{}) error {
	return RunWith(ctx, opts, nil, task, targets...)
}

// RunWith is Run with additional fx options, such as test replacements.
func RunWith(ctx context.Context, opts Options, extra []fx.Option, task Task, targets ...interface{}) (err error) {
	app := NewApplication(opts, extra, targets...)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}
	logger.Debugf("Application started.")

	defer func() {
		timeout := opts.StopTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil {
			logger.Errorf("Failed to stop application cleanly: %v", stopErr)
			if err == nil {
				err = stopErr
			} else {
				err = fmt.Errorf("%w (stop: %v)", err, stopErr)
			}
		}
		_ = logger.Sync()
	}()

	return task(ctx)
}
