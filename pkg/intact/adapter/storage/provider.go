package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"

	storageconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/storage/config"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// ConnectionFactory opens a connection for a decoded configuration.
type ConnectionFactory func(cfg storageconfig.StorageConfig, name string) (StorageConnection, error)

// BaseProvider caches the connections opened by a backend factory.
type BaseProvider struct {
	cfg         *config.Config
	storageType string
	factory     ConnectionFactory
	connections map[string]StorageConnection
	mu          sync.RWMutex
}

// NewBaseProvider creates a BaseProvider for storageType.
func NewBaseProvider(cfg *config.Config, storageType string, factory ConnectionFactory) *BaseProvider {
	return &BaseProvider{
		cfg:         cfg,
		storageType: storageType,
		factory:     factory,
		connections: make(map[string]StorageConnection),
	}
}

// Type returns the storage type handled by this provider.
func (p *BaseProvider) Type() string {
	return p.storageType
}

// GetConnection returns the cached connection or opens it from configuration.
func (p *BaseProvider) GetConnection(name string) (StorageConnection, error) {
	p.mu.RLock()
	conn, ok := p.connections[name]
	p.mu.RUnlock()
	if ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok = p.connections[name]; ok {
		return conn, nil
	}

	storageCfg, err := storageconfig.Lookup(p.cfg.Intact.StorageConfigs, name)
	if err != nil {
		return nil, err
	}
	if storageCfg.Type != p.storageType {
		return nil, fmt.Errorf("storage config type mismatch for '%s': expected '%s', got '%s'", name, p.storageType, storageCfg.Type)
	}
	conn, err = p.factory(storageCfg, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage connection '%s': %w", p.storageType, name, err)
	}
	p.connections[name] = conn
	logger.Debugf("Created new %s storage connection '%s'.", p.storageType, name)
	return conn, nil
}

// CloseAll closes every cached connection.
func (p *BaseProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs *multierror.Error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to close %s storage connection '%s': %w", p.storageType, name, err))
		}
		delete(p.connections, name)
	}
	return errs.ErrorOrNil()
}

// ConnectionResolver dispatches named connections to the provider of their configured type.
type ConnectionResolver struct {
	cfg       *config.Config
	providers map[string]StorageProvider
}

// ResolverParams defines the dependencies of NewConnectionResolver.
type ResolverParams struct {
	fx.In
	Config    *config.Config
	Providers []StorageProvider `group:"storage_providers"`
}

// NewConnectionResolver creates a ConnectionResolver over the grouped providers.
func NewConnectionResolver(p ResolverParams) *ConnectionResolver {
	providers := make(map[string]StorageProvider, len(p.Providers))
	for _, provider := range p.Providers {
		providers[provider.Type()] = provider
	}
	return &ConnectionResolver{cfg: p.Config, providers: providers}
}

// ResolveStorageConnection resolves the connection configured under name.
func (r *ConnectionResolver) ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error) {
	storageCfg, err := storageconfig.Lookup(r.cfg.Intact.StorageConfigs, name)
	if err != nil {
		return nil, err
	}
	provider, ok := r.providers[storageCfg.Type]
	if !ok {
		return nil, fmt.Errorf("no storage provider found for type '%s' (connection '%s')", storageCfg.Type, name)
	}
	return provider.GetConnection(name)
}

// CloseAll closes the connections of every provider.
func (r *ConnectionResolver) CloseAll() error {
	var errs *multierror.Error
	for _, provider := range r.providers {
		if err := provider.CloseAll(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Module provides the resolver. Backends are supplied by the local and gcs sub-packages.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewConnectionResolver,
		fx.As(new(StorageConnectionResolver)),
		fx.As(fx.Self()),
	)),
	fx.Invoke(func(lc fx.Lifecycle, r *ConnectionResolver) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return r.CloseAll() },
		})
	}),
)
