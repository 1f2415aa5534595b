package gorm

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	dbconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/database/config"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// GormDBConnectionResolver is the gorm implementation of database.DBConnectionResolver.
type GormDBConnectionResolver struct {
	dbProviders map[string]database.DBProvider
	cfg         *config.Config
}

// ResolverParams are the fx inputs of NewGormDBConnectionResolver.
type ResolverParams struct {
	fx.In
	DBProviders []database.DBProvider `group:"db_providers"`
	Cfg         *config.Config
}

// NewGormDBConnectionResolver indexes the registered providers by database type.
func NewGormDBConnectionResolver(p ResolverParams) *GormDBConnectionResolver {
	providerMap := make(map[string]database.DBProvider)
	for _, provider := range p.DBProviders {
		providerMap[provider.Type()] = provider
	}
	return &GormDBConnectionResolver{dbProviders: providerMap, cfg: p.Cfg}
}

// ResolveDBConnection returns the named connection, reconnecting once if the pooled one fails a ping.
func (r *GormDBConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	dbConfig, err := dbconfig.Lookup(r.cfg.Intact.AdaptorConfigs, name)
	if err != nil {
		return nil, fmt.Errorf("DBConnectionResolver: %w", err)
	}

	provider, ok := r.dbProviders[dbConfig.Type]
	if !ok {
		return nil, fmt.Errorf("DBConnectionResolver: DBProvider for type '%s' not found for connection '%s'", dbConfig.Type, name)
	}

	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, fmt.Errorf("DBConnectionResolver: failed to get connection '%s': %w", name, err)
	}

	if pingErr := conn.RefreshConnection(ctx); pingErr != nil {
		logger.Warnf("DBConnectionResolver: Connection '%s' is invalid (%v). Attempting to reconnect.", name, pingErr)
		reconnected, reconnectErr := provider.ForceReconnect(name)
		if reconnectErr != nil {
			return nil, fmt.Errorf("DBConnectionResolver: failed to reconnect connection '%s': %w", name, reconnectErr)
		}
		logger.Infof("DBConnectionResolver: Successfully reconnected connection '%s'.", name)
		return reconnected, nil
	}
	return conn, nil
}

// CloseAll closes the connections of every provider.
func (r *GormDBConnectionResolver) CloseAll() error {
	var firstErr error
	for _, provider := range r.dbProviders {
		if err := provider.CloseAll(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ database.DBConnectionResolver = (*GormDBConnectionResolver)(nil)
