package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
)

// Module provides the connection resolver and transaction manager factory.
// Dialect providers are supplied by the sqlite, postgres and mysql sub-packages.
var Module = fx.Options(
	fx.Provide(NewGormTransactionManagerFactory),
	fx.Provide(fx.Annotate(
		NewGormDBConnectionResolver,
		fx.As(new(database.DBConnectionResolver)),
		fx.As(fx.Self()),
	)),
	fx.Invoke(func(lc fx.Lifecycle, r *GormDBConnectionResolver) {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return r.CloseAll() },
		})
	}),
)
