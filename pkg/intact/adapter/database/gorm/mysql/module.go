package mysql

import (
	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
)

// Module registers the provider into the db_providers group.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewProvider,
			fx.As(new(database.DBProvider)),
			fx.ResultTags(`group:"`+database.DBProviderGroup+`"`),
		),
	),
)
