package test

import (
	"context"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
)

type singleConnectionResolver struct {
	conn database.DBConnection
}

func (r *singleConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	return r.conn, nil
}

// NewSingleConnectionResolver returns a resolver that hands out conn for every name.
func NewSingleConnectionResolver(conn database.DBConnection) database.DBConnectionResolver {
	return &singleConnectionResolver{conn: conn}
}
