// Package filesystem embeds the SQL migrations of the curation schema.
package filesystem

import (
	"embed"
	"io/fs"

	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

//go:embed resources
var rawMigrationFS embed.FS

// ProvideMigrationsFS returns the embedded migrations with the resources directory as root.
func ProvideMigrationsFS() fs.FS {
	subFS, err := fs.Sub(rawMigrationFS, "resources")
	if err != nil {
		logger.Fatalf("Failed to create subdirectory for migration FS: %v", err)
	}
	return subFS
}
