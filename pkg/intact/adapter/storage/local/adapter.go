// Package local stores objects on the local file system.
package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage"
	storageconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/storage/config"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// ProviderType is the storage type handled by this package.
const ProviderType = "local"

// Adapter maps buckets to directories under BaseDir.
type Adapter struct {
	cfg  storageconfig.StorageConfig
	name string
}

// NewAdapter creates an Adapter, creating BaseDir when it does not exist.
func NewAdapter(cfg storageconfig.StorageConfig, name string) (storage.StorageConnection, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("local storage adapter '%s': BaseDir must be specified in configuration", name)
	}
	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
			return nil, fmt.Errorf("local storage adapter '%s': failed to create BaseDir '%s': %w", name, cfg.BaseDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("local storage adapter '%s': failed to stat BaseDir '%s': %w", name, cfg.BaseDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("local storage adapter '%s': BaseDir '%s' is not a directory", name, cfg.BaseDir)
	}
	return &Adapter{cfg: cfg, name: name}, nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) Type() string {
	return ProviderType
}

func (a *Adapter) Name() string {
	return a.name
}

// Upload writes data to a file, creating parent directories.
func (a *Adapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return fmt.Errorf("failed to resolve path for upload: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", fullPath, err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", fullPath, err)
	}
	if _, err := io.Copy(file, data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write data to file '%s': %w", fullPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file '%s': %w", fullPath, err)
	}
	logger.Debugf("Uploaded data to '%s' (local adapter '%s').", fullPath, a.name)
	return nil
}

func (a *Adapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path for download: %w", err)
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", fullPath, err)
	}
	return file, nil
}

// ListObjects walks the bucket directory. Object names use forward slashes.
func (a *Adapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	basePath, err := a.resolvePath(bucket, "")
	if err != nil {
		return fmt.Errorf("failed to resolve base path for listing: %w", err)
	}
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		return nil
	}
	err = filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(basePath, path)
		if err != nil {
			return err
		}
		objectName := filepath.ToSlash(rel)
		if !strings.HasPrefix(objectName, prefix) {
			return nil
		}
		return fn(objectName)
	})
	if err != nil {
		return fmt.Errorf("failed to list objects in '%s' with prefix '%s': %w", basePath, prefix, err)
	}
	return nil
}

func (a *Adapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	fullPath, err := a.resolvePath(bucket, objectName)
	if err != nil {
		return fmt.Errorf("failed to resolve path for delete: %w", err)
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("Attempted to delete non-existent object '%s' (local adapter '%s').", fullPath, a.name)
			return nil
		}
		return fmt.Errorf("failed to delete file '%s': %w", fullPath, err)
	}
	return nil
}

// resolvePath joins BaseDir, bucket and objectName and rejects paths escaping BaseDir.
func (a *Adapter) resolvePath(bucket, objectName string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	fullPath := filepath.Join(a.cfg.BaseDir, bucket, objectName)

	absBaseDir, err := filepath.Abs(a.cfg.BaseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for BaseDir '%s': %w", a.cfg.BaseDir, err)
	}
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", fullPath, err)
	}
	if absFullPath != absBaseDir && !strings.HasPrefix(absFullPath, absBaseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("resolved path '%s' is outside of BaseDir '%s'", fullPath, a.cfg.BaseDir)
	}
	return fullPath, nil
}

var _ storage.StorageConnection = (*Adapter)(nil)

// NewProvider creates the local StorageProvider.
func NewProvider(cfg *config.Config) storage.StorageProvider {
	return storage.NewBaseProvider(cfg, ProviderType, NewAdapter)
}

// Module registers the local provider into the storage_providers group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewProvider,
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
