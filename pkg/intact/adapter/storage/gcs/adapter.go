// Package gcs stores objects in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/fx"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage"
	storageconfig "github.com/tigerroll/intactdb/pkg/intact/adapter/storage/config"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

// ProviderType is the storage type handled by this package.
const ProviderType = "gcs"

// Adapter is a StorageConnection over a GCS client.
type Adapter struct {
	client *gcstorage.Client
	cfg    storageconfig.StorageConfig
	name   string
}

// NewAdapter opens a GCS client. Without a credentials file the client uses
// application default credentials.
func NewAdapter(cfg storageconfig.StorageConfig, name string, opts ...option.ClientOption) (*Adapter, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs storage adapter '%s': bucket_name must be specified in configuration", name)
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcstorage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}
	return &Adapter{client: client, cfg: cfg, name: name}, nil
}

func (a *Adapter) Close() error {
	return a.client.Close()
}

func (a *Adapter) Type() string {
	return ProviderType
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) bucket(bucket string) *gcstorage.BucketHandle {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	return a.client.Bucket(bucket)
}

func (a *Adapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	w := a.bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload gs object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs object '%s': %w", objectName, err)
	}
	logger.Debugf("Uploaded gs object '%s' (gcs adapter '%s').", objectName, a.name)
	return nil
}

func (a *Adapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	r, err := a.bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs object '%s': %w", objectName, err)
	}
	return r, nil
}

func (a *Adapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	it := a.bucket(bucket).Objects(ctx, &gcstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list gs objects with prefix '%s': %w", prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (a *Adapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	err := a.bucket(bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, gcstorage.ErrObjectNotExist) {
		logger.Warnf("Attempted to delete non-existent gs object '%s' (gcs adapter '%s').", objectName, a.name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete gs object '%s': %w", objectName, err)
	}
	return nil
}

var _ storage.StorageConnection = (*Adapter)(nil)

// NewProvider creates the GCS StorageProvider.
func NewProvider(cfg *config.Config) storage.StorageProvider {
	return storage.NewBaseProvider(cfg, ProviderType, func(c storageconfig.StorageConfig, name string) (storage.StorageConnection, error) {
		return NewAdapter(c, name)
	})
}

// Module registers the GCS provider into the storage_providers group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewProvider,
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
