// Package export writes released publications to parquet files in object storage.
package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/fx"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	"github.com/tigerroll/intactdb/pkg/intact/adapter/storage"
	"github.com/tigerroll/intactdb/pkg/intact/core/config"
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

const moduleName = "export.Exporter"

// ReleasedPublication is one parquet row.
type ReleasedPublication struct {
	AC           string `parquet:"name=ac,type=BYTE_ARRAY,convertedtype=UTF8"`
	PubmedID     string `parquet:"name=pubmed_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Title        string `parquet:"name=title,type=BYTE_ARRAY,convertedtype=UTF8"`
	Journal      string `parquet:"name=journal,type=BYTE_ARRAY,convertedtype=UTF8"`
	Year         int32  `parquet:"name=year,type=INT32"`
	Owner        string `parquet:"name=owner,type=BYTE_ARRAY,convertedtype=UTF8"`
	Reviewer     string `parquet:"name=reviewer,type=BYTE_ARRAY,convertedtype=UTF8"`
	Experiments  int32  `parquet:"name=experiments,type=INT32"`
	Interactions int32  `parquet:"name=interactions,type=INT32"`
	// ReleasedAt is the time of the latest RELEASED event, zero when none was recorded.
	ReleasedAt int64 `parquet:"name=released_at,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
}

// Result describes a finished export.
type Result struct {
	ObjectName string
	Rows       int
}

// Exporter reads released publications page by page and uploads them as one parquet file.
type Exporter struct {
	exec     database.DBExecutor
	storage  storage.StorageConnection
	cfg      config.ExportConfig
	pageSize int
	recorder metrics.MetricRecorder
	now      func() time.Time
}

// NewExporter creates an Exporter reading through exec and writing to conn.
func NewExporter(exec database.DBExecutor, conn storage.StorageConnection, cfg config.ExportConfig, pageSize int, recorder metrics.MetricRecorder) *Exporter {
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Exporter{
		exec:     exec,
		storage:  conn,
		cfg:      cfg,
		pageSize: pageSize,
		recorder: recorder,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to name export files.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Export writes every released publication. Nothing is uploaded when none is released.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	start := e.now()
	codec, err := compressionCodec(e.cfg.Compression)
	if err != nil {
		return nil, exception.NewConfigError(moduleName, err.Error(), nil)
	}

	var rows []ReleasedPublication
	it := sqlrepo.NewPageIterator[sqlrepo.PublicationEntity](e.exec,
		map[string]interface{}{"status": string(model.StatusReleased)}, e.pageSize)
	err = it.ForEach(ctx, func(page []sqlrepo.PublicationEntity) error {
		converted, err := e.convert(ctx, page)
		if err != nil {
			return err
		}
		rows = append(rows, converted...)
		return nil
	})
	if err != nil {
		return nil, exception.NewExportError(moduleName, "failed to read released publications", err)
	}
	if len(rows) == 0 {
		logger.Infof("No released publications, skipping parquet export.")
		return &Result{}, nil
	}

	data, err := e.encode(rows, codec)
	if err != nil {
		return nil, err
	}
	objectName := path.Join(e.cfg.OutputBaseDir,
		fmt.Sprintf("released_publications_%s.parquet", start.UTC().Format("20060102T150405Z")))
	if err := e.storage.Upload(ctx, "", objectName, bytes.NewReader(data), "application/octet-stream"); err != nil {
		return nil, exception.NewExportError(moduleName, fmt.Sprintf("failed to upload '%s'", objectName), err)
	}

	e.recorder.RecordDuration(ctx, "export", e.now().Sub(start), map[string]string{"kind": string(model.KindPublication)})
	logger.Infof("Exported %d released publication(s) to '%s' (%d bytes).", len(rows), objectName, len(data))
	return &Result{ObjectName: objectName, Rows: len(rows)}, nil
}

// convert joins one page of publications with their experiment and interaction counts
// and their release time.
func (e *Exporter) convert(ctx context.Context, page []sqlrepo.PublicationEntity) ([]ReleasedPublication, error) {
	acs := make([]string, len(page))
	for i, p := range page {
		acs[i] = p.AC
	}

	experiments, err := sqlrepo.FindBy[sqlrepo.ExperimentEntity](ctx, e.exec, map[string]interface{}{"publication_ac": acs})
	if err != nil {
		return nil, err
	}
	expCount := make(map[string]int32, len(page))
	expOwner := make(map[string]string, len(experiments))
	expACs := make([]string, 0, len(experiments))
	for _, exp := range experiments {
		expCount[exp.PublicationAC]++
		expOwner[exp.AC] = exp.PublicationAC
		expACs = append(expACs, exp.AC)
	}

	intCount := make(map[string]int32, len(page))
	if len(expACs) > 0 {
		interactions, err := sqlrepo.FindBy[sqlrepo.InteractionEntity](ctx, e.exec, map[string]interface{}{"experiment_ac": expACs})
		if err != nil {
			return nil, err
		}
		for _, in := range interactions {
			intCount[expOwner[in.ExperimentAC]]++
		}
	}

	events, err := sqlrepo.FindBy[sqlrepo.LifecycleEventEntity](ctx, e.exec, map[string]interface{}{
		"parent_ac":   acs,
		"parent_kind": string(model.KindPublication),
		"event_type":  string(model.EventReleased),
	})
	if err != nil {
		return nil, err
	}
	releasedAt := make(map[string]time.Time, len(page))
	for _, ev := range events {
		if ev.OccurredAt.After(releasedAt[ev.ParentAC]) {
			releasedAt[ev.ParentAC] = ev.OccurredAt
		}
	}

	rows := make([]ReleasedPublication, len(page))
	for i, p := range page {
		row := ReleasedPublication{
			AC:           p.AC,
			PubmedID:     p.PubmedID,
			Title:        p.Title,
			Journal:      p.Journal,
			Year:         int32(p.Year),
			Owner:        p.Owner,
			Reviewer:     p.Reviewer,
			Experiments:  expCount[p.AC],
			Interactions: intCount[p.AC],
		}
		if t, ok := releasedAt[p.AC]; ok {
			row.ReleasedAt = t.UnixMilli()
		}
		rows[i] = row
	}
	return rows, nil
}

func (e *Exporter) encode(rows []ReleasedPublication, codec parquet.CompressionCodec) (data []byte, err error) {
	parallelism := int64(e.cfg.Parallelism)
	if parallelism <= 0 {
		parallelism = 1
	}
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(ReleasedPublication), parallelism)
	if err != nil {
		return nil, exception.NewExportError(moduleName, "failed to create parquet writer", err)
	}
	pw.CompressionType = codec

	var errs *multierror.Error
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("row '%s': %w", row.AC, err))
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = exception.NewExportError(moduleName, "parquet writer panicked during WriteStop", fmt.Errorf("%v", r))
		}
	}()
	if err := pw.WriteStop(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("write stop: %w", err))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, exception.NewExportError(moduleName, "failed to encode parquet rows", err)
	}
	return buf.Bytes(), nil
}

func compressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "UNCOMPRESSED", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

// ExporterParams defines the dependencies of NewStoreExporter.
type ExporterParams struct {
	fx.In
	Config     *config.Config
	DBResolver database.DBConnectionResolver
	Storage    storage.StorageConnectionResolver
	Recorder   metrics.MetricRecorder
}

// NewStoreExporter resolves the store database and the configured export storage.
func NewStoreExporter(p ExporterParams) (*Exporter, error) {
	ctx := context.Background()
	intact := p.Config.Intact
	conn, err := p.DBResolver.ResolveDBConnection(ctx, intact.Infrastructure.StoreDBRef)
	if err != nil {
		return nil, err
	}
	target, err := p.Storage.ResolveStorageConnection(ctx, intact.Export.StorageRef)
	if err != nil {
		return nil, err
	}
	return NewExporter(conn, target, intact.Export, intact.Synchronizer.PageSize, p.Recorder), nil
}

// Module provides the Exporter.
var Module = fx.Options(
	fx.Provide(NewStoreExporter),
)
