package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/fx"

	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	"github.com/tigerroll/intactdb/pkg/intact/core/reconcile"
	"github.com/tigerroll/intactdb/pkg/intact/core/tx"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

const moduleName = "importer.Importer"

// Store exposes the synchronizers of the dataset roots.
type Store interface {
	Publications() reconcile.Synchronizer[*model.Publication]
	Complexes() reconcile.Synchronizer[*model.Complex]
}

// Summary lists the ACs of the reconciled roots in document order.
type Summary struct {
	Publications []string
	Complexes    []string
}

// Importer reconciles a whole dataset in one pass, so a failure leaves the store untouched.
type Importer struct {
	store    Store
	tm       tx.TransactionManager
	recorder metrics.MetricRecorder
}

// ImporterParams defines the dependencies of NewImporter.
type ImporterParams struct {
	fx.In
	Store    Store
	TM       tx.TransactionManager
	Recorder metrics.MetricRecorder
}

// NewImporter creates an Importer.
func NewImporter(p ImporterParams) *Importer {
	recorder := p.Recorder
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	return &Importer{store: p.Store, tm: p.TM, recorder: recorder}
}

// ImportFile imports the dataset at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, exception.NewImportError(moduleName, fmt.Sprintf("failed to open dataset '%s'", path), err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import decodes a dataset and synchronizes every publication and complex deep.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Summary, error) {
	ds, err := Decode(r)
	if err != nil {
		return nil, exception.NewImportError(moduleName, "invalid dataset", err)
	}
	pubs, complexes, err := ds.Build()
	if err != nil {
		return nil, exception.NewImportError(moduleName, "unresolved dataset references", err)
	}

	start := time.Now()
	summary := &Summary{}
	err = reconcile.Run(ctx, im.tm, func(ctx context.Context, p *reconcile.Pass) error {
		for _, pub := range pubs {
			persisted, err := im.store.Publications().Synchronize(ctx, p, pub, true)
			if err != nil {
				return err
			}
			summary.Publications = append(summary.Publications, persisted.AC)
		}
		for _, c := range complexes {
			persisted, err := im.store.Complexes().Synchronize(ctx, p, c, true)
			if err != nil {
				return err
			}
			summary.Complexes = append(summary.Complexes, persisted.AC)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	im.recorder.RecordDuration(ctx, "import", time.Since(start), nil)
	logger.Infof("Imported %d publication(s) and %d complex(es).", len(summary.Publications), len(summary.Complexes))
	return summary, nil
}

// Module provides the Importer.
var Module = fx.Options(
	fx.Provide(NewImporter),
)
