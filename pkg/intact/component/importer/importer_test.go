package importer_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/intactdb/pkg/intact/adapter/database"
	"github.com/tigerroll/intactdb/pkg/intact/component/importer"
	model "github.com/tigerroll/intactdb/pkg/intact/core/domain/model"
	"github.com/tigerroll/intactdb/pkg/intact/core/metrics"
	sqlrepo "github.com/tigerroll/intactdb/pkg/intact/infrastructure/repository/sql"
	"github.com/tigerroll/intactdb/pkg/intact/infrastructure/synchronizer"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	"github.com/tigerroll/intactdb/pkg/intact/test"
)

func newImporter(t *testing.T) (*importer.Importer, database.DBConnection, *metrics.Statistics) {
	t.Helper()
	conn, tm := test.NewSQLiteStore(t)
	stats := metrics.NewStatistics()
	reg := synchronizer.NewRegistry(sqlrepo.NewACGenerator("EBI", "ac", 3), stats, nil)
	return importer.NewImporter(importer.ImporterParams{Store: reg, TM: tm, Recorder: stats}), conn, stats
}

func count[E sqlrepo.Entity](t *testing.T, conn database.DBConnection, query map[string]interface{}) int64 {
	t.Helper()
	n, err := sqlrepo.Count[E](context.Background(), conn, query)
	require.NoError(t, err)
	return n
}

func TestImporter_ImportsDatasetInOnePass(t *testing.T) {
	im, conn, stats := newImporter(t)

	summary, err := im.ImportFile(context.Background(), "testdata/dataset.yaml")
	require.NoError(t, err)
	require.Len(t, summary.Publications, 1)
	require.Len(t, summary.Complexes, 1)

	assert.Equal(t, int64(1), count[sqlrepo.PublicationEntity](t, conn, nil))
	assert.Equal(t, int64(1), count[sqlrepo.ExperimentEntity](t, conn, nil))
	assert.Equal(t, int64(1), count[sqlrepo.InteractionEntity](t, conn, nil))
	assert.Equal(t, int64(1), count[sqlrepo.ComplexEntity](t, conn, nil))
	assert.Equal(t, int64(4), count[sqlrepo.ParticipantEntity](t, conn, nil))
	assert.Equal(t, int64(1), count[sqlrepo.FeatureEntity](t, conn, nil))
	assert.Equal(t, int64(1), count[sqlrepo.RangeEntity](t, conn, nil))
	assert.Equal(t, int64(2), count[sqlrepo.InteractorEntity](t, conn, nil), "interactors are shared across roots")
	assert.Equal(t, int64(1), count[sqlrepo.OrganismEntity](t, conn, nil))
	assert.Equal(t, int64(1), count[sqlrepo.CvTermEntity](t, conn, map[string]interface{}{"mi_identifier": "MI:0326"}))
	assert.Equal(t, 1, stats.Count(model.KindPublication, model.OutcomeInserted))
	assert.Contains(t, stats.Snapshot().Durations, "import")
}

// rowCounts returns the number of rows of every persisted kind.
func rowCounts(t *testing.T, conn database.DBConnection) map[string]int64 {
	t.Helper()
	return map[string]int64{
		"publications": count[sqlrepo.PublicationEntity](t, conn, nil),
		"experiments":  count[sqlrepo.ExperimentEntity](t, conn, nil),
		"interactions": count[sqlrepo.InteractionEntity](t, conn, nil),
		"complexes":    count[sqlrepo.ComplexEntity](t, conn, nil),
		"participants": count[sqlrepo.ParticipantEntity](t, conn, nil),
		"features":     count[sqlrepo.FeatureEntity](t, conn, nil),
		"ranges":       count[sqlrepo.RangeEntity](t, conn, nil),
		"interactors":  count[sqlrepo.InteractorEntity](t, conn, nil),
		"organisms":    count[sqlrepo.OrganismEntity](t, conn, nil),
		"sources":      count[sqlrepo.SourceEntity](t, conn, nil),
		"cv terms":     count[sqlrepo.CvTermEntity](t, conn, nil),
		"xrefs":        count[sqlrepo.XrefEntity](t, conn, nil),
		"annotations":  count[sqlrepo.AnnotationEntity](t, conn, nil),
		"aliases":      count[sqlrepo.AliasEntity](t, conn, nil),
		"confidences":  count[sqlrepo.ConfidenceEntity](t, conn, nil),
		"parameters":   count[sqlrepo.ParameterEntity](t, conn, nil),
		"events":       count[sqlrepo.LifecycleEventEntity](t, conn, nil),
	}
}

func TestImporter_ReimportReusesRows(t *testing.T) {
	im, conn, _ := newImporter(t)
	ctx := context.Background()

	first, err := im.ImportFile(ctx, "testdata/dataset.yaml")
	require.NoError(t, err)
	afterFirst := rowCounts(t, conn)
	second, err := im.ImportFile(ctx, "testdata/dataset.yaml")
	require.NoError(t, err)

	assert.Equal(t, first.Publications, second.Publications)
	assert.Equal(t, first.Complexes, second.Complexes)
	assert.Equal(t, int64(1), afterFirst["complexes"])
	assert.Equal(t, int64(4), afterFirst["participants"])
	assert.Equal(t, int64(3), afterFirst["xrefs"], "two interactor identities and one complex identity")
	if diff := cmp.Diff(afterFirst, rowCounts(t, conn)); diff != "" {
		t.Errorf("re-import changed row counts (-first +second):\n%s", diff)
	}
}

func TestImporter_UnresolvedReferences(t *testing.T) {
	im, conn, _ := newImporter(t)
	doc := `
publications:
  - pubmed_id: "1"
    source: nowhere
    experiments:
      - short_label: e1
        detection_method: tap
`
	_, err := im.Import(context.Background(), strings.NewReader(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrImport)
	assert.ErrorContains(t, err, "unknown source 'nowhere'")
	assert.ErrorContains(t, err, "unknown cv term 'tap'")
	assert.Equal(t, int64(0), count[sqlrepo.PublicationEntity](t, conn, nil))
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := importer.Decode(strings.NewReader("publication:\n  - pubmed_id: \"1\"\n"))
	assert.ErrorContains(t, err, "field publication not found")
}

func TestDataset_BuildSharesVocabulary(t *testing.T) {
	ds, err := importer.Decode(strings.NewReader(`
cv_terms:
  protein: {mi: "MI:0326"}
interactors:
  a: {type: protein}
  b: {type: protein}
complexes:
  - short_label: ab
    participants:
      - interactor: a
      - interactor: b
      - interactor: a
`))
	require.NoError(t, err)
	_, complexes, err := ds.Build()
	require.NoError(t, err)
	parts := complexes[0].Participants
	require.Len(t, parts, 3)
	assert.Same(t, parts[0].Interactor, parts[2].Interactor)
	assert.Same(t, parts[0].Interactor.Type, parts[1].Interactor.Type)
	assert.Equal(t, "protein", parts[0].Interactor.Type.ShortLabel, "the key is the default short label")
	assert.Equal(t, "a", parts[0].Interactor.ShortLabel)
}

func TestDecode_TestdataInteractors(t *testing.T) {
	f, err := os.Open("testdata/dataset.yaml")
	require.NoError(t, err)
	defer f.Close()

	ds, err := importer.Decode(f)
	require.NoError(t, err)

	want := map[string]importer.InteractorDoc{
		"p53": {
			ShortLabel: "tp53", Type: "protein", Organism: "human",
			Xrefs: []importer.XrefDoc{{Database: "uniprot", ID: "P04637", Qualifier: "identity"}},
		},
		"mdm2": {
			ShortLabel: "mdm2", Type: "protein", Organism: "human",
			Xrefs: []importer.XrefDoc{{Database: "uniprot", ID: "Q00987", Qualifier: "identity"}},
		},
	}
	if diff := cmp.Diff(want, ds.Interactors); diff != "" {
		t.Errorf("interactors mismatch (-want +got):\n%s", diff)
	}

	pubs, _, err := ds.Build()
	require.NoError(t, err)
	host := pubs[0].Experiments[0].HostOrganism
	wantHost := &model.Organism{TaxID: 9606, CommonName: "human", ScientificName: "Homo sapiens"}
	if diff := cmp.Diff(wantHost, host, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("host organism mismatch (-want +got):\n%s", diff)
	}
}
