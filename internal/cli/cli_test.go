package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/intactdb/internal/cli"
	config "github.com/tigerroll/intactdb/pkg/intact/core/config"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
)

const datasetPath = "../../pkg/intact/component/importer/testdata/dataset.yaml"

type harness struct {
	t        *testing.T
	dir      string
	embedded config.EmbeddedConfig
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	embedded := fmt.Sprintf(`
intact:
  system:
    logging:
      level: ERROR
  database:
    store:
      type: sqlite
      database: %s
      log_level: SILENT
  storage:
    export:
      type: local
      base_dir: %s
`, filepath.Join(dir, "store.db"), filepath.Join(dir, "exports"))
	return &harness{t: t, dir: dir, embedded: config.EmbeddedConfig(embedded)}
}

// exec runs one command line and returns its standard output.
func (h *harness) exec(args ...string) (string, error) {
	h.t.Helper()
	root := cli.NewRootCommand(h.embedded)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	base := []string{"--db-adaptors", "sqlite", "--env-file", filepath.Join(h.dir, "absent.env")}
	root.SetArgs(append(base, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustExec(args ...string) string {
	h.t.Helper()
	out, err := h.exec(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestRootCommand_Version(t *testing.T) {
	root := cli.NewRootCommand(nil)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, cli.Version+"\n", out.String())
}

func TestMigrate_UpAndVersion(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustExec("migrate", "version"), "schema version: none")
	assert.Contains(t, h.mustExec("migrate", "up"), "schema version: 1 (dirty: false)")
	assert.Contains(t, h.mustExec("migrate", "version"), "schema version: 1 (dirty: false)")
}

func TestCurationWorkflow_ImportToExport(t *testing.T) {
	h := newHarness(t)
	h.mustExec("migrate", "up")

	out := h.mustExec("import", datasetPath)
	assert.Contains(t, out, "--- statistics ---")
	m := regexp.MustCompile(`publication (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	ac := m[1]

	assert.Contains(t, h.mustExec("lifecycle", "create", ac, "--actor", "alice"), "-> new")
	assert.Contains(t, h.mustExec("status", ac), ac+": new")

	_, err := h.exec("lifecycle", "release", ac, "--actor", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrIllegalTransition)
	assert.Contains(t, h.mustExec("status", ac), ac+": new", "a rejected transition leaves the state unchanged")

	h.mustExec("lifecycle", "claim", ac, "--actor", "alice")
	h.mustExec("lifecycle", "ready-for-checking", ac, "--actor", "alice", "--reviewer", "bob")
	h.mustExec("lifecycle", "accept", ac, "--actor", "bob")
	h.mustExec("lifecycle", "ready-for-release", ac, "--actor", "bob")

	out = h.mustExec("release-ready", "--actor", "release-bot", "--note", "weekly")
	assert.Contains(t, out, "released "+ac)
	assert.Contains(t, out, "1 publication(s) released")
	assert.Contains(t, h.mustExec("status", ac), ac+": released")

	history := h.mustExec("history", ac)
	for _, event := range []string{"CREATED", "OWNER_CHANGED", "READY_FOR_CHECKING", "ACCEPTED", "READY_FOR_RELEASE", "RELEASED"} {
		assert.Contains(t, history, event)
	}

	exportDir := filepath.Join(h.dir, "out")
	assert.Contains(t, h.mustExec("export", exportDir), "exported 1 publication(s)")
	files, err := filepath.Glob(filepath.Join(exportDir, "released_publications_*.parquet"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestExport_NothingReleased(t *testing.T) {
	h := newHarness(t)
	h.mustExec("migrate", "up")

	assert.Contains(t, h.mustExec("export"), "no released publications")
}

func TestLifecycle_RejectsUnknownTransitionAndMissingActor(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("lifecycle", "publish", "EBI-1", "--actor", "alice")
	assert.ErrorIs(t, err, exception.ErrIllegalTransition)

	_, err = h.exec("lifecycle", "create", "EBI-1")
	assert.ErrorContains(t, err, `required flag(s) "actor" not set`)
}

func TestStatus_UnknownAccession(t *testing.T) {
	h := newHarness(t)
	h.mustExec("migrate", "up")

	_, err := h.exec("status", "EBI-404")
	assert.ErrorIs(t, err, exception.ErrReleasableNotFound)
}
