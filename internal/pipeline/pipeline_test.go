package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rmkgen/internal/emit"
	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/materialize"
	"github.com/Aman-CERP/rmkgen/internal/template"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) StageStarted(s Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "start "+string(s))
}

func (r *recorder) StageFinished(s Stage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.events = append(r.events, "fail "+string(s))
		return
	}
	r.events = append(r.events, "done "+string(s))
}

func padRequest(t *testing.T) Request {
	t.Helper()
	return Request{
		KeyboardPath: filepath.Join("testdata", "pad", "keyboard.toml"),
		KeymapPath:   filepath.Join("testdata", "pad", "vial.json"),
		OutputDir:    filepath.Join(t.TempDir(), "Test_Pad"),
		Template:     template.NewEmbeddedSource(),
		Workers:      2,
	}
}

func TestRun_GeneratesProject(t *testing.T) {
	// Given: a valid 2x2 pad and the embedded template
	req := padRequest(t)
	rec := &recorder{}
	req.Observer = rec

	// When: running the pipeline
	res, err := Run(context.Background(), req)

	// Then: the project holds the template, the fragments and the inputs
	require.NoError(t, err)
	assert.Equal(t, "rp2040", res.Variant)
	require.NotNil(t, res.Project)
	for _, p := range []string{"Cargo.toml", "src/main.rs", emit.KeymapPath, emit.LayoutPath, emit.MatrixPath, "keyboard.toml", "vial.json"} {
		assert.FileExists(t, filepath.Join(req.OutputDir, filepath.FromSlash(p)))
	}
	keymap, err := os.ReadFile(filepath.Join(req.OutputDir, "src", "keymap.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(keymap), "[k!(A), k!(B)],")
	assert.Contains(t, string(keymap), "[lt!(0, Space), a!(Transparent)],")

	original, err := os.ReadFile(req.KeyboardPath)
	require.NoError(t, err)
	copied, err := os.ReadFile(filepath.Join(req.OutputDir, "keyboard.toml"))
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	want := []string{}
	for _, s := range Stages {
		want = append(want, "start "+string(s), "done "+string(s))
	}
	assert.Equal(t, want, rec.events)
}

func TestRun_CheckOnlyWritesNothing(t *testing.T) {
	req := padRequest(t)
	req.CheckOnly = true
	req.Template = nil

	res, err := Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []string{emit.KeymapPath, emit.LayoutPath, emit.MatrixPath}, emit.Paths(res.Fragments))
	assert.Empty(t, res.Dest)
	assert.Nil(t, res.Project)
	assert.NoDirExists(t, req.OutputDir)
}

func TestRun_RegenerationIsIdempotent(t *testing.T) {
	// Given: a generated project
	req := padRequest(t)
	_, err := Run(context.Background(), req)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(req.OutputDir, "src", "matrix.rs"))
	require.NoError(t, err)

	// When: regenerating over it with replace
	req.Policy = materialize.PolicyReplace
	_, err = Run(context.Background(), req)
	require.NoError(t, err)

	// Then: the output is byte-identical
	second, err := os.ReadFile(filepath.Join(req.OutputDir, "src", "matrix.rs"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_ExistingDestinationRefusedByDefault(t *testing.T) {
	req := padRequest(t)
	require.NoError(t, os.MkdirAll(req.OutputDir, 0o755))

	_, err := Run(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDestinationExists, errors.GetCode(err))
}

func TestRun_BothDocumentsMalformed(t *testing.T) {
	// Given: a broken keyboard.toml and a broken vial.json
	req := Request{
		KeyboardPath: filepath.Join("testdata", "broken", "keyboard.toml"),
		KeymapPath:   filepath.Join("testdata", "broken", "vial.json"),
		CheckOnly:    true,
	}

	// When: running
	_, err := Run(context.Background(), req)

	// Then: both files are reported, hardware first
	require.Error(t, err)
	problems := errors.Problems(err)
	require.Len(t, problems, 2)
	assert.Equal(t, errors.ErrCodeMalformedConfig, problems[0].Code)
	assert.Equal(t, req.KeyboardPath, problems[0].Detail("file"))
	assert.Equal(t, req.KeymapPath, problems[1].Detail("file"))
}

func TestRun_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	req := Request{
		KeyboardPath: filepath.Join(dir, "keyboard.toml"),
		KeymapPath:   filepath.Join(dir, "vial.json"),
		CheckOnly:    true,
	}

	_, err := Run(context.Background(), req)

	require.Error(t, err)
	for _, p := range errors.Problems(err) {
		assert.Equal(t, errors.ErrCodeFileNotFound, p.Code)
	}
	assert.Len(t, errors.Problems(err), 2)
}

func TestRun_ResolveFailureLeavesNoOutput(t *testing.T) {
	// Given: a keymap with an unknown keycode
	dir := t.TempDir()
	kb, err := os.ReadFile(filepath.Join("testdata", "pad", "keyboard.toml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keyboard.toml"), kb, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vial.json"), []byte(`{
  "layouts": {"keymap": [["0,0", "0,1"], ["1,0", "1,1"]]},
  "layers": [["KC_A", "KC_NOPE", "KC_C", "MO(3)"]]
}`), 0o644))
	rec := &recorder{}
	req := Request{
		KeyboardPath: filepath.Join(dir, "keyboard.toml"),
		KeymapPath:   filepath.Join(dir, "vial.json"),
		OutputDir:    filepath.Join(dir, "out"),
		Template:     template.NewEmbeddedSource(),
		Observer:     rec,
	}

	// When: running
	_, err = Run(context.Background(), req)

	// Then: both problems are reported and nothing is written
	require.Error(t, err)
	codes := []string{}
	for _, p := range errors.Problems(err) {
		codes = append(codes, p.Code)
	}
	assert.Equal(t, []string{errors.ErrCodeUnknownKeycode, errors.ErrCodeLayerOutOfRange}, codes)
	assert.NoDirExists(t, req.OutputDir)
	assert.Equal(t, "fail resolve", rec.events[len(rec.events)-1])
}

// countingSource counts fetches and serves the embedded template.
type countingSource struct {
	fetches int
}

func (s *countingSource) Fetch(ctx context.Context, variant string) (*template.Tree, error) {
	s.fetches++
	return template.NewEmbeddedSource().Fetch(ctx, variant)
}

func (s *countingSource) String() string { return "counting" }

func TestRun_ZeroPolicyWritesFreshDestination(t *testing.T) {
	// Given: a request that leaves the policy unset
	req := padRequest(t)
	req.Policy = ""

	// When: running into a destination that does not exist
	res, err := Run(context.Background(), req)

	// Then: the project is written
	require.NoError(t, err)
	assert.Equal(t, req.OutputDir, res.Dest)
	assert.FileExists(t, filepath.Join(req.OutputDir, "src", "keymap.rs"))

	// When: running again with the policy still unset
	_, err = Run(context.Background(), req)

	// Then: the default refuse policy applies
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDestinationExists, errors.GetCode(err))
}

func TestRun_InvalidPolicyRejectedBeforeTemplateFetch(t *testing.T) {
	// Given: an unknown policy and a source that counts fetches
	src := &countingSource{}
	req := padRequest(t)
	req.Template = src
	req.Policy = materialize.Policy("sometimes")
	rec := &recorder{}
	req.Observer = rec

	// When: running
	_, err := Run(context.Background(), req)

	// Then: the run fails before any stage and nothing is fetched
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGeneratorConfigInvalid, errors.GetCode(err))
	assert.Zero(t, src.fetches)
	assert.Empty(t, rec.events)
	assert.NoDirExists(t, req.OutputDir)
}

func TestRun_RequiresTemplateUnlessChecking(t *testing.T) {
	req := padRequest(t)
	req.Template = nil

	_, err := Run(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(err))
}

func TestDefaultOutputDir(t *testing.T) {
	tests := map[string]string{
		"Test Pad":    "Test_Pad",
		" corne ":     "corne",
		"a/b":         "a_b",
		"":            "keyboard",
		"..":          "keyboard",
		"Lily58 Pro ": "Lily58_Pro",
	}
	for in, want := range tests {
		assert.Equal(t, want, DefaultOutputDir(in), in)
	}
}
