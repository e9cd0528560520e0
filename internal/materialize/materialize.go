// Package materialize writes a generated project: a copy of the template
// variant, the emitted fragments at their fixed paths, and the input
// documents.
//
// The tree is assembled in a staging directory next to the destination and
// swapped in with renames, so a failed run leaves the destination as it was.
package materialize

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Aman-CERP/rmkgen/internal/emit"
	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/lock"
	"github.com/Aman-CERP/rmkgen/internal/template"
)

// Materializer writes project trees.
type Materializer struct {
	policy   Policy
	manifest template.Manifest
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithPolicy sets the destination policy. An empty policy keeps the default.
func WithPolicy(p Policy) Option {
	return func(m *Materializer) {
		if p != "" {
			m.policy = p
		}
	}
}

// WithManifest sets the paths the template must provide. Without a manifest
// the template is not checked.
func WithManifest(mf template.Manifest) Option {
	return func(m *Materializer) { m.manifest = mf }
}

// New creates a Materializer. The default policy is PolicyRefuse.
func New(opts ...Option) *Materializer {
	m := &Materializer{policy: PolicyRefuse}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result describes a written project.
type Result struct {
	// Dest is the project directory.
	Dest string
	// Files lists every file in the project, sorted.
	Files []string
	// Generated lists the fragment and input-document paths.
	Generated []string
	// Preserved lists destination files kept under PolicyPreserve.
	Preserved []string
	// Replaced is true when an existing destination was swapped out.
	Replaced bool
}

// Materialize writes tmpl, then extras, then frags under dest. Fragments
// win over template files and extras at the same path.
func (m *Materializer) Materialize(ctx context.Context, tmpl *template.Tree, frags, extras []emit.Fragment, dest string) (*Result, error) {
	start := time.Now()
	if tmpl == nil || dest == "" {
		return nil, errors.InternalError("materialize called without a template or destination", nil)
	}
	if !m.policy.Valid() {
		return nil, errors.ConfigError(fmt.Sprintf("unknown destination policy %q", m.policy), nil)
	}
	if m.manifest != nil {
		if err := tmpl.Check(m.manifest); err != nil {
			return nil, err
		}
	}

	generated := make(map[string]string, len(frags)+len(extras))
	for _, f := range append(append([]emit.Fragment{}, extras...), frags...) {
		if !validPath(f.Path) {
			return nil, errors.InternalError(fmt.Sprintf("generated path %q is not a clean relative path", f.Path), nil)
		}
		generated[f.Path] = f.Content
	}

	dest = filepath.Clean(dest)
	l := lock.ForDir(dest)
	if err := l.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.New(errors.ErrCodeWriteFailed, fmt.Sprintf("cannot lock %s", dest), err).
			WithDetail("path", l.Path())
	}
	defer func() { _ = l.Unlock() }()

	exists, err := destinationExists(dest)
	if err != nil {
		return nil, err
	}
	if exists && m.policy == PolicyRefuse {
		return nil, errors.New(errors.ErrCodeDestinationExists,
			fmt.Sprintf("destination %s already exists", dest), nil).
			WithDetail("path", dest).
			WithSuggestion("choose another output directory or use --policy replace or --policy preserve")
	}

	staging, err := os.MkdirTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".staging-")
	if err != nil {
		return nil, writeFailed(filepath.Dir(dest), err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	b := &builder{ctx: ctx, root: staging, written: make(map[string]struct{})}
	if err := b.copyTree(tmpl.FS); err != nil {
		return nil, err
	}

	var preserved []string
	if exists && m.policy == PolicyPreserve {
		preserved, err = b.preserve(dest, generated)
		if err != nil {
			return nil, err
		}
	}

	paths := make([]string, 0, len(generated))
	for p := range generated {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := b.write(p, []byte(generated[p]), 0o644); err != nil {
			return nil, err
		}
	}

	if err := swap(staging, dest, exists); err != nil {
		return nil, err
	}
	committed = true

	res := &Result{
		Dest:      dest,
		Files:     b.files(),
		Generated: paths,
		Preserved: preserved,
		Replaced:  exists,
	}
	slog.Info("materialize_complete",
		slog.String("dest", dest),
		slog.String("policy", string(m.policy)),
		slog.Int("files", len(res.Files)),
		slog.Int("preserved", len(preserved)),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

// destinationExists reports whether dest exists. A non-directory at dest is
// an error under every policy.
func destinationExists(dest string) (bool, error) {
	info, err := os.Stat(dest)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, writeFailed(dest, err)
	}
	if !info.IsDir() {
		return false, errors.New(errors.ErrCodeDestinationExists,
			fmt.Sprintf("destination %s exists and is not a directory", dest), nil).
			WithDetail("path", dest)
	}
	return true, nil
}

// swap moves staging into place. An existing destination is moved aside
// first and restored if the second rename fails.
func swap(staging, dest string, exists bool) error {
	if !exists {
		if err := os.Rename(staging, dest); err != nil {
			return writeFailed(dest, err)
		}
		return nil
	}

	old, err := os.MkdirTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".old-")
	if err != nil {
		return writeFailed(dest, err)
	}
	// MkdirTemp reserves the name; Rename needs it free.
	if err := os.Remove(old); err != nil {
		return writeFailed(dest, err)
	}
	if err := os.Rename(dest, old); err != nil {
		return writeFailed(dest, err)
	}
	if err := os.Rename(staging, dest); err != nil {
		if rerr := os.Rename(old, dest); rerr != nil {
			slog.Error("materialize_restore_failed",
				slog.String("dest", dest),
				slog.String("backup", old),
				slog.String("error", rerr.Error()))
		}
		return writeFailed(dest, err)
	}
	if err := os.RemoveAll(old); err != nil {
		slog.Warn("materialize_cleanup_failed", slog.String("path", old), slog.String("error", err.Error()))
	}
	return nil
}

// validPath reports whether p is a clean, slash-separated relative path
// that stays inside the project.
func validPath(p string) bool {
	if p == "" || path.IsAbs(p) || strings.Contains(p, `\`) {
		return false
	}
	return path.Clean(p) == p && p != "." && !strings.HasPrefix(p, "../") && p != ".."
}

func writeFailed(p string, err error) *errors.RmkError {
	code := errors.ErrCodeWriteFailed
	if stderrors.Is(err, fs.ErrPermission) {
		code = errors.ErrCodeFilePermission
	}
	return errors.New(code, fmt.Sprintf("cannot write %s", p), err).WithDetail("path", p)
}
