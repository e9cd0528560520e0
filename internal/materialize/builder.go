package materialize

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Aman-CERP/rmkgen/internal/errors"
)

// builder writes files under a staging root and remembers what it wrote.
type builder struct {
	ctx     context.Context
	root    string
	written map[string]struct{}
}

func (b *builder) write(rel string, data []byte, mode fs.FileMode) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	target := filepath.Join(b.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return writeFailed(target, err)
	}
	if err := os.WriteFile(target, data, mode); err != nil {
		return writeFailed(target, err)
	}
	b.written[rel] = struct{}{}
	return nil
}

// copyTree copies every regular file of fsys.
func (b *builder) copyTree(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.New(errors.ErrCodeTemplateIncomplete, "cannot read template", err).WithDetail("path", p)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.New(errors.ErrCodeTemplateIncomplete, "cannot read template file "+p, err).WithDetail("path", p)
		}
		return b.write(p, data, 0o644)
	})
}

// preserve copies the files of an existing destination that are not
// generated, keeping their modes, and returns their paths.
func (b *builder) preserve(dest string, generated map[string]string) ([]string, error) {
	var kept []string
	err := filepath.WalkDir(dest, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return writeFailed(p, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dest, p)
		if err != nil {
			return writeFailed(p, err)
		}
		rel = filepath.ToSlash(rel)
		if _, ok := generated[rel]; ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return writeFailed(p, err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return writeFailed(p, err)
		}
		kept = append(kept, rel)
		return b.write(rel, data, info.Mode().Perm())
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(kept)
	return kept, nil
}

func (b *builder) files() []string {
	out := make([]string, 0, len(b.written))
	for p := range b.written {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
