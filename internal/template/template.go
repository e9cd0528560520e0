// Package template acquires the RMK project template a keyboard is generated
// from.
//
// A template repository holds one folder per variant: the chip name for
// normal keyboards, "<chip>_split" for split keyboards. A Source locates a
// repository (local directory, zip archive, download, or the embedded
// skeleton) and returns the variant folder as a Tree. Template files are
// copied verbatim; nothing in them is rendered.
package template

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/Aman-CERP/rmkgen/internal/errors"
)

// DefaultURL is the archive of the upstream rmk-template main branch.
const DefaultURL = "https://github.com/HaoboGu/rmk-template/archive/refs/heads/main.zip"

// EmbeddedSpec selects the embedded skeleton.
const EmbeddedSpec = "embedded"

// BranchURL returns the archive URL of an rmk-template branch.
func BranchURL(branch string) string {
	return fmt.Sprintf("https://github.com/HaoboGu/rmk-template/archive/refs/heads/%s.zip", branch)
}

// Tree is one template variant folder.
type Tree struct {
	// Variant is the folder name, e.g. "nrf52840_split".
	Variant string
	// Origin describes where the tree came from, for logs and errors.
	Origin string
	// FS is rooted at the variant folder.
	FS fs.FS
}

// Files returns the slash-separated paths of every regular file, sorted.
func (t *Tree) Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(t.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New(errors.ErrCodeTemplateIncomplete,
			fmt.Sprintf("cannot list template %s", t.Origin), err)
	}
	sort.Strings(files)
	return files, nil
}

// Has reports whether p exists as a regular file in the tree.
func (t *Tree) Has(p string) bool {
	info, err := fs.Stat(t.FS, p)
	return err == nil && info.Mode().IsRegular()
}

// Check returns TemplateIncomplete listing every path of m missing from t.
func (t *Tree) Check(m Manifest) error {
	var missing []string
	for _, p := range m.Required() {
		if !t.Has(p) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.New(errors.ErrCodeTemplateIncomplete,
		fmt.Sprintf("template %s (%s) is missing %s", t.Variant, t.Origin, strings.Join(missing, ", ")), nil).
		WithDetail("path", strings.Join(missing, ",")).
		WithSuggestion("check the template source or use --template embedded")
}

// Manifest lists the paths a template variant must provide.
type Manifest interface {
	Required() []string
}

// RequiredPaths is a fixed Manifest.
type RequiredPaths []string

// Required implements Manifest.
func (r RequiredPaths) Required() []string { return r }

var (
	// NormalManifest is what a normal keyboard template must contain.
	NormalManifest = RequiredPaths{"Cargo.toml", "src/main.rs"}
	// SplitManifest is what a split keyboard template must contain.
	SplitManifest = RequiredPaths{"Cargo.toml", "src/central.rs", "src/peripheral.rs"}
)

// ManifestFor returns the manifest for a normal or split keyboard.
func ManifestFor(split bool) Manifest {
	if split {
		return SplitManifest
	}
	return NormalManifest
}

// Source provides template variants.
type Source interface {
	// Fetch returns the variant folder.
	Fetch(ctx context.Context, variant string) (*Tree, error)
	// String describes the source.
	String() string
}

// NewSource returns the Source described by spec: "embedded", an http(s)
// URL, a path ending in ".zip", or a directory. An empty spec selects
// DefaultURL.
func NewSource(spec string, opts ...Option) (Source, error) {
	switch {
	case spec == "":
		return NewHTTPSource(DefaultURL, opts...), nil
	case spec == EmbeddedSpec:
		return NewEmbeddedSource(), nil
	case strings.HasPrefix(spec, "https://") || strings.HasPrefix(spec, "http://"):
		return NewHTTPSource(spec, opts...), nil
	case strings.HasSuffix(strings.ToLower(spec), ".zip"):
		return NewZipSource(spec), nil
	default:
		return NewDirSource(spec), nil
	}
}

// sub returns the variant folder of a repository root.
func sub(root fs.FS, variant, origin string) (*Tree, error) {
	if variant == "" || strings.ContainsAny(variant, `/\`) || variant == "." || variant == ".." {
		return nil, errors.InternalError(fmt.Sprintf("invalid template variant %q", variant), nil)
	}
	info, err := fs.Stat(root, variant)
	if err != nil || !info.IsDir() {
		e := errors.New(errors.ErrCodeTemplateVariantNotFound,
			fmt.Sprintf("template %s has no %s folder", origin, variant), err).
			WithDetail("path", variant)
		if avail := variants(root); len(avail) > 0 {
			e.WithSuggestion("available variants: " + strings.Join(avail, ", "))
		}
		return nil, e
	}
	fsys, err := fs.Sub(root, variant)
	if err != nil {
		return nil, errors.InternalError("cannot open template variant", err)
	}
	return &Tree{Variant: variant, Origin: origin + "/" + variant, FS: fsys}, nil
}

// variants lists the top-level folders of a repository, skipping hidden ones.
func variants(root fs.FS) []string {
	entries, err := fs.ReadDir(root, ".")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// commonRoot returns the single top-level directory shared by every zip
// entry name, or "" when there is none. GitHub archives wrap the repository
// this way.
func commonRoot(names []string) string {
	root := ""
	for _, n := range names {
		dir := strings.HasSuffix(n, "/")
		first, _, nested := strings.Cut(strings.TrimSuffix(n, "/"), "/")
		if !nested && !dir {
			return ""
		}
		if root == "" {
			root = first
		} else if root != first {
			return ""
		}
	}
	return root
}
