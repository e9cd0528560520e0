package template

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Aman-CERP/rmkgen/configs"
	"github.com/Aman-CERP/rmkgen/internal/errors"
)

// DirSource reads a local rmk-template checkout.
type DirSource struct {
	Root string
}

// NewDirSource creates a DirSource rooted at root.
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, variant string) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(s.Root)
	if err != nil || !info.IsDir() {
		return nil, errors.New(errors.ErrCodeFileNotFound,
			fmt.Sprintf("template directory %s does not exist", s.Root), err).
			WithDetail("path", s.Root)
	}
	return sub(os.DirFS(s.Root), variant, s.Root)
}

func (s *DirSource) String() string { return s.Root }

// ZipSource reads a local template archive. A single top-level folder, as
// in GitHub branch archives, is stripped.
type ZipSource struct {
	Path string
}

// NewZipSource creates a ZipSource for the archive at path.
func NewZipSource(path string) *ZipSource {
	return &ZipSource{Path: path}
}

// Fetch implements Source.
func (s *ZipSource) Fetch(ctx context.Context, variant string) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		code := errors.ErrCodeFileNotFound
		if stderrors.Is(err, os.ErrPermission) {
			code = errors.ErrCodeFilePermission
		}
		return nil, errors.New(code, fmt.Sprintf("cannot read template archive %s", s.Path), err).
			WithDetail("path", s.Path)
	}
	return zipTree(data, variant, s.Path)
}

func (s *ZipSource) String() string { return s.Path }

// zipTree opens an in-memory archive and returns its variant folder.
func zipTree(data []byte, variant, origin string) (*Tree, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.New(errors.ErrCodeTemplateIncomplete,
			fmt.Sprintf("%s is not a valid zip archive", origin), err).
			WithDetail("path", origin)
	}
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}

	var root fs.FS = zr
	if top := commonRoot(names); top != "" && top != variant {
		root, err = fs.Sub(zr, top)
		if err != nil {
			return nil, errors.InternalError("cannot open archive folder", err)
		}
		origin = origin + "!" + top
	}
	return sub(root, variant, origin)
}

// EmbeddedSource serves the skeleton compiled into the binary. Every chip
// shares one normal and one split skeleton.
type EmbeddedSource struct{}

// NewEmbeddedSource creates an EmbeddedSource.
func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{}
}

// Fetch implements Source.
func (s *EmbeddedSource) Fetch(ctx context.Context, variant string) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := fs.Sub(configs.Skeleton, configs.SkeletonRoot)
	if err != nil {
		return nil, errors.InternalError("embedded skeleton missing", err)
	}
	folder := "normal"
	if strings.HasSuffix(variant, "_split") {
		folder = "split"
	}
	tree, err := sub(root, folder, "embedded")
	if err != nil {
		return nil, err
	}
	tree.Variant = variant
	return tree, nil
}

func (s *EmbeddedSource) String() string { return EmbeddedSpec }
