// Package configs provides files embedded into the rmkgen binary.
//
// Templates are embedded at build time using Go's //go:embed directive, so they
// are available in every distribution without network access:
//   - rmkgen.example.yaml: the generator configuration written by
//     `rmkgen config init` (see internal/config Load for the layering)
//   - template/: a minimal project skeleton used by `--template embedded`,
//     one folder for normal keyboards and one for split keyboards
//
// To modify them, edit the files in this directory and rebuild.
package configs

import "embed"

// ConfigTemplate is the commented generator configuration.
// Created by: `rmkgen config init` at .rmkgen.yaml in the working directory.
//
//go:embed rmkgen.example.yaml
var ConfigTemplate string

// Skeleton holds the offline project skeleton under template/normal and
// template/split. The all: prefix keeps the .cargo directories.
//
//go:embed all:template
var Skeleton embed.FS

// SkeletonRoot is the directory of Skeleton holding the variant folders.
const SkeletonRoot = "template"
