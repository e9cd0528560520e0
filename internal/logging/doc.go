// Package logging configures log/slog for rmkgen.
//
// By default rmkgen logs warnings and errors as text to stderr. With --debug
// it writes JSON at debug level to ~/.rmkgen/logs/rmkgen.log, rotated by
// size, as well as to stderr.
package logging
