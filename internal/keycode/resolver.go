// Package keycode resolves keymap tokens such as "KC_A", "LSFT(KC_1)" or
// "LT(2, KC_SPC)" into layout.Keycode values.
//
// Resolution tries, in order: the plain table, modifier wrappers, layer
// directives, macro references. Transparent and no-op tokens live in the
// plain table. Anything else is an unknown keycode.
package keycode

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/layout"
)

// Resolver resolves the tokens of a reconciled layout.
type Resolver struct {
	workers int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWorkers bounds how many layers are resolved concurrently.
// Values below 1 select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		r.workers = n
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.NumCPU()
	}
	return r
}

// Resolve returns a copy of u with every key's tokens resolved.
// Layers are resolved concurrently; problems are reported in layer order,
// then key order.
func (r *Resolver) Resolve(ctx context.Context, u *layout.Unified) (*layout.Unified, error) {
	if u == nil {
		return nil, errors.InternalError("resolve called without a layout", nil)
	}
	if u.NumLayers == 0 {
		return nil, errors.New(errors.ErrCodeEmptyLayerSet, "keymap defines no layers", nil).
			WithDetail("file", u.KeymapPath)
	}

	start := time.Now()
	codes := make([][]layout.Keycode, u.NumLayers)
	problems := make([][]*errors.RmkError, u.NumLayers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for l := 0; l < u.NumLayers; l++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			codes[l], problems[l] = r.resolveLayer(u, l)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var report errors.Report
	for _, p := range problems {
		report.Add(p...)
	}
	if err := report.Err(); err != nil {
		slog.Debug("resolve_failed",
			slog.Int("problems", report.Len()),
			slog.Duration("duration", time.Since(start)))
		return nil, err
	}

	slog.Debug("resolve_complete",
		slog.Int("layers", u.NumLayers),
		slog.Int("keys", len(u.Keys)),
		slog.Int("workers", r.workers),
		slog.Duration("duration", time.Since(start)))
	return u.WithKeycodes(codes), nil
}

func (r *Resolver) resolveLayer(u *layout.Unified, l int) ([]layout.Keycode, []*errors.RmkError) {
	out := make([]layout.Keycode, len(u.Keys))
	var problems []*errors.RmkError
	for i, k := range u.Keys {
		if l >= len(k.Tokens) {
			problems = append(problems, errors.InternalError(
				fmt.Sprintf("key %d has no token for layer %d", k.Index, l), nil))
			continue
		}
		kc, err := r.ResolveToken(k.Tokens[l], u.NumLayers)
		if err != nil {
			problems = append(problems, err.
				WithDetail("file", u.KeymapPath).
				WithDetail("layer", strconv.Itoa(l)).
				WithDetail("position", strconv.Itoa(k.Index)).
				WithDetail("address", k.Address.String()))
			continue
		}
		out[i] = kc
	}
	return out, problems
}

// ResolveToken resolves a single token against a keymap with layerCount layers.
func (r *Resolver) ResolveToken(token string, layerCount int) (layout.Keycode, *errors.RmkError) {
	trimmed := strings.TrimSpace(token)
	if kc, ok := Lookup(trimmed); ok {
		return kc, nil
	}
	e, err := parseExpr(trimmed)
	if err != nil {
		return layout.Keycode{}, unknown(token, err.Error())
	}
	kc, rerr := resolveExpr(e, layerCount)
	if rerr != nil {
		return layout.Keycode{}, rerr.WithDetail("token", token)
	}
	return kc, nil
}

func resolveExpr(e expr, layerCount int) (layout.Keycode, *errors.RmkError) {
	if !e.Call {
		return resolveName(e.Name)
	}
	name := e.Name

	if mods, ok := modifierFuncs[name]; ok {
		return resolveModified(e, mods, layerCount)
	}
	if action, ok := layerFuncs[name]; ok {
		if len(e.Args) != 1 {
			return layout.Keycode{}, unknown(e.String(), name+" takes exactly one layer number")
		}
		n, err := layerArg(e.Args[0], layerCount)
		if err != nil {
			return layout.Keycode{}, err
		}
		return layout.LayerSwitch(action, n, ""), nil
	}
	if name == "LT" {
		if len(e.Args) != 2 {
			return layout.Keycode{}, unknown(e.String(), "LT takes a layer number and a keycode")
		}
		return resolveLayerTap(e, e.Args[0], e.Args[1], layerCount)
	}
	if n, ok := numberSuffix(name, "LT"); ok && len(e.Args) == 1 {
		return resolveLayerTap(e, expr{Name: strconv.Itoa(n)}, e.Args[0], layerCount)
	}
	if name == "MACRO" {
		if len(e.Args) != 1 || e.Args[0].Call {
			return layout.Keycode{}, unknown(e.String(), "MACRO takes a macro number")
		}
		n, err := strconv.Atoi(e.Args[0].Name)
		if err != nil {
			return layout.Keycode{}, unknown(e.String(), "MACRO takes a macro number")
		}
		return macro(e.String(), n)
	}
	return layout.Keycode{}, unknown(e.String(), "")
}

func resolveName(name string) (layout.Keycode, *errors.RmkError) {
	if kc, ok := Lookup(name); ok {
		return kc, nil
	}
	if n, ok := numberSuffix(name, "USER"); ok {
		if n > MaxMacro {
			return layout.Keycode{}, unknown(name, fmt.Sprintf("user keycodes range from 0 to %d", MaxMacro))
		}
		return layout.Plain(fmt.Sprintf("User%d", n)), nil
	}
	if n, ok := numberSuffix(name, "M"); ok {
		return macro(name, n)
	}
	return layout.Keycode{}, unknown(name, "")
}

func resolveModified(e expr, mods layout.Modifier, layerCount int) (layout.Keycode, *errors.RmkError) {
	if len(e.Args) != 1 {
		return layout.Keycode{}, unknown(e.String(), e.Name+" wraps exactly one keycode")
	}
	inner, err := resolveExpr(e.Args[0], layerCount)
	if err != nil {
		return layout.Keycode{}, err
	}
	switch inner.Kind {
	case layout.KindPlain, layout.KindModified:
	default:
		return layout.Keycode{}, unknown(e.String(),
			fmt.Sprintf("%s can only wrap a basic keycode, not %s", e.Name, inner.Kind))
	}
	combined := mods | inner.Mods
	if combined.MixesSides() {
		return layout.Keycode{}, unknown(e.String(), "left and right modifiers cannot be combined")
	}
	return layout.Modified(inner.Code, combined), nil
}

func resolveLayerTap(e, layerExpr, tapExpr expr, layerCount int) (layout.Keycode, *errors.RmkError) {
	n, err := layerArg(layerExpr, layerCount)
	if err != nil {
		return layout.Keycode{}, err
	}
	tap, err := resolveExpr(tapExpr, layerCount)
	if err != nil {
		return layout.Keycode{}, err
	}
	if tap.Kind != layout.KindPlain {
		return layout.Keycode{}, unknown(e.String(), "the tap action of LT must be a basic keycode")
	}
	return layout.LayerSwitch(layout.LayerTap, n, tap.Code), nil
}

func layerArg(arg expr, layerCount int) (int, *errors.RmkError) {
	if arg.Call {
		return 0, unknown(arg.String(), "expected a layer number")
	}
	n, err := strconv.Atoi(arg.Name)
	if err != nil {
		return 0, unknown(arg.Name, "expected a layer number")
	}
	if n < 0 || n >= layerCount {
		return 0, errors.Newf(errors.ErrCodeLayerOutOfRange,
			"layer %d does not exist, the keymap has %d layers", n, layerCount).
			WithDetail("target", strconv.Itoa(n)).
			WithSuggestion(fmt.Sprintf("layer numbers range from 0 to %d", layerCount-1))
	}
	return n, nil
}

func macro(token string, n int) (layout.Keycode, *errors.RmkError) {
	if n < 0 || n > MaxMacro {
		return layout.Keycode{}, unknown(token, fmt.Sprintf("macros range from 0 to %d", MaxMacro))
	}
	return layout.MacroRef(n), nil
}

// numberSuffix parses names like "M12" or "USER3".
func numberSuffix(name, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

func unknown(token, reason string) *errors.RmkError {
	msg := fmt.Sprintf("unknown keycode %q", token)
	if reason != "" {
		msg += ": " + reason
	}
	return errors.New(errors.ErrCodeUnknownKeycode, msg, nil).
		WithDetail("token", token).
		WithSuggestion("run 'rmkgen keycodes' to list supported tokens")
}
