package keymap

import (
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/layout"
)

// knownKeys are the top-level keys interpreted by Parse.
var knownKeys = map[string]bool{
	"name":           true,
	"schema_version": true,
	"matrix":         true,
	"layouts":        true,
	"layers":         true,
}

// optionLegend is the legend line carrying "option,choice" for Vial layout
// options. Keys of a non-default choice are alternates and are skipped.
const optionLegend = 3

// Load reads and parses the keymap description at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeFileNotFound
		if stderrors.Is(err, os.ErrPermission) {
			code = errors.ErrCodeFilePermission
		}
		return nil, errors.New(code, fmt.Sprintf("cannot read keymap description %s", path), err).
			WithDetail("file", path)
	}
	return Parse(path, data)
}

// Parse parses a vial.json document. path is only used in error details.
func Parse(path string, data []byte) (*Config, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.MalformedConfig(path, "", "invalid JSON").
			WithSuggestion("check the file with a JSON validator; trailing commas are not allowed")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.MalformedConfig(path, "", "top level must be a JSON object")
	}

	p := &parser{path: path}
	cfg := &Config{Path: path, Raw: append([]byte(nil), data...)}

	p.header(root, cfg)
	cfg.Positions = p.positions(root.Get("layouts"))
	cfg.Layers = p.layers(root.Get("layers"), len(cfg.Positions))

	if err := p.report.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type parser struct {
	path   string
	report errors.Report
}

func (p *parser) malformed(field, format string, args ...any) *errors.RmkError {
	e := errors.MalformedConfig(p.path, field, fmt.Sprintf(format, args...))
	p.report.Add(e)
	return e
}

func (p *parser) header(root gjson.Result, cfg *Config) {
	root.ForEach(func(key, value gjson.Result) bool {
		if !knownKeys[key.Str] {
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]string)
			}
			cfg.Extra[key.Str] = value.Raw
		}
		return true
	})

	if v := root.Get("schema_version"); v.Exists() {
		n, ok := asInt(v)
		if !ok || n < 0 || n > SupportedSchemaVersion {
			p.malformed("schema_version", "unsupported schema_version %s (supported: up to %d)",
				v.Raw, SupportedSchemaVersion)
		}
	}

	if v := root.Get("name"); v.Exists() {
		if v.Type != gjson.String {
			p.malformed("name", "name must be a string")
		} else {
			cfg.Name = v.Str
		}
	}

	if v := root.Get("matrix"); v.Exists() {
		rows, rok := asInt(v.Get("rows"))
		cols, cok := asInt(v.Get("cols"))
		if !v.IsObject() || !rok || !cok || rows <= 0 || cols <= 0 {
			p.malformed("matrix", "matrix must be an object with positive integer rows and cols")
		} else {
			cfg.Matrix = &MatrixSize{Rows: rows, Cols: cols}
		}
	}
}

// positions walks the KLE rows of layouts.keymap.
func (p *parser) positions(layouts gjson.Result) []Position {
	keymap := layouts.Get("keymap")
	if !keymap.Exists() {
		p.malformed("layouts.keymap", "missing layouts.keymap")
		return nil
	}
	if !keymap.IsArray() {
		p.malformed("layouts.keymap", "layouts.keymap must be an array of rows")
		return nil
	}

	var out []Position
	y := 0.0
	for r, row := range keymap.Array() {
		field := fmt.Sprintf("layouts.keymap[%d]", r)
		if !row.IsArray() {
			p.malformed(field, "keymap rows must be arrays")
			continue
		}
		x := 0.0
		w, h := 1.0, 1.0
		decal := false
		for i, item := range row.Array() {
			itemField := fmt.Sprintf("%s[%d]", field, i)
			switch {
			case item.IsObject():
				x += item.Get("x").Float()
				y += item.Get("y").Float()
				if v := item.Get("w"); v.Exists() {
					w = v.Float()
				}
				if v := item.Get("h"); v.Exists() {
					h = v.Float()
				}
				if item.Get("d").Bool() {
					decal = true
				}
			case item.Type == gjson.String:
				if decal {
					decal = false
				} else if pos, ok := p.position(itemField, item.Str); ok {
					pos.Placement = layout.Placement{X: x, Y: y, W: w, H: h}
					out = append(out, pos)
				}
				x += w
				w, h = 1.0, 1.0
			default:
				p.malformed(itemField, "keymap entries must be label strings or property objects")
			}
		}
		y++
	}
	return out
}

// position decodes a key label. It returns false for invalid labels and for
// alternate layout-option keys.
func (p *parser) position(field, label string) (Position, bool) {
	legends := strings.Split(label, "\n")
	if len(legends) > optionLegend {
		if opt := strings.TrimSpace(legends[optionLegend]); opt != "" {
			parts := strings.Split(opt, ",")
			if len(parts) == 2 && strings.TrimSpace(parts[1]) != "0" {
				return Position{}, false
			}
		}
	}

	first := strings.TrimSpace(legends[0])
	parts := strings.Split(first, ",")
	if len(parts) != 2 {
		p.malformed(field, "key label %q is not \"row,col\"", first)
		return Position{}, false
	}
	row, rerr := strconv.Atoi(strings.TrimSpace(parts[0]))
	col, cerr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if rerr != nil || cerr != nil || row < 0 || col < 0 {
		p.malformed(field, "key label %q is not \"row,col\"", first)
		return Position{}, false
	}
	return Position{Label: first, Address: layout.Address{Row: row, Col: col}}, true
}

func (p *parser) layers(v gjson.Result, numKeys int) [][]string {
	if !v.Exists() {
		p.malformed("layers", "missing layers")
		return nil
	}
	if !v.IsArray() {
		p.malformed("layers", "layers must be an array of token arrays")
		return nil
	}
	raw := v.Array()
	if len(raw) == 0 {
		p.report.Add(errors.New(errors.ErrCodeEmptyLayerSet, "keymap defines no layers", nil).
			WithDetail("file", p.path).
			WithDetail("field", "layers").
			WithSuggestion("add at least one layer with one token per key"))
		return nil
	}

	out := make([][]string, 0, len(raw))
	for l, layer := range raw {
		field := fmt.Sprintf("layers[%d]", l)
		if !layer.IsArray() {
			p.malformed(field, "layer %d must be an array of tokens", l).WithDetail("layer", strconv.Itoa(l))
			continue
		}
		items := layer.Array()
		tokens := make([]string, 0, len(items))
		valid := true
		for i, tok := range items {
			if tok.Type != gjson.String {
				p.malformed(fmt.Sprintf("%s[%d]", field, i), "layer %d token %d must be a string", l, i).
					WithDetail("layer", strconv.Itoa(l)).
					WithDetail("position", strconv.Itoa(i))
				valid = false
				continue
			}
			tokens = append(tokens, tok.Str)
		}
		if len(items) != numKeys {
			p.malformed(field, "layer %d has %d tokens but the layout has %d keys", l, len(items), numKeys).
				WithDetail("layer", strconv.Itoa(l))
			valid = false
		}
		if valid {
			out = append(out, tokens)
		}
	}
	return out
}

// asInt returns v as an int when it is an integral JSON number.
func asInt(v gjson.Result) (int, bool) {
	if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) {
		return 0, false
	}
	return int(v.Num), true
}
