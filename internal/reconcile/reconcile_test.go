package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/rmkgen/internal/errors"
	"github.com/Aman-CERP/rmkgen/internal/hardware"
	"github.com/Aman-CERP/rmkgen/internal/keymap"
	"github.com/Aman-CERP/rmkgen/internal/layout"
)

func pins(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func normalHardware(rows, cols int) *hardware.Config {
	return &hardware.Config{
		Path: "keyboard.toml",
		Name: "test",
		Chip: "rp2040",
		Matrix: hardware.Matrix{
			Type:       hardware.MatrixNormal,
			InputPins:  pins("R", rows),
			OutputPins: pins("C", cols),
		},
		Rows: rows,
		Cols: cols,
	}
}

func splitHardware(halves ...hardware.Half) *hardware.Config {
	hw := &hardware.Config{Path: "keyboard.toml", Name: "split", Chip: "nrf52840", Rows: 4, Cols: 12}
	hw.Split = &hardware.Split{Connection: hardware.ConnectionBLE, Halves: halves}
	return hw
}

func half(name string, rows, cols, rowOff, colOff int) hardware.Half {
	return hardware.Half{
		Name:      name,
		Central:   name == "central",
		Rows:      rows,
		Cols:      cols,
		RowOffset: rowOff,
		ColOffset: colOff,
		Matrix: hardware.Matrix{
			Type:       hardware.MatrixNormal,
			InputPins:  pins("R", rows),
			OutputPins: pins("C", cols),
		},
	}
}

// gridKeymap builds a keymap with one key per address and one layer.
func gridKeymap(addrs ...layout.Address) *keymap.Config {
	km := &keymap.Config{Path: "vial.json"}
	layer := make([]string, len(addrs))
	for i, a := range addrs {
		km.Positions = append(km.Positions, keymap.Position{
			Label:     fmt.Sprintf("%d,%d", a.Row, a.Col),
			Address:   a,
			Placement: layout.Placement{X: float64(a.Col), Y: float64(a.Row), W: 1, H: 1},
		})
		layer[i] = "KC_A"
	}
	km.Layers = [][]string{layer}
	return km
}

func fullGrid(rows, cols int) []layout.Address {
	var out []layout.Address
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, layout.Address{Row: r, Col: c})
		}
	}
	return out
}

func TestReconcile_BindsKeysAndTokens(t *testing.T) {
	// Given: a 2x2 board and a keymap with two layers
	hw := normalHardware(2, 2)
	km := gridKeymap(fullGrid(2, 2)...)
	km.Layers = [][]string{{"KC_A", "KC_B", "KC_C", "KC_D"}, {"KC_1", "KC_2", "KC_3", "KC_4"}}

	// When: reconciling
	u, err := Reconcile(hw, km, SplitByOffsets)

	// Then: every key carries its address and per-layer tokens
	require.NoError(t, err)
	assert.Equal(t, 2, u.Rows)
	assert.Equal(t, 2, u.Cols)
	assert.Equal(t, 2, u.NumLayers)
	assert.False(t, u.Resolved)
	assert.False(t, u.Split())
	require.Len(t, u.Keys, 4)
	assert.Equal(t, layout.Address{Row: 1, Col: 0}, u.Keys[2].Address)
	assert.Equal(t, []string{"KC_C", "KC_3"}, u.Keys[2].Tokens)
	assert.Same(t, hw, u.Hardware)
}

func TestReconcile_MatrixCapacity(t *testing.T) {
	// Given: a 4x6 matrix
	hw := normalHardware(4, 6)

	t.Run("24 keys fit", func(t *testing.T) {
		_, err := Reconcile(hw, gridKeymap(fullGrid(4, 6)...), SplitByOffsets)
		assert.NoError(t, err)
	})

	t.Run("25 keys do not", func(t *testing.T) {
		addrs := append(fullGrid(4, 6), layout.Address{Row: 0, Col: 0})

		_, err := Reconcile(hw, gridKeymap(addrs...), SplitByOffsets)

		require.Error(t, err)
		problems := errors.Problems(err)
		require.NotEmpty(t, problems)
		assert.Equal(t, errors.ErrCodeMatrixTooSmall, problems[0].Code)
		assert.Contains(t, problems[0].Message, "25 keys")
		assert.Contains(t, problems[0].Message, "24 positions")
	})
}

func TestReconcile_DeclaredMatrixTooLarge(t *testing.T) {
	km := gridKeymap(fullGrid(2, 2)...)
	km.Matrix = &keymap.MatrixSize{Rows: 3, Cols: 2}

	_, err := Reconcile(normalHardware(2, 2), km, SplitByOffsets)

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New(errors.ErrCodeMatrixTooSmall, "", nil))
}

func TestReconcile_AddressOutOfBounds(t *testing.T) {
	// Given: a key at column 6 on a 4x6 board
	km := gridKeymap(layout.Address{Row: 0, Col: 0}, layout.Address{Row: 1, Col: 6})

	// When: reconciling
	_, err := Reconcile(normalHardware(4, 6), km, SplitByOffsets)

	// Then: the out-of-bounds key is named
	require.Error(t, err)
	problems := errors.Problems(err)
	require.Len(t, problems, 1)
	assert.Equal(t, errors.ErrCodeAddressOutOfBounds, problems[0].Code)
	assert.Equal(t, "1", problems[0].Detail("position"))
	assert.Equal(t, "(1,6)", problems[0].Detail("address"))
}

func TestReconcile_DuplicateAddress(t *testing.T) {
	km := gridKeymap(layout.Address{Row: 0, Col: 0}, layout.Address{Row: 0, Col: 1}, layout.Address{Row: 0, Col: 0})

	_, err := Reconcile(normalHardware(2, 2), km, SplitByOffsets)

	require.Error(t, err)
	problems := errors.Problems(err)
	require.Len(t, problems, 1)
	assert.Equal(t, errors.ErrCodeDuplicateAddress, problems[0].Code)
	assert.Equal(t, "0", problems[0].Detail("first_position"))
	assert.Equal(t, "2", problems[0].Detail("position"))
}

func TestReconcile_CollectsProblemsInCheckOrder(t *testing.T) {
	// Given: a keymap that is too large, out of bounds and has duplicates
	km := gridKeymap(
		layout.Address{Row: 0, Col: 0},
		layout.Address{Row: 5, Col: 5},
		layout.Address{Row: 0, Col: 0},
	)

	// When: reconciling against a 1x2 board
	_, err := Reconcile(normalHardware(1, 2), km, SplitByOffsets)

	// Then: all problems are reported in check order
	require.Error(t, err)
	var codes []string
	for _, p := range errors.Problems(err) {
		codes = append(codes, p.Code)
	}
	assert.Equal(t, []string{
		errors.ErrCodeMatrixTooSmall,
		errors.ErrCodeAddressOutOfBounds,
		errors.ErrCodeDuplicateAddress,
	}, codes)
}

func TestReconcile_SucceedsIffBoundsAndUnique(t *testing.T) {
	hw := normalHardware(3, 3)
	tests := []struct {
		name  string
		addrs []layout.Address
		ok    bool
	}{
		{"full grid", fullGrid(3, 3), true},
		{"sparse", []layout.Address{{Row: 0, Col: 2}, {Row: 2, Col: 0}}, true},
		{"negative", []layout.Address{{Row: -1, Col: 0}}, false},
		{"row overflow", []layout.Address{{Row: 3, Col: 0}}, false},
		{"duplicate", []layout.Address{{Row: 1, Col: 1}, {Row: 1, Col: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(hw, gridKeymap(tt.addrs...), SplitByOffsets)
			assert.Equal(t, tt.ok, err == nil, "err: %v", err)
		})
	}
}

func TestReconcile_SplitAssignsHalves(t *testing.T) {
	// Given: two 4x6 halves side by side
	hw := splitHardware(half("central", 4, 6, 0, 0), half("peripheral0", 4, 6, 0, 6))
	km := gridKeymap(fullGrid(4, 12)...)

	// When: reconciling
	u, err := Reconcile(hw, km, SplitByOffsets)

	// Then: keys are assigned by column
	require.NoError(t, err)
	require.Len(t, u.Halves, 2)
	assert.Equal(t, layout.Rect{RowEnd: 4, ColStart: 6, ColEnd: 12}, u.Halves[1].Range)
	assert.Equal(t, 0, u.Keys[5].Half)
	assert.Equal(t, 1, u.Keys[6].Half)
}

func TestReconcile_SplitOverlapNamesRange(t *testing.T) {
	// Given: halves overlapping on columns 4 and 5
	hw := splitHardware(half("central", 4, 6, 0, 0), half("peripheral0", 4, 6, 0, 4))
	hw.Cols = 10
	km := gridKeymap(fullGrid(4, 10)...)

	// When: reconciling
	_, err := Reconcile(hw, km, SplitByOffsets)

	// Then: the overlap is reported with its range
	require.Error(t, err)
	problems := errors.Problems(err)
	require.Len(t, problems, 1)
	assert.Equal(t, errors.ErrCodeSplitLayoutMismatch, problems[0].Code)
	assert.Equal(t, "rows [0,4) x cols [4,6)", problems[0].Detail("range"))
}

func TestReconcile_SplitHalfOutsideMatrix(t *testing.T) {
	hw := splitHardware(half("central", 4, 6, 0, 0), half("peripheral0", 4, 6, 0, 8))
	km := gridKeymap(fullGrid(4, 12)...)

	_, err := Reconcile(hw, km, SplitByOffsets)

	require.Error(t, err)
	var found bool
	for _, p := range errors.Problems(err) {
		if p.Code == errors.ErrCodeSplitLayoutMismatch && p.Detail("half") == "peripheral0" &&
			p.Detail("range") == "rows [0,4) x cols [8,14)" {
			found = true
		}
	}
	assert.True(t, found, "expected out-of-matrix half, got %v", err)
}

func TestReconcile_SplitPinCountMismatch(t *testing.T) {
	right := half("peripheral0", 4, 6, 0, 6)
	right.Matrix.OutputPins = pins("C", 5)
	hw := splitHardware(half("central", 4, 6, 0, 0), right)

	_, err := Reconcile(hw, gridKeymap(fullGrid(4, 12)...), SplitByOffsets)

	require.Error(t, err)
	problems := errors.Problems(err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Message, "pins provide 4x5")
}

func TestReconcile_SplitKeyOutsideHalves(t *testing.T) {
	// Given: halves that leave row 3 uncovered
	hw := splitHardware(half("central", 3, 6, 0, 0), half("peripheral0", 3, 6, 0, 6))
	km := gridKeymap(layout.Address{Row: 0, Col: 0}, layout.Address{Row: 0, Col: 6}, layout.Address{Row: 3, Col: 0})

	_, err := Reconcile(hw, km, SplitByOffsets)

	require.Error(t, err)
	problems := errors.Problems(err)
	require.Len(t, problems, 1)
	assert.Equal(t, "2", problems[0].Detail("position"))
}

func TestReconcile_SplitPolicies(t *testing.T) {
	// Given: halves declared without offsets
	hw := splitHardware(half("central", 2, 12, 0, 0), half("peripheral0", 2, 12, 0, 0))

	t.Run("offsets overlap", func(t *testing.T) {
		_, err := Reconcile(hw, gridKeymap(fullGrid(4, 12)...), SplitByOffsets)
		assert.ErrorIs(t, err, errors.New(errors.ErrCodeSplitLayoutMismatch, "", nil))
	})

	t.Run("rows stacks halves", func(t *testing.T) {
		u, err := Reconcile(hw, gridKeymap(fullGrid(4, 12)...), SplitByRows)
		require.NoError(t, err)
		assert.Equal(t, layout.Rect{RowStart: 2, RowEnd: 4, ColEnd: 12}, u.Halves[1].Range)
		assert.Equal(t, 1, u.Keys[24].Half)
	})

	t.Run("columns rejects rows beyond half height", func(t *testing.T) {
		_, err := Reconcile(hw, gridKeymap(fullGrid(4, 12)...), SplitByColumns)
		assert.Error(t, err)
	})
}

func TestParseSplitPolicy(t *testing.T) {
	p, err := ParseSplitPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SplitByOffsets, p)

	p, err = ParseSplitPolicy(" Rows ")
	require.NoError(t, err)
	assert.Equal(t, SplitByRows, p)

	_, err = ParseSplitPolicy("diagonal")
	assert.Equal(t, errors.ErrCodeGeneratorConfigInvalid, errors.GetCode(err))
}

func TestReconcile_NilInputsAreDefects(t *testing.T) {
	_, err := Reconcile(nil, nil, SplitByOffsets)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInternal, errors.GetCode(err))
}
