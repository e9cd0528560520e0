package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	// Given: an RmkError with location details
	err := New(ErrCodeUnknownKeycode, `unknown keycode "KC_FOO"`, nil).
		WithDetail("layer", "1").
		WithDetail("position", "4").
		WithDetail("file", "vial.json")

	// When: formatting for user
	result := FormatForUser(err, false)

	// Then: message, ordered location and code are shown
	assert.Contains(t, result, `unknown keycode "KC_FOO"`)
	assert.Contains(t, result, "at file=vial.json layer=1 position=4")
	assert.Contains(t, result, "[ERR_408_UNKNOWN_KEYCODE]")
}

func TestFormatForUser_DefectIsLabelledDistinctly(t *testing.T) {
	result := FormatForUser(EmissionError("unresolved keycode at layer 0"), false)

	assert.Contains(t, result, "Internal error (generator defect)")
	assert.Contains(t, result, "Suggestion:")
}

func TestFormatForUser_DebugShowsCause(t *testing.T) {
	err := New(ErrCodeFileNotFound, "cannot read keyboard.toml", errors.New("no such file"))

	assert.NotContains(t, FormatForUser(err, false), "no such file")
	assert.Contains(t, FormatForUser(err, true), "Cause: no such file")
}

func TestFormatForUser_StandardError(t *testing.T) {
	result := FormatForUser(errors.New("something went wrong"), false)
	assert.Equal(t, "something went wrong", result)
}

func TestFormatForCLI_ListsEveryProblem(t *testing.T) {
	// Given: a report with two problems
	var r Report
	r.Add(
		Newf(ErrCodeUnknownKeycode, `unknown keycode "KC_FOO"`).WithDetail("layer", "0"),
		Newf(ErrCodeUnknownKeycode, `unknown keycode "KC_BAR"`).WithSuggestion("run 'rmkgen keycodes'"),
	)

	// When: formatting for the CLI
	result := FormatForCLI(r.Err())

	// Then: both problems appear with their code
	assert.Contains(t, result, "2 problems found")
	assert.Contains(t, result, "KC_FOO")
	assert.Contains(t, result, "KC_BAR")
	assert.Contains(t, result, "At:   layer=0")
	assert.Contains(t, result, "Hint: run 'rmkgen keycodes'")
	assert.Contains(t, result, "Code: ERR_408_UNKNOWN_KEYCODE")
}

func TestFormatForCLI_Nil(t *testing.T) {
	assert.Equal(t, "", FormatForCLI(nil))
}

func TestFormatJSON_ReportsAllProblems(t *testing.T) {
	var r Report
	r.Add(
		Newf(ErrCodeDuplicatePin, "dup").WithDetail("pin", "PIN_1"),
		EmissionError("bad"),
	)

	data, err := FormatJSON(r.Err())
	require.NoError(t, err)

	var parsed struct {
		Problems []map[string]any `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed.Problems, 2)
	assert.Equal(t, ErrCodeDuplicatePin, parsed.Problems[0]["code"])
	assert.Equal(t, "VALIDATION", parsed.Problems[0]["category"])
	assert.Equal(t, false, parsed.Problems[0]["defect"])
	assert.Equal(t, true, parsed.Problems[1]["defect"])
}

func TestFormatJSON_NilHasEmptyProblemList(t *testing.T) {
	data, err := FormatJSON(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"problems":[]}`, string(data))
}

func TestFormatForLog_SingleError(t *testing.T) {
	err := New(ErrCodeMatrixTooSmall, "too small", nil).
		WithDetail("file", "keyboard.toml").
		WithSuggestion("add pins")

	result := FormatForLog(err)

	assert.Equal(t, ErrCodeMatrixTooSmall, result["error_code"])
	assert.Equal(t, "keyboard.toml", result["detail_file"])
	assert.Equal(t, "add pins", result["suggestion"])
	assert.Nil(t, FormatForLog(nil))
}

func TestFormatForLog_ReportSummarises(t *testing.T) {
	var r Report
	r.Add(Newf(ErrCodeUnknownKeycode, "a"), Newf(ErrCodeUnknownKeycode, "b"))

	result := FormatForLog(r.Err())

	assert.Equal(t, 2, result["problems"])
}
