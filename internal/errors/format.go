package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// detailOrder fixes the order in which details are printed so output is stable.
var detailOrder = []string{"file", "field", "layer", "position", "address", "token", "half", "pin", "path"}

// FormatForUser returns a user-friendly error message.
// If debug is true, includes the underlying cause.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}
	if !isStructured(err) {
		return err.Error()
	}

	problems := Problems(err)
	var sb strings.Builder
	for i, ae := range problems {
		if i > 0 {
			sb.WriteString("\n")
		}
		if ae.IsDefect() {
			sb.WriteString("Internal error (generator defect): ")
		} else {
			sb.WriteString("Error: ")
		}
		sb.WriteString(ae.Message)
		sb.WriteString("\n")

		if loc := location(ae); loc != "" {
			sb.WriteString("  at ")
			sb.WriteString(loc)
			sb.WriteString("\n")
		}

		if ae.Suggestion != "" {
			sb.WriteString("\nSuggestion: ")
			sb.WriteString(ae.Suggestion)
			sb.WriteString("\n")
		}

		if debug && ae.Cause != nil {
			sb.WriteString(fmt.Sprintf("Cause: %v\n", ae.Cause))
		}

		sb.WriteString(fmt.Sprintf("[%s]\n", ae.Code))
	}

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Every problem in a report is listed, one block each.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	if !isStructured(err) {
		return fmt.Sprintf("Error: %s\n", err.Error())
	}

	problems := Problems(err)
	var sb strings.Builder
	if len(problems) > 1 {
		sb.WriteString(fmt.Sprintf("%d problems found\n", len(problems)))
	}
	for _, ae := range problems {
		label := "Error"
		if ae.IsDefect() {
			label = "Internal error"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, ae.Message))
		if loc := location(ae); loc != "" {
			sb.WriteString(fmt.Sprintf("  At:   %s\n", loc))
		}
		if ae.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Hint: %s\n", ae.Suggestion))
		}
		sb.WriteString(fmt.Sprintf("  Code: %s\n", ae.Code))
	}

	return sb.String()
}

// isStructured reports whether err carries RmkError values.
func isStructured(err error) bool {
	var re *RmkError
	var rep *Report
	return errors.As(err, &re) || errors.As(err, &rep)
}

// Location renders the details of e as "key=value" pairs in a fixed order.
func (e *RmkError) Location() string {
	return location(e)
}

// location renders the detail map as "key=value" pairs in a fixed order.
func location(ae *RmkError) string {
	if len(ae.Details) == 0 {
		return ""
	}
	var parts []string
	seen := make(map[string]bool, len(detailOrder))
	for _, k := range detailOrder {
		seen[k] = true
		if v, ok := ae.Details[k]; ok {
			parts = append(parts, k+"="+v)
		}
	}
	var rest []string
	for k := range ae.Details {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, k+"="+ae.Details[k])
	}
	return strings.Join(parts, " ")
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
	Defect     bool              `json:"defect"`
}

// jsonReport is the JSON representation of a run's problems.
type jsonReport struct {
	Problems []jsonError `json:"problems"`
}

// FormatJSON returns a JSON representation of every problem carried by err.
// Suitable for machine consumption and structured logging.
func FormatJSON(err error) ([]byte, error) {
	report := jsonReport{Problems: []jsonError{}}
	for _, ae := range Problems(err) {
		je := jsonError{
			Code:       ae.Code,
			Message:    ae.Message,
			Category:   string(ae.Category),
			Severity:   string(ae.Severity),
			Details:    ae.Details,
			Suggestion: ae.Suggestion,
			Retryable:  ae.Retryable,
			Defect:     ae.IsDefect(),
		}
		if ae.Cause != nil {
			je.Cause = ae.Cause.Error()
		}
		report.Problems = append(report.Problems, je)
	}
	return json.Marshal(report)
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	problems := Problems(err)
	if len(problems) != 1 {
		return map[string]any{
			"error":    err.Error(),
			"problems": len(problems),
		}
	}
	ae := problems[0]

	result := map[string]any{
		"error_code": ae.Code,
		"message":    ae.Message,
		"category":   string(ae.Category),
		"severity":   string(ae.Severity),
		"retryable":  ae.Retryable,
	}

	if ae.Cause != nil {
		result["cause"] = ae.Cause.Error()
	}

	if ae.Suggestion != "" {
		result["suggestion"] = ae.Suggestion
	}

	for k, v := range ae.Details {
		result["detail_"+k] = v
	}

	return result
}
