package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Report collects every problem found by a validation stage so a single run
// can list all of them. A Report with no problems is not an error; use Err.
type Report struct {
	Problems []*RmkError
}

// Add appends problems to the report. Nil entries are ignored.
func (r *Report) Add(problems ...*RmkError) {
	for _, p := range problems {
		if p != nil {
			r.Problems = append(r.Problems, p)
		}
	}
}

// Merge appends the problems carried by err. A Report is flattened, an
// RmkError is appended as-is and any other error is wrapped as internal.
func (r *Report) Merge(err error) {
	if err == nil {
		return
	}
	var rep *Report
	if errors.As(err, &rep) {
		r.Add(rep.Problems...)
		return
	}
	var re *RmkError
	if errors.As(err, &re) {
		r.Add(re)
		return
	}
	r.Add(Wrap(ErrCodeInternal, err))
}

// Len returns the number of collected problems.
func (r *Report) Len() int {
	return len(r.Problems)
}

// Err returns the report as an error, or nil when it is empty.
func (r *Report) Err() error {
	if r == nil || len(r.Problems) == 0 {
		return nil
	}
	return r
}

// Error implements the error interface.
func (r *Report) Error() string {
	switch len(r.Problems) {
	case 0:
		return "no problems"
	case 1:
		return r.Problems[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d problems found:", len(r.Problems))
	for _, p := range r.Problems {
		sb.WriteString("\n  ")
		sb.WriteString(p.Error())
	}
	return sb.String()
}

// Is reports whether any problem in the report matches target by code.
func (r *Report) Is(target error) bool {
	for _, p := range r.Problems {
		if p.Is(target) {
			return true
		}
	}
	return false
}

// Codes returns the code of every problem, in report order.
func (r *Report) Codes() []string {
	codes := make([]string, 0, len(r.Problems))
	for _, p := range r.Problems {
		codes = append(codes, p.Code)
	}
	return codes
}

// ByCode returns the problems carrying the given code.
func (r *Report) ByCode(code string) []*RmkError {
	var out []*RmkError
	for _, p := range r.Problems {
		if p.Code == code {
			out = append(out, p)
		}
	}
	return out
}

// HasDefect reports whether the report contains an internal defect.
func (r *Report) HasDefect() bool {
	for _, p := range r.Problems {
		if p.IsDefect() {
			return true
		}
	}
	return false
}

// Problems flattens err into its individual problems.
func Problems(err error) []*RmkError {
	if err == nil {
		return nil
	}
	var r Report
	r.Merge(err)
	return r.Problems
}
