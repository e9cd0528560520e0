package materialize

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/rmkgen/internal/errors"
)

// Policy decides what happens when the destination already exists.
type Policy string

const (
	// PolicyRefuse fails with DestinationExists. It is the default.
	PolicyRefuse Policy = "refuse"
	// PolicyReplace replaces the whole destination tree.
	PolicyReplace Policy = "replace"
	// PolicyPreserve keeps files in the destination that rmkgen does not
	// generate. Generated paths are always rewritten.
	PolicyPreserve Policy = "preserve"
)

// Policies lists every policy.
var Policies = []Policy{PolicyRefuse, PolicyReplace, PolicyPreserve}

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	for _, known := range Policies {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePolicy parses a policy name. An empty name selects PolicyRefuse.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PolicyRefuse, nil
	}
	p := Policy(s)
	if !p.Valid() {
		names := make([]string, len(Policies))
		for i, known := range Policies {
			names[i] = string(known)
		}
		return "", errors.ConfigError(fmt.Sprintf("unknown destination policy %q", s), nil).
			WithDetail("field", "output.policy").
			WithSuggestion("use one of: " + strings.Join(names, ", "))
	}
	return p, nil
}
