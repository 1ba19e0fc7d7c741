package classify

import (
	"slices"
	"strings"

	"github.com/woozymasta/ssamap/internal/config"
)

// Subject is what the highlight predicates look at.
type Subject struct {
	Name string
	ISO  string
}

// Predicate decides whether a subject is a focus country.
type Predicate func(s Subject) bool

// NameMatch is true when the name is one of the known spellings of any target.
func NameMatch(targets []config.Target) Predicate {
	names := make(map[string]bool)
	for _, t := range targets {
		for _, v := range t.Variants {
			names[v] = true
		}
	}

	return func(s Subject) bool {
		return s.Name != "" && names[s.Name]
	}
}

// ISOMatch is true when the ISO-3 code is one of the target codes.
func ISOMatch(targets []config.Target) Predicate {
	codes := make([]string, 0, len(targets))
	for _, t := range targets {
		if t.ISO != "" {
			codes = append(codes, t.ISO)
		}
	}
	codes = upper(codes)

	return func(s Subject) bool {
		return s.ISO != "" && slices.Contains(codes, s.ISO)
	}
}

// Any combines predicates with logical OR.
func Any(preds ...Predicate) Predicate {
	return func(s Subject) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

// targetOf resolves the canonical target for a subject, by ISO first and name second.
func targetOf(targets []config.Target, s Subject) (config.Target, bool) {
	if s.ISO != "" {
		for _, t := range targets {
			if strings.EqualFold(strings.TrimSpace(t.ISO), s.ISO) {
				return t, true
			}
		}
	}

	for _, t := range targets {
		if slices.Contains(t.Variants, s.Name) {
			return t, true
		}
	}

	return config.Target{}, false
}
