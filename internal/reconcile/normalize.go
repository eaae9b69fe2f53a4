// Package reconcile diffs a CV extraction against a talent profile. Everything here is pure:
// callers load the profile and catalogs and pass them in.
package reconcile

import (
	"strings"
	"time"
)

// NormalizeName case-folds s, trims it and collapses inner whitespace.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValueDifferent reports whether suggested should replace current. A blank suggestion is
// treated as unset and never counts as a change.
func IsValueDifferent(current, suggested string) bool {
	if IsBlank(suggested) {
		return false
	}
	return NormalizeName(current) != NormalizeName(suggested)
}

// containsEither reports substring containment in either direction on normalized values.
func containsEither(a, b string) bool {
	a, b = NormalizeName(a), NormalizeName(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"01/2006",
	"1/2006",
	"02/01/2006",
	"Jan 2006",
	"January 2006",
	"2006",
}

var ongoingWords = map[string]bool{
	"present": true,
	"current": true,
	"now":     true,
	"ongoing": true,
}

// ParseDate parses the free-form dates CV extraction produces. ok is false for blank,
// ongoing or unparseable values; ongoing reports the "present" family explicitly.
func ParseDate(s string) (t time.Time, ok bool, ongoing bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	if ongoingWords[strings.ToLower(s)] {
		return time.Time{}, false, true
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true, false
		}
	}
	return time.Time{}, false, false
}

// ParseDatePtr is ParseDate returning nil for anything that is not a concrete date.
func ParseDatePtr(s string) *time.Time {
	t, ok, _ := ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}

// SameDay compares two optional dates at day precision; two nils are equal.
func SameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
