package models

import "strings"

// Roster is the approved subcontractor list for a team. Order matters only
// for display round trips; matching is always normalized.
type Roster struct {
	Team  Team
	Names []string
}

// NormalizeName produces the comparison form used everywhere a subcontractor
// name is matched against a report's Tech column or a template tab.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Contains reports membership under normalization.
func (r Roster) Contains(name string) bool {
	want := NormalizeName(name)
	for _, n := range r.Names {
		if NormalizeName(n) == want {
			return true
		}
	}
	return false
}
