package models

import (
	"fmt"
	"strings"
)

// Team selects which subcontractor roster a pay run applies to.
type Team string

const (
	TeamConstruction Team = "Construction"
	TeamWelding      Team = "Welding"
)

// ParseTeam validates a raw team identifier (case-insensitive).
func ParseTeam(raw string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "construction":
		return TeamConstruction, nil
	case "welding":
		return TeamWelding, nil
	default:
		return "", fmt.Errorf("unknown team %q", raw)
	}
}

// RosterFile returns the team-scoped roster file name.
func (t Team) RosterFile() string {
	if t == TeamWelding {
		return "welding_subcontractors.txt"
	}
	return "subcontractors.txt"
}

func (t Team) String() string {
	return string(t)
}
