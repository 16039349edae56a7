package models

import "sort"

// Division identifiers. Every team belongs to exactly one division.
const (
	DivisionAtlantic = "ATL"
	DivisionPacific  = "PAC"
)

// League is the fixed, closed set of teams known at process start,
// together with their division assignments.
type League struct {
	teams     []string
	divisions map[string]string
}

// NewLeague builds a league from a team -> division mapping.
// The team order is sorted and stable so that iteration is deterministic.
func NewLeague(divisions map[string]string) *League {
	teams := make([]string, 0, len(divisions))
	for team := range divisions {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	copied := make(map[string]string, len(divisions))
	for team, div := range divisions {
		copied[team] = div
	}

	return &League{teams: teams, divisions: copied}
}

// DefaultLeague returns the 12-team, two-division inaugural season league.
func DefaultLeague() *League {
	return NewLeague(map[string]string{
		"BOS": DivisionAtlantic,
		"FLA": DivisionAtlantic,
		"HOU": DivisionAtlantic,
		"LDN": DivisionAtlantic,
		"NYE": DivisionAtlantic,
		"PHI": DivisionAtlantic,
		"DAL": DivisionPacific,
		"GLA": DivisionPacific,
		"SEO": DivisionPacific,
		"SFS": DivisionPacific,
		"SHD": DivisionPacific,
		"VAL": DivisionPacific,
	})
}

// Teams returns all teams in deterministic order. The returned slice must
// not be modified.
func (l *League) Teams() []string {
	return l.teams
}

// Size returns the number of teams.
func (l *League) Size() int {
	return len(l.teams)
}

// Division returns the division of a team, or "" for an unknown team.
func (l *League) Division(team string) string {
	return l.divisions[team]
}

// Contains reports whether the team is part of the league.
func (l *League) Contains(team string) bool {
	_, ok := l.divisions[team]
	return ok
}
