package models

import "strings"

// MatchFormat identifies how a match is scored and when it is clinched.
type MatchFormat string

const (
	FormatPreseason MatchFormat = "preseason"
	FormatRegular   MatchFormat = "regular"
	FormatBestOf5   MatchFormat = "best-of-5"
	FormatBestOf7   MatchFormat = "best-of-7"
	FormatPlayoff   MatchFormat = "playoff"
)

// RosterSize is the number of players fielded per team in a single game.
const RosterSize = 6

// Roster is a team's active lineup for one game. Order is irrelevant.
type Roster []string

// FullRoster is the set of all players eligible for a team at a point in
// time. Every Roster drawn from it is a subset.
type FullRoster []string

// Contains reports whether a player is eligible.
func (fr FullRoster) Contains(player string) bool {
	for _, p := range fr {
		if p == player {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every player of the roster is eligible.
func (fr FullRoster) ContainsAll(roster Roster) bool {
	for _, p := range roster {
		if !fr.Contains(p) {
			return false
		}
	}
	return true
}

// Game is one completed unit of play between two teams, within a match,
// within a stage. Immutable once recorded.
type Game struct {
	Stage       string        `json:"stage"`
	MatchID     int64         `json:"match_id"`
	Format      MatchFormat   `json:"match_format"`
	Teams       [2]string     `json:"teams"`
	Score       [2]int        `json:"score"`
	Drawable    bool          `json:"drawable"`
	Rosters     [2]Roster     `json:"rosters,omitempty"`
	FullRosters [2]FullRoster `json:"full_rosters,omitempty"`
}

// Draw reports whether the game ended level.
func (g *Game) Draw() bool {
	return g.Score[0] == g.Score[1]
}

// Winner returns (winner, loser) for a non-draw game.
func (g *Game) Winner() (winner, loser string) {
	if g.Score[0] > g.Score[1] {
		return g.Teams[0], g.Teams[1]
	}
	return g.Teams[1], g.Teams[0]
}

// TitleStage reports whether a stage name denotes the title sub-phase of a
// stage (e.g. "Stage 1 Title Matches").
func TitleStage(stage string) bool {
	return strings.Contains(stage, "Title")
}

// Match is an upcoming fixture: two teams, a format and the eligible
// players at scheduling time. Lineups are unknown until played.
type Match struct {
	Stage       string        `json:"stage"`
	Format      MatchFormat   `json:"match_format"`
	Teams       [2]string     `json:"teams"`
	FullRosters [2]FullRoster `json:"full_rosters,omitempty"`
}
