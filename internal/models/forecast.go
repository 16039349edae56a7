package models

// Score is a possible final match score.
type Score struct {
	A int `json:"a"`
	B int `json:"b"`
}

// PScores maps each reachable final match score to its probability.
// Probabilities over all reachable scores for a format sum to 1.0 within
// floating-point tolerance.
type PScores map[Score]float64

// Sum returns the total probability mass of the distribution.
func (p PScores) Sum() float64 {
	var total float64
	for _, v := range p {
		total += v
	}
	return total
}

// TeamForecast holds the stage-outcome probabilities for one team.
// TitleBerth is the probability of reaching the stage title playoffs,
// Title the probability of winning the stage outright.
type TeamForecast struct {
	Team       string `json:"team"`
	TitleBerth Chance `json:"title_berth"`
	Title      Chance `json:"title"`
}

// StageForecast is the full simulation output for a stage.
type StageForecast struct {
	Stage      string         `json:"stage"`
	Iterations int            `json:"iterations"`
	Teams      []TeamForecast `json:"teams"`
}

// StandingsRow is one team's line in a standings table.
type StandingsRow struct {
	Team    string `json:"team"`
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	MapDiff int    `json:"map_diff"`
}

// MatchOdds is the predicted outcome of a single upcoming match.
type MatchOdds struct {
	Teams        [2]string   `json:"teams"`
	Format       MatchFormat `json:"match_format"`
	PWin         float64     `json:"p_win"`
	ExpectedDiff float64     `json:"expected_diff"`
	Scores       []ScoreProb `json:"scores"`
}

// ScoreProb is one entry of a score distribution in wire form.
type ScoreProb struct {
	Score Score   `json:"score"`
	P     float64 `json:"p"`
}

// TeamRatingInfo is the reporting view of a team's rating.
type TeamRatingInfo struct {
	Team         string  `json:"team"`
	Mu           float64 `json:"mu"`
	Sigma        float64 `json:"sigma"`
	Conservative float64 `json:"conservative"`
	BestRoster   Roster  `json:"best_roster,omitempty"`
}
