// Package predict implements the forecast core: interchangeable rating
// models (map-differential heuristic, team-level and player-level
// Gaussian skill ratings), running standings bookkeeping, match score
// distributions and the stage Monte Carlo simulator.
//
// A single Engine owns all mutable state. It is trained sequentially,
// one completed game at a time in chronological order; forecasts only
// read that state.
package predict

import (
	"errors"
	"math"

	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/rating"
)

var (
	// ErrUnsupportedFormat is returned for match formats the score
	// expansion does not know. The format set is closed.
	ErrUnsupportedFormat = errors.New("unsupported match format")

	// ErrRosterUnderflow is returned when a team has fewer eligible
	// players than a lineup requires. Nothing is silently truncated.
	ErrRosterUnderflow = errors.New("roster underflow")

	// ErrMissingRoster is returned when a training game lacks lineups.
	ErrMissingRoster = errors.New("missing roster")
)

// pointFloor keeps log-loss points finite when a clamped probability
// underflows to zero.
const pointFloor = 1e-12

// Request describes a single-game prediction query. Rosters may be empty
// for upcoming games; player-level models then select a lineup from the
// full rosters (or the last ones seen in training).
type Request struct {
	Teams       [2]string
	Rosters     [2]models.Roster
	FullRosters [2]models.FullRoster
	Drawable    bool
}

// Model is the rating strategy behind an Engine: it turns current
// ratings into win/draw probabilities and folds completed games back in.
type Model interface {
	// WinDraw returns the probability that Teams[0] wins a single game
	// and the probability of a draw (zero when the request is not
	// drawable). p_win + p_draw <= 1.
	WinDraw(req Request) (pWin, pDraw float64, err error)

	// Update folds one completed game into the rating store.
	Update(g *models.Game) error

	// TeamRating returns the team-level rating used for reporting.
	TeamRating(team string) rating.Rating
}

// Engine couples a Model with the shared bookkeeping every variant
// needs: roster history, standings, draw accounting and evaluation.
type Engine struct {
	league *models.League
	model  Model

	standings *standings
	rosters   *rosterBook

	// Draw calibration accounting, read by external parameter search.
	expectedDraws float64
	realDraws     float64

	// Evaluation history.
	points   []float64
	corrects []bool
}

const defaultRosterQueueSize = 12

func newEngine(league *models.League) *Engine {
	return &Engine{
		league:    league,
		standings: newStandings(),
		rosters:   newRosterBook(defaultRosterQueueSize),
	}
}

// NewSimple returns an engine backed by the map-differential heuristic:
// the team with the better differential wins with probability 0.5+alpha,
// head-to-head record breaks exact ties with 0.5+beta.
func NewSimple(league *models.League, alpha, beta float64) *Engine {
	e := newEngine(league)
	e.model = &simpleModel{e: e, alpha: alpha, beta: beta}
	return e
}

// NewTrueSkill returns an engine rating whole teams.
func NewTrueSkill(league *models.League, params rating.Params) *Engine {
	e := newEngine(league)
	e.model = newTeamModel(e, params)
	return e
}

// NewPlayerTrueSkill returns an engine rating individual players; a
// team's strength for a game is the sum of its six lineup ratings. Seed
// ratings carry over skill estimates from before the recorded history;
// unseen players start at the environment prior.
func NewPlayerTrueSkill(league *models.League, params rating.Params, seed map[string]rating.Rating) *Engine {
	e := newEngine(league)
	e.model = newPlayerModel(e, params, seed)
	return e
}

// Model exposes the engine's rating strategy.
func (e *Engine) Model() Model { return e.model }

// League returns the fixed team set the engine forecasts over.
func (e *Engine) League() *models.League { return e.league }

// Predict returns single-game win/draw probabilities for the request.
func (e *Engine) Predict(req Request) (pWin, pDraw float64, err error) {
	return e.model.WinDraw(req)
}

// Train scores the engine's prediction for one completed game, updates
// rosters, standings and draw accounting, then updates the model.
// It returns the prediction point (log-loss style) for the game.
func (e *Engine) Train(g *models.Game) (float64, error) {
	point, correct := e.evaluate(g)
	e.points = append(e.points, point)
	e.corrects = append(e.corrects, correct)

	e.rosters.record(g)
	e.standings.update(g)
	e.updateDraws(g)

	if err := e.model.Update(g); err != nil {
		return point, err
	}
	return point, nil
}

// TrainGames trains on a chronological game sequence and returns the
// summed prediction point.
func (e *Engine) TrainGames(games []*models.Game) (float64, error) {
	var total float64
	for _, g := range games {
		point, err := e.Train(g)
		if err != nil {
			return total, err
		}
		total += point
	}
	return total, nil
}

// evaluate scores the current prediction for a game before training on
// it. Draw games score zero; draws are assumed away for scoring.
func (e *Engine) evaluate(g *models.Game) (float64, bool) {
	if g.Draw() {
		return 0.0, false
	}

	pWin, pDraw, err := e.model.WinDraw(Request{
		Teams:   g.Teams,
		Rosters: g.Rosters,
	})
	if err != nil {
		return 0.0, false
	}

	pWin = clamp01(pWin)
	pDraw = clamp01(pDraw)
	pLoss := 1.0 - pWin - pDraw

	var p float64
	var correct bool
	if g.Score[0] > g.Score[1] {
		p = pWin
		correct = pWin > pLoss
	} else {
		p = pLoss
		correct = pWin < pLoss
	}

	// Floating error can push pLoss fractionally negative; floor it so
	// the log stays defined.
	if p < pointFloor {
		p = pointFloor
	}
	return math.Log(2.0 * p), correct
}

func (e *Engine) updateDraws(g *models.Game) {
	if g.Drawable {
		_, pDraw, err := e.model.WinDraw(Request{
			Teams:    g.Teams,
			Rosters:  g.Rosters,
			Drawable: true,
		})
		if err == nil {
			e.expectedDraws += pDraw
		}
	}
	if g.Draw() {
		e.realDraws += 1.0
	}
}

// Points returns the per-game prediction points recorded so far.
func (e *Engine) Points() []float64 { return e.points }

// Accuracy returns the fraction of games whose favored side won.
func (e *Engine) Accuracy() float64 {
	if len(e.corrects) == 0 {
		return 0.0
	}
	var n int
	for _, c := range e.corrects {
		if c {
			n++
		}
	}
	return float64(n) / float64(len(e.corrects))
}

// DrawCalibration returns the expected and observed draw totals, used by
// the external draw-probability search.
func (e *Engine) DrawCalibration() (expected, real float64) {
	return e.expectedDraws, e.realDraws
}

// Stage returns the stage the tracker currently sits in (including a
// title sub-phase), BaseStage the stage it belongs to.
func (e *Engine) Stage() string     { return e.standings.stage }
func (e *Engine) BaseStage() string { return e.standings.baseStage }

// StageFinished reports whether all title-deciding games of the current
// stage are exhausted.
func (e *Engine) StageFinished() bool { return e.standings.stageFinished() }

// TeamRating returns the reporting rating for a team.
func (e *Engine) TeamRating(team string) rating.Rating {
	return e.model.TeamRating(team)
}

// StageStandings returns the current stage standings table in league
// team order.
func (e *Engine) StageStandings() []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, e.league.Size())
	for _, team := range e.league.Teams() {
		rows = append(rows, models.StandingsRow{
			Team:    team,
			Wins:    e.standings.stageWins[team],
			Losses:  e.standings.stageLosses[team],
			MapDiff: e.standings.stageMapDiffs[team],
		})
	}
	return rows
}

// SeasonStandings returns the running season standings table.
func (e *Engine) SeasonStandings() []models.StandingsRow {
	rows := make([]models.StandingsRow, 0, e.league.Size())
	for _, team := range e.league.Teams() {
		rows = append(rows, models.StandingsRow{
			Team:    team,
			Wins:    e.standings.wins[team],
			Losses:  e.standings.losses[team],
			MapDiff: e.standings.mapDiffs[team],
		})
	}
	return rows
}

// BestRosters returns the latest selected lineup per team, when the
// model tracks lineups.
func (e *Engine) BestRosters() map[string]models.Roster {
	if m, ok := e.model.(*playerModel); ok {
		return m.bestRosters
	}
	return nil
}

// History returns the append-only ratings history log, when the model
// records one, together with the environment scale it is expressed in.
func (e *Engine) History() ([]*HistoryEntry, rating.Params, bool) {
	if m, ok := e.model.(*playerModel); ok {
		return m.history.Entries(), m.envDrawable.Params, true
	}
	return nil, rating.Params{}, false
}

func clamp01(p float64) float64 {
	return math.Max(0.0, math.Min(p, 1.0))
}
