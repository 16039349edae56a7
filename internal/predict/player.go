package predict

import (
	"fmt"
	"math"
	"sort"

	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/rating"
)

// playerModel rates individual players; a team's strength for a game is
// the sum of its six lineup ratings. When a lineup is unknown, the most
// plausible one is reconstructed from the team's recent roster history.
// A derived team-level rating (one "average" lineup slot) is kept for
// roster selection and reporting only.
type playerModel struct {
	e             *Engine
	envDrawable   *rating.Env
	envUndrawable *rating.Env

	// ratings holds player ratings and, under team keys, the derived
	// team ratings.
	ratings     map[string]rating.Rating
	bestRosters map[string]models.Roster
	history     *History
}

func newPlayerModel(e *Engine, params rating.Params, seed map[string]rating.Rating) *playerModel {
	env := rating.NewEnv(params)
	m := &playerModel{
		e:             e,
		envDrawable:   env,
		envUndrawable: env.Undrawable(),
		ratings:       make(map[string]rating.Rating, len(seed)),
		bestRosters:   make(map[string]models.Roster),
		history:       newHistory(),
	}
	for name, r := range seed {
		m.ratings[name] = r
	}
	return m
}

func (m *playerModel) env(drawable bool) *rating.Env {
	if drawable {
		return m.envDrawable
	}
	return m.envUndrawable
}

func (m *playerModel) rating(name string) rating.Rating {
	if r, ok := m.ratings[name]; ok {
		return r
	}
	return m.envDrawable.NewRating()
}

// sides resolves the two lineups of a request into rating lists.
func (m *playerModel) sides(req Request) (sideA, sideB []rating.Rating, err error) {
	rosters := req.Rosters
	if len(rosters[0]) == 0 || len(rosters[1]) == 0 {
		for i, team := range req.Teams {
			full := req.FullRosters[i]
			if len(full) == 0 {
				full = m.e.rosters.fullRoster(team)
			}
			rosters[i], err = m.bestRoster(team, full)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	return m.rosterRatings(rosters[0]), m.rosterRatings(rosters[1]), nil
}

func (m *playerModel) rosterRatings(roster models.Roster) []rating.Rating {
	out := make([]rating.Rating, len(roster))
	for i, name := range roster {
		out[i] = m.rating(name)
	}
	return out
}

func (m *playerModel) WinDraw(req Request) (float64, float64, error) {
	sideA, sideB, err := m.sides(req)
	if err != nil {
		return 0, 0, err
	}
	pWin, pDraw := m.env(req.Drawable).WinDraw(sideA, sideB)
	return pWin, pDraw, nil
}

func (m *playerModel) Update(g *models.Game) error {
	if len(g.Rosters[0]) == 0 || len(g.Rosters[1]) == 0 {
		return fmt.Errorf("%w: game %d", ErrMissingRoster, g.MatchID)
	}

	newA, newB := m.env(g.Drawable).Rate(
		m.rosterRatings(g.Rosters[0]),
		m.rosterRatings(g.Rosters[1]),
		gameOutcome(g),
	)

	for i, name := range g.Rosters[0] {
		m.ratings[name] = newA[i]
	}
	for i, name := range g.Rosters[1] {
		m.ratings[name] = newB[i]
	}

	for i, team := range g.Teams {
		if err := m.recordTeamRatings(team, g.FullRosters[i]); err != nil {
			return err
		}
	}
	return nil
}

// recordTeamRatings appends the post-game ratings of a team's full
// roster to the history log, refreshes the team's best roster and
// stores the derived team rating under the team key.
func (m *playerModel) recordTeamRatings(team string, full models.FullRoster) error {
	key := HistoryKey{
		Stage:       m.e.standings.stage,
		MatchNumber: m.e.standings.matchNumber(m.e.standings.stage, team),
	}
	entry := m.history.at(key)

	for _, name := range full {
		entry.Ratings[name] = m.rating(name)
	}

	best, err := m.bestRoster(team, full)
	if err != nil {
		return err
	}
	m.bestRosters[team] = best

	teamRating := m.rosterRating(best)
	entry.Ratings[team] = teamRating
	m.ratings[team] = teamRating
	return nil
}

// bestRoster picks the lineup for a team when none is supplied: the most
// recent fully-eligible roster from the history queue with the highest
// conservative derived rating, falling back to the six best eligible
// players individually.
func (m *playerModel) bestRoster(team string, full models.FullRoster) (models.Roster, error) {
	queue := m.e.rosters.queue(team)
	candidates := make([]models.Roster, len(queue))
	copy(candidates, queue)

	// Stable sort keeps most-recent-first order among equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return m.rosterRating(candidates[i]).Conservative() >
			m.rosterRating(candidates[j]).Conservative()
	})

	for _, roster := range candidates {
		if len(roster) > 0 && full.ContainsAll(roster) {
			return roster, nil
		}
	}

	if len(full) < models.RosterSize {
		return nil, fmt.Errorf("%w: team %s has %d eligible players, need %d",
			ErrRosterUnderflow, team, len(full), models.RosterSize)
	}

	members := make([]string, len(full))
	copy(members, full)
	sort.SliceStable(members, func(i, j int) bool {
		return m.rating(members[i]).Conservative() > m.rating(members[j]).Conservative()
	})
	return models.Roster(members[:models.RosterSize]), nil
}

// rosterRating derives a team-level rating from a lineup: the mean of
// player means and the RMS of player uncertainties, both per lineup
// slot.
func (m *playerModel) rosterRating(roster models.Roster) rating.Rating {
	var sumMu, sumSigma2 float64
	for _, name := range roster {
		r := m.rating(name)
		sumMu += r.Mu
		sumSigma2 += r.Sigma * r.Sigma
	}
	return rating.Rating{
		Mu:    sumMu / models.RosterSize,
		Sigma: math.Sqrt(sumSigma2) / models.RosterSize,
	}
}

func (m *playerModel) TeamRating(team string) rating.Rating {
	return m.rating(team)
}
