package predict

import (
	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/rating"
)

// teamModel rates whole teams: one scalar rating per team, a game is a
// two-player ranked comparison. Two environments are kept because the
// draw margin only exists for games that can actually end level.
type teamModel struct {
	e             *Engine
	envDrawable   *rating.Env
	envUndrawable *rating.Env
	ratings       map[string]rating.Rating
}

func newTeamModel(e *Engine, params rating.Params) *teamModel {
	env := rating.NewEnv(params)
	return &teamModel{
		e:             e,
		envDrawable:   env,
		envUndrawable: env.Undrawable(),
		ratings:       make(map[string]rating.Rating),
	}
}

func (m *teamModel) env(drawable bool) *rating.Env {
	if drawable {
		return m.envDrawable
	}
	return m.envUndrawable
}

func (m *teamModel) rating(name string) rating.Rating {
	if r, ok := m.ratings[name]; ok {
		return r
	}
	return m.envDrawable.NewRating()
}

func (m *teamModel) WinDraw(req Request) (float64, float64, error) {
	sideA := []rating.Rating{m.rating(req.Teams[0])}
	sideB := []rating.Rating{m.rating(req.Teams[1])}
	pWin, pDraw := m.env(req.Drawable).WinDraw(sideA, sideB)
	return pWin, pDraw, nil
}

func (m *teamModel) Update(g *models.Game) error {
	sideA := []rating.Rating{m.rating(g.Teams[0])}
	sideB := []rating.Rating{m.rating(g.Teams[1])}

	newA, newB := m.env(g.Drawable).Rate(sideA, sideB, gameOutcome(g))
	m.ratings[g.Teams[0]] = newA[0]
	m.ratings[g.Teams[1]] = newB[0]
	return nil
}

func (m *teamModel) TeamRating(team string) rating.Rating {
	return m.rating(team)
}

func gameOutcome(g *models.Game) rating.Outcome {
	switch {
	case g.Score[0] > g.Score[1]:
		return rating.WinA
	case g.Score[0] == g.Score[1]:
		return rating.Draw
	default:
		return rating.WinB
	}
}
