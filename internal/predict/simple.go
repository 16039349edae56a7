package predict

import (
	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/rating"
)

// simpleModel is the map-differential heuristic: no ratings, just the
// season standings the engine already tracks. Useful as a baseline for
// the rating variants.
type simpleModel struct {
	e     *Engine
	alpha float64
	beta  float64
}

func (m *simpleModel) WinDraw(req Request) (float64, float64, error) {
	s := m.e.standings
	diff1 := s.mapDiffs[req.Teams[0]]
	diff2 := s.mapDiffs[req.Teams[1]]

	var pWin float64
	switch {
	case diff1 > diff2:
		pWin = 0.5 + m.alpha
	case diff1 < diff2:
		pWin = 0.5 - m.alpha
	default:
		record := s.headToHeadMapDiffs[pair{req.Teams[0], req.Teams[1]}]
		switch {
		case record > 0:
			pWin = 0.5 + m.beta
		case record < 0:
			pWin = 0.5 - m.beta
		default:
			pWin = 0.5
		}
	}
	return pWin, 0.0, nil
}

func (m *simpleModel) Update(*models.Game) error { return nil }

func (m *simpleModel) TeamRating(string) rating.Rating { return rating.Rating{} }
