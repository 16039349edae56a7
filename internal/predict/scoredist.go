package predict

import (
	"fmt"

	"github.com/owlcentral/forecast-api/internal/models"
)

// formatPlan returns the scheduled games of a format (drawable flags in
// order) and the win count that clinches the match. The format set is
// closed; anything else is an error.
func formatPlan(format models.MatchFormat) (drawables []bool, maxWins int, err error) {
	switch format {
	case models.FormatPreseason, models.FormatRegular:
		return []bool{true, false, true, false}, 4, nil
	case models.FormatBestOf5:
		return make([]bool, 5), 3, nil
	case models.FormatBestOf7:
		return make([]bool, 7), 4, nil
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// MatchScores expands per-game win/draw probabilities into the full
// probability distribution over the match's final score.
//
// A probability mass function over in-progress scores starts at
// {(0,0): 1}. Each scheduled game fans every live score out into win,
// loss and (for drawable games) draw branches; branches that reach the
// clinch count retire into a finished accumulator. Any branch still
// level after the scheduled games plays one guaranteed undrawable
// tie-break game. Output mass sums to 1 within floating tolerance.
func (e *Engine) MatchScores(m *models.Match) (models.PScores, error) {
	drawables, maxWins, err := formatPlan(m.Format)
	if err != nil {
		return nil, err
	}

	req := Request{Teams: m.Teams, FullRosters: m.FullRosters}
	pWinU, pDrawU, err := e.model.WinDraw(req)
	if err != nil {
		return nil, err
	}
	req.Drawable = true
	pWinD, pDrawD, err := e.model.WinDraw(req)
	if err != nil {
		return nil, err
	}

	live := models.PScores{{A: 0, B: 0}: 1.0}
	finished := models.PScores{}

	for _, drawable := range drawables {
		pWin, pDraw := pWinU, pDrawU
		if drawable {
			pWin, pDraw = pWinD, pDrawD
		}
		pLoss := 1.0 - pWin - pDraw

		next := models.PScores{}
		for sc, p := range live {
			if sc.A+1 == maxWins {
				finished[models.Score{A: sc.A + 1, B: sc.B}] += p * pWin
			} else {
				next[models.Score{A: sc.A + 1, B: sc.B}] += p * pWin
			}
			if sc.B+1 == maxWins {
				finished[models.Score{A: sc.A, B: sc.B + 1}] += p * pLoss
			} else {
				next[models.Score{A: sc.A, B: sc.B + 1}] += p * pLoss
			}
			if drawable {
				next[sc] += p * pDraw
			}
		}
		live = next
	}

	// Tie-break game for branches still level. Always undrawable.
	pLossU := 1.0 - pWinU - pDrawU
	final := models.PScores{}
	for sc, p := range live {
		if sc.A == sc.B {
			final[models.Score{A: sc.A + 1, B: sc.B}] += p * pWinU
			final[models.Score{A: sc.A, B: sc.B + 1}] += p * pLossU
		} else {
			final[sc] += p
		}
	}

	for sc, p := range finished {
		final[sc] += p
	}
	return final, nil
}

// PredictMatch returns the probability that the first team wins the
// match and the expected final score differential.
func (e *Engine) PredictMatch(m *models.Match) (pWin, eDiff float64, err error) {
	pScores, err := e.MatchScores(m)
	if err != nil {
		return 0, 0, err
	}

	for sc, p := range pScores {
		if sc.A > sc.B {
			pWin += p
		}
		eDiff += p * float64(sc.A-sc.B)
	}
	return pWin, eDiff, nil
}
