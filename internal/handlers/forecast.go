package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/owlcentral/forecast-api/internal/logic"
	"github.com/owlcentral/forecast-api/internal/models"
	"github.com/owlcentral/forecast-api/internal/predict"
)

// ============================================================================
// FORECAST ENDPOINTS
// ============================================================================

// GetStageForecast returns title-berth and title probabilities for every
// team, simulated over the remaining matches of the current stage.
func (h *Handler) GetStageForecast(w http.ResponseWriter, r *http.Request) {
	forecast, err := h.forecast.StageForecast(r.Context())
	if err != nil {
		if errors.Is(err, logic.ErrNotTrained) {
			h.errorResponse(w, http.StatusServiceUnavailable, "Model not trained yet")
			return
		}
		h.logger.Errorw("Failed to simulate stage", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to simulate stage")
		return
	}

	h.jsonResponse(w, http.StatusOK, forecast)
}

// GetMatchOdds returns win probability, expected map differential and
// the full score distribution for a hypothetical match.
func (h *Handler) GetMatchOdds(w http.ResponseWriter, r *http.Request) {
	team1 := r.URL.Query().Get("team1")
	team2 := r.URL.Query().Get("team2")
	if team1 == "" || team2 == "" || team1 == team2 {
		h.errorResponse(w, http.StatusBadRequest, "team1 and team2 must name two distinct teams")
		return
	}

	format := models.MatchFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = models.FormatRegular
	}

	odds, err := h.forecast.MatchOdds(r.Context(), team1, team2, format)
	if err != nil {
		switch {
		case errors.Is(err, logic.ErrNotTrained):
			h.errorResponse(w, http.StatusServiceUnavailable, "Model not trained yet")
		case errors.Is(err, predict.ErrUnsupportedFormat):
			h.errorResponse(w, http.StatusBadRequest, "Unsupported match format")
		default:
			h.logger.Errorw("Failed to predict match", "team1", team1, "team2", team2, "error", err)
			h.errorResponse(w, http.StatusInternalServerError, "Failed to predict match")
		}
		return
	}

	h.jsonResponse(w, http.StatusOK, odds)
}

// GetStageStandings returns the current stage standings.
func (h *Handler) GetStageStandings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.forecast.StageStandings(r.Context())
	if err != nil {
		if errors.Is(err, logic.ErrNotTrained) {
			h.errorResponse(w, http.StatusServiceUnavailable, "Model not trained yet")
			return
		}
		h.logger.Errorw("Failed to read standings", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to read standings")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"stage":     h.forecast.Stage(),
		"standings": rows,
	})
}

// GetSeasonStandings returns the running season standings.
func (h *Handler) GetSeasonStandings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.forecast.SeasonStandings(r.Context())
	if err != nil {
		if errors.Is(err, logic.ErrNotTrained) {
			h.errorResponse(w, http.StatusServiceUnavailable, "Model not trained yet")
			return
		}
		h.logger.Errorw("Failed to read standings", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to read standings")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"standings": rows,
	})
}

// GetTeamRating returns a team's reporting rating and its current best
// lineup, when the model tracks lineups.
func (h *Handler) GetTeamRating(w http.ResponseWriter, r *http.Request) {
	team := chi.URLParam(r, "team")

	info, err := h.forecast.TeamRating(r.Context(), team)
	if err != nil {
		if errors.Is(err, logic.ErrNotTrained) {
			h.errorResponse(w, http.StatusServiceUnavailable, "Model not trained yet")
			return
		}
		h.errorResponse(w, http.StatusNotFound, "Unknown team")
		return
	}

	h.jsonResponse(w, http.StatusOK, info)
}
