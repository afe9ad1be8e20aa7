package handler

import (
	"errors"
	"net/http"

	"github.com/albapepper/fpl-optimizer/internal/api/respond"
	"github.com/albapepper/fpl-optimizer/internal/planner"
	"github.com/albapepper/fpl-optimizer/internal/provider/fpl"
	"github.com/albapepper/fpl-optimizer/internal/squad"
	"github.com/albapepper/fpl-optimizer/internal/store"
)

// writeError maps planner and optimizer errors onto HTTP responses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var oe *squad.OptimizationError
	switch {
	case errors.Is(err, fpl.ErrNotFound), errors.Is(err, store.ErrNotFound):
		respond.WriteErrorDetail(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", err.Error())
	case errors.Is(err, planner.ErrUpstream):
		h.logger.Warn("FPL API request failed", "error", err)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "UPSTREAM_ERROR", "FPL API request failed", err.Error())
	case errors.Is(err, squad.ErrInvalidDataset):
		h.logger.Warn("FPL API returned unusable player data", "error", err)
		respond.WriteErrorDetail(w, http.StatusBadGateway, "UPSTREAM_ERROR", "FPL API returned unusable player data", err.Error())
	case errors.Is(err, squad.ErrInfeasible):
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "INFEASIBLE", "No legal squad satisfies the constraints", err.Error())
	case errors.Is(err, squad.ErrInvalidParams), errors.Is(err, squad.ErrInvalidRoster),
		errors.Is(err, squad.ErrMissingPlayer), errors.Is(err, planner.ErrUnknownPlayer),
		errors.Is(err, planner.ErrAmbiguousPlayer):
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "INVALID_REQUEST", "Request cannot be optimized", err.Error())
	case errors.Is(err, planner.ErrSeasonOver):
		respond.WriteErrorDetail(w, http.StatusConflict, "SEASON_OVER", "No upcoming gameweek", err.Error())
	case errors.As(err, &oe):
		h.logger.Error("Optimization failed", "status", oe.Status, "error", err)
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "SOLVER_FAILED", "Optimization did not complete", err.Error())
	default:
		h.logger.Error("Request failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
