package handler

import (
	"net/http"

	"github.com/albapepper/fpl-optimizer/internal/api/respond"
	"github.com/albapepper/fpl-optimizer/internal/planner"
)

// PostPlan optimizes an entry's transfers, lineup and captaincy for the next
// gameweek. The optional JSON body overrides optimizer weights.
func (h *Handler) PostPlan(w http.ResponseWriter, r *http.Request) {
	entryID, ok := entryParam(w, r)
	if !ok {
		return
	}
	var req planner.Request
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid", err.Error())
		return
	}
	if req.FreeTransfers != nil && *req.FreeTransfers < 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "free_transfers must be non-negative")
		return
	}

	plan, err := h.planner.PlanTransfers(r.Context(), entryID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("Plan served", "summary", plan.Summary())
	respond.WriteJSONObject(w, http.StatusOK, plan)
}

// PostSquad builds a fresh squad within the budget.
func (h *Handler) PostSquad(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid", err.Error())
		return
	}
	plan, err := h.planner.BuildSquad(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("Squad served", "summary", plan.Summary())
	respond.WriteJSONObject(w, http.StatusOK, plan)
}

// GetLatestRun returns the most recent recorded run of any entry.
func (h *Handler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	h.latestRun(w, r, 0)
}

// GetLatestEntryRun returns the most recent recorded run for an entry.
func (h *Handler) GetLatestEntryRun(w http.ResponseWriter, r *http.Request) {
	entryID, ok := entryParam(w, r)
	if !ok {
		return
	}
	h.latestRun(w, r, entryID)
}

func (h *Handler) latestRun(w http.ResponseWriter, r *http.Request, entryID int) {
	if h.runs == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "Run history requires DATABASE_URL")
		return
	}
	run, err := h.runs.LatestRun(r.Context(), entryID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, run)
}
