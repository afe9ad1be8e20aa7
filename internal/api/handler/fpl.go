package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/fpl-optimizer/internal/api/respond"
	"github.com/albapepper/fpl-optimizer/internal/cache"
)

// GetEntry returns a manager's squad with purchase and selling prices, the
// bank and the estimated free transfers.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, ok := entryParam(w, r)
	if !ok {
		return
	}
	cacheKey := fmt.Sprintf("entry:%d", entryID)
	ttl := cache.TTLEntry
	if h.serveCached(w, r, cacheKey, ttl) {
		return
	}

	view, err := h.planner.Entry(r.Context(), entryID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeCached(w, cacheKey, ttl, view)
}

// GetDifficulty returns the fixture difficulty table, easiest first.
// Query parameters start and window default to the next gameweek and the
// configured window.
func (h *Handler) GetDifficulty(w http.ResponseWriter, r *http.Request) {
	start, err := intQuery(r, "start")
	if err != nil || start < 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_START", "start must be a non-negative integer")
		return
	}
	window, err := intQuery(r, "window")
	if err != nil || window < 0 || window > 38 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_WINDOW", "window must be an integer between 1 and 38, or 0 for the default")
		return
	}

	cacheKey := fmt.Sprintf("fdr:%d:%d", start, window)
	ttl := cache.TTLFixtures
	if h.serveCached(w, r, cacheKey, ttl) {
		return
	}

	report, err := h.planner.Difficulty(r.Context(), start, window)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeCached(w, cacheKey, ttl, report)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration) bool {
	data, etag, ok := h.cache.Get(key)
	if !ok {
		return false
	}
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return true
	}
	respond.WriteJSON(w, data, etag, ttl, true)
	return true
}

func (h *Handler) writeCached(w http.ResponseWriter, key string, ttl time.Duration, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	etag := h.cache.Set(key, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

func entryParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "entryID"))
	if err != nil || id <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ENTRY", "entryID must be a positive integer")
		return 0, false
	}
	return id, true
}

func intQuery(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
