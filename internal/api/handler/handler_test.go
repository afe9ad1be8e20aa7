package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/fpl-optimizer/internal/api/respond"
	"github.com/albapepper/fpl-optimizer/internal/cache"
	"github.com/albapepper/fpl-optimizer/internal/fixture"
	"github.com/albapepper/fpl-optimizer/internal/milp"
	"github.com/albapepper/fpl-optimizer/internal/planner"
	"github.com/albapepper/fpl-optimizer/internal/provider/fpl"
	"github.com/albapepper/fpl-optimizer/internal/squad"
	"github.com/albapepper/fpl-optimizer/internal/store"
)

type fakePlanner struct {
	err        error
	entryCalls int
	fdrCalls   int
	lastReq    planner.Request
	lastEntry  int
}

func (f *fakePlanner) PlanTransfers(ctx context.Context, entryID int, req planner.Request) (*planner.Plan, error) {
	f.lastEntry, f.lastReq = entryID, req
	if f.err != nil {
		return nil, f.err
	}
	return &planner.Plan{Kind: planner.KindTransfers, EntryID: entryID, Gameweek: 4,
		Result: &squad.Result{Status: milp.StatusOptimal, Captain: 16}}, nil
}

func (f *fakePlanner) BuildSquad(ctx context.Context, req planner.Request) (*planner.Plan, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &planner.Plan{Kind: planner.KindSquad, Gameweek: 4,
		Result: &squad.Result{Status: milp.StatusOptimal, Captain: 9}}, nil
}

func (f *fakePlanner) Entry(ctx context.Context, entryID int) (*planner.EntryView, error) {
	f.entryCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &planner.EntryView{ID: entryID, Name: "Test XI", Gameweek: 4, FreeTransfers: 2}, nil
}

func (f *fakePlanner) Difficulty(ctx context.Context, start, window int) (*fixture.Report, error) {
	f.fdrCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &fixture.Report{Start: 4, End: 4 + window - 1, Ratings: []fixture.TeamRating{{TeamID: 1, Team: "Arsenal", Average: 2}}}, nil
}

type fakeRuns struct {
	run *store.Run
	got int
}

func (f *fakeRuns) LatestRun(ctx context.Context, entryID int) (*store.Run, error) {
	f.got = entryID
	if f.run == nil {
		return nil, store.ErrNotFound
	}
	return f.run, nil
}

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(ctx context.Context) error { return f.err }

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health/db", h.HealthCheckDB)
	r.Get("/health/cache", h.HealthCheckCache)
	r.Get("/fdr", h.GetDifficulty)
	r.Get("/entry/{entryID}", h.GetEntry)
	r.Post("/entry/{entryID}/plan", h.PostPlan)
	r.Get("/entry/{entryID}/runs/latest", h.GetLatestEntryRun)
	r.Post("/squad", h.PostSquad)
	r.Get("/runs/latest", h.GetLatestRun)
	return r
}

func do(t *testing.T, r http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp respond.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error.Code
}

func TestGetEntryCachesWithETag(t *testing.T) {
	p := &fakePlanner{}
	r := newTestRouter(New(p, nil, nil, cache.New(true), nil))

	rec := do(t, r, http.MethodGet, "/entry/77", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first GET = %d %s", rec.Code, rec.Header().Get("X-Cache"))
	}
	etag := rec.Header().Get("ETag")

	rec = do(t, r, http.MethodGet, "/entry/77", "", nil)
	if rec.Header().Get("X-Cache") != "HIT" || p.entryCalls != 1 {
		t.Errorf("second GET X-Cache=%s calls=%d, want HIT and 1", rec.Header().Get("X-Cache"), p.entryCalls)
	}

	rec = do(t, r, http.MethodGet, "/entry/77", "", map[string]string{"If-None-Match": etag})
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional GET = %d, want 304", rec.Code)
	}

	var view planner.EntryView
	rec = do(t, r, http.MethodGet, "/entry/78", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil || view.ID != 78 {
		t.Errorf("entry 78 = %+v, %v", view, err)
	}
}

func TestGetEntryBadID(t *testing.T) {
	r := newTestRouter(New(&fakePlanner{}, nil, nil, cache.New(false), nil))
	for _, id := range []string{"abc", "0", "-3"} {
		rec := do(t, r, http.MethodGet, "/entry/"+id, "", nil)
		if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_ENTRY" {
			t.Errorf("GET /entry/%s = %d", id, rec.Code)
		}
	}
}

func TestGetDifficulty(t *testing.T) {
	p := &fakePlanner{}
	r := newTestRouter(New(p, nil, nil, cache.New(true), nil))

	rec := do(t, r, http.MethodGet, "/fdr?window=3", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report fixture.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.End != 6 || report.Ratings[0].Team != "Arsenal" {
		t.Errorf("report = %+v", report)
	}

	for _, q := range []string{"window=abc", "window=40", "start=-1"} {
		rec := do(t, r, http.MethodGet, "/fdr?"+q, "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET /fdr?%s = %d, want 400", q, rec.Code)
		}
	}
	if p.fdrCalls != 1 {
		t.Errorf("Difficulty calls = %d, want 1", p.fdrCalls)
	}
}

func TestPostPlan(t *testing.T) {
	p := &fakePlanner{}
	r := newTestRouter(New(p, nil, nil, cache.New(false), nil))

	rec := do(t, r, http.MethodPost, "/entry/77/plan", `{"transfer_hit": 6, "lock": ["Saka"], "free_transfers": 2}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if p.lastEntry != 77 || *p.lastReq.TransferHit != 6 || *p.lastReq.FreeTransfers != 2 || p.lastReq.Lock[0] != "Saka" {
		t.Errorf("request = %+v", p.lastReq)
	}
	var plan planner.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.Result.Captain != 16 || plan.Result.Status != milp.StatusOptimal {
		t.Errorf("plan = %+v", plan.Result)
	}

	rec = do(t, r, http.MethodPost, "/entry/77/plan", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("empty body status = %d", rec.Code)
	}

	for _, body := range []string{`{"unknown": 1}`, `{"free_transfers": -1}`, `{`} {
		rec = do(t, r, http.MethodPost, "/entry/77/plan", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s status = %d, want 400", body, rec.Code)
		}
	}
}

func TestPostSquad(t *testing.T) {
	p := &fakePlanner{}
	r := newTestRouter(New(p, nil, nil, cache.New(false), nil))
	rec := do(t, r, http.MethodPost, "/squad", `{"budget": 95.5}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if p.lastReq.Budget == nil || p.lastReq.Budget.String() != "95.5" {
		t.Errorf("budget = %v, want 95.5", p.lastReq.Budget)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: picks: %w", planner.ErrUpstream, fpl.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: bootstrap: timeout", planner.ErrUpstream), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{fmt.Errorf("build players: %w: duplicate player 7", squad.ErrInvalidDataset), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{&squad.OptimizationError{Status: milp.StatusInfeasible}, http.StatusInternalServerError, "SOLVER_FAILED"},
		{fmt.Errorf("resolve: %w", planner.ErrAmbiguousPlayer), http.StatusUnprocessableEntity, "INVALID_REQUEST"},
		{fmt.Errorf("%w: negative hit", squad.ErrInvalidParams), http.StatusUnprocessableEntity, "INVALID_REQUEST"},
		{squad.ErrInfeasible, http.StatusUnprocessableEntity, "INFEASIBLE"},
		{planner.ErrSeasonOver, http.StatusConflict, "SEASON_OVER"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		r := newTestRouter(New(&fakePlanner{err: tt.err}, nil, nil, cache.New(false), nil))
		rec := do(t, r, http.MethodPost, "/squad", "", nil)
		if rec.Code != tt.status || errorCode(t, rec) != tt.code {
			t.Errorf("%v -> %d %s, want %d %s", tt.err, rec.Code, errorCode(t, rec), tt.status, tt.code)
		}
	}
}

func TestLatestRun(t *testing.T) {
	r := newTestRouter(New(&fakePlanner{}, nil, nil, cache.New(false), nil))
	rec := do(t, r, http.MethodGet, "/runs/latest", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("without persistence = %d, want 503", rec.Code)
	}

	runs := &fakeRuns{}
	r = newTestRouter(New(&fakePlanner{}, runs, nil, cache.New(false), nil))
	rec = do(t, r, http.MethodGet, "/entry/77/runs/latest", "", nil)
	if rec.Code != http.StatusNotFound || runs.got != 77 {
		t.Errorf("missing run = %d for entry %d, want 404 for 77", rec.Code, runs.got)
	}

	runs.run = &store.Run{Kind: planner.KindSquad, Gameweek: 4, Status: "optimal", Result: json.RawMessage(`{"captain":9}`)}
	rec = do(t, r, http.MethodGet, "/runs/latest", "", nil)
	if rec.Code != http.StatusOK || runs.got != 0 {
		t.Fatalf("latest run = %d for entry %d", rec.Code, runs.got)
	}
	if !strings.Contains(rec.Body.String(), `"captain":9`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealthCheckDB(t *testing.T) {
	tests := []struct {
		db     HealthChecker
		status int
		state  string
	}{
		{nil, http.StatusOK, "disabled"},
		{fakeDB{}, http.StatusOK, "connected"},
		{fakeDB{err: errors.New("refused")}, http.StatusServiceUnavailable, "disconnected"},
	}
	for _, tt := range tests {
		r := newTestRouter(New(&fakePlanner{}, nil, tt.db, cache.New(false), nil))
		rec := do(t, r, http.MethodGet, "/health/db", "", nil)
		var body map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &body)
		if rec.Code != tt.status || body["database"] != tt.state {
			t.Errorf("health = %d %v, want %d %s", rec.Code, body["database"], tt.status, tt.state)
		}
	}
}
