// Package httpapi exposes the REST handlers and translates HTTP requests to
// the voting engine and results tally. Authentication and session handling
// live in front of this layer; the voter id arrives with the request.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/marcelojr/awards/internal/app/listeners"
	"github.com/marcelojr/awards/internal/app/results"
	"github.com/marcelojr/awards/internal/app/voting"
	"github.com/marcelojr/awards/internal/domain"
	"github.com/marcelojr/awards/internal/platform/metrics"
	"github.com/marcelojr/awards/internal/platform/ratelimit"
)

// VotingService is the engine surface the API consumes.
type VotingService interface {
	Cast(ctx context.Context, voterID domain.VoterID, eventID domain.EventID, categoryID domain.CategoryID, nomineeID domain.NomineeID) (voting.CastReceipt, error)
	Reset(ctx context.Context, voterID domain.VoterID, categoryID domain.CategoryID) error
	MyBallots(ctx context.Context, voterID domain.VoterID) ([]domain.BallotRef, error)
	CategoryResults(ctx context.Context, categoryID domain.CategoryID) ([]domain.CategoryResultRow, error)
}

// ResultsService is the read-side surface the API consumes.
type ResultsService interface {
	CategoryTotals(ctx context.Context, categoryID domain.CategoryID) (results.CategoryStanding, error)
	EventLeaderboard(ctx context.Context, eventID domain.EventID, limit int) ([]domain.NomineeCount, error)
	DailyTotals(ctx context.Context, eventID domain.EventID) ([]domain.DailyCount, error)
}

// API bundles the HTTP handlers bound to the voting engine, tally and
// dashboard caches.
type API struct {
	engine    VotingService
	tally     ResultsService
	dashboard *listeners.Dashboard
	counters  *listeners.LiveCounters
	logger    *slog.Logger
}

func New(engine VotingService, tally ResultsService, dashboard *listeners.Dashboard, counters *listeners.LiveCounters, logger *slog.Logger) *API {
	return &API{
		engine:    engine,
		tally:     tally,
		dashboard: dashboard,
		counters:  counters,
		logger:    logger,
	}
}

func (a *API) Register(mux *http.ServeMux) {
	// Routes stay centralized so tests can mount the same mux.
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/votes", a.handleVotes)
	mux.HandleFunc("/votes/my", a.handleMyBallots)
	mux.HandleFunc("/categories/", a.handleCategory)
	mux.HandleFunc("/events/", a.handleEvent)
	mux.HandleFunc("/dashboard/", a.handleDashboard)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type castRequest struct {
	VoterID    string `json:"voter_id"`
	EventID    string `json:"event_id"`
	CategoryID string `json:"category_id"`
	NomineeID  string `json:"nominee_id"`
}

type castResponse struct {
	BallotID string `json:"ballot_id"`
	Updated  bool   `json:"updated"`
}

func (a *API) handleVotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveVoteRequest("invalid_payload")
		a.logger.Warn("invalid cast payload", "err", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	receipt, err := a.engine.Cast(r.Context(),
		domain.VoterID(req.VoterID),
		domain.EventID(req.EventID),
		domain.CategoryID(req.CategoryID),
		domain.NomineeID(req.NomineeID),
	)
	if err != nil {
		status := statusFromError(err)
		metrics.ObserveVoteRequest(status)
		a.logger.Warn("cast rejected", "err", err, "voter", req.VoterID, "category", req.CategoryID, "status", status)
		respondError(w, err)
		return
	}

	metrics.ObserveVoteRequest("accepted")
	respondJSON(w, http.StatusOK, castResponse{BallotID: string(receipt.BallotID), Updated: receipt.Updated})
	a.logger.Info("vote cast", "voter", req.VoterID, "category", req.CategoryID, "nominee", req.NomineeID, "updated", receipt.Updated)
}

func (a *API) handleMyBallots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	voterID := r.URL.Query().Get("voter_id")
	if voterID == "" {
		http.Error(w, "voter_id required", http.StatusBadRequest)
		return
	}

	refs, err := a.engine.MyBallots(r.Context(), domain.VoterID(voterID))
	if err != nil {
		a.logger.Error("listing ballots failed", "err", err, "voter", voterID)
		respondError(w, err)
		return
	}

	type ballotView struct {
		EventID    string `json:"event_id"`
		CategoryID string `json:"category_id"`
		NomineeID  string `json:"nominee_id"`
	}
	views := make([]ballotView, len(refs))
	for i, ref := range refs {
		views[i] = ballotView{
			EventID:    string(ref.EventID),
			CategoryID: string(ref.CategoryID),
			NomineeID:  string(ref.NomineeID),
		}
	}
	respondJSON(w, http.StatusOK, views)
}

func (a *API) handleCategory(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/categories/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}

	id := domain.CategoryID(parts[0])

	switch {
	case parts[1] == "results" && r.Method == http.MethodGet:
		a.categoryResults(w, r, id)
	case parts[1] == "standing" && r.Method == http.MethodGet:
		a.categoryStanding(w, r, id)
	case parts[1] == "vote" && r.Method == http.MethodDelete:
		a.resetVote(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) categoryResults(w http.ResponseWriter, r *http.Request, id domain.CategoryID) {
	rows, err := a.engine.CategoryResults(r.Context(), id)
	if err != nil {
		a.logger.Error("category results failed", "err", err, "category", id)
		respondError(w, err)
		return
	}

	type resultView struct {
		NomineeID string `json:"nominee_id"`
		Name      string `json:"name"`
		Votes     int64  `json:"votes"`
	}
	views := make([]resultView, len(rows))
	for i, row := range rows {
		views[i] = resultView{NomineeID: string(row.NomineeID), Name: row.Name, Votes: row.Votes}
	}
	respondJSON(w, http.StatusOK, views)
}

func (a *API) categoryStanding(w http.ResponseWriter, r *http.Request, id domain.CategoryID) {
	standing, err := a.tally.CategoryTotals(r.Context(), id)
	if err != nil {
		a.logger.Error("category standing failed", "err", err, "category", id)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, standing)
}

func (a *API) resetVote(w http.ResponseWriter, r *http.Request, id domain.CategoryID) {
	voterID := r.URL.Query().Get("voter_id")
	if voterID == "" {
		http.Error(w, "voter_id required", http.StatusBadRequest)
		return
	}

	if err := a.engine.Reset(r.Context(), domain.VoterID(voterID), id); err != nil {
		status := statusFromError(err)
		metrics.ObserveVoteReset(status)
		a.logger.Warn("reset rejected", "err", err, "voter", voterID, "category", id, "status", status)
		respondError(w, err)
		return
	}

	metrics.ObserveVoteReset("accepted")
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleEvent(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/events/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	id := domain.EventID(parts[0])

	switch parts[1] {
	case "leaderboard":
		a.eventLeaderboard(w, r, id)
	case "daily":
		a.eventDaily(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) eventLeaderboard(w http.ResponseWriter, r *http.Request, id domain.EventID) {
	top, err := a.tally.EventLeaderboard(r.Context(), id, 0)
	if err != nil {
		a.logger.Error("leaderboard failed", "err", err, "event", id)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, top)
}

func (a *API) eventDaily(w http.ResponseWriter, r *http.Request, id domain.EventID) {
	days, err := a.tally.DailyTotals(r.Context(), id)
	if err != nil {
		a.logger.Error("daily totals failed", "err", err, "event", id)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, days)
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := domain.EventID(strings.TrimPrefix(r.URL.Path, "/dashboard/"))
	if id == "" {
		http.NotFound(w, r)
		return
	}

	snapshot, ok := a.dashboard.Snapshot(id)
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"snapshot": snapshot,
		"bumps":    a.counters.Snapshot(),
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, voting.ErrEventNotFound),
		errors.Is(err, voting.ErrCategoryNotFound),
		errors.Is(err, voting.ErrNomineeNotFound),
		errors.Is(err, voting.ErrVoterNotFound),
		errors.Is(err, results.ErrEventNotFound),
		errors.Is(err, results.ErrCategoryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, voting.ErrCategoryNotInEvent),
		errors.Is(err, voting.ErrNomineeNotInCategory):
		status = http.StatusBadRequest
	case errors.Is(err, voting.ErrVotingNotStarted),
		errors.Is(err, voting.ErrVotingClosed):
		status = http.StatusConflict
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, voting.ErrVotingNotStarted):
		return "not_started"
	case errors.Is(err, voting.ErrVotingClosed):
		return "closed"
	case errors.Is(err, voting.ErrCategoryNotInEvent),
		errors.Is(err, voting.ErrNomineeNotInCategory):
		return "invalid_reference"
	case errors.Is(err, voting.ErrEventNotFound),
		errors.Is(err, voting.ErrCategoryNotFound),
		errors.Is(err, voting.ErrNomineeNotFound),
		errors.Is(err, voting.ErrVoterNotFound):
		return "not_found"
	case errors.Is(err, ratelimit.ErrRateLimitExceeded):
		return "rate_limited"
	default:
		return "error"
	}
}
