package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/padelhq/courtsight/internal/domain/analysis"
	"github.com/padelhq/courtsight/internal/domain/analysisjob"
	"github.com/padelhq/courtsight/internal/domain/match"
	"github.com/padelhq/courtsight/internal/domain/rawdata"
	"github.com/padelhq/courtsight/internal/platform/cache"
)

type stubAnalysisRepo struct {
	envelopes map[string]analysis.AnalyticsEnvelope
	saves     int
	loads     int
}

func newStubAnalysisRepo() *stubAnalysisRepo {
	return &stubAnalysisRepo{envelopes: make(map[string]analysis.AnalyticsEnvelope)}
}

func (r *stubAnalysisRepo) SaveEnvelope(_ context.Context, matchID string, env analysis.AnalyticsEnvelope) error {
	r.saves++
	r.envelopes[matchID] = env
	return nil
}

func (r *stubAnalysisRepo) GetEnvelopeByJobID(_ context.Context, jobID string) (analysis.AnalyticsEnvelope, bool, error) {
	for _, env := range r.envelopes {
		if env.JobID == jobID {
			return env, true, nil
		}
	}
	return analysis.AnalyticsEnvelope{}, false, nil
}

func (r *stubAnalysisRepo) GetEnvelopeByMatchID(_ context.Context, matchID string) (analysis.AnalyticsEnvelope, bool, error) {
	r.loads++
	env, ok := r.envelopes[matchID]
	return env, ok, nil
}

type stubJobRepo struct {
	jobs map[string]analysisjob.Job
}

func newStubJobRepo(jobs ...analysisjob.Job) *stubJobRepo {
	out := &stubJobRepo{jobs: make(map[string]analysisjob.Job)}
	for _, j := range jobs {
		out.jobs[j.ID] = j
	}
	return out
}

func (r *stubJobRepo) Create(_ context.Context, j analysisjob.Job) error {
	r.jobs[j.ID] = j
	return nil
}

func (r *stubJobRepo) GetByID(_ context.Context, id string) (analysisjob.Job, bool, error) {
	j, ok := r.jobs[id]
	return j, ok, nil
}

func (r *stubJobRepo) GetByProviderJobID(_ context.Context, providerJobID string) (analysisjob.Job, bool, error) {
	for _, j := range r.jobs {
		if j.ProviderJobID == providerJobID {
			return j, true, nil
		}
	}
	return analysisjob.Job{}, false, nil
}

func (r *stubJobRepo) ListByStatus(_ context.Context, status analysisjob.Status, limit int) ([]analysisjob.Job, error) {
	out := make([]analysisjob.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if j.Status == status {
			out = append(out, j)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubJobRepo) Update(_ context.Context, j analysisjob.Job) error {
	r.jobs[j.ID] = j
	return nil
}

type stubMatchRepo struct {
	matches  map[string]match.Match
	statuses map[string]match.Status
}

func newStubMatchRepo() *stubMatchRepo {
	return &stubMatchRepo{
		matches:  make(map[string]match.Match),
		statuses: make(map[string]match.Status),
	}
}

func (r *stubMatchRepo) Create(_ context.Context, m match.Match) error {
	r.matches[m.ID] = m
	r.statuses[m.ID] = m.Status
	return nil
}

func (r *stubMatchRepo) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	m, ok := r.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	m.Status = r.statuses[id]
	return m, true, nil
}

func (r *stubMatchRepo) ListByUser(_ context.Context, userID string) ([]match.Match, error) {
	out := make([]match.Match, 0)
	for id, m := range r.matches {
		if m.UserID == userID {
			m.Status = r.statuses[id]
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMatchRepo) UpdateStatus(_ context.Context, id string, status match.Status) error {
	r.statuses[id] = status
	return nil
}

func (r *stubMatchRepo) Delete(_ context.Context, id string) error {
	delete(r.matches, id)
	delete(r.statuses, id)
	return nil
}

type stubRawDataRepo struct {
	items []rawdata.Payload
}

func (r *stubRawDataRepo) Upsert(_ context.Context, item rawdata.Payload) error {
	r.items = append(r.items, item)
	return nil
}

func decodePayload(t *testing.T, raw string) analysis.RawAnalysisPayload {
	t.Helper()
	var payload analysis.RawAnalysisPayload
	if err := payload.Results.UnmarshalJSON([]byte(raw)); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	return payload
}

func TestAnalysisService_CompleteJob(t *testing.T) {
	t.Parallel()

	job := analysisjob.Job{ID: "job-1", MatchID: "match-1", ProviderJobID: "rj-1", Status: analysisjob.StatusRunning}
	analysisRepo := newStubAnalysisRepo()
	jobRepo := newStubJobRepo(job)
	matchRepo := newStubMatchRepo()
	rawRepo := &stubRawDataRepo{}

	svc := NewAnalysisService(analysisRepo, jobRepo, matchRepo, rawRepo, nil, nil)

	raw := `{
		"player_1": {"Distance Covered": "25.5 Meters", "Average Speed": "14.5 Kilometers per Hour", "Total Sprint Bursts": "3"},
		"all_clips": ["https://cdn.example.com/rally.mp4"]
	}`
	payload := decodePayload(t, raw)
	payload.JobID = "rj-1"
	payload.AnalysisStatus = "completed"

	if err := svc.CompleteJob(context.Background(), "rj-1", payload, []byte(raw)); err != nil {
		t.Fatalf("CompleteJob error: %v", err)
	}

	env, ok := analysisRepo.envelopes["match-1"]
	if !ok {
		t.Fatalf("envelope not saved for match")
	}
	if len(env.PlayerAnalytics.Players) != 1 {
		t.Fatalf("expected one player record, got %d", len(env.PlayerAnalytics.Players))
	}
	if env.Highlights["all"][0] != "https://cdn.example.com/rally.mp4" {
		t.Fatalf("unexpected highlights: %v", env.Highlights)
	}

	updated, _, _ := jobRepo.GetByProviderJobID(context.Background(), "rj-1")
	if updated.Status != analysisjob.StatusCompleted {
		t.Fatalf("job status = %s, want completed", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("expected CompletedAt to be set")
	}
	if matchRepo.statuses["match-1"] != match.StatusAnalyzed {
		t.Fatalf("match status = %s, want analyzed", matchRepo.statuses["match-1"])
	}
	if len(rawRepo.items) != 1 || rawRepo.items[0].PayloadHash == "" {
		t.Fatalf("expected raw payload capture with hash, got %+v", rawRepo.items)
	}
}

func TestAnalysisService_CompleteJobMalformedMarksFailed(t *testing.T) {
	t.Parallel()

	job := analysisjob.Job{ID: "job-2", MatchID: "match-2", ProviderJobID: "rj-2", Status: analysisjob.StatusRunning}
	jobRepo := newStubJobRepo(job)
	matchRepo := newStubMatchRepo()

	svc := NewAnalysisService(newStubAnalysisRepo(), jobRepo, matchRepo, nil, nil, nil)

	payload := decodePayload(t, `{"player_1": {"Distance Covered": "garbage"}}`)

	err := svc.CompleteJob(context.Background(), "rj-2", payload, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	updated, _, _ := jobRepo.GetByProviderJobID(context.Background(), "rj-2")
	if updated.Status != analysisjob.StatusFailed {
		t.Fatalf("job status = %s, want failed", updated.Status)
	}
	if updated.LastError == "" {
		t.Fatalf("expected LastError to record the parse failure")
	}
	if matchRepo.statuses["match-2"] != match.StatusFailed {
		t.Fatalf("match status = %s, want failed", matchRepo.statuses["match-2"])
	}
}

func TestAnalysisService_CompleteJobTerminalIsNoOp(t *testing.T) {
	t.Parallel()

	job := analysisjob.Job{ID: "job-3", MatchID: "match-3", ProviderJobID: "rj-3", Status: analysisjob.StatusCompleted}
	analysisRepo := newStubAnalysisRepo()
	svc := NewAnalysisService(analysisRepo, newStubJobRepo(job), newStubMatchRepo(), nil, nil, nil)

	if err := svc.CompleteJob(context.Background(), "rj-3", analysis.RawAnalysisPayload{}, nil); err != nil {
		t.Fatalf("expected no-op for terminal job, got %v", err)
	}
	if analysisRepo.saves != 0 {
		t.Fatalf("terminal delivery must not overwrite stored analytics")
	}
}

func TestAnalysisService_CompleteJobUnknownProviderID(t *testing.T) {
	t.Parallel()

	svc := NewAnalysisService(newStubAnalysisRepo(), newStubJobRepo(), newStubMatchRepo(), nil, nil, nil)
	err := svc.CompleteJob(context.Background(), "rj-missing", analysis.RawAnalysisPayload{}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalysisService_GetMatchAnalysis(t *testing.T) {
	t.Parallel()

	analysisRepo := newStubAnalysisRepo()
	analysisRepo.envelopes["match-9"] = analysis.AnalyticsEnvelope{
		JobID:          "rj-9",
		AnalysisStatus: "completed",
		PlayerAnalytics: analysis.PlayerAnalytics{Players: []analysis.PlayerRecord{
			{PlayerID: "player_1", TotalDistanceKM: 1.5, AverageSpeedKMH: 6, CaloriesBurned: 194.4},
		}},
	}

	responseCache := cache.NewStore[analysis.FormattedResponse](time.Minute)
	svc := NewAnalysisService(analysisRepo, newStubJobRepo(), newStubMatchRepo(), nil, responseCache, nil)

	got, err := svc.GetMatchAnalysis(context.Background(), "match-9", "user-1")
	if err != nil {
		t.Fatalf("GetMatchAnalysis error: %v", err)
	}
	if got.MatchID != "match-9" || got.UserID != "user-1" {
		t.Fatalf("context not injected: %+v", got)
	}
	if got.Highlights == nil {
		t.Fatalf("expected non-nil highlights map")
	}

	if _, err := svc.GetMatchAnalysis(context.Background(), "match-9", "user-1"); err != nil {
		t.Fatalf("second GetMatchAnalysis error: %v", err)
	}
	if analysisRepo.loads != 1 {
		t.Fatalf("expected cached second read, repo loads = %d", analysisRepo.loads)
	}

	if _, err := svc.GetMatchAnalysis(context.Background(), "", "user-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty match id, got %v", err)
	}
	if _, err := svc.GetMatchAnalysis(context.Background(), "missing", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown match, got %v", err)
	}
}

func TestAnalysisService_GetJobAnalysisResolvesMatch(t *testing.T) {
	t.Parallel()

	analysisRepo := newStubAnalysisRepo()
	analysisRepo.envelopes["match-5"] = analysis.AnalyticsEnvelope{JobID: "rj-5"}
	jobRepo := newStubJobRepo(analysisjob.Job{ID: "job-5", MatchID: "match-5", ProviderJobID: "rj-5", Status: analysisjob.StatusCompleted})
	matchRepo := newStubMatchRepo()
	if err := matchRepo.Create(context.Background(), match.Match{ID: "match-5", UserID: "user-5", Status: match.StatusAnalyzed}); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	svc := NewAnalysisService(analysisRepo, jobRepo, matchRepo, nil, nil, nil)

	got, err := svc.GetJobAnalysis(context.Background(), "rj-5", "user-5")
	if err != nil {
		t.Fatalf("GetJobAnalysis error: %v", err)
	}
	if got.MatchID != "match-5" {
		t.Fatalf("unexpected match id %q", got.MatchID)
	}
}

func TestAnalysisService_GetJobAnalysisHidesForeignJobs(t *testing.T) {
	t.Parallel()

	analysisRepo := newStubAnalysisRepo()
	analysisRepo.envelopes["match-6"] = analysis.AnalyticsEnvelope{JobID: "rj-6"}
	jobRepo := newStubJobRepo(analysisjob.Job{ID: "job-6", MatchID: "match-6", ProviderJobID: "rj-6", Status: analysisjob.StatusCompleted})
	matchRepo := newStubMatchRepo()
	if err := matchRepo.Create(context.Background(), match.Match{ID: "match-6", UserID: "user-6", Status: match.StatusAnalyzed}); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	svc := NewAnalysisService(analysisRepo, jobRepo, matchRepo, nil, nil, nil)

	if _, err := svc.GetJobAnalysis(context.Background(), "rj-6", "someone-else"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign caller, got %v", err)
	}
	if _, err := svc.GetJobAnalysis(context.Background(), "rj-6", "user-6"); err != nil {
		t.Fatalf("owner read error: %v", err)
	}
}
