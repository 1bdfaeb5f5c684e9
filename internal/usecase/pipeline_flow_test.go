package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padelhq/courtsight/internal/domain/analysisjob"
	"github.com/padelhq/courtsight/internal/domain/match"
)

// Walks the full lifecycle through the real services: create a match, receive
// the provider payload, read the formatted analysis back.
func TestMatchAnalysisPipeline(t *testing.T) {
	t.Parallel()

	matchRepo := newStubMatchRepo()
	jobRepo := newStubJobRepo()
	analysisRepo := newStubAnalysisRepo()
	rawRepo := &stubRawDataRepo{}
	submitter := &stubSubmitter{jobID: "rj-77"}

	matchSvc := NewMatchService(matchRepo, jobRepo, submitter, nil)
	analysisSvc := NewAnalysisService(analysisRepo, jobRepo, matchRepo, rawRepo, nil, nil)

	m, err := matchSvc.Create(context.Background(), CreateMatchInput{
		UserID:   "user-7",
		Title:    "sunday semifinal",
		VideoURL: "https://cdn.example.com/semifinal.mp4",
	})
	require.NoError(t, err)
	require.Equal(t, match.StatusProcessing, m.Status)

	raw := `{
		"player_1": {"Distance Covered": "1055 Meters", "Average Speed": "5.2 Kilometers per Hour"},
		"player_2": {"Distance Covered": "980 Meters", "Average Speed": "4.9 Kilometers per Hour"},
		"all_clips": ["https://cdn.example.com/rally-1.mp4", "https://cdn.example.com/rally-2.mp4"]
	}`
	payload := decodePayload(t, raw)
	payload.JobID = "rj-77"
	payload.AnalysisStatus = "completed"

	require.NoError(t, analysisSvc.CompleteJob(context.Background(), "rj-77", payload, []byte(raw)))

	job, found, err := jobRepo.GetByProviderJobID(context.Background(), "rj-77")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, analysisjob.StatusCompleted, job.Status)
	assert.Equal(t, match.StatusAnalyzed, matchRepo.statuses[m.ID])

	got, err := analysisSvc.GetMatchAnalysis(context.Background(), m.ID, "user-7")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.MatchID)
	assert.Equal(t, "user-7", got.UserID)
	assert.Len(t, got.PlayerAnalytics.Players, 2)
	assert.Len(t, got.Highlights["all"], 2)
	for _, p := range got.PlayerAnalytics.Players {
		assert.InDelta(t, 1.0, p.TotalDistanceKM, 0.06, "player %s distance", p.PlayerID)
		assert.Greater(t, p.CaloriesBurned, 0.0, "player %s calories", p.PlayerID)
	}
	assert.Len(t, rawRepo.items, 1)
}
