package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/padelhq/courtsight/internal/domain/analysis"
	"github.com/padelhq/courtsight/internal/domain/analysisjob"
	"github.com/padelhq/courtsight/internal/domain/match"
	"github.com/padelhq/courtsight/internal/domain/rawdata"
	"github.com/padelhq/courtsight/internal/platform/cache"
	"github.com/padelhq/courtsight/internal/platform/logging"
)

// AnalysisService turns raw provider payloads into stored analytics and
// serves formatted responses to clients.
type AnalysisService struct {
	analysisRepo analysis.Repository
	jobRepo      analysisjob.Repository
	matchRepo    match.Repository
	rawDataRepo  rawdata.Repository
	cache        *cache.Store[analysis.FormattedResponse]
	logger       *logging.Logger
	now          func() time.Time
}

func NewAnalysisService(
	analysisRepo analysis.Repository,
	jobRepo analysisjob.Repository,
	matchRepo match.Repository,
	rawDataRepo rawdata.Repository,
	responseCache *cache.Store[analysis.FormattedResponse],
	logger *logging.Logger,
) *AnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalysisService{
		analysisRepo: analysisRepo,
		jobRepo:      jobRepo,
		matchRepo:    matchRepo,
		rawDataRepo:  rawDataRepo,
		cache:        responseCache,
		logger:       logger,
		now:          time.Now,
	}
}

// CompleteJob processes a finished provider payload for the job identified by
// its provider-side id. Payloads whose required metrics cannot be parsed mark
// the job failed; a repeated delivery for an already terminal job is a no-op.
func (s *AnalysisService) CompleteJob(ctx context.Context, providerJobID string, payload analysis.RawAnalysisPayload, rawBody []byte) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.CompleteJob")
	defer span.End()

	providerJobID = strings.TrimSpace(providerJobID)
	if providerJobID == "" {
		return fmt.Errorf("%w: provider job id is required", ErrInvalidInput)
	}

	job, found, err := s.jobRepo.GetByProviderJobID(ctx, providerJobID)
	if err != nil {
		return fmt.Errorf("get job by provider id: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: analysis job %s", ErrNotFound, providerJobID)
	}
	if job.Terminal() {
		s.logger.InfoContext(ctx, "ignoring delivery for terminal job",
			"job_id", job.ID, "provider_job_id", providerJobID, "status", job.Status)
		return nil
	}

	s.captureRawPayload(ctx, job, rawBody)

	env, err := analysis.Transform(payload)
	if err != nil {
		s.failJob(ctx, job, err)
		return fmt.Errorf("%w: transform analysis payload: %v", ErrInvalidInput, err)
	}

	if len(env.PlayerAnalytics.Players) == 0 && len(env.Highlights) == 0 {
		s.logger.WarnContext(ctx, "analysis payload carried no players and no clips",
			"job_id", job.ID, "provider_job_id", providerJobID, "match_id", job.MatchID)
	}

	if err := s.analysisRepo.SaveEnvelope(ctx, job.MatchID, env); err != nil {
		return fmt.Errorf("save analytics envelope: %w", err)
	}

	completedAt := s.now().UTC()
	job.Status = analysisjob.StatusCompleted
	job.LastError = ""
	job.CompletedAt = &completedAt
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}

	if err := s.matchRepo.UpdateStatus(ctx, job.MatchID, match.StatusAnalyzed); err != nil {
		return fmt.Errorf("mark match analyzed: %w", err)
	}

	s.invalidateMatch(ctx, job.MatchID)
	return nil
}

// FailJob records a terminal provider-side failure for the job.
func (s *AnalysisService) FailJob(ctx context.Context, providerJobID string, reason string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.FailJob")
	defer span.End()

	providerJobID = strings.TrimSpace(providerJobID)
	if providerJobID == "" {
		return fmt.Errorf("%w: provider job id is required", ErrInvalidInput)
	}

	job, found, err := s.jobRepo.GetByProviderJobID(ctx, providerJobID)
	if err != nil {
		return fmt.Errorf("get job by provider id: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: analysis job %s", ErrNotFound, providerJobID)
	}
	if job.Terminal() {
		return nil
	}

	s.failJob(ctx, job, fmt.Errorf("%s", strings.TrimSpace(reason)))
	return nil
}

// GetMatchAnalysis loads the stored envelope for a match and formats it for
// the requesting user. Served through the TTL cache when one is configured.
func (s *AnalysisService) GetMatchAnalysis(ctx context.Context, matchID, userID string) (analysis.FormattedResponse, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.GetMatchAnalysis")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	userID = strings.TrimSpace(userID)
	if matchID == "" {
		return analysis.FormattedResponse{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	load := func(ctx context.Context) (analysis.FormattedResponse, error) {
		env, found, err := s.analysisRepo.GetEnvelopeByMatchID(ctx, matchID)
		if err != nil {
			return analysis.FormattedResponse{}, fmt.Errorf("get analytics envelope: %w", err)
		}
		if !found {
			return analysis.FormattedResponse{}, fmt.Errorf("%w: analytics for match %s", ErrNotFound, matchID)
		}

		formatted, err := analysis.FormatResponse(env, matchID, userID)
		if err != nil {
			return analysis.FormattedResponse{}, fmt.Errorf("format analytics response: %w", err)
		}
		return formatted, nil
	}

	if s.cache == nil {
		return load(ctx)
	}
	return s.cache.GetOrLoad(ctx, analysisCacheKey(matchID, userID), load)
}

// GetJobAnalysis serves the formatted response addressed by provider job id,
// used by clients that track the job rather than the match.
func (s *AnalysisService) GetJobAnalysis(ctx context.Context, providerJobID, userID string) (analysis.FormattedResponse, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalysisService.GetJobAnalysis")
	defer span.End()

	providerJobID = strings.TrimSpace(providerJobID)
	if providerJobID == "" {
		return analysis.FormattedResponse{}, fmt.Errorf("%w: provider job id is required", ErrInvalidInput)
	}

	job, found, err := s.jobRepo.GetByProviderJobID(ctx, providerJobID)
	if err != nil {
		return analysis.FormattedResponse{}, fmt.Errorf("get job by provider id: %w", err)
	}
	if !found {
		return analysis.FormattedResponse{}, fmt.Errorf("%w: analysis job %s", ErrNotFound, providerJobID)
	}

	m, found, err := s.matchRepo.GetByID(ctx, job.MatchID)
	if err != nil {
		return analysis.FormattedResponse{}, fmt.Errorf("get match for job: %w", err)
	}
	// Other users' jobs are indistinguishable from missing ones.
	if !found || m.UserID != userID {
		return analysis.FormattedResponse{}, fmt.Errorf("%w: analysis job %s", ErrNotFound, providerJobID)
	}

	return s.GetMatchAnalysis(ctx, job.MatchID, userID)
}

func (s *AnalysisService) failJob(ctx context.Context, job analysisjob.Job, cause error) {
	job.Status = analysisjob.StatusFailed
	if cause != nil {
		job.LastError = cause.Error()
	}
	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.ErrorContext(ctx, "mark job failed", "job_id", job.ID, "error", err)
		return
	}
	if err := s.matchRepo.UpdateStatus(ctx, job.MatchID, match.StatusFailed); err != nil {
		s.logger.ErrorContext(ctx, "mark match failed", "match_id", job.MatchID, "error", err)
	}
}

func (s *AnalysisService) captureRawPayload(ctx context.Context, job analysisjob.Job, rawBody []byte) {
	if s.rawDataRepo == nil || len(rawBody) == 0 {
		return
	}

	hash := sha256.Sum256(rawBody)
	item := rawdata.Payload{
		Source:      "rallyeye",
		JobID:       job.ProviderJobID,
		MatchID:     job.MatchID,
		PayloadJSON: string(rawBody),
		PayloadHash: hex.EncodeToString(hash[:]),
		ReceivedAt:  s.now().UTC(),
	}
	if err := s.rawDataRepo.Upsert(ctx, item); err != nil {
		// Capture is best effort; analytics processing continues.
		s.logger.WarnContext(ctx, "capture raw provider payload", "job_id", job.ID, "error", err)
	}
}

func (s *AnalysisService) invalidateMatch(ctx context.Context, matchID string) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, "analysis:match:"+matchID+":")
}

func analysisCacheKey(matchID, userID string) string {
	return "analysis:match:" + matchID + ":user:" + userID
}
