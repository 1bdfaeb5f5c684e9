package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/padelhq/courtsight/internal/domain/analysisjob"
	"github.com/padelhq/courtsight/internal/domain/match"
	"github.com/padelhq/courtsight/internal/platform/id"
	"github.com/padelhq/courtsight/internal/platform/logging"
)

// JobSubmitter submits a match video to the vision provider and returns the
// provider-side job id.
type JobSubmitter interface {
	SubmitAnalysis(ctx context.Context, matchID, videoURL string) (string, error)
}

type noopJobSubmitter struct{}

func (noopJobSubmitter) SubmitAnalysis(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("%w: vision provider is not configured", ErrDependencyUnavailable)
}

func NewNoopJobSubmitter() JobSubmitter {
	return noopJobSubmitter{}
}

type CreateMatchInput struct {
	UserID    string
	Title     string
	VideoURL  string
	CourtName string
	PlayedAt  *time.Time
}

// MatchService owns the match lifecycle. Creating a match submits its video
// for analysis and tracks the resulting provider job.
type MatchService struct {
	matchRepo match.Repository
	jobRepo   analysisjob.Repository
	submitter JobSubmitter
	idGen     id.Generator
	jobIDGen  id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	jobRepo analysisjob.Repository,
	submitter JobSubmitter,
	logger *logging.Logger,
) *MatchService {
	if submitter == nil {
		submitter = NewNoopJobSubmitter()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		matchRepo: matchRepo,
		jobRepo:   jobRepo,
		submitter: submitter,
		idGen:     id.NewPrefixedGenerator("match", nil),
		jobIDGen:  id.NewPrefixedGenerator("job", nil),
		logger:    logger,
		now:       time.Now,
	}
}

// Create registers the match and submits its video to the provider. When
// submission fails the match stays in uploaded state so it can be retried.
func (s *MatchService) Create(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Title = strings.TrimSpace(input.Title)
	input.VideoURL = strings.TrimSpace(input.VideoURL)
	input.CourtName = strings.TrimSpace(input.CourtName)

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	m := match.Match{
		ID:        matchID,
		UserID:    input.UserID,
		Title:     input.Title,
		VideoURL:  input.VideoURL,
		CourtName: input.CourtName,
		PlayedAt:  input.PlayedAt,
		Status:    match.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.matchRepo.Create(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}

	if err := s.SubmitForAnalysis(ctx, m); err != nil {
		s.logger.WarnContext(ctx, "submit match for analysis failed, match stays uploaded",
			"match_id", m.ID, "error", err)
		return m, nil
	}
	m.Status = match.StatusProcessing
	return m, nil
}

// SubmitForAnalysis sends the match video to the provider and records the
// tracking job. Used on create and for retrying stuck matches.
func (s *MatchService) SubmitForAnalysis(ctx context.Context, m match.Match) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SubmitForAnalysis")
	defer span.End()

	providerJobID, err := s.submitter.SubmitAnalysis(ctx, m.ID, m.VideoURL)
	if err != nil {
		return fmt.Errorf("submit analysis for match %s: %w", m.ID, err)
	}

	jobID, err := s.jobIDGen.NewID()
	if err != nil {
		return fmt.Errorf("generate job id: %w", err)
	}

	now := s.now().UTC()
	job := analysisjob.Job{
		ID:            jobID,
		MatchID:       m.ID,
		ProviderJobID: providerJobID,
		Status:        analysisjob.StatusPending,
		SubmittedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("create analysis job: %w", err)
	}

	if err := s.matchRepo.UpdateStatus(ctx, m.ID, match.StatusProcessing); err != nil {
		return fmt.Errorf("mark match processing: %w", err)
	}
	return nil
}

func (s *MatchService) Get(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, found, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	return m, nil
}

func (s *MatchService) ListByUser(ctx context.Context, userID string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByUser")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	items, err := s.matchRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

// Delete removes a match owned by the requesting user.
func (s *MatchService) Delete(ctx context.Context, matchID, requesterID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	m, err := s.Get(ctx, matchID)
	if err != nil {
		return err
	}
	if requesterID == "" || m.UserID != requesterID {
		return fmt.Errorf("%w: match %s does not belong to requester", ErrUnauthorized, matchID)
	}

	if err := s.matchRepo.Delete(ctx, m.ID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}
