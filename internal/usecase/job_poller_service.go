package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/padelhq/courtsight/internal/domain/analysis"
	"github.com/padelhq/courtsight/internal/domain/analysisjob"
	"github.com/padelhq/courtsight/internal/platform/logging"
)

// ProviderJobFetcher polls the vision provider for one job.
type ProviderJobFetcher interface {
	FetchResult(ctx context.Context, jobID string) (analysis.RawAnalysisPayload, []byte, error)
}

type analysisFinalizer interface {
	CompleteJob(ctx context.Context, providerJobID string, payload analysis.RawAnalysisPayload, rawBody []byte) error
	FailJob(ctx context.Context, providerJobID, reason string) error
}

type JobPollerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	MaxAttempts  int
}

// PollResult summarizes one poller pass.
type PollResult struct {
	Scanned   int `json:"scanned"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// JobPollerService scans non-terminal analysis jobs and polls the provider
// for each through a bounded worker pool.
type JobPollerService struct {
	jobRepo   analysisjob.Repository
	fetcher   ProviderJobFetcher
	finalizer analysisFinalizer
	cfg       JobPollerConfig
	logger    *logging.Logger
	pool      *ants.Pool
	now       func() time.Time
}

func NewJobPollerService(
	jobRepo analysisjob.Repository,
	fetcher ProviderJobFetcher,
	finalizer analysisFinalizer,
	cfg JobPollerConfig,
	logger *logging.Logger,
) (*JobPollerService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	if cfg.Workers < 1 {
		cfg.Workers = 8
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 120
	}

	pool, err := ants.NewPool(cfg.Workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create poll worker pool: %w", err)
	}

	return &JobPollerService{
		jobRepo:   jobRepo,
		fetcher:   fetcher,
		finalizer: finalizer,
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		now:       time.Now,
	}, nil
}

// Run polls on the configured interval until ctx is done.
func (s *JobPollerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "poll pass failed", "error", err)
				continue
			}
			if result.Scanned > 0 {
				s.logger.InfoContext(ctx, "poll pass finished",
					"scanned", result.Scanned,
					"completed", result.Completed,
					"failed", result.Failed,
					"pending", result.Pending,
				)
			}
		}
	}
}

// RunOnce performs a single poll pass over pending and running jobs.
func (s *JobPollerService) RunOnce(ctx context.Context) (PollResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobPollerService.RunOnce")
	defer span.End()

	jobs := make([]analysisjob.Job, 0, s.cfg.BatchSize)
	for _, status := range []analysisjob.Status{analysisjob.StatusPending, analysisjob.StatusRunning} {
		remaining := s.cfg.BatchSize - len(jobs)
		if remaining <= 0 {
			break
		}
		batch, err := s.jobRepo.ListByStatus(ctx, status, remaining)
		if err != nil {
			return PollResult{}, fmt.Errorf("list %s jobs: %w", status, err)
		}
		jobs = append(jobs, batch...)
	}

	var completed, failed, pending atomic.Int64
	var wg sync.WaitGroup
	for _, job := range jobs {
		job := job
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			switch s.pollJob(ctx, job) {
			case analysisjob.StatusCompleted:
				completed.Add(1)
			case analysisjob.StatusFailed:
				failed.Add(1)
			default:
				pending.Add(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "submit poll task", "job_id", job.ID, "error", submitErr)
			pending.Add(1)
		}
	}
	wg.Wait()

	return PollResult{
		Scanned:   len(jobs),
		Completed: int(completed.Load()),
		Failed:    int(failed.Load()),
		Pending:   int(pending.Load()),
	}, nil
}

// Close releases the worker pool. The service must not be used afterwards.
func (s *JobPollerService) Close() {
	s.pool.Release()
}

func (s *JobPollerService) pollJob(ctx context.Context, job analysisjob.Job) analysisjob.Status {
	payload, raw, err := s.fetcher.FetchResult(ctx, job.ProviderJobID)
	if err != nil {
		return s.recordPollFailure(ctx, job, err)
	}

	switch {
	case isCompletedStatus(payload.AnalysisStatus):
		if err := s.finalizer.CompleteJob(ctx, job.ProviderJobID, payload, raw); err != nil {
			s.logger.ErrorContext(ctx, "complete polled job", "job_id", job.ID, "error", err)
			return analysisjob.StatusFailed
		}
		return analysisjob.StatusCompleted
	case isFailedStatus(payload.AnalysisStatus):
		reason := fmt.Sprintf("provider reported analysis_status=%s", payload.AnalysisStatus)
		if err := s.finalizer.FailJob(ctx, job.ProviderJobID, reason); err != nil {
			s.logger.ErrorContext(ctx, "fail polled job", "job_id", job.ID, "error", err)
		}
		return analysisjob.StatusFailed
	default:
		return s.recordStillRunning(ctx, job)
	}
}

func (s *JobPollerService) recordPollFailure(ctx context.Context, job analysisjob.Job, cause error) analysisjob.Status {
	job.Attempts++
	job.LastError = cause.Error()
	if job.Attempts >= s.cfg.MaxAttempts {
		reason := fmt.Sprintf("gave up after %d poll attempts: %s", job.Attempts, cause)
		if err := s.finalizer.FailJob(ctx, job.ProviderJobID, reason); err != nil {
			s.logger.ErrorContext(ctx, "fail exhausted job", "job_id", job.ID, "error", err)
		}
		return analysisjob.StatusFailed
	}

	if job.Status == analysisjob.StatusPending {
		job.Status = analysisjob.StatusRunning
	}
	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.WarnContext(ctx, "record poll failure", "job_id", job.ID, "error", err)
	}
	return job.Status
}

func (s *JobPollerService) recordStillRunning(ctx context.Context, job analysisjob.Job) analysisjob.Status {
	job.Attempts++
	job.LastError = ""
	if job.Attempts >= s.cfg.MaxAttempts {
		reason := fmt.Sprintf("analysis still not terminal after %d polls", job.Attempts)
		if err := s.finalizer.FailJob(ctx, job.ProviderJobID, reason); err != nil {
			s.logger.ErrorContext(ctx, "fail stalled job", "job_id", job.ID, "error", err)
		}
		return analysisjob.StatusFailed
	}

	job.Status = analysisjob.StatusRunning
	if err := s.jobRepo.Update(ctx, job); err != nil {
		s.logger.WarnContext(ctx, "record running job", "job_id", job.ID, "error", err)
	}
	return analysisjob.StatusRunning
}

func isCompletedStatus(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "completed", "complete", "done":
		return true
	default:
		return false
	}
}

func isFailedStatus(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "failed", "error", "cancelled", "canceled":
		return true
	default:
		return false
	}
}
