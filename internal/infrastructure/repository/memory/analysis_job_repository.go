package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/padelhq/courtsight/internal/domain/analysisjob"
)

type AnalysisJobRepository struct {
	mu         sync.RWMutex
	items      map[string]analysisjob.Job
	byProvider map[string]string
}

func NewAnalysisJobRepository() *AnalysisJobRepository {
	return &AnalysisJobRepository{
		items:      make(map[string]analysisjob.Job),
		byProvider: make(map[string]string),
	}
}

func (r *AnalysisJobRepository) Create(_ context.Context, j analysisjob.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[j.ID] = j
	if j.ProviderJobID != "" {
		r.byProvider[j.ProviderJobID] = j.ID
	}

	return nil
}

func (r *AnalysisJobRepository) GetByID(_ context.Context, id string) (analysisjob.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.items[id]
	if !ok {
		return analysisjob.Job{}, false, nil
	}

	return j, true, nil
}

func (r *AnalysisJobRepository) GetByProviderJobID(_ context.Context, providerJobID string) (analysisjob.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byProvider[providerJobID]
	if !ok {
		return analysisjob.Job{}, false, nil
	}
	j, ok := r.items[id]
	if !ok {
		return analysisjob.Job{}, false, nil
	}

	return j, true, nil
}

func (r *AnalysisJobRepository) ListByStatus(_ context.Context, status analysisjob.Status, limit int) ([]analysisjob.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]analysisjob.Job, 0)
	for _, j := range r.items {
		if j.Status == status {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *AnalysisJobRepository) Update(_ context.Context, j analysisjob.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[j.ID]; !ok {
		return nil
	}
	r.items[j.ID] = j
	if j.ProviderJobID != "" {
		r.byProvider[j.ProviderJobID] = j.ID
	}

	return nil
}
