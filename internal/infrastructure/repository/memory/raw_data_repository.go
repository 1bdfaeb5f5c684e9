package memory

import (
	"context"
	"sync"

	"github.com/padelhq/courtsight/internal/domain/rawdata"
)

type RawDataRepository struct {
	mu    sync.Mutex
	items map[string]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{items: make(map[string]rawdata.Payload)}
}

func (r *RawDataRepository) Upsert(_ context.Context, item rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.Source+"/"+item.JobID+"/"+item.PayloadHash] = item
	return nil
}
