package analysisjob

import "context"

// Repository describes job persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, j Job) error
	GetByID(ctx context.Context, id string) (Job, bool, error)
	GetByProviderJobID(ctx context.Context, providerJobID string) (Job, bool, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Job, error)
	Update(ctx context.Context, j Job) error
}
