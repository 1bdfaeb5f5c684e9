package match

import "context"

// Repository describes match persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, m Match) error
	GetByID(ctx context.Context, id string) (Match, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Match, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}
