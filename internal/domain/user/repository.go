package user

import "context"

// Repository describes user persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, bool, error)
}
