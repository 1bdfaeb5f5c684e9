package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/padelhq/courtsight/internal/domain/user"
)

type UpsertUserInput struct {
	ID         string
	Email      string
	Name       string
	BodyMassKG float64
}

// UserService maintains account profiles. Body mass feeds the calorie model,
// so it is the one field with domain validation beyond identity.
type UserService struct {
	userRepo user.Repository
	now      func() time.Time
}

func NewUserService(userRepo user.Repository) *UserService {
	return &UserService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *UserService) Upsert(ctx context.Context, input UpsertUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Upsert")
	defer span.End()

	now := s.now().UTC()
	u := user.User{
		ID:         strings.TrimSpace(input.ID),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Name:       strings.TrimSpace(input.Name),
		BodyMassKG: input.BodyMassKG,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := u.Validate(); err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if existing, found, err := s.userRepo.GetByID(ctx, u.ID); err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	} else if found {
		u.CreatedAt = existing.CreatedAt
	}

	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Get")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	u, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return user.User{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return u, nil
}
