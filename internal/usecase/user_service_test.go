package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/padelhq/courtsight/internal/domain/user"
)

type stubUserRepo struct {
	users map[string]user.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]user.User)}
}

func (r *stubUserRepo) Upsert(_ context.Context, u user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (user.User, bool, error) {
	u, ok := r.users[id]
	return u, ok, nil
}

func TestUserService_UpsertNormalizesAndPreservesCreatedAt(t *testing.T) {
	t.Parallel()

	repo := newStubUserRepo()
	svc := NewUserService(repo)

	first, err := svc.Upsert(context.Background(), UpsertUserInput{
		ID:         "user-1",
		Email:      "  Pat@Example.COM ",
		Name:       " Pat ",
		BodyMassKG: 72,
	})
	if err != nil {
		t.Fatalf("first Upsert error: %v", err)
	}
	if first.Email != "pat@example.com" || first.Name != "Pat" {
		t.Fatalf("input not normalized: %+v", first)
	}

	svc.now = func() time.Time { return first.CreatedAt.Add(time.Hour) }
	second, err := svc.Upsert(context.Background(), UpsertUserInput{
		ID:    "user-1",
		Email: "pat@example.com",
	})
	if err != nil {
		t.Fatalf("second Upsert error: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt must survive re-upsert")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatalf("UpdatedAt should advance")
	}
}

func TestUserService_UpsertRejectsInvalid(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newStubUserRepo())
	if _, err := svc.Upsert(context.Background(), UpsertUserInput{Email: "x@y.z"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing id, got %v", err)
	}
	if _, err := svc.Upsert(context.Background(), UpsertUserInput{ID: "u", Email: "x@y.z", BodyMassKG: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative body mass, got %v", err)
	}
}

func TestUserService_GetNotFound(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newStubUserRepo())
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
