package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/padelhq/courtsight/internal/domain/user"
	qb "github.com/padelhq/courtsight/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Upsert(ctx context.Context, u user.User) error {
	model := userInsertModel{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		BodyMassKG: u.BodyMassKG,
	}

	query, args, err := qb.InsertModel("users", model, `ON CONFLICT (id)
DO UPDATE SET
    email = EXCLUDED.email,
    name = EXCLUDED.name,
    body_mass_kg = EXCLUDED.body_mass_kg,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user id=%s: %w", u.ID, err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user by id query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user by id: %w", err)
	}

	return row.toDomain(), true, nil
}
