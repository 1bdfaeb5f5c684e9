package postgres

import (
	"time"

	"github.com/padelhq/courtsight/internal/domain/user"
)

type userTableModel struct {
	ID         string     `db:"id"`
	Email      string     `db:"email"`
	Name       string     `db:"name"`
	BodyMassKG float64    `db:"body_mass_kg"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		ID:         m.ID,
		Email:      m.Email,
		Name:       m.Name,
		BodyMassKG: m.BodyMassKG,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type userInsertModel struct {
	ID         string  `db:"id"`
	Email      string  `db:"email"`
	Name       string  `db:"name"`
	BodyMassKG float64 `db:"body_mass_kg"`
}
