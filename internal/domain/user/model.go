package user

import (
	"fmt"
	"time"
)

// User is a registered account that owns matches and their analytics.
type User struct {
	ID         string
	Email      string
	Name       string
	BodyMassKG float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Email == "" {
		return fmt.Errorf("user email is required")
	}
	if u.BodyMassKG < 0 {
		return fmt.Errorf("user body mass must not be negative")
	}

	return nil
}

// Principal is the authenticated identity resolved from a bearer token.
type Principal struct {
	UserID string
	Email  string
}
