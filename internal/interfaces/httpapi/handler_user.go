package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/padelhq/courtsight/internal/domain/user"
	"github.com/padelhq/courtsight/internal/usecase"
)

type upsertUserRequest struct {
	Email      string  `json:"email" validate:"omitempty,email"`
	Name       string  `json:"name" validate:"max=200"`
	BodyMassKG float64 `json:"body_mass_kg" validate:"gte=0,lte=400"`
}

type userDTO struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	BodyMassKG float64   `json:"body_mass_kg,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func userToDTO(u user.User) userDTO {
	return userDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		BodyMassKG: u.BodyMassKG,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func (h *Handler) UpsertMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertMe")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req upsertUserRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	email := req.Email
	if email == "" {
		email = principal.Email
	}

	saved, err := h.userService.Upsert(ctx, usecase.UpsertUserInput{
		ID:         principal.UserID,
		Email:      email,
		Name:       req.Name,
		BodyMassKG: req.BodyMassKG,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upsert user failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userToDTO(saved))
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMe")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	u, err := h.userService.Get(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userToDTO(u))
}
