package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/padelhq/courtsight/internal/domain/match"
	"github.com/padelhq/courtsight/internal/usecase"
)

type createMatchRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	VideoURL  string     `json:"video_url" validate:"required,url"`
	CourtName string     `json:"court_name" validate:"max=200"`
	PlayedAt  *time.Time `json:"played_at"`
}

type matchDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	VideoURL  string     `json:"video_url"`
	CourtName string     `json:"court_name,omitempty"`
	PlayedAt  *time.Time `json:"played_at,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:        m.ID,
		Title:     m.Title,
		VideoURL:  m.VideoURL,
		CourtName: m.CourtName,
		PlayedAt:  m.PlayedAt,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createMatchRequest
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

	created, err := h.matchService.Create(ctx, usecase.CreateMatchInput{
		UserID:    principal.UserID,
		Title:     req.Title,
		VideoURL:  req.VideoURL,
		CourtName: req.CourtName,
		PlayedAt:  req.PlayedAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(created))
}

func (h *Handler) ListMyMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyMatches")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matches, err := h.matchService.ListByUser(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchToDTO(m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	m, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	// Other users' matches are indistinguishable from missing ones.
	if m.UserID != principal.UserID {
		writeError(ctx, w, fmt.Errorf("%w: match %s", usecase.ErrNotFound, matchID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.matchService.Delete(ctx, matchID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, nil)
}
