package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/padelhq/courtsight/internal/platform/logging"
	"github.com/padelhq/courtsight/internal/usecase"
)

type Handler struct {
	matchService    *usecase.MatchService
	userService     *usecase.UserService
	analysisService *usecase.AnalysisService
	mediaService    *usecase.MediaService
	jobPoller       *usecase.JobPollerService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	userService *usecase.UserService,
	analysisService *usecase.AnalysisService,
	mediaService *usecase.MediaService,
	jobPoller *usecase.JobPollerService,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		matchService:    matchService,
		userService:     userService,
		analysisService: analysisService,
		mediaService:    mediaService,
		jobPoller:       jobPoller,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
