package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/padelhq/courtsight/internal/domain/analysis"
	"github.com/padelhq/courtsight/internal/usecase"
)

const maxCallbackBodyBytes = 6 << 20

func (h *Handler) GetMatchAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchAnalysis")
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
	if m.UserID != principal.UserID {
		writeError(ctx, w, fmt.Errorf("%w: match %s", usecase.ErrNotFound, matchID))
		return
	}

	formatted, err := h.analysisService.GetMatchAnalysis(ctx, matchID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match analysis failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, formatted)
}

func (h *Handler) GetJobAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetJobAnalysis")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	jobID := strings.TrimSpace(r.PathValue("jobID"))
	formatted, err := h.analysisService.GetJobAnalysis(ctx, jobID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get job analysis failed", "provider_job_id", jobID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, formatted)
}

// AnalysisCallback ingests provider push notifications so results land without
// waiting for the next poll cycle. The body is the provider's raw job result.
func (h *Handler) AnalysisCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AnalysisCallback")
	defer span.End()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBodyBytes))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read callback body: %v", usecase.ErrInvalidInput, err))
		return
	}

	var payload analysis.RawAnalysisPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid callback payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	jobID := strings.TrimSpace(payload.JobID)
	if jobID == "" {
		writeError(ctx, w, fmt.Errorf("%w: callback job_id is required", usecase.ErrInvalidInput))
		return
	}

	switch strings.ToLower(strings.TrimSpace(payload.AnalysisStatus)) {
	case "failed", "error", "cancelled", "canceled":
		err = h.analysisService.FailJob(ctx, jobID, "provider reported "+payload.AnalysisStatus)
	default:
		err = h.analysisService.CompleteJob(ctx, jobID, payload, body)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "analysis callback failed", "provider_job_id", jobID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"provider_job_id": jobID})
}
