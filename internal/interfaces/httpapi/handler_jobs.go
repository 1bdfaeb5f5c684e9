package httpapi

import (
	"net/http"
)

// RunAnalysisPoll drives one poll cycle on demand. External schedulers hit
// this instead of waiting for the in-process ticker.
func (h *Handler) RunAnalysisPoll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAnalysisPoll")
	defer span.End()

	result, err := h.jobPoller.RunOnce(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "analysis poll run failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
