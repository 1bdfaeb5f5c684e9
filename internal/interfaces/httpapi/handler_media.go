package httpapi

import (
	"fmt"
	"net/http"

	"github.com/padelhq/courtsight/internal/usecase"
)

func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadVideo")
	defer span.End()

	h.upload(w, r.WithContext(ctx), "video")
}

func (h *Handler) UploadHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadHeatmap")
	defer span.End()

	h.upload(w, r.WithContext(ctx), "heatmap")
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, kind string) {
	ctx := r.Context()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: multipart field %q is required: %v", usecase.ErrInvalidInput, "file", err))
		return
	}
	defer file.Close()

	var object usecase.MediaObject
	switch kind {
	case "video":
		object, err = h.mediaService.UploadVideo(ctx, principal.UserID, header.Filename, file)
	default:
		object, err = h.mediaService.UploadHeatmap(ctx, principal.UserID, header.Filename, file)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "media upload failed",
			"user_id", principal.UserID,
			"kind", kind,
			"filename", header.Filename,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, object)
}
