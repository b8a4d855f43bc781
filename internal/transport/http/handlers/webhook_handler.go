package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/raulshma/chromatica/internal/domain/enums"
	metadatasvc "github.com/raulshma/chromatica/internal/services/metadata"
	"github.com/raulshma/chromatica/internal/transport/http/dto"
	httperrors "github.com/raulshma/chromatica/internal/transport/http/errors"
)

type WebhookHandler struct {
	metadata *metadatasvc.Service
}

func NewWebhookHandler(metadata *metadatasvc.Service) *WebhookHandler {
	return &WebhookHandler{metadata: metadata}
}

// Upload records upload lifecycle transitions pushed by the provider.
// Every transition lands in the document history, so a failed upload
// stays auditable.
func (h *WebhookHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeInternal(w, "METADATA_SERVICE_UNAVAILABLE", "metadata service is unavailable")
		return
	}

	var req dto.UploadWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	key := strings.TrimSpace(req.Key)
	if key == "" {
		key = strings.TrimSpace(req.FileKey)
	}
	if key == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "file key is required")
		return
	}

	var status enums.WallpaperStatus
	switch req.Event {
	case "upload-started":
		status = enums.WallpaperStatusPending
	case "upload-complete":
		status = enums.WallpaperStatusSuccess
	case "upload-failed":
		status = enums.WallpaperStatusFailure
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "unknown event")
		return
	}

	if err := h.metadata.MarkStatus(r.Context(), key, status); err != nil {
		if errors.Is(err, metadatasvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid webhook payload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to record upload event")
		return
	}

	if req.FileName != "" {
		name := req.FileName
		if _, err := h.metadata.Upsert(r.Context(), key, metadatasvc.Update{FileName: &name}); err != nil {
			// The status transition above is already recorded; a retry
			// re-runs it as a no-op.
			writeInternal(w, "INTERNAL_ERROR", "upload event recorded but file name update failed")
			return
		}
	}

	httperrors.Write(w, http.StatusOK, dto.UploadWebhookResponse{OK: true})
}
