package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/raulshma/chromatica/internal/ai/gemini"
	briefsvc "github.com/raulshma/chromatica/internal/services/brief"
	"github.com/raulshma/chromatica/internal/transport/http/dto"
	httperrors "github.com/raulshma/chromatica/internal/transport/http/errors"
)

type BriefHandler struct {
	briefs       *briefsvc.Service
	maxImageSize int64
}

func NewBriefHandler(briefs *briefsvc.Service, maxImageSize int64) *BriefHandler {
	if maxImageSize <= 0 {
		maxImageSize = 16 << 20
	}
	return &BriefHandler{briefs: briefs, maxImageSize: maxImageSize}
}

// Generate accepts either a multipart upload with an "image" file field or
// a JSON body carrying an imageUrl.
func (h *BriefHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.briefs == nil {
		writeInternal(w, "BRIEF_SERVICE_UNAVAILABLE", "brief service is unavailable")
		return
	}

	input, ok := h.briefInput(w, r)
	if !ok {
		return
	}

	result, err := h.briefs.Generate(r.Context(), input)
	if err != nil {
		writeBriefError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.GenerateBriefResponse{
		Brief:     result.Brief,
		Reasoning: result.Reasoning,
	})
}

func (h *BriefHandler) briefInput(w http.ResponseWriter, r *http.Request) (briefsvc.Input, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxImageSize); err != nil {
			writeBadRequest(w, "INVALID_REQUEST", "invalid multipart body")
			return briefsvc.Input{}, false
		}

		file, header, err := r.FormFile("image")
		if errors.Is(err, http.ErrMissingFile) {
			// Admin clients may send the image as a URL form field
			// instead of attaching the file.
			if imageURL := strings.TrimSpace(r.FormValue("imageUrl")); imageURL != "" {
				return briefsvc.Input{ImageURL: imageURL}, true
			}
			writeBadRequest(w, "VALIDATION_ERROR", "imageUrl or image file is required")
			return briefsvc.Input{}, false
		}
		if err != nil {
			writeBadRequest(w, "INVALID_REQUEST", "image file field is required")
			return briefsvc.Input{}, false
		}
		defer func() { _ = file.Close() }()

		raw, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
		if err != nil {
			writeBadRequest(w, "INVALID_REQUEST", "failed to read image file")
			return briefsvc.Input{}, false
		}
		if int64(len(raw)) > h.maxImageSize {
			httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
				Code:    "IMAGE_TOO_LARGE",
				Message: "image exceeds size limit",
			})
			return briefsvc.Input{}, false
		}

		return briefsvc.Input{Image: raw, MimeType: header.Header.Get("Content-Type")}, true
	}

	var req dto.GenerateBriefRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return briefsvc.Input{}, false
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "imageUrl or image file is required")
		return briefsvc.Input{}, false
	}

	return briefsvc.Input{ImageURL: req.ImageURL}, true
}

func writeBriefError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, briefsvc.ErrInsecureURL):
		writeBadRequest(w, "VALIDATION_ERROR", "image url must use https")
	case errors.Is(err, briefsvc.ErrBadImage):
		writeBadRequest(w, "BAD_IMAGE", "image could not be processed")
	case errors.Is(err, briefsvc.ErrImageTooLarge):
		httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{
			Code:    "IMAGE_TOO_LARGE",
			Message: "image exceeds size limit",
		})
	case errors.Is(err, briefsvc.ErrFetchTimeout):
		httperrors.Write(w, http.StatusRequestTimeout, httperrors.APIError{
			Code:    "FETCH_TIMEOUT",
			Message: "image fetch timed out",
		})
	case errors.Is(err, gemini.ErrRateLimited):
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.APIError{
			Code:    "MODEL_RATE_LIMITED",
			Message: "model is rate limited, try again later",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to generate brief")
	}
}
