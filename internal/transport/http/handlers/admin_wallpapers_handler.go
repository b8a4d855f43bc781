package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	feedsvc "github.com/raulshma/chromatica/internal/services/feed"
	metadatasvc "github.com/raulshma/chromatica/internal/services/metadata"
	"github.com/raulshma/chromatica/internal/transport/http/dto"
	httperrors "github.com/raulshma/chromatica/internal/transport/http/errors"
)

type AdminWallpapersHandler struct {
	feed     *feedsvc.Service
	metadata *metadatasvc.Service
}

func NewAdminWallpapersHandler(feed *feedsvc.Service, metadata *metadatasvc.Service) *AdminWallpapersHandler {
	return &AdminWallpapersHandler{feed: feed, metadata: metadata}
}

func (h *AdminWallpapersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	items, err := h.feed.AdminList(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load wallpapers")
		return
	}

	resp := dto.AdminWallpapersResponse{Items: make([]dto.AdminWallpaperResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.AdminWallpaperResponseFromModel(item))
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *AdminWallpapersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeInternal(w, "METADATA_SERVICE_UNAVAILABLE", "metadata service is unavailable")
		return
	}

	var req dto.UpdateWallpaperRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	changed, err := h.metadata.Upsert(r.Context(), chi.URLParam(r, "id"), metadatasvc.Update{
		FileName:      req.FileName,
		DisplayName:   req.DisplayName,
		Description:   req.Description,
		Artist:        req.Artist,
		Brief:         req.Brief,
		Tags:          req.Tags,
		DominantColor: req.DominantColor,
	})
	if err != nil {
		if errors.Is(err, metadatasvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid wallpaper id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to update wallpaper")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UpdateWallpaperResponse{OK: true, Changed: changed})
}

func (h *AdminWallpapersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeInternal(w, "METADATA_SERVICE_UNAVAILABLE", "metadata service is unavailable")
		return
	}

	if err := h.metadata.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, metadatasvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid wallpaper id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to delete wallpaper")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UpdateWallpaperResponse{OK: true, Changed: true})
}
