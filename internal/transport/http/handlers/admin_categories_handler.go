package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raulshma/chromatica/internal/domain/model"
	mongorepo "github.com/raulshma/chromatica/internal/repo/mongo"
	metadatasvc "github.com/raulshma/chromatica/internal/services/metadata"
	"github.com/raulshma/chromatica/internal/transport/http/dto"
	httperrors "github.com/raulshma/chromatica/internal/transport/http/errors"
)

type AdminCategoriesHandler struct {
	metadata *metadatasvc.Service
}

func NewAdminCategoriesHandler(metadata *metadatasvc.Service) *AdminCategoriesHandler {
	return &AdminCategoriesHandler{metadata: metadata}
}

func (h *AdminCategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeInternal(w, "METADATA_SERVICE_UNAVAILABLE", "metadata service is unavailable")
		return
	}

	categories, err := h.metadata.ListCategories(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load categories")
		return
	}

	resp := dto.CategoriesResponse{Items: make([]dto.CategoryResponse, 0, len(categories))}
	for _, category := range categories {
		resp.Items = append(resp.Items, dto.CategoryResponseFromModel(category))
	}

	httperrors.Write(w, http.StatusOK, resp)
}

func (h *AdminCategoriesHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeInternal(w, "METADATA_SERVICE_UNAVAILABLE", "metadata service is unavailable")
		return
	}

	var req dto.SaveCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	saved, err := h.metadata.SaveCategory(r.Context(), model.Category{
		ID:           req.ID,
		Name:         req.Name,
		Description:  req.Description,
		WallpaperIDs: req.WallpaperIDs,
	})
	if err != nil {
		if errors.Is(err, metadatasvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "category name is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to save category")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CategoryResponseFromModel(saved))
}

func (h *AdminCategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.metadata == nil {
		writeInternal(w, "METADATA_SERVICE_UNAVAILABLE", "metadata service is unavailable")
		return
	}

	err := h.metadata.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, metadatasvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid category id")
		case errors.Is(err, mongorepo.ErrCategoryNotFound):
			writeNotFound(w, "NOT_FOUND", "category not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete category")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
