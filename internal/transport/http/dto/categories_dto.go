package dto

import "github.com/raulshma/chromatica/internal/domain/model"

type SaveCategoryRequest struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	WallpaperIDs []string `json:"wallpaperIds,omitempty"`
}

type CategoryResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	WallpaperIDs []string `json:"wallpaperIds,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type CategoriesResponse struct {
	Items []CategoryResponse `json:"items"`
}

func CategoryResponseFromModel(m model.Category) CategoryResponse {
	return CategoryResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		WallpaperIDs: m.WallpaperIDs,
	}
}
