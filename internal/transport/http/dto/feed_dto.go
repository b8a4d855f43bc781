package dto

import (
	"time"

	"github.com/raulshma/chromatica/internal/domain/model"
)

type WallpaperResponse struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	DisplayName   string    `json:"displayName,omitempty"`
	Description   string    `json:"description,omitempty"`
	Artist        string    `json:"artist,omitempty"`
	Brief         string    `json:"brief,omitempty"`
	PreviewURL    string    `json:"previewUrl"`
	FullURL       string    `json:"fullUrl"`
	Size          int64     `json:"size"`
	UploadedAt    time.Time `json:"uploadedAt"`
	Tags          []string  `json:"tags,omitempty"`
	DominantColor string    `json:"dominantColor,omitempty"`
}

func WallpaperResponseFromModel(m model.Wallpaper) WallpaperResponse {
	return WallpaperResponse{
		ID:            m.ID,
		FileName:      m.FileName,
		DisplayName:   m.DisplayName,
		Description:   m.Description,
		Artist:        m.Artist,
		Brief:         m.Brief,
		PreviewURL:    m.PreviewURL,
		FullURL:       m.FullURL,
		Size:          m.Size,
		UploadedAt:    m.UploadedAt,
		Tags:          m.Tags,
		DominantColor: m.DominantColor,
	}
}
