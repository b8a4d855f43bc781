package dto

import (
	"time"

	"github.com/raulshma/chromatica/internal/domain/model"
)

type UpdateWallpaperRequest struct {
	FileName      *string   `json:"fileName,omitempty"`
	DisplayName   *string   `json:"displayName,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Artist        *string   `json:"artist,omitempty"`
	Brief         *string   `json:"brief,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	DominantColor *string   `json:"dominantColor,omitempty"`
}

type UpdateWallpaperResponse struct {
	OK      bool `json:"ok"`
	Changed bool `json:"changed"`
}

type AdminWallpaperResponse struct {
	WallpaperResponse
	Status    string                 `json:"status,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt,omitempty"`
	History   []HistoryEntryResponse `json:"history,omitempty"`
}

type HistoryEntryResponse struct {
	At      time.Time                      `json:"at"`
	Changes map[string]FieldChangeResponse `json:"changes"`
}

type FieldChangeResponse struct {
	From any `json:"from"`
	To   any `json:"to"`
}

type AdminWallpapersResponse struct {
	Items []AdminWallpaperResponse `json:"items"`
}

func AdminWallpaperResponseFromModel(m model.Wallpaper) AdminWallpaperResponse {
	resp := AdminWallpaperResponse{
		WallpaperResponse: WallpaperResponseFromModel(m),
		Status:            string(m.Status),
		UpdatedAt:         m.UpdatedAt,
	}
	for _, entry := range m.History {
		changes := make(map[string]FieldChangeResponse, len(entry.Changes))
		for field, change := range entry.Changes {
			changes[field] = FieldChangeResponse{From: change.From, To: change.To}
		}
		resp.History = append(resp.History, HistoryEntryResponse{At: entry.At, Changes: changes})
	}
	return resp
}
