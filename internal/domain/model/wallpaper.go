package model

import (
	"time"

	"github.com/raulshma/chromatica/internal/domain/enums"
)

// Wallpaper is the merged view of a provider file and its admin metadata.
// PreviewURL and FullURL are always derived from the provider key plus the
// configured app id; they are never authoritative on their own.
type Wallpaper struct {
	ID            string                `json:"id" bson:"_id"`
	FileName      string                `json:"fileName" bson:"fileName"`
	DisplayName   string                `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Description   string                `json:"description,omitempty" bson:"description,omitempty"`
	Artist        string                `json:"artist,omitempty" bson:"artist,omitempty"`
	Brief         string                `json:"brief,omitempty" bson:"brief,omitempty"`
	PreviewURL    string                `json:"previewUrl" bson:"-"`
	FullURL       string                `json:"fullUrl" bson:"-"`
	Size          int64                 `json:"size" bson:"size"`
	UploadedAt    time.Time             `json:"uploadedAt" bson:"uploadedAt"`
	Tags          []string              `json:"tags,omitempty" bson:"tags,omitempty"`
	DominantColor string                `json:"dominantColor,omitempty" bson:"dominantColor,omitempty"`
	Status        enums.WallpaperStatus `json:"status,omitempty" bson:"status,omitempty"`
	CreatedAt     time.Time             `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt     time.Time             `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	History       []HistoryEntry        `json:"history,omitempty" bson:"history,omitempty"`
}

type HistoryEntry struct {
	At      time.Time              `json:"at" bson:"at"`
	Changes map[string]FieldChange `json:"changes" bson:"changes"`
}

type FieldChange struct {
	From interface{} `json:"from" bson:"from"`
	To   interface{} `json:"to" bson:"to"`
}
