package source

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Provider is the file-hosting backend the feed is built from. Rename and
// delete are best-effort operations for callers; implementations still
// return errors so the caller can decide to log or fail.
type Provider interface {
	ListFiles(ctx context.Context, limit int) ([]FileRecord, error)
	RenameFile(ctx context.Context, key, newName string) error
	DeleteFile(ctx context.Context, key string) error
}

// FileRecord is one raw listing entry. Field names vary across provider
// versions, so every identifying field is optional and resolution happens
// in a fixed priority order (see ResolveKey).
type FileRecord struct {
	ID         string     `json:"id,omitempty"`
	Key        string     `json:"key,omitempty"`
	FileKey    string     `json:"fileKey,omitempty"`
	CustomID   string     `json:"customId,omitempty"`
	Name       string     `json:"name,omitempty"`
	FileName   string     `json:"fileName,omitempty"`
	Size       int64      `json:"size,omitempty"`
	FileSize   int64      `json:"fileSize,omitempty"`
	UploadedAt FlexTime   `json:"uploadedAt,omitempty"`
	CreatedAt  FlexTime   `json:"createdAt,omitempty"`
	Metadata   RecordMeta `json:"metadata,omitempty"`
}

// RecordMeta carries optional provider-side metadata attached at upload time.
type RecordMeta struct {
	Description   string   `json:"description,omitempty"`
	DominantColor string   `json:"dominantColor,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// FlexTime decodes either epoch milliseconds or an RFC 3339 string; the
// provider has shipped both shapes over time.
type FlexTime struct {
	Value time.Time
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		t.Value = time.Time{}
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		t.Value = parsed
		return nil
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return err
	}
	t.Value = time.UnixMilli(millis).UTC()
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Value.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value.Format(time.RFC3339))
}

func (t FlexTime) IsZero() bool {
	return t.Value.IsZero()
}
