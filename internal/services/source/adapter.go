package source

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raulshma/chromatica/internal/domain/model"
)

const defaultFileHost = "utfs.io"

var whitespaceRe = regexp.MustCompile(`\s+`)

// Adapter turns raw provider listings into Wallpaper records. It owns key
// resolution, key sanitization and public URL generation; it does not
// guarantee any output ordering.
type Adapter struct {
	appID  string
	logger *zap.Logger
	now    func() time.Time
}

func NewAdapter(appID string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		appID:  strings.TrimSpace(appID),
		logger: logger,
		now:    time.Now,
	}
}

// Normalize maps a listing page to wallpapers. Records without any
// resolvable key are dropped with a warning; they have no stable identity
// so there is nothing useful to serve.
func (a *Adapter) Normalize(records []FileRecord) []model.Wallpaper {
	items := make([]model.Wallpaper, 0, len(records))
	for i, rec := range records {
		key, ok := ResolveKey(rec)
		if !ok {
			a.logger.Warn("file record has no resolvable key, dropping",
				zap.Int("index", i),
				zap.String("name", rec.Name),
			)
			continue
		}

		key = SanitizeKey(key)
		items = append(items, model.Wallpaper{
			ID:            key,
			FileName:      resolveFileName(rec),
			Description:   rec.Metadata.Description,
			PreviewURL:    FileURL(a.appID, key),
			FullURL:       FileURL(a.appID, key),
			Size:          resolveSize(rec),
			UploadedAt:    a.resolveUploadedAt(rec),
			Tags:          rec.Metadata.Tags,
			DominantColor: rec.Metadata.DominantColor,
		})
	}
	return items
}

// URL derives the public file URL for a sanitized key using the
// adapter's configured app id.
func (a *Adapter) URL(key string) string {
	return FileURL(a.appID, key)
}

// ResolveKey picks the record identity in priority order: customId, then
// key (or its fileKey alias), then id.
func ResolveKey(rec FileRecord) (string, bool) {
	for _, candidate := range []string{rec.CustomID, rec.Key, rec.FileKey, rec.ID} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// SanitizeKey normalizes keys that upstream listings have historically
// returned as fully formed URLs instead of bare keys. URL-shaped keys are
// reduced to their path, preferring the /f/ prefix convention, and any
// whitespace is collapsed to %20.
func SanitizeKey(key string) string {
	key = strings.TrimSpace(key)

	if strings.Contains(key, "://") {
		if parsed, err := url.Parse(key); err == nil {
			path := parsed.Path
			if strings.HasPrefix(path, "/f/") {
				key = path[len("/f/"):]
			} else {
				key = strings.TrimPrefix(path, "/")
			}
		} else {
			key = stripURLPrefix(key)
		}
	}

	return whitespaceRe.ReplaceAllString(key, "%20")
}

// FileURL derives the public URL for a sanitized key. Pure function of
// (appID, key): same inputs always produce the same URL.
func FileURL(appID, key string) string {
	if appID != "" {
		return "https://" + appID + ".ufs.sh/f/" + key
	}
	return "https://" + defaultFileHost + "/f/" + key
}

func stripURLPrefix(key string) string {
	idx := strings.Index(key, "://")
	rest := key[idx+len("://"):]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[slash+1:]
	}
	return strings.TrimPrefix(rest, "f/")
}

func resolveFileName(rec FileRecord) string {
	for _, candidate := range []string{rec.Name, rec.FileName} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return "Untitled"
}

func resolveSize(rec FileRecord) int64 {
	if rec.Size > 0 {
		return rec.Size
	}
	return rec.FileSize
}

func (a *Adapter) resolveUploadedAt(rec FileRecord) time.Time {
	if !rec.UploadedAt.IsZero() {
		return rec.UploadedAt.Value
	}
	if !rec.CreatedAt.IsZero() {
		return rec.CreatedAt.Value
	}
	return a.now().UTC()
}
