package metadata

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raulshma/chromatica/internal/domain/enums"
	"github.com/raulshma/chromatica/internal/domain/model"
	mongorepo "github.com/raulshma/chromatica/internal/repo/mongo"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("wallpaper metadata not found")
)

// WallpaperStore is the persistence port for wallpaper metadata documents.
type WallpaperStore interface {
	Get(ctx context.Context, id string) (model.Wallpaper, error)
	List(ctx context.Context) ([]model.Wallpaper, error)
	Apply(ctx context.Context, id string, set map[string]any, entry model.HistoryEntry) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	Upsert(ctx context.Context, category model.Category) error
	Delete(ctx context.Context, id string) error
}

// FileProvider mirrors the provider-side file mutations. Both calls are
// best-effort side effects of metadata edits, never preconditions.
type FileProvider interface {
	RenameFile(ctx context.Context, key, newName string) error
	DeleteFile(ctx context.Context, key string) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Update carries the editable metadata fields. Nil pointers mean "leave
// this field alone"; set pointers are diffed against the stored document.
type Update struct {
	FileName      *string
	DisplayName   *string
	Description   *string
	Artist        *string
	Brief         *string
	Tags          *[]string
	DominantColor *string
}

type Service struct {
	wallpapers WallpaperStore
	categories CategoryStore
	provider   FileProvider
	cache      CacheInvalidator
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(wallpapers WallpaperStore, categories CategoryStore, provider FileProvider, cache CacheInvalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		wallpapers: wallpapers,
		categories: categories,
		provider:   provider,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id string) (model.Wallpaper, error) {
	if strings.TrimSpace(id) == "" {
		return model.Wallpaper{}, fmt.Errorf("%w: wallpaper id is required", ErrValidation)
	}

	doc, err := s.wallpapers.Get(ctx, id)
	if errors.Is(err, mongorepo.ErrWallpaperNotFound) {
		return model.Wallpaper{}, ErrNotFound
	}
	if err != nil {
		return model.Wallpaper{}, fmt.Errorf("load wallpaper metadata: %w", err)
	}

	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]model.Wallpaper, error) {
	return s.wallpapers.List(ctx)
}

// Upsert diffs the requested fields against the stored document and writes
// only when at least one field actually changed. A no-op edit leaves the
// document byte-for-byte untouched: no history entry, no updatedAt bump.
// Reports whether a write happened.
func (s *Service) Upsert(ctx context.Context, id string, upd Update) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%w: wallpaper id is required", ErrValidation)
	}

	existing, err := s.wallpapers.Get(ctx, id)
	if err != nil && !isNotFound(err) {
		return false, fmt.Errorf("load wallpaper metadata: %w", err)
	}

	set := map[string]any{}
	changes := map[string]model.FieldChange{}

	diffString := func(field string, current string, next *string) string {
		if next == nil {
			return current
		}
		value := strings.TrimSpace(*next)
		if value == current {
			return current
		}
		set[field] = value
		changes[field] = model.FieldChange{From: current, To: value}
		return value
	}

	diffString("fileName", existing.FileName, upd.FileName)
	diffString("displayName", existing.DisplayName, upd.DisplayName)
	diffString("description", existing.Description, upd.Description)
	diffString("artist", existing.Artist, upd.Artist)
	diffString("brief", existing.Brief, upd.Brief)
	diffString("dominantColor", existing.DominantColor, upd.DominantColor)

	if upd.Tags != nil && !slices.Equal(existing.Tags, *upd.Tags) {
		set["tags"] = *upd.Tags
		changes["tags"] = model.FieldChange{From: existing.Tags, To: *upd.Tags}
	}

	if len(changes) == 0 {
		return false, nil
	}

	at := s.now().UTC()
	set["updatedAt"] = at

	entry := model.HistoryEntry{At: at, Changes: changes}
	if err := s.wallpapers.Apply(ctx, id, set, entry); err != nil {
		return false, fmt.Errorf("apply wallpaper update: %w", err)
	}

	if change, ok := changes["fileName"]; ok {
		s.renameProviderFile(ctx, id, change)
	}

	s.invalidateFeed(ctx)

	return true, nil
}

// Delete soft-deletes: the document is flipped to failure status so the
// feed stops serving it, while the history of the record survives.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: wallpaper id is required", ErrValidation)
	}

	existing, err := s.wallpapers.Get(ctx, id)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("load wallpaper metadata: %w", err)
	}

	at := s.now().UTC()
	entry := model.HistoryEntry{
		At: at,
		Changes: map[string]model.FieldChange{
			"status": {From: string(existing.Status), To: string(enums.WallpaperStatusFailure)},
		},
	}
	set := map[string]any{
		"status":    string(enums.WallpaperStatusFailure),
		"updatedAt": at,
	}

	if err := s.wallpapers.Apply(ctx, id, set, entry); err != nil {
		return fmt.Errorf("soft delete wallpaper: %w", err)
	}

	if s.provider != nil {
		if err := s.provider.DeleteFile(ctx, id); err != nil {
			s.logger.Warn("provider delete failed, wallpaper stays soft-deleted",
				zap.String("key", id),
				zap.Error(err),
			)
		}
	}

	s.invalidateFeed(ctx)

	return nil
}

// MarkStatus records an upload lifecycle transition for the document.
func (s *Service) MarkStatus(ctx context.Context, id string, status enums.WallpaperStatus) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: wallpaper id is required", ErrValidation)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	existing, err := s.wallpapers.Get(ctx, id)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("load wallpaper metadata: %w", err)
	}
	if existing.Status == status {
		return nil
	}

	at := s.now().UTC()
	entry := model.HistoryEntry{
		At: at,
		Changes: map[string]model.FieldChange{
			"status": {From: string(existing.Status), To: string(status)},
		},
	}
	set := map[string]any{
		"status":    string(status),
		"updatedAt": at,
	}

	if err := s.wallpapers.Apply(ctx, id, set, entry); err != nil {
		return fmt.Errorf("mark wallpaper status: %w", err)
	}

	s.invalidateFeed(ctx)

	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) SaveCategory(ctx context.Context, category model.Category) (model.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	if err := s.categories.Upsert(ctx, category); err != nil {
		return model.Category{}, fmt.Errorf("save category: %w", err)
	}

	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: category id is required", ErrValidation)
	}
	return s.categories.Delete(ctx, id)
}

func (s *Service) renameProviderFile(ctx context.Context, key string, change model.FieldChange) {
	if s.provider == nil {
		return
	}

	newName, _ := change.To.(string)
	if newName == "" {
		return
	}

	if err := s.provider.RenameFile(ctx, key, newName); err != nil {
		s.logger.Warn("provider rename failed, keeping metadata change",
			zap.String("key", key),
			zap.String("newName", newName),
			zap.Error(err),
		)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, mongorepo.ErrWallpaperNotFound)
}

func (s *Service) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("feed cache invalidation failed", zap.Error(err))
	}
}
