package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/raulshma/chromatica/internal/domain/enums"
	"github.com/raulshma/chromatica/internal/domain/model"
	mongorepo "github.com/raulshma/chromatica/internal/repo/mongo"
	redisrepo "github.com/raulshma/chromatica/internal/repo/redis"
	"github.com/raulshma/chromatica/internal/services/metadata"
	"github.com/raulshma/chromatica/internal/services/source"
)

var ErrNotFound = errors.New("wallpaper not found")

// Lister is the provider-side listing port.
type Lister interface {
	ListFiles(ctx context.Context, limit int) ([]source.FileRecord, error)
}

type MetadataStore interface {
	Get(ctx context.Context, id string) (model.Wallpaper, error)
	List(ctx context.Context) ([]model.Wallpaper, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
}

type Cache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, payload []byte) error
}

// Payload is the serialized feed document. It is cached and served as a
// single unit; generatedAt reflects build time, not request time.
type Payload struct {
	Items       []model.Wallpaper `json:"items"`
	Collections []model.Category  `json:"collections"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

type Service struct {
	provider   Lister
	adapter    *source.Adapter
	metadata   MetadataStore
	categories CategoryStore
	cache      Cache
	pageLimit  int
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(provider Lister, adapter *source.Adapter, metadata MetadataStore, categories CategoryStore, cache Cache, pageLimit int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageLimit <= 0 {
		pageLimit = 100
	}
	return &Service{
		provider:   provider,
		adapter:    adapter,
		metadata:   metadata,
		categories: categories,
		cache:      cache,
		pageLimit:  pageLimit,
		logger:     logger,
		now:        time.Now,
	}
}

// GetFeed serves the cached feed when present and rebuilds it otherwise.
// Cache failures on either side are logged and ignored; the provider
// remains the source of truth. The bool reports a cache hit.
func (s *Service) GetFeed(ctx context.Context) ([]byte, bool, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			return cached, true, nil
		}
		if !errors.Is(err, redisrepo.ErrCacheMiss) {
			s.logger.Warn("feed cache read failed, rebuilding", zap.Error(err))
		}
	}

	raw, err := s.Rebuild(ctx)
	if err != nil {
		return nil, false, err
	}

	return raw, false, nil
}

// Rebuild recomputes the feed and re-primes the cache unconditionally.
func (s *Service) Rebuild(ctx context.Context) ([]byte, error) {
	payload, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode feed payload: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, raw); err != nil {
			s.logger.Warn("feed cache write failed", zap.Error(err))
		}
	}

	return raw, nil
}

// Build assembles the feed from a fresh provider listing merged with the
// stored metadata. Soft-deleted wallpapers never make it into the feed.
func (s *Service) Build(ctx context.Context) (Payload, error) {
	records, err := s.provider.ListFiles(ctx, s.pageLimit)
	if err != nil {
		return Payload{}, fmt.Errorf("list provider files: %w", err)
	}

	items := s.adapter.Normalize(records)

	docs, err := s.metadata.List(ctx)
	if err != nil {
		return Payload{}, fmt.Errorf("list wallpaper metadata: %w", err)
	}
	byID := make(map[string]model.Wallpaper, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	merged := make([]model.Wallpaper, 0, len(items))
	for _, item := range items {
		doc, ok := byID[item.ID]
		if ok && doc.Status == enums.WallpaperStatusFailure {
			continue
		}
		if ok {
			item = overlayMetadata(item, doc)
		}
		merged = append(merged, item)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return effectiveTime(merged[i]).After(effectiveTime(merged[j]))
	})

	collections := []model.Category{}
	if s.categories != nil {
		collections, err = s.categories.List(ctx)
		if err != nil {
			s.logger.Warn("listing collections failed, serving feed without them", zap.Error(err))
			collections = []model.Category{}
		}
	}

	return Payload{
		Items:       merged,
		Collections: collections,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// AdminList merges the provider listing with metadata for the admin
// surface. Unlike the public feed it keeps soft-deleted wallpapers so
// their status is visible.
func (s *Service) AdminList(ctx context.Context) ([]model.Wallpaper, error) {
	records, err := s.provider.ListFiles(ctx, s.pageLimit)
	if err != nil {
		return nil, fmt.Errorf("list provider files: %w", err)
	}

	items := s.adapter.Normalize(records)

	docs, err := s.metadata.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallpaper metadata: %w", err)
	}
	byID := make(map[string]model.Wallpaper, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	merged := make([]model.Wallpaper, 0, len(items))
	for _, item := range items {
		if doc, ok := byID[item.ID]; ok {
			item = overlayMetadata(item, doc)
			item.History = doc.History
		}
		merged = append(merged, item)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return effectiveTime(merged[i]).After(effectiveTime(merged[j]))
	})

	return merged, nil
}

// GetByKey resolves one wallpaper. Metadata lookup first; when no
// document exists the provider listing is scanned for the key so that
// never-edited wallpapers still resolve.
func (s *Service) GetByKey(ctx context.Context, key string) (model.Wallpaper, error) {
	key = source.SanitizeKey(key)
	if strings.TrimSpace(key) == "" {
		return model.Wallpaper{}, ErrNotFound
	}

	doc, err := s.metadata.Get(ctx, key)
	switch {
	case err == nil:
		if doc.Status == enums.WallpaperStatusFailure {
			return model.Wallpaper{}, ErrNotFound
		}
		doc.PreviewURL = s.adapter.URL(key)
		doc.FullURL = s.adapter.URL(key)
		return doc, nil
	case !isMetadataNotFound(err):
		return model.Wallpaper{}, fmt.Errorf("load wallpaper metadata: %w", err)
	}

	records, err := s.provider.ListFiles(ctx, s.pageLimit)
	if err != nil {
		return model.Wallpaper{}, fmt.Errorf("list provider files: %w", err)
	}
	for _, item := range s.adapter.Normalize(records) {
		if item.ID == key {
			return item, nil
		}
	}

	return model.Wallpaper{}, ErrNotFound
}

func isMetadataNotFound(err error) bool {
	return errors.Is(err, metadata.ErrNotFound) || errors.Is(err, mongorepo.ErrWallpaperNotFound)
}

func overlayMetadata(item model.Wallpaper, doc model.Wallpaper) model.Wallpaper {
	if doc.FileName != "" {
		item.FileName = doc.FileName
	}
	if doc.DisplayName != "" {
		item.DisplayName = doc.DisplayName
	}
	if doc.Description != "" {
		item.Description = doc.Description
	}
	if doc.Artist != "" {
		item.Artist = doc.Artist
	}
	if doc.Brief != "" {
		item.Brief = doc.Brief
	}
	if len(doc.Tags) > 0 {
		item.Tags = doc.Tags
	}
	if doc.DominantColor != "" {
		item.DominantColor = doc.DominantColor
	}
	item.Status = doc.Status
	item.UpdatedAt = doc.UpdatedAt
	return item
}

func effectiveTime(item model.Wallpaper) time.Time {
	if !item.UpdatedAt.IsZero() {
		return item.UpdatedAt
	}
	return item.UploadedAt
}
