// Package feedstate keeps client-side feed state: the last fetched feed
// snapshot plus the user's favorites, usable while offline.
package feedstate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/raulshma/chromatica/internal/domain/model"
)

// CachePayload is the persisted snapshot.
type CachePayload struct {
	Items     []model.Wallpaper `json:"items"`
	Favorites []string          `json:"favorites"`
	Timestamp time.Time         `json:"timestamp"`
}

// Persistence stores snapshots across sessions (disk, localstorage bridge,
// whatever the host app provides).
type Persistence interface {
	Load(ctx context.Context) (CachePayload, bool, error)
	Save(ctx context.Context, payload CachePayload) error
}

// Fetcher is the network port returning the current feed items.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Wallpaper, error)
}

type Store struct {
	mu        sync.Mutex
	items     []model.Wallpaper
	favorites map[string]struct{}

	persistence Persistence
	fetcher     Fetcher
	logger      *zap.Logger
	now         func() time.Time
}

func NewStore(persistence Persistence, fetcher Fetcher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		favorites:   map[string]struct{}{},
		persistence: persistence,
		fetcher:     fetcher,
		logger:      logger,
		now:         time.Now,
	}
}

// Hydrate restores the last persisted snapshot. A missing snapshot is not
// an error; the store just starts empty.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.persistence == nil {
		return nil
	}

	payload, ok, err := s.persistence.Load(ctx)
	if err != nil {
		return fmt.Errorf("load feed snapshot: %w", err)
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = payload.Items
	s.favorites = make(map[string]struct{}, len(payload.Favorites))
	for _, id := range payload.Favorites {
		s.favorites[id] = struct{}{}
	}

	return nil
}

// Refresh replaces the item set wholesale from the network and persists
// the new snapshot. Favorites are kept as-is: an id that vanished from
// the feed stays favorited and simply is not rendered (see
// VisibleFavorites). Persistence failure here is advisory.
func (s *Store) Refresh(ctx context.Context) error {
	if s.fetcher == nil {
		return fmt.Errorf("no fetcher configured")
	}

	items, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}

	s.mu.Lock()
	s.items = items
	payload := s.snapshotLocked()
	s.mu.Unlock()

	if s.persistence != nil {
		if err := s.persistence.Save(ctx, payload); err != nil {
			s.logger.Warn("persisting feed snapshot failed", zap.Error(err))
		}
	}

	return nil
}

// ToggleFavorite flips one favorite and persists immediately. No network
// involved, so it works offline; a persistence failure is returned since
// the toggle would otherwise be lost.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	_, wasFavorite := s.favorites[id]
	if wasFavorite {
		delete(s.favorites, id)
	} else {
		s.favorites[id] = struct{}{}
	}
	payload := s.snapshotLocked()
	s.mu.Unlock()

	if s.persistence != nil {
		if err := s.persistence.Save(ctx, payload); err != nil {
			return !wasFavorite, fmt.Errorf("persist favorite toggle: %w", err)
		}
	}

	return !wasFavorite, nil
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[id]
	return ok
}

func (s *Store) Items() []model.Wallpaper {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Wallpaper, len(s.items))
	copy(out, s.items)
	return out
}

// VisibleFavorites returns the favorited wallpapers present in the
// current item set. Filtering happens only at render time; the
// underlying favorite set is never pruned, so an item that reappears in
// a later feed is favorited again automatically.
func (s *Store) VisibleFavorites() []model.Wallpaper {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Wallpaper, 0, len(s.favorites))
	for _, item := range s.items {
		if _, ok := s.favorites[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) snapshotLocked() CachePayload {
	favorites := make([]string, 0, len(s.favorites))
	for id := range s.favorites {
		favorites = append(favorites, id)
	}
	sort.Strings(favorites)

	items := make([]model.Wallpaper, len(s.items))
	copy(items, s.items)

	return CachePayload{
		Items:     items,
		Favorites: favorites,
		Timestamp: s.now().UTC(),
	}
}
