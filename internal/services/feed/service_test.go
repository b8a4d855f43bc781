package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/raulshma/chromatica/internal/domain/enums"
	"github.com/raulshma/chromatica/internal/domain/model"
	mongorepo "github.com/raulshma/chromatica/internal/repo/mongo"
	redisrepo "github.com/raulshma/chromatica/internal/repo/redis"
	"github.com/raulshma/chromatica/internal/services/source"
)

type fakeLister struct {
	records []source.FileRecord
	err     error
	calls   int
}

func (f *fakeLister) ListFiles(_ context.Context, _ int) ([]source.FileRecord, error) {
	f.calls++
	return f.records, f.err
}

type fakeMetadataStore struct {
	docs map[string]model.Wallpaper
}

func (f *fakeMetadataStore) Get(_ context.Context, id string) (model.Wallpaper, error) {
	doc, ok := f.docs[id]
	if !ok {
		return model.Wallpaper{}, mongorepo.ErrWallpaperNotFound
	}
	return doc, nil
}

func (f *fakeMetadataStore) List(_ context.Context) ([]model.Wallpaper, error) {
	out := make([]model.Wallpaper, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	return out, nil
}

type fakeCategoryStore struct {
	categories []model.Category
}

func (f *fakeCategoryStore) List(context.Context) ([]model.Category, error) {
	return f.categories, nil
}

type fakeCache struct {
	payload []byte
	getErr  error
	setErr  error
	sets    int
}

func (f *fakeCache) Get(context.Context) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.payload == nil {
		return nil, redisrepo.ErrCacheMiss
	}
	return f.payload, nil
}

func (f *fakeCache) Set(_ context.Context, payload []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.payload = payload
	return nil
}

func record(key string, uploadedAt time.Time) source.FileRecord {
	return source.FileRecord{
		Key:        key,
		Name:       key + ".jpg",
		Size:       1024,
		UploadedAt: source.FlexTime{Value: uploadedAt},
	}
}

func newTestService(lister *fakeLister, meta *fakeMetadataStore, cats *fakeCategoryStore, cache Cache) *Service {
	if meta == nil {
		meta = &fakeMetadataStore{docs: map[string]model.Wallpaper{}}
	}
	if cats == nil {
		cats = &fakeCategoryStore{}
	}
	svc := NewService(lister, source.NewAdapter("myapp", nil), meta, cats, cache, 100, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestGetFeedServesCachedPayloadWithoutProviderCall(t *testing.T) {
	lister := &fakeLister{}
	cache := &fakeCache{payload: []byte(`{"items":[]}`)}
	svc := newTestService(lister, nil, nil, cache)

	got, cached, err := svc.GetFeed(context.Background())
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if !cached {
		t.Fatal("expected a cache hit")
	}
	if string(got) != `{"items":[]}` {
		t.Fatalf("unexpected payload: %s", got)
	}
	if lister.calls != 0 {
		t.Fatalf("provider must not be called on cache hit, got %d calls", lister.calls)
	}
}

func TestGetFeedRebuildsAndCachesOnMiss(t *testing.T) {
	lister := &fakeLister{records: []source.FileRecord{
		record("abc123", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
	}}
	cache := &fakeCache{}
	svc := newTestService(lister, nil, &fakeCategoryStore{}, cache)

	got, cached, err := svc.GetFeed(context.Background())
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if cached {
		t.Fatal("expected a cache miss")
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	var payload Payload
	if err := json.Unmarshal(got, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].ID != "abc123" {
		t.Fatalf("unexpected items: %+v", payload.Items)
	}
	if payload.Items[0].FullURL != "https://myapp.ufs.sh/f/abc123" {
		t.Fatalf("unexpected url: %s", payload.Items[0].FullURL)
	}
}

func TestGetFeedFailsOpenOnCacheErrors(t *testing.T) {
	lister := &fakeLister{records: []source.FileRecord{
		record("abc123", time.Now().UTC()),
	}}
	cache := &fakeCache{
		getErr: fmt.Errorf("redis down"),
		setErr: fmt.Errorf("redis down"),
	}
	svc := newTestService(lister, nil, nil, cache)

	got, _, err := svc.GetFeed(context.Background())
	if err != nil {
		t.Fatalf("feed must fail open when cache is down: %v", err)
	}
	if lister.calls != 1 {
		t.Fatalf("expected provider rebuild, got %d calls", lister.calls)
	}
	if len(got) == 0 {
		t.Fatal("expected a payload")
	}
}

func TestBuildExcludesSoftDeletedAndOverlaysMetadata(t *testing.T) {
	lister := &fakeLister{records: []source.FileRecord{
		record("keep", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		record("gone", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)),
	}}
	meta := &fakeMetadataStore{docs: map[string]model.Wallpaper{
		"keep": {
			ID:          "keep",
			DisplayName: "Kept One",
			Artist:      "A. Painter",
			Status:      enums.WallpaperStatusSuccess,
			UpdatedAt:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		"gone": {
			ID:     "gone",
			Status: enums.WallpaperStatusFailure,
		},
	}}
	svc := newTestService(lister, meta, &fakeCategoryStore{}, nil)

	payload, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("soft-deleted item leaked into feed: %+v", payload.Items)
	}

	item := payload.Items[0]
	if item.ID != "keep" || item.DisplayName != "Kept One" || item.Artist != "A. Painter" {
		t.Fatalf("metadata overlay missing: %+v", item)
	}
	if item.FileName != "keep.jpg" {
		t.Fatalf("provider fields lost in merge: %+v", item)
	}
}

func TestBuildOrdersByMostRecentEdit(t *testing.T) {
	lister := &fakeLister{records: []source.FileRecord{
		record("old", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		record("new", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)),
		record("edited", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}}
	meta := &fakeMetadataStore{docs: map[string]model.Wallpaper{
		"edited": {
			ID:        "edited",
			Status:    enums.WallpaperStatusSuccess,
			UpdatedAt: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := newTestService(lister, meta, nil, nil)

	payload, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var got []string
	for _, item := range payload.Items {
		got = append(got, item.ID)
	}
	want := []string{"edited", "new", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}
}

func TestAdminListKeepsSoftDeleted(t *testing.T) {
	lister := &fakeLister{records: []source.FileRecord{
		record("keep", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		record("gone", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)),
	}}
	meta := &fakeMetadataStore{docs: map[string]model.Wallpaper{
		"gone": {ID: "gone", Status: enums.WallpaperStatusFailure},
	}}
	svc := newTestService(lister, meta, nil, nil)

	items, err := svc.AdminList(context.Background())
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("admin list must include soft-deleted items, got %d", len(items))
	}

	var gone *model.Wallpaper
	for i := range items {
		if items[i].ID == "gone" {
			gone = &items[i]
		}
	}
	if gone == nil || gone.Status != enums.WallpaperStatusFailure {
		t.Fatalf("soft-deleted item missing status: %+v", items)
	}
}

func TestGetByKeyPrefersMetadataThenFallsBackToListing(t *testing.T) {
	lister := &fakeLister{records: []source.FileRecord{
		record("listed", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}}
	meta := &fakeMetadataStore{docs: map[string]model.Wallpaper{
		"stored": {ID: "stored", DisplayName: "Stored", Status: enums.WallpaperStatusSuccess},
	}}
	svc := newTestService(lister, meta, nil, nil)
	ctx := context.Background()

	stored, err := svc.GetByKey(ctx, "stored")
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.DisplayName != "Stored" || stored.FullURL != "https://myapp.ufs.sh/f/stored" {
		t.Fatalf("unexpected stored item: %+v", stored)
	}
	if lister.calls != 0 {
		t.Fatal("metadata hit must not call the provider")
	}

	listed, err := svc.GetByKey(ctx, "listed")
	if err != nil {
		t.Fatalf("get listed: %v", err)
	}
	if listed.ID != "listed" {
		t.Fatalf("unexpected listed item: %+v", listed)
	}

	if _, err := svc.GetByKey(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByKeyHidesSoftDeleted(t *testing.T) {
	meta := &fakeMetadataStore{docs: map[string]model.Wallpaper{
		"gone": {ID: "gone", Status: enums.WallpaperStatusFailure},
	}}
	svc := newTestService(&fakeLister{}, meta, nil, nil)

	if _, err := svc.GetByKey(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for soft-deleted wallpaper, got %v", err)
	}
}
