package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raulshma/chromatica/internal/domain/enums"
	"github.com/raulshma/chromatica/internal/domain/model"
	mongorepo "github.com/raulshma/chromatica/internal/repo/mongo"
	metadatasvc "github.com/raulshma/chromatica/internal/services/metadata"
)

type memoryWallpaperStore struct {
	docs map[string]model.Wallpaper
}

func newMemoryWallpaperStore() *memoryWallpaperStore {
	return &memoryWallpaperStore{docs: map[string]model.Wallpaper{}}
}

func (m *memoryWallpaperStore) Get(_ context.Context, id string) (model.Wallpaper, error) {
	doc, ok := m.docs[id]
	if !ok {
		return model.Wallpaper{}, mongorepo.ErrWallpaperNotFound
	}
	return doc, nil
}

func (m *memoryWallpaperStore) List(context.Context) ([]model.Wallpaper, error) {
	out := make([]model.Wallpaper, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (m *memoryWallpaperStore) Apply(_ context.Context, id string, set map[string]any, entry model.HistoryEntry) error {
	doc := m.docs[id]
	doc.ID = id
	if status, ok := set["status"].(string); ok {
		doc.Status = enums.WallpaperStatus(status)
	}
	if name, ok := set["fileName"].(string); ok {
		doc.FileName = name
	}
	if name, ok := set["displayName"].(string); ok {
		doc.DisplayName = name
	}
	if at, ok := set["updatedAt"].(time.Time); ok {
		doc.UpdatedAt = at
	}
	doc.History = append(doc.History, entry)
	m.docs[id] = doc
	return nil
}

type noopCategoryStore struct{}

func (noopCategoryStore) List(context.Context) ([]model.Category, error) { return nil, nil }
func (noopCategoryStore) Upsert(context.Context, model.Category) error   { return nil }
func (noopCategoryStore) Delete(context.Context, string) error           { return nil }

func postWebhook(t *testing.T, handler *WebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/uploadthing", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)
	return rec
}

func TestWebhookUploadLifecycle(t *testing.T) {
	store := newMemoryWallpaperStore()
	handler := NewWebhookHandler(metadatasvc.NewService(store, noopCategoryStore{}, nil, nil, nil))

	rec := postWebhook(t, handler, `{"event":"upload-started","key":"abc123","fileName":"dunes.jpg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload-started: unexpected status %d, body %s", rec.Code, rec.Body.String())
	}
	if store.docs["abc123"].Status != enums.WallpaperStatusPending {
		t.Fatalf("expected pending doc, got %+v", store.docs["abc123"])
	}
	if store.docs["abc123"].FileName != "dunes.jpg" {
		t.Fatalf("expected file name recorded, got %+v", store.docs["abc123"])
	}

	rec = postWebhook(t, handler, `{"event":"upload-complete","key":"abc123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload-complete: unexpected status %d", rec.Code)
	}
	doc := store.docs["abc123"]
	if doc.Status != enums.WallpaperStatusSuccess {
		t.Fatalf("expected success status, got %q", doc.Status)
	}
	if len(doc.History) < 2 {
		t.Fatalf("expected history for each transition, got %d entries", len(doc.History))
	}
}

func TestWebhookUploadFailed(t *testing.T) {
	store := newMemoryWallpaperStore()
	handler := NewWebhookHandler(metadatasvc.NewService(store, noopCategoryStore{}, nil, nil, nil))

	rec := postWebhook(t, handler, `{"event":"upload-failed","fileKey":"abc123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if store.docs["abc123"].Status != enums.WallpaperStatusFailure {
		t.Fatalf("expected failure status, got %+v", store.docs["abc123"])
	}
}

type flakyWallpaperStore struct {
	*memoryWallpaperStore
	applyOK int
}

func (f *flakyWallpaperStore) Apply(ctx context.Context, id string, set map[string]any, entry model.HistoryEntry) error {
	if f.applyOK <= 0 {
		return errors.New("write failed")
	}
	f.applyOK--
	return f.memoryWallpaperStore.Apply(ctx, id, set, entry)
}

func TestWebhookFileNameFailureAfterStatusRecorded(t *testing.T) {
	store := &flakyWallpaperStore{memoryWallpaperStore: newMemoryWallpaperStore(), applyOK: 1}
	handler := NewWebhookHandler(metadatasvc.NewService(store, noopCategoryStore{}, nil, nil, nil))

	rec := postWebhook(t, handler, `{"event":"upload-started","key":"abc123","fileName":"dunes.jpg"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "file name update failed") {
		t.Fatalf("error body must name the file name update, got %s", rec.Body.String())
	}
	if store.docs["abc123"].Status != enums.WallpaperStatusPending {
		t.Fatalf("status transition must survive the failed follow-up, got %+v", store.docs["abc123"])
	}
}

func TestWebhookRejectsBadPayloads(t *testing.T) {
	handler := NewWebhookHandler(metadatasvc.NewService(newMemoryWallpaperStore(), noopCategoryStore{}, nil, nil, nil))

	cases := []string{
		`{"event":"upload-started"}`,
		`{"event":"something-else","key":"abc123"}`,
		`not json`,
	}
	for _, body := range cases {
		if rec := postWebhook(t, handler, body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}
