package uploadthing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListFilesSendsLimitAndDecodesPage(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Uploadthing-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"files": [
				{"key": "abc123", "name": "sunset.png", "size": 1024, "uploadedAt": 1714521600000},
				{"customId": "cust-1", "id": "raw-id", "name": "dunes.png"}
			],
			"hasMore": false
		}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "sk_test")
	files, err := client.ListFiles(context.Background(), 100)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}

	if gotPath != "/v6/listFiles" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "sk_test" {
		t.Fatalf("unexpected api key header: %s", gotKey)
	}
	if gotBody["limit"].(float64) != 100 {
		t.Fatalf("unexpected limit: %v", gotBody["limit"])
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Key != "abc123" || files[0].Size != 1024 {
		t.Fatalf("unexpected first file: %+v", files[0])
	}
	if files[1].CustomID != "cust-1" {
		t.Fatalf("unexpected second file: %+v", files[1])
	}
}

func TestRenameFilePostsUpdate(t *testing.T) {
	var gotBody renameFilesRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/renameFiles" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "sk_test")
	if err := client.RenameFile(context.Background(), "abc123", "new-name.png"); err != nil {
		t.Fatalf("rename file: %v", err)
	}

	if len(gotBody.Updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(gotBody.Updates))
	}
	if gotBody.Updates[0].FileKey != "abc123" || gotBody.Updates[0].NewName != "new-name.png" {
		t.Fatalf("unexpected update payload: %+v", gotBody.Updates[0])
	}
}

func TestClientSurfacesUpstreamErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "bad key"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "sk_bad")
	if _, err := client.ListFiles(context.Background(), 10); err == nil {
		t.Fatalf("expected error on upstream 403")
	}
}

func TestClientRequiresToken(t *testing.T) {
	client := NewClient("", "")
	if _, err := client.ListFiles(context.Background(), 10); err == nil {
		t.Fatalf("expected error when token is missing")
	}
}

func TestDeleteFileIgnoresEmptyKey(t *testing.T) {
	client := NewClient("", "sk_test")
	if err := client.DeleteFile(context.Background(), ""); err != nil {
		t.Fatalf("empty key delete should be a no-op, got %v", err)
	}
}
