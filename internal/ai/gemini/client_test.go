package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateFromImageSendsInlineDataAndDecodesText(t *testing.T) {
	var gotPath string
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "A calm desert scene."}},
				},
			}},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", "gemini-2.5-flash")
	client.baseURL = server.URL

	text, err := client.GenerateFromImage(context.Background(), "describe", "image/jpeg", []byte{0xFF, 0xD8})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "A calm desert scene." {
		t.Fatalf("unexpected text: %q", text)
	}
	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %+v", gotBody)
	}
	if gotBody.Contents[0].Parts[1].InlineData == nil || gotBody.Contents[0].Parts[1].InlineData.MimeType != "image/jpeg" {
		t.Fatalf("missing inline image data: %+v", gotBody.Contents[0].Parts)
	}
}

func TestGenerateFromImageSurfacesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", "gemini-2.5-flash")
	client.baseURL = server.URL

	_, err := client.GenerateFromImage(context.Background(), "describe", "image/jpeg", []byte{0xFF})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGenerateFromImageRequiresAPIKey(t *testing.T) {
	client := NewClient("", "gemini-2.5-flash")

	if _, err := client.GenerateFromImage(context.Background(), "describe", "image/jpeg", nil); err == nil {
		t.Fatal("expected error without api key")
	}
}
