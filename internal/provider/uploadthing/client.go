package uploadthing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raulshma/chromatica/internal/services/source"
)

const (
	defaultBaseURL = "https://api.uploadthing.com"
	apiKeyHeader   = "X-Uploadthing-Api-Key"
)

// Client talks to the hosted file service's v6 REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type listFilesRequest struct {
	Limit int `json:"limit"`
}

type listFilesResponse struct {
	Files   []source.FileRecord `json:"files"`
	HasMore bool                `json:"hasMore"`
}

func (c *Client) ListFiles(ctx context.Context, limit int) ([]source.FileRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	var res listFilesResponse
	if err := c.post(ctx, "/v6/listFiles", listFilesRequest{Limit: limit}, &res); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return res.Files, nil
}

type renameUpdate struct {
	FileKey string `json:"fileKey"`
	NewName string `json:"newName"`
}

type renameFilesRequest struct {
	Updates []renameUpdate `json:"updates"`
}

func (c *Client) RenameFile(ctx context.Context, key, newName string) error {
	if key == "" || strings.TrimSpace(newName) == "" {
		return fmt.Errorf("rename requires key and new name")
	}

	req := renameFilesRequest{
		Updates: []renameUpdate{{FileKey: key, NewName: newName}},
	}
	if err := c.post(ctx, "/v6/renameFiles", req, nil); err != nil {
		return fmt.Errorf("rename file %q: %w", key, err)
	}

	return nil
}

type deleteFilesRequest struct {
	FileKeys []string `json:"fileKeys"`
}

func (c *Client) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := c.post(ctx, "/v6/deleteFiles", deleteFilesRequest{FileKeys: []string{key}}, nil); err != nil {
		return fmt.Errorf("delete file %q: %w", key, err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, target any) error {
	if c.token == "" {
		return fmt.Errorf("provider token is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

var _ source.Provider = (*Client)(nil)
