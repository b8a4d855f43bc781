package brief

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrImageTooLarge = errors.New("image exceeds size limit")
	ErrBadImage      = errors.New("image could not be processed")
	ErrFetchTimeout  = errors.New("image fetch timed out")
	ErrInsecureURL   = errors.New("image url must use https")
)

const (
	maxDimension = 512
	prompt       = "You are a curator writing wallpaper briefs. Look at this wallpaper and " +
		"reply with a JSON object {\"brief\": string, \"reasoning\": string}. The brief is " +
		"2-3 evocative sentences describing the mood and subject; the reasoning explains " +
		"what in the image led you there. Reply with JSON only."
)

// Generator is the model port. The returned text may be plain prose or a
// JSON object; parsing is the service's job.
type Generator interface {
	GenerateFromImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
}

type Input struct {
	Image    []byte
	MimeType string
	ImageURL string
}

type Result struct {
	Brief     string `json:"brief"`
	Reasoning string `json:"reasoning,omitempty"`
}

type Service struct {
	generator     Generator
	httpClient    *http.Client
	maxImageSize  int64
	allowInsecure bool
	logger        *zap.Logger
}

// NewService builds the brief generator. allowInsecure permits plain-http
// image URLs and should only be set outside production.
func NewService(generator Generator, fetchTimeout time.Duration, maxImageSize int64, allowInsecure bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	if maxImageSize <= 0 {
		maxImageSize = 16 << 20
	}
	return &Service{
		generator:     generator,
		httpClient:    &http.Client{Timeout: fetchTimeout},
		maxImageSize:  maxImageSize,
		allowInsecure: allowInsecure,
		logger:        logger,
	}
}

// Generate produces a brief for one wallpaper, from either inline image
// bytes or a fetchable image URL. The image is downscaled before it is
// sent to the model.
func (s *Service) Generate(ctx context.Context, input Input) (Result, error) {
	raw := input.Image
	if len(raw) == 0 {
		if strings.TrimSpace(input.ImageURL) == "" {
			return Result{}, fmt.Errorf("%w: no image supplied", ErrBadImage)
		}
		fetched, err := s.fetchImage(ctx, input.ImageURL)
		if err != nil {
			return Result{}, err
		}
		raw = fetched
	}

	if int64(len(raw)) > s.maxImageSize {
		return Result{}, ErrImageTooLarge
	}

	scaled, err := downscale(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	text, err := s.generator.GenerateFromImage(ctx, prompt, "image/jpeg", scaled)
	if err != nil {
		return Result{}, fmt.Errorf("generate brief: %w", err)
	}

	result := parseModelOutput(text)
	if result.Brief == "" {
		return Result{}, fmt.Errorf("model returned an empty brief")
	}

	return result, nil
}

func (s *Service) fetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if parsed.Scheme != "https" && !s.allowInsecure {
		return nil, ErrInsecureURL
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrBadImage, parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrFetchTimeout
		}
		return nil, fmt.Errorf("%w: fetch failed: %v", ErrBadImage, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image fetch returned %d", ErrBadImage, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxImageSize+1))
	if err != nil {
		if isTimeout(err) {
			return nil, ErrFetchTimeout
		}
		return nil, fmt.Errorf("%w: read image body: %v", ErrBadImage, err)
	}
	if int64(len(body)) > s.maxImageSize {
		return nil, ErrImageTooLarge
	}

	return body, nil
}

// downscale re-encodes the image as a jpeg no larger than maxDimension on
// its long side, keeping model payloads small regardless of the source.
func downscale(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty image")
	}

	if width > maxDimension || height > maxDimension {
		scale := float64(maxDimension) / float64(width)
		if height > width {
			scale = float64(maxDimension) / float64(height)
		}
		// Extreme aspect ratios can truncate the short side to zero.
		dw := max(int(float64(width)*scale), 1)
		dh := max(int(float64(height)*scale), 1)
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}

func parseModelOutput(text string) Result {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil && result.Brief != "" {
		return result
	}

	return Result{Brief: cleaned}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
