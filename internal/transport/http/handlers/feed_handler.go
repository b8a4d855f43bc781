package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	feedsvc "github.com/raulshma/chromatica/internal/services/feed"
	"github.com/raulshma/chromatica/internal/transport/http/dto"
	httperrors "github.com/raulshma/chromatica/internal/transport/http/errors"
)

type FeedHandler struct {
	feed *feedsvc.Service
}

func NewFeedHandler(feed *feedsvc.Service) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// List serves the whole feed document. The payload is pre-serialized by
// the feed service so cache hits skip encoding entirely.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	payload, cached, err := h.feed.GetFeed(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load wallpapers")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}

	key := chi.URLParam(r, "key")
	item, err := h.feed.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, feedsvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "wallpaper not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load wallpaper")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.WallpaperResponseFromModel(item))
}
