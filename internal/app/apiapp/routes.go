package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/raulshma/chromatica/internal/config"
	adminauthsvc "github.com/raulshma/chromatica/internal/services/adminauth"
	briefsvc "github.com/raulshma/chromatica/internal/services/brief"
	feedsvc "github.com/raulshma/chromatica/internal/services/feed"
	metadatasvc "github.com/raulshma/chromatica/internal/services/metadata"
	ratesvc "github.com/raulshma/chromatica/internal/services/rate"
	"github.com/raulshma/chromatica/internal/transport/http/handlers"
)

type Dependencies struct {
	FeedService     *feedsvc.Service
	MetadataService *metadatasvc.Service
	BriefService    *briefsvc.Service
	AuthService     *adminauthsvc.Service
	RateLimiter     *ratesvc.Limiter
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Config.Env != "dev")
	adminWallpapersHandler := handlers.NewAdminWallpapersHandler(deps.FeedService, deps.MetadataService)
	adminCategoriesHandler := handlers.NewAdminCategoriesHandler(deps.MetadataService)
	briefHandler := handlers.NewBriefHandler(deps.BriefService, deps.Config.Gemini.MaxImageSize)
	webhookHandler := handlers.NewWebhookHandler(deps.MetadataService)

	adminAuthMW := AdminAuthMiddleware(deps.AuthService, deps.Logger)
	corsMW := CORSMiddleware(deps.Config.CORS.Origins)
	globalRateMW := RateLimitMiddleware(deps.RateLimiter, "global", ratesvc.Limit{
		Window: deps.Config.RateLimit.GlobalWindow,
		Max:    int64(deps.Config.RateLimit.GlobalMax),
	})
	feedRateMW := RateLimitMiddleware(deps.RateLimiter, "wallpapers", ratesvc.Limit{
		Window: deps.Config.RateLimit.WallpapersWindow,
		Max:    int64(deps.Config.RateLimit.WallpapersMax),
	})

	r.Use(globalRateMW)

	r.Get("/healthz", healthHandler.Health)

	r.Route("/wallpapers", func(r chi.Router) {
		r.Use(corsMW)
		r.Use(feedRateMW)
		r.Get("/", feedHandler.List)
		r.Get("/{key}", feedHandler.Get)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminAuthMW)
		r.Get("/wallpapers", adminWallpapersHandler.List)
		r.Post("/wallpapers/{id}", adminWallpapersHandler.Update)
		r.Delete("/wallpapers/{id}", adminWallpapersHandler.Delete)
		r.Post("/wallpapers/{id}/generate-brief", briefHandler.Generate)
		r.Get("/categories", adminCategoriesHandler.List)
		r.Post("/categories", adminCategoriesHandler.Save)
		r.Delete("/categories/{id}", adminCategoriesHandler.Delete)
	})

	r.Post("/webhooks/uploadthing", webhookHandler.Upload)
}
