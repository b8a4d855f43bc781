package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/raulshma/chromatica/internal/ai/gemini"
	"github.com/raulshma/chromatica/internal/config"
	s3infra "github.com/raulshma/chromatica/internal/infra/s3"
	"github.com/raulshma/chromatica/internal/jobs/warmer"
	"github.com/raulshma/chromatica/internal/provider/uploadthing"
	mongorepo "github.com/raulshma/chromatica/internal/repo/mongo"
	redisrepo "github.com/raulshma/chromatica/internal/repo/redis"
	adminauthsvc "github.com/raulshma/chromatica/internal/services/adminauth"
	briefsvc "github.com/raulshma/chromatica/internal/services/brief"
	feedsvc "github.com/raulshma/chromatica/internal/services/feed"
	metadatasvc "github.com/raulshma/chromatica/internal/services/metadata"
	ratesvc "github.com/raulshma/chromatica/internal/services/rate"
	"github.com/raulshma/chromatica/internal/services/source"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	mongo      *mongodriver.Client
	redis      *goredis.Client
	httpRouter http.Handler
	warmCancel context.CancelFunc
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	redisClient := redisrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	feedCache := redisrepo.NewFeedCacheRepo(redisClient, cfg.Cache.TTL)
	rateRepo := redisrepo.NewRateRepo(redisClient)

	var mongoClient *mongodriver.Client
	var wallpaperRepo *mongorepo.WallpaperRepo
	var categoryRepo *mongorepo.CategoryRepo
	if client, err := mongorepo.NewClient(cfg.Mongo.URI); err != nil {
		log.Warn("mongo init failed, continuing in degraded mode", zap.Error(err))
		wallpaperRepo = mongorepo.NewWallpaperRepo(nil)
		categoryRepo = mongorepo.NewCategoryRepo(nil)
	} else {
		mongoClient = client
		db := client.Database(cfg.Mongo.Database)
		wallpaperRepo = mongorepo.NewWallpaperRepo(db)
		categoryRepo = mongorepo.NewCategoryRepo(db)
		if err := mongorepo.Ping(ctx, client); err != nil {
			log.Warn("mongo ping failed, continuing in degraded mode", zap.Error(err))
		}
	}

	provider, err := buildProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	adapter := source.NewAdapter(cfg.Provider.AppID, log)
	metadataService := metadatasvc.NewService(wallpaperRepo, categoryRepo, provider, feedCache, log)
	feedService := feedsvc.NewService(provider, adapter, wallpaperRepo, categoryRepo, feedCache, cfg.Provider.PageLimit, log)
	rateLimiter := ratesvc.NewLimiter(rateRepo, log)

	var authService *adminauthsvc.Service
	if svc, err := adminauthsvc.NewService(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.APIToken, cfg.Admin.SessionSecret, cfg.Admin.SessionTTL); err != nil {
		log.Warn("admin auth disabled", zap.Error(err))
	} else {
		authService = svc
	}

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	briefService := briefsvc.NewService(geminiClient, cfg.Gemini.FetchTimeout, cfg.Gemini.MaxImageSize, cfg.Env == "dev", log)

	RegisterRoutes(r, Dependencies{
		FeedService:     feedService,
		MetadataService: metadataService,
		BriefService:    briefService,
		AuthService:     authService,
		RateLimiter:     rateLimiter,
		Logger:          log,
		Config:          cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	app := &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		mongo:      mongoClient,
		redis:      redisClient,
		httpRouter: r,
	}

	if cfg.Warmer.Enabled {
		interval := cfg.Warmer.Interval
		if interval <= 0 {
			interval = cfg.Cache.TTL
		}
		warmCtx, cancel := context.WithCancel(context.Background())
		app.warmCancel = cancel
		go warmer.New(feedService, interval, log).Run(warmCtx)
	}

	return app, nil
}

func buildProvider(cfg config.Config, log *zap.Logger) (source.Provider, error) {
	switch cfg.Provider.Kind {
	case "", "uploadthing":
		return uploadthing.NewClient(cfg.Provider.BaseURL, cfg.Provider.Token), nil
	case "s3":
		client, err := s3infra.NewClient(s3infra.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 provider: %w", err)
		}
		log.Info("serving feed from s3 bucket", zap.String("bucket", cfg.S3.Bucket))
		return source.NewS3Provider(client, cfg.S3.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if a.warmCancel != nil {
		a.warmCancel()
	}
	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
