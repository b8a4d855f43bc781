package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Mongo     MongoConfig     `yaml:"mongo"`
	S3        S3Config        `yaml:"s3"`
	Provider  ProviderConfig  `yaml:"provider"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Admin     AdminConfig     `yaml:"admin"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Warmer    WarmerConfig    `yaml:"warmer"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ProviderConfig selects the file-hosting backend serving the feed.
// Kind is "uploadthing" (hosted) or "s3" (self-hosted bucket).
type ProviderConfig struct {
	Kind      string `yaml:"kind"`
	Token     string `yaml:"token"`
	AppID     string `yaml:"app_id"`
	BaseURL   string `yaml:"base_url"`
	PageLimit int    `yaml:"page_limit"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	GlobalWindow     time.Duration `yaml:"global_window"`
	GlobalMax        int           `yaml:"global_max"`
	WallpapersWindow time.Duration `yaml:"wallpapers_window"`
	WallpapersMax    int           `yaml:"wallpapers_max"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

type AdminConfig struct {
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	APIToken      string        `yaml:"api_token"`
}

type GeminiConfig struct {
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MaxImageSize int64         `yaml:"max_image_size"`
}

type WarmerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		Log: LogConfig{Level: "debug"},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			DB:   0,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "chromatica",
		},
		S3: S3Config{
			Endpoint:  "localhost:9000",
			AccessKey: "minio",
			SecretKey: "minio123",
			Bucket:    "chromatica-wallpapers",
			UseSSL:    false,
		},
		Provider: ProviderConfig{
			Kind:      "uploadthing",
			BaseURL:   "https://api.uploadthing.com",
			PageLimit: 100,
		},
		Cache: CacheConfig{
			TTL: 120 * time.Second,
		},
		RateLimit: RateLimitConfig{
			GlobalWindow:     15 * time.Minute,
			GlobalMax:        300,
			WallpapersWindow: 10 * time.Minute,
			WallpapersMax:    120,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
		Admin: AdminConfig{
			SessionTTL: 30 * 24 * time.Hour,
		},
		Gemini: GeminiConfig{
			Model:        "gemini-2.5-flash",
			FetchTimeout: 10 * time.Second,
			MaxImageSize: 16 << 20,
		},
		Warmer: WarmerConfig{
			Enabled: false,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if err := overrideDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return err
	}
	if err := overrideDuration("HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if err := overrideInt("REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}

	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		cfg.Mongo.Database = v
	}

	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.S3.SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.S3.Bucket = v
	}
	if err := overrideBool("S3_USE_SSL", &cfg.S3.UseSSL); err != nil {
		return err
	}

	if v := os.Getenv("PROVIDER_KIND"); v != "" {
		cfg.Provider.Kind = v
	}
	if v := os.Getenv("UPLOADTHING_TOKEN"); v != "" {
		cfg.Provider.Token = v
	}
	if v := os.Getenv("UPLOADTHING_APP_ID"); v != "" {
		cfg.Provider.AppID = v
	}
	if v := os.Getenv("UPLOADTHING_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if err := overrideInt("PROVIDER_PAGE_LIMIT", &cfg.Provider.PageLimit); err != nil {
		return err
	}

	if err := overrideDuration("CACHE_TTL", &cfg.Cache.TTL); err != nil {
		return err
	}

	if err := overrideDuration("RATE_LIMIT_GLOBAL_WINDOW", &cfg.RateLimit.GlobalWindow); err != nil {
		return err
	}
	if err := overrideInt("RATE_LIMIT_GLOBAL_MAX", &cfg.RateLimit.GlobalMax); err != nil {
		return err
	}
	if err := overrideDuration("RATE_LIMIT_WALLPAPERS_WINDOW", &cfg.RateLimit.WallpapersWindow); err != nil {
		return err
	}
	if err := overrideInt("RATE_LIMIT_WALLPAPERS_MAX", &cfg.RateLimit.WallpapersMax); err != nil {
		return err
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			cfg.CORS.Origins = origins
		}
	}

	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		cfg.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("ADMIN_SESSION_SECRET"); v != "" {
		cfg.Admin.SessionSecret = v
	}
	if err := overrideDuration("ADMIN_SESSION_TTL", &cfg.Admin.SessionTTL); err != nil {
		return err
	}
	if v := os.Getenv("ADMIN_API_TOKEN"); v != "" {
		cfg.Admin.APIToken = v
	}

	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if err := overrideDuration("GEMINI_FETCH_TIMEOUT", &cfg.Gemini.FetchTimeout); err != nil {
		return err
	}

	if err := overrideBool("WARMER_ENABLED", &cfg.Warmer.Enabled); err != nil {
		return err
	}
	if err := overrideDuration("WARMER_INTERVAL", &cfg.Warmer.Interval); err != nil {
		return err
	}

	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
