package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	RealtimeChannel        string
	CORSAllowOrigins       string
	JWTSecret              string
	AdGateSecret           string
	AdGateDwell            time.Duration
	PresenceInterval       time.Duration
	LeaderboardCacheTTL    time.Duration
	AIBaseURL              string
	AIAPIKey               string
	AIModel                string
	AIMaxTokens            int
	AssistantRateLimit     int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxBytes         int64
	HeadAdminEmail         string
	SeedEnabled            bool
	SeedToken              string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIEnabled reports whether an assistant gateway key was configured.
func (c Config) AIEnabled() bool {
	return strings.TrimSpace(c.AIAPIKey) != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LUMORA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Lumora API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("realtime.channel", "lumora:inbox")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("ad_gate.dwell", "30s")
	v.SetDefault("presence.interval", "30s")
	v.SetDefault("leaderboard.cache_ttl", "1m")
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("assistant.rate_limit", 20)
	v.SetDefault("cloudinary.folder", "lumora/course-materials")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("seed.enabled", false)

	dwell, err := durationSetting(v, "ad_gate.dwell")
	if err != nil {
		return Config{}, err
	}
	presence, err := durationSetting(v, "presence.interval")
	if err != nil {
		return Config{}, err
	}
	leaderboardTTL, err := durationSetting(v, "leaderboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		RealtimeChannel:        v.GetString("realtime.channel"),
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		JWTSecret:              v.GetString("jwt.secret"),
		AdGateSecret:           v.GetString("ad_gate.secret"),
		AdGateDwell:            dwell,
		PresenceInterval:       presence,
		LeaderboardCacheTTL:    leaderboardTTL,
		AIBaseURL:              v.GetString("ai.base_url"),
		AIAPIKey:               v.GetString("ai.api_key"),
		AIModel:                v.GetString("ai.model"),
		AIMaxTokens:            v.GetInt("ai.max_tokens"),
		AssistantRateLimit:     v.GetInt("assistant.rate_limit"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxBytes:         v.GetInt64("upload.max_mb") * 1024 * 1024,
		HeadAdminEmail:         strings.TrimSpace(v.GetString("bootstrap.head_admin_email")),
		SeedEnabled:            v.GetBool("seed.enabled"),
		SeedToken:              v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.AdGateSecret == "" {
		cfg.AdGateSecret = cfg.JWTSecret
	}
	if cfg.AssistantRateLimit <= 0 {
		cfg.AssistantRateLimit = 20
	}
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 10 * 1024 * 1024
	}

	return cfg, nil
}

func durationSetting(v *viper.Viper, key string) (time.Duration, error) {
	value, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return value, nil
}
