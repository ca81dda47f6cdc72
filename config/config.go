package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Secrets never have defaults inside code and must be provided via the config file or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	SessionTTLHours    int
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database. DatabaseDriver is "mysql" or "postgres".
	DatabaseDriver string
	DatabaseURI    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	// Redis for caching and token revocation. Empty RedisHost disables Redis.
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Slack
	SlackAPIToken      string
	SlackSigningSecret string
	// Standup behaviour
	PostPublishStats   bool
	PublishChunkSize   int
	Timezone           string
	NoSubmitMessage    string
	NoUserErrorMessage string
	NotifyMessage      string
	UpdatedMessage     string
}

// DefaultPath is where Load looks for the JSON config when no path is given.
var DefaultPath = filepath.Join("config", "config.json")

type binding struct {
	key string
	env string
	def any
}

// Precedence: config file -> defaults -> environment variable overrides.
var bindings = []binding{
	{"app.AppPort", "APP_PORT", "8080"},
	{"app.JWTSecret", "JWT_SECRET", ""},
	{"app.SessionTTLHours", "SESSION_TTL_HOURS", 72},
	{"app.RateLimitPerMinute", "RATE_LIMIT_PER_MINUTE", 60},
	{"app.AllowedOrigins", "CORS_ALLOWED_ORIGINS", []string{"*"}},
	{"gin.Mode", "GIN_MODE", "release"},
	{"gin.LogPath", "GIN_PATH", ""},
	{"database.Driver", "DATABASE_DRIVER", "mysql"},
	{"database.DatabaseURI", "DATABASE_URI", ""},
	{"database.DBHost", "DB_HOST", "127.0.0.1"},
	{"database.DBPort", "DB_PORT", ""},
	{"database.DBUser", "DB_USER", "root"},
	{"database.DBPassword", "DB_PASSWORD", ""},
	{"database.DBName", "DB_NAME", "standup"},
	{"redis.RedisHost", "REDIS_HOST", ""},
	{"redis.RedisPort", "REDIS_PORT", 6379},
	{"redis.RedisDB", "REDIS_DB", 0},
	{"redis.RedisPassword", "REDIS_PASSWORD", ""},
	{"log.Level", "LOG_LEVEL", "info"},
	{"log.Path", "LOG_PATH", ""},
	{"log.MaxSizeMB", "LOG_MAX_SIZE_MB", 100},
	{"log.MaxBackups", "LOG_MAX_BACKUPS", 3},
	{"log.MaxAgeDays", "LOG_MAX_AGE_DAYS", 7},
	{"log.Compress", "LOG_COMPRESS", false},
	{"slack.APIToken", "SLACK_API_TOKEN", ""},
	{"slack.SigningSecret", "SLACK_SIGNING_SECRET", ""},
	{"standup.PostPublishStats", "POST_PUBLISH_STATS", true},
	{"standup.PublishChunkSize", "PUBLISH_CHUNK_SIZE", 50},
	{"standup.Timezone", "STANDUP_TIMEZONE", "Local"},
	{"standup.NoSubmitMessage", "NO_SUBMIT_MESSAGE", "Standup not submitted by:"},
	{"standup.NoUserErrorMessage", "NO_USER_ERROR_MESSAGE", "Please ask an admin to add you to a team with a standup."},
	{"standup.NotifyMessage", "NOTIFY_MESSAGE", "Hey! You have not submitted your standup for today yet."},
	{"standup.UpdatedMessage", "UPDATED_MESSAGE", "Your standup submission for today has been updated."},
}

// Load reads the JSON config at path (DefaultPath when empty), applies defaults and environment overrides.
// A missing file is not an error.
func Load(path string) (AppConfig, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetConfigFile(path)
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return AppConfig{}, fmt.Errorf("bind %s: %w", b.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := AppConfig{
		AppPort:            v.GetString("app.AppPort"),
		JWTSecret:          v.GetString("app.JWTSecret"),
		SessionTTLHours:    v.GetInt("app.SessionTTLHours"),
		RateLimitPerMinute: v.GetInt("app.RateLimitPerMinute"),
		AllowedOrigins:     readList(v, "app.AllowedOrigins"),
		GinMode:            v.GetString("gin.Mode"),
		GinPath:            v.GetString("gin.LogPath"),
		DatabaseDriver:     strings.ToLower(v.GetString("database.Driver")),
		DatabaseURI:        v.GetString("database.DatabaseURI"),
		DBHost:             v.GetString("database.DBHost"),
		DBPort:             v.GetString("database.DBPort"),
		DBUser:             v.GetString("database.DBUser"),
		DBPassword:         v.GetString("database.DBPassword"),
		DBName:             v.GetString("database.DBName"),
		RedisHost:          v.GetString("redis.RedisHost"),
		RedisPort:          v.GetInt("redis.RedisPort"),
		RedisDB:            v.GetInt("redis.RedisDB"),
		RedisPassword:      v.GetString("redis.RedisPassword"),
		LogLevel:           v.GetString("log.Level"),
		LogPath:            v.GetString("log.Path"),
		LogMaxSizeMB:       v.GetInt("log.MaxSizeMB"),
		LogMaxBackups:      v.GetInt("log.MaxBackups"),
		LogMaxAgeDays:      v.GetInt("log.MaxAgeDays"),
		LogCompress:        v.GetBool("log.Compress"),
		SlackAPIToken:      v.GetString("slack.APIToken"),
		SlackSigningSecret: v.GetString("slack.SigningSecret"),
		PostPublishStats:   v.GetBool("standup.PostPublishStats"),
		PublishChunkSize:   v.GetInt("standup.PublishChunkSize"),
		Timezone:           v.GetString("standup.Timezone"),
		NoSubmitMessage:    v.GetString("standup.NoSubmitMessage"),
		NoUserErrorMessage: v.GetString("standup.NoUserErrorMessage"),
		NotifyMessage:      v.GetString("standup.NotifyMessage"),
		UpdatedMessage:     v.GetString("standup.UpdatedMessage"),
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// applyDefaults fixes values that are set but unusable.
func applyDefaults(c *AppConfig) {
	if c.DBPort == "" {
		if c.DatabaseDriver == "postgres" {
			c.DBPort = "5432"
		} else {
			c.DBPort = "3306"
		}
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 72
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	// Slack rejects messages with more than 50 blocks.
	if c.PublishChunkSize <= 0 || c.PublishChunkSize > 50 {
		c.PublishChunkSize = 50
	}
}

// ValidateServe reports the settings the HTTP server cannot run without.
func (c AppConfig) ValidateServe() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.SlackAPIToken == "" {
		missing = append(missing, "SLACK_API_TOKEN")
	}
	if c.SlackSigningSecret == "" {
		missing = append(missing, "SLACK_SIGNING_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone that defines "today" for submissions.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid STANDUP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SessionTTL is the lifetime of admin session tokens.
func (c AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// readList accepts either a JSON array or a comma separated env value.
func readList(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).(string); ok {
		return splitAndTrim(raw)
	}
	return v.GetStringSlice(key)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
