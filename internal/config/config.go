package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort         string
	DatabaseType       string
	DatabaseURL        string
	DatabasePath       string
	StaticFilesPath    string
	SecretKey          string
	SessionDuration    time.Duration
	SessionIdleTimeout time.Duration

	// Directory proxy
	RCToken           string
	RCTokenFile       string
	RCAPIBase         string
	DirectoryFile     string
	DirectoryCacheTTL time.Duration

	// OAuth
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectBase string
	OAuthAuthorizeURL string
	OAuthTokenURL     string
	OAuthUserInfoURL  string

	// Reminders
	AWSRegion        string
	SESFromEmail     string
	SESFromName      string
	AppBaseURL       string
	ReminderInterval time.Duration

	SymmetricConfusion bool
	Debug              bool
}

// Load reads configuration from an optional .env file and the environment,
// falling back to defaults
func Load() *Config {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit .env path
func LoadFrom(dotEnvPath string) *Config {
	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Printf("Warning: failed to load %s: %v", dotEnvPath, err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_TYPE", "sqlite")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_PATH", "./namegame.db")
	v.SetDefault("STATIC_PATH", "./static")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("SESSION_DURATION", 30*24*time.Hour)
	v.SetDefault("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	v.SetDefault("RC_TOKEN", "")
	v.SetDefault("RC_TOKEN_FILE", "")
	v.SetDefault("RC_API_BASE", "https://www.recurse.com")
	v.SetDefault("DIRECTORY_FILE", "")
	v.SetDefault("DIRECTORY_CACHE_TTL", time.Hour)
	v.SetDefault("OAUTH_CLIENT_ID", "")
	v.SetDefault("OAUTH_CLIENT_SECRET", "")
	v.SetDefault("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080")
	v.SetDefault("OAUTH_AUTHORIZE_URL", "https://www.recurse.com/oauth/authorize")
	v.SetDefault("OAUTH_TOKEN_URL", "https://www.recurse.com/oauth/token")
	v.SetDefault("OAUTH_USERINFO_URL", "https://www.recurse.com/api/v1/profiles/me")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SES_FROM_EMAIL", "")
	v.SetDefault("SES_FROM_NAME", "Name Game")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("REMINDER_INTERVAL", 24*time.Hour)
	v.SetDefault("SYMMETRIC_CONFUSION", false)
	v.SetDefault("DEBUG", false)
	v.AutomaticEnv()

	cfg := &Config{
		ServerPort:         v.GetString("PORT"),
		DatabaseType:       strings.ToLower(v.GetString("DATABASE_TYPE")),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DatabasePath:       v.GetString("DB_PATH"),
		StaticFilesPath:    v.GetString("STATIC_PATH"),
		SecretKey:          v.GetString("SECRET_KEY"),
		SessionDuration:    v.GetDuration("SESSION_DURATION"),
		SessionIdleTimeout: v.GetDuration("SESSION_IDLE_TIMEOUT"),
		RCToken:            strings.TrimSpace(v.GetString("RC_TOKEN")),
		RCTokenFile:        v.GetString("RC_TOKEN_FILE"),
		RCAPIBase:          strings.TrimRight(v.GetString("RC_API_BASE"), "/"),
		DirectoryFile:      v.GetString("DIRECTORY_FILE"),
		DirectoryCacheTTL:  v.GetDuration("DIRECTORY_CACHE_TTL"),
		OAuthClientID:      v.GetString("OAUTH_CLIENT_ID"),
		OAuthClientSecret:  v.GetString("OAUTH_CLIENT_SECRET"),
		OAuthRedirectBase:  strings.TrimRight(v.GetString("OAUTH_REDIRECT_BASE_URL"), "/"),
		OAuthAuthorizeURL:  v.GetString("OAUTH_AUTHORIZE_URL"),
		OAuthTokenURL:      v.GetString("OAUTH_TOKEN_URL"),
		OAuthUserInfoURL:   v.GetString("OAUTH_USERINFO_URL"),
		AWSRegion:          v.GetString("AWS_REGION"),
		SESFromEmail:       v.GetString("SES_FROM_EMAIL"),
		SESFromName:        v.GetString("SES_FROM_NAME"),
		AppBaseURL:         strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		ReminderInterval:   v.GetDuration("REMINDER_INTERVAL"),
		SymmetricConfusion: v.GetBool("SYMMETRIC_CONFUSION"),
		Debug:              v.GetBool("DEBUG"),
	}

	if cfg.SecretKey == "" {
		log.Println("Warning: SECRET_KEY is not set, sessions will not survive a restart")
	}
	if cfg.RCToken == "" && cfg.RCTokenFile != "" {
		cfg.RCToken = readTokenFile(cfg.RCTokenFile)
	}

	return cfg
}

// OAuthEnabled reports whether OAuth login is configured
func (c *Config) OAuthEnabled() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != ""
}

// RemindersEnabled reports whether reminder emails can be sent
func (c *Config) RemindersEnabled() bool {
	return c.SESFromEmail != ""
}

func readTokenFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: failed to read RC token file %s: %v", path, err)
		return ""
	}
	return strings.TrimSpace(string(data))
}
