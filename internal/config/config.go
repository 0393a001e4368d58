package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"gopkg.in/yaml.v3"
)

const configFileEnvVar = "CONFIG_FILE"

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SessionConfig
	StoreConfig
	MediaConfig
	SearchConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetClientURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// values is the flattened configuration document. Field names double as YAML keys.
type values struct {
	Port      string `yaml:"port"`
	AppName   string `yaml:"app_name"`
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`
	ClientURL string `yaml:"client_url"`

	GoogleClientID     string        `yaml:"google_client_id"`
	GoogleClientSecret string        `yaml:"google_client_secret"`
	GoogleRedirectURI  string        `yaml:"google_redirect_uri"`
	OAuthAuthURL       string        `yaml:"oauth_auth_url"`
	OAuthTokenURL      string        `yaml:"oauth_token_url"`
	ProfileSource      string        `yaml:"profile_source"`
	OIDCIssuer         string        `yaml:"oidc_issuer"`
	PeopleEndpoint     string        `yaml:"people_endpoint"`
	StateTTL           time.Duration `yaml:"oauth_state_ttl"`

	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SessionCookie string        `yaml:"session_cookie"`
	SessionSecure *bool         `yaml:"session_secure"`

	StoreBackend  string        `yaml:"store_backend"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	SQLiteDir     string        `yaml:"sqlite_dir"`
	StoreTimeout  time.Duration `yaml:"store_timeout"`

	MediaBaseURL         string  `yaml:"media_base_url"`
	MediaDefaultPageSize int     `yaml:"media_default_page_size"`
	MediaMaxPageSize     int     `yaml:"media_max_page_size"`
	MediaRateLimit       float64 `yaml:"media_rate_limit"`
	MediaRateBurst       int     `yaml:"media_rate_burst"`

	SearchFallbackOnEmpty   bool `yaml:"search_fallback_on_empty"`
	SearchFallbackScanPages int  `yaml:"search_fallback_scan_pages"`

	TokenCoalesceRefresh bool          `yaml:"token_coalesce_refresh"`
	TokenPersistTimeout  time.Duration `yaml:"token_persist_timeout"`
}

func defaults() values {
	return values{
		Port:      "8080",
		AppName:   "Photos Proxy",
		Env:       "DEV",
		LogLevel:  "info",
		ClientURL: "http://localhost:5173",

		ProfileSource: ProfileSourcePeople,
		OIDCIssuer:    "https://accounts.google.com",
		StateTTL:      10 * time.Minute,

		SessionTTL:    14 * 24 * time.Hour,
		SessionCookie: "photos_session",

		StoreBackend: StoreBackendMemory,
		RedisAddr:    "localhost:6379",
		RedisPrefix:  "photos:user:",
		SQLiteDir:    "./data",
		StoreTimeout: 5 * time.Second,

		MediaBaseURL:         "https://photoslibrary.googleapis.com",
		MediaDefaultPageSize: 25,
		MediaMaxPageSize:     100,
		MediaRateLimit:       8,
		MediaRateBurst:       10,

		SearchFallbackOnEmpty:   true,
		SearchFallbackScanPages: 1,

		TokenPersistTimeout: 5 * time.Second,
	}
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Session
	Store
	Media
	Search
}

// Load builds the configuration from defaults, then the YAML file at path (or CONFIG_FILE when
// path is empty), then environment variables.
func Load(path string) (Config, error) {
	v := defaults()

	if path == "" {
		path = os.Getenv(configFileEnvVar)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("[config Load] reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("[config Load] parsing %s: %w", path, err)
		}
	}

	if err := applyEnv(&v); err != nil {
		return nil, err
	}

	return fromValues(v), nil
}

func fromValues(v values) *mainConfig {
	return &mainConfig{
		EnvVars: EnvVars{v: v},
		Cors:    Cors{clientURL: v.ClientURL},
		OAuth:   OAuth{v: v},
		Session: Session{v: v},
		Store:   Store{v: v},
		Media:   Media{v: v},
		Search:  Search{v: v},
	}
}

// Validate reports every required setting that is missing.
func (c *mainConfig) Validate() error {
	var missing []string
	if c.GetGoogleClientID() == "" {
		missing = append(missing, googleClientIDVar)
	}
	if c.GetGoogleClientSecret() == "" {
		missing = append(missing, googleClientSecretVar)
	}
	if c.GetGoogleRedirectURI() == "" {
		missing = append(missing, googleRedirectURIVar)
	}
	if len(c.GetSessionSecret()) < MinSessionSecretLength {
		missing = append(missing, fmt.Sprintf("%s (at least %d bytes)", sessionSecretVar, MinSessionSecretLength))
	}
	switch c.GetStoreBackend() {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendSQLite:
	default:
		missing = append(missing, fmt.Sprintf("%s (one of memory, redis, sqlite)", storeBackendVar))
	}
	switch c.GetProfileSource() {
	case ProfileSourcePeople, ProfileSourceOIDC:
	default:
		missing = append(missing, fmt.Sprintf("%s (one of people, oidc)", profileSourceVar))
	}
	if len(missing) > 0 {
		return errors.Wrapf(errors.ErrMissingConfig, "[config Validate] %s", strings.Join(missing, ", "))
	}
	return nil
}
