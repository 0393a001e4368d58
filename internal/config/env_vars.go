package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar      = "PORT"
	appNameVar      = "APP_NAME"
	envVar          = "ENV"
	logLevelVar     = "LOG_LEVEL"
	clientURLEnvVar = "CLIENT_URL"
)

type EnvVars struct {
	v values
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.v.Port
	if port == "" || port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.v.AppName
}

func (e EnvVars) GetEnv() string {
	if e.v.Env == "" {
		return "DEV"
	}
	return e.v.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.v.LogLevel
}

// GetClientURL returns the browser application's origin, used for CORS and post-login redirects.
func (e EnvVars) GetClientURL() string {
	return strings.TrimSuffix(e.v.ClientURL, "/")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// applyEnv overlays every environment variable that is set onto v.
func applyEnv(v *values) error {
	str := func(name string, dst *string) {
		*dst = GetEnv(name, *dst)
	}
	var errs []string
	num := func(name string, dst *int) {
		if raw := os.Getenv(name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if raw := os.Getenv(name); raw != "" {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if raw := os.Getenv(name); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = b
		}
	}
	duration := func(name string, dst *time.Duration) {
		if raw := os.Getenv(name); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = d
		}
	}

	str(portEnvVar, &v.Port)
	str(appNameVar, &v.AppName)
	str(envVar, &v.Env)
	str(logLevelVar, &v.LogLevel)
	str(clientURLEnvVar, &v.ClientURL)

	str(googleClientIDVar, &v.GoogleClientID)
	str(googleClientSecretVar, &v.GoogleClientSecret)
	str(googleRedirectURIVar, &v.GoogleRedirectURI)
	str("OAUTH_AUTH_URL", &v.OAuthAuthURL)
	str("OAUTH_TOKEN_URL", &v.OAuthTokenURL)
	str(profileSourceVar, &v.ProfileSource)
	str("OIDC_ISSUER", &v.OIDCIssuer)
	str("PEOPLE_ENDPOINT", &v.PeopleEndpoint)
	duration("OAUTH_STATE_TTL", &v.StateTTL)

	str(sessionSecretVar, &v.SessionSecret)
	duration("SESSION_TTL", &v.SessionTTL)
	str("SESSION_COOKIE", &v.SessionCookie)
	if raw := os.Getenv("SESSION_SECURE"); raw != "" {
		secure := false
		boolean("SESSION_SECURE", &secure)
		v.SessionSecure = &secure
	}

	str(storeBackendVar, &v.StoreBackend)
	str("REDIS_ADDR", &v.RedisAddr)
	str("REDIS_PASSWORD", &v.RedisPassword)
	num("REDIS_DB", &v.RedisDB)
	str("REDIS_PREFIX", &v.RedisPrefix)
	str("SQLITE_DIR", &v.SQLiteDir)
	duration("STORE_TIMEOUT", &v.StoreTimeout)

	str("MEDIA_BASE_URL", &v.MediaBaseURL)
	num("MEDIA_DEFAULT_PAGE_SIZE", &v.MediaDefaultPageSize)
	num("MEDIA_MAX_PAGE_SIZE", &v.MediaMaxPageSize)
	float("MEDIA_RATE_LIMIT", &v.MediaRateLimit)
	num("MEDIA_RATE_BURST", &v.MediaRateBurst)

	boolean("SEARCH_FALLBACK_ON_EMPTY", &v.SearchFallbackOnEmpty)
	num("SEARCH_FALLBACK_SCAN_PAGES", &v.SearchFallbackScanPages)

	boolean("TOKEN_COALESCE_REFRESH", &v.TokenCoalesceRefresh)
	duration("TOKEN_PERSIST_TIMEOUT", &v.TokenPersistTimeout)

	if len(errs) > 0 {
		return fmt.Errorf("[config applyEnv] invalid values: %s", strings.Join(errs, "; "))
	}
	return nil
}
