package config

import (
	"strings"
	"testing"
	"time"
)

const (
	testAccessSecret  = "access-secret-0123456789abcdef-0123456789"
	testRefreshSecret = "refresh-secret-0123456789abcdef-012345678"
)

func validConfig(env string) Config {
	return Config{
		App: AppConfig{Env: env, Port: 8080},
		DB:  DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "alphabook"},
		Auth: AuthConfig{
			AccessTokenSecret:  testAccessSecret,
			RefreshTokenSecret: testRefreshSecret,
		},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validConfig("local")
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute || c.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected ttl defaults: %v %v", c.Auth.AccessTokenTTL, c.Auth.RefreshTokenTTL)
	}
	if c.RateLimit.Backend != RateLimitBackendMemory || c.RateLimit.MaxAttempts != 5 || c.RateLimit.Window != 15*time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", c.RateLimit)
	}
	if c.Auth.SecureCookies {
		t.Fatalf("secure cookies should be off outside production")
	}
}

func TestValidate_ProductionRequiresSSLModeAndIssuer(t *testing.T) {
	c := validConfig("production")
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE/JWT_ISSUER")
	}
	for _, want := range []string{"DB_SSLMODE", "JWT_ISSUER", "JWT_AUDIENCE"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %v", want, err)
		}
	}
}

func TestValidate_ProductionEnablesSecureCookies(t *testing.T) {
	c := validConfig("production")
	c.DB.SSLMode = "require"
	c.Auth.Issuer = "alphabook"
	c.Auth.Audience = "alphabook-web"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Auth.SecureCookies {
		t.Fatalf("expected secure cookies in production")
	}
}

func TestValidate_RejectsShortSecrets(t *testing.T) {
	c := validConfig("local")
	c.Auth.AccessTokenSecret = "short"
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET must be at least 32 bytes") {
		t.Fatalf("expected short secret error, got %v", err)
	}
}

func TestValidate_RejectsMissingRefreshSecret(t *testing.T) {
	c := validConfig("local")
	c.Auth.RefreshTokenSecret = ""
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_REFRESH_SECRET is required") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}

func TestValidate_RejectsSharedSecret(t *testing.T) {
	c := validConfig("local")
	c.Auth.RefreshTokenSecret = c.Auth.AccessTokenSecret
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected distinct secret error, got %v", err)
	}
}

func TestValidate_RedisBackendRequiresRedis(t *testing.T) {
	c := validConfig("local")
	c.RateLimit.Backend = RateLimitBackendRedis
	if err := c.Validate(); err == nil {
		t.Fatalf("expected REDIS_HOST error")
	}
	c.Redis = RedisConfig{Host: "localhost", Port: 6379}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "alphabook")
	t.Setenv("JWT_ACCESS_SECRET", testAccessSecret)
	t.Setenv("JWT_REFRESH_SECRET", testRefreshSecret)
	t.Setenv("JWT_REFRESH_TTL", "14d")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://app.example.com")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.Port != 9000 || c.HTTPAddr() != ":9000" {
		t.Fatalf("unexpected port: %d", c.App.Port)
	}
	if c.Auth.RefreshTokenTTL != 14*24*time.Hour {
		t.Fatalf("expected 14d refresh ttl, got %v", c.Auth.RefreshTokenTTL)
	}
	if len(c.CORS.AllowedOrigins) != 2 || c.CORS.AllowedOrigins[1] != "https://app.example.com" {
		t.Fatalf("unexpected origins: %v", c.CORS.AllowedOrigins)
	}
}

func TestLoad_ReportsParseErrors(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("APP_PORT", "not-a-port")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("JWT_ACCESS_TTL", "soon")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected parse errors")
	}
	if !strings.Contains(err.Error(), "APP_PORT must be an integer") || !strings.Contains(err.Error(), "JWT_ACCESS_TTL must be a duration") {
		t.Fatalf("unexpected error: %v", err)
	}
}
