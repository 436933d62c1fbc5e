package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		App: AppConfig{Env: "local", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "launchline", Name: "launchline",
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth: AuthConfig{
			JWTSecret: "s", AdminUser: "admin", AdminPassword: "p",
		},
		Mail: MailConfig{Host: "smtp.example.org", From: "line@example.org", To: []string{"ops@example.org"}},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateMissingFields(t *testing.T) {
	c := validConfig()
	c.DB.Host = ""
	c.Auth.AdminPassword = ""
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{"DB_HOST", "ADMIN_PASSWORD"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}
}

func TestValidateProductionRequiresWebhookAuth(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{"TWILIO_AUTH_TOKEN", "APP_PUBLIC_BASE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %v", want, err)
		}
	}

	c.Twilio.AuthToken = "tok"
	c.App.PublicBaseURL = "https://line.example.org"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestValidateRejectsBadSSLMode(t *testing.T) {
	c := validConfig()
	c.DB.SSLMode = "yolo"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for bad sslmode")
	}
}

func TestPostgresDSNDefaultsSSLModeOff(t *testing.T) {
	c := validConfig()
	if dsn := c.PostgresDSN(); !strings.Contains(dsn, "sslmode=disable") {
		t.Fatalf("expected sslmode=disable default in %q", dsn)
	}
}
