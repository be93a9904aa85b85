package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "dev-secret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.JWT.AccessTokenTTL != 30*time.Minute || cfg.JWT.Issuer != "helpdesk-api" {
		t.Errorf("unexpected jwt defaults: %+v", cfg.JWT)
	}
	if cfg.Login.MaxAttempts != 5 || cfg.Login.LockoutWindow != 15*time.Minute {
		t.Errorf("unexpected login defaults: %+v", cfg.Login)
	}
	if cfg.Mongo.Database != "helpdesk" || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("unexpected storage defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "dev-secret",
		"ACCESS_TOKEN_TTL":   "5m",
		"LOGIN_MAX_ATTEMPTS": "0",
		"USERS_SEED_PATH":    "/etc/helpdesk/users.yaml",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWT.AccessTokenTTL != 5*time.Minute || cfg.Login.MaxAttempts != 0 || cfg.UsersSeedPath != "/etc/helpdesk/users.yaml" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"zero ttl", map[string]string{"JWT_SECRET": "x", "ACCESS_TOKEN_TTL": "0s"}, "ACCESS_TOKEN_TTL"},
		{"short production secret", map[string]string{"JWT_SECRET": "short", "ENV": "production"}, "32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
