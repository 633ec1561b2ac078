package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
// It merges file defaults and environment overrides to support both
// local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	JWTAccessPrivateKeyPEM  string
	JWTRefreshPrivateKeyPEM string
	JWTAccessKeyID          string
	JWTRefreshKeyID         string
	AllowEphemeralJWT       bool

	BcryptCost int

	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	SessionTTL          time.Duration
	MaxSessionExtension time.Duration
	LockoutDuration     time.Duration
	AdminLockDuration   time.Duration
	FailedThreshold     int
	PasswordMinLength   int
	ResetTokenTTL       time.Duration

	SweepInterval time.Duration
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		AccessTokenTTLMinutes int `yaml:"access_token_ttl_minutes"`
		RefreshTokenTTLHours  int `yaml:"refresh_token_ttl_hours"`
		SessionTTLHours       int `yaml:"session_ttl_hours"`
		FailedThreshold       int `yaml:"failed_login_threshold"`
		LockoutMinutes        int `yaml:"lockout_minutes"`
		PasswordMinLength     int `yaml:"password_min_length"`
	} `yaml:"auth"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:           "sso-service",
		HTTPPort:            8080,
		GRPCPort:            9090,
		JWTAccessKeyID:      "sso-access-key-1",
		JWTRefreshKeyID:     "sso-refresh-key-1",
		AllowEphemeralJWT:   true,
		BcryptCost:          12,
		AccessTokenTTL:      time.Hour,
		RefreshTokenTTL:     7 * 24 * time.Hour,
		SessionTTL:          24 * time.Hour,
		MaxSessionExtension: 7 * 24 * time.Hour,
		LockoutDuration:     30 * time.Minute,
		AdminLockDuration:   24 * time.Hour,
		FailedThreshold:     5,
		PasswordMinLength:   8,
		ResetTokenTTL:       time.Hour,
		SweepInterval:       time.Minute,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Auth.AccessTokenTTLMinutes > 0 {
			cfg.AccessTokenTTL = time.Duration(f.Auth.AccessTokenTTLMinutes) * time.Minute
		}
		if f.Auth.RefreshTokenTTLHours > 0 {
			cfg.RefreshTokenTTL = time.Duration(f.Auth.RefreshTokenTTLHours) * time.Hour
		}
		if f.Auth.SessionTTLHours > 0 {
			cfg.SessionTTL = time.Duration(f.Auth.SessionTTLHours) * time.Hour
		}
		if f.Auth.FailedThreshold > 0 {
			cfg.FailedThreshold = f.Auth.FailedThreshold
		}
		if f.Auth.LockoutMinutes > 0 {
			cfg.LockoutDuration = time.Duration(f.Auth.LockoutMinutes) * time.Minute
		}
		if f.Auth.PasswordMinLength > 0 {
			cfg.PasswordMinLength = f.Auth.PasswordMinLength
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTAccessPrivateKeyPEM = envOrDefault("JWT_ACCESS_PRIVATE_KEY_PEM", cfg.JWTAccessPrivateKeyPEM)
	cfg.JWTRefreshPrivateKeyPEM = envOrDefault("JWT_REFRESH_PRIVATE_KEY_PEM", cfg.JWTRefreshPrivateKeyPEM)
	cfg.JWTAccessKeyID = envOrDefault("JWT_ACCESS_KEY_ID", cfg.JWTAccessKeyID)
	cfg.JWTRefreshKeyID = envOrDefault("JWT_REFRESH_KEY_ID", cfg.JWTRefreshKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.FailedThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedThreshold)
	cfg.PasswordMinLength = envInt("PASSWORD_MIN_LENGTH", cfg.PasswordMinLength)

	cfg.AccessTokenTTL = time.Duration(envInt("ACCESS_TOKEN_TTL_MINUTES", int(cfg.AccessTokenTTL.Minutes()))) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(envInt("REFRESH_TOKEN_TTL_HOURS", int(cfg.RefreshTokenTTL.Hours()))) * time.Hour
	cfg.SessionTTL = time.Duration(envInt("SESSION_TTL_HOURS", int(cfg.SessionTTL.Hours()))) * time.Hour
	cfg.MaxSessionExtension = time.Duration(envInt("MAX_SESSION_EXTENSION_HOURS", int(cfg.MaxSessionExtension.Hours()))) * time.Hour
	cfg.LockoutDuration = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.AdminLockDuration = time.Duration(envInt("ADMIN_LOCK_HOURS", int(cfg.AdminLockDuration.Hours()))) * time.Hour
	cfg.ResetTokenTTL = time.Duration(envInt("RESET_TOKEN_TTL_MINUTES", int(cfg.ResetTokenTTL.Minutes()))) * time.Minute
	cfg.SweepInterval = time.Duration(envInt("SESSION_SWEEP_SECONDS", int(cfg.SweepInterval.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTAccessPrivateKeyPEM == "" || cfg.JWTRefreshPrivateKeyPEM == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_ACCESS_PRIVATE_KEY_PEM or JWT_REFRESH_PRIVATE_KEY_PEM")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
