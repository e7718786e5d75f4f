package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/PointsBridge/internal/pkg/env"
)

const (
	SignaturePolicyReject = "reject"
	SignaturePolicyLog    = "log"

	RefundPolicyMatch   = "match"
	RefundPolicyReverse = "reverse"
)

// ConfigError reports required settings that are missing or invalid. It is
// fatal at startup.
type ConfigError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required configuration: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid configuration: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// Config is the process configuration, read once at startup.
type Config struct {
	AppHost   string
	AppPort   string
	PublicURL string `validate:"required,url" env:"PUBLIC_URL"`
	IsDev     bool

	PlatformClientID     string `validate:"required" env:"PLATFORM_CLIENT_ID"`
	PlatformClientSecret string `validate:"required" env:"PLATFORM_CLIENT_SECRET"`
	PlatformIssuerURL    string `validate:"required,url" env:"PLATFORM_ISSUER_URL"`
	PlatformAPIURL       string `validate:"required,url" env:"PLATFORM_API_URL"`

	WebhookSecret          string `validate:"required" env:"WEBHOOK_SECRET"`
	WebhookSignaturePolicy string `validate:"oneof=reject log" env:"WEBHOOK_SIGNATURE_POLICY"`
	RefundPointsPolicy     string `validate:"oneof=match reverse" env:"REFUND_POINTS_POLICY"`

	UseMemoryRepo bool
	DatabaseDSN   string `validate:"required_without=UseMemoryRepo" env:"DATABASE_DSN"`

	CacheHost     string
	CachePort     string
	CachePassword string

	ProviderAPIURL    string `validate:"required,url" env:"PROVIDER_API_URL"`
	ProviderAPIKey    string `validate:"required" env:"PROVIDER_API_KEY"`
	ProviderProgramID string `validate:"required" env:"PROVIDER_PROGRAM_ID"`

	MetricsUser     string
	MetricsPassword string
}

// Load assembles the configuration from the environment and validates it.
func Load() (*Config, error) {
	port := env.GetEnv("APP_PORT", "3000")
	isDev := env.IsDev()

	cfg := &Config{
		AppHost:   env.GetEnv("APP_HOST", "localhost"),
		AppPort:   port,
		PublicURL: env.GetEnv("PUBLIC_URL", "http://localhost:"+port+"/"),
		IsDev:     isDev,

		PlatformClientID:     strings.TrimSpace(env.GetEnv("PLATFORM_CLIENT_ID", "")),
		PlatformClientSecret: strings.TrimSpace(env.GetEnv("PLATFORM_CLIENT_SECRET", "")),
		PlatformIssuerURL:    env.GetEnv("PLATFORM_ISSUER_URL", "https://auth-next.loke.global/"),
		PlatformAPIURL:       env.GetEnv("PLATFORM_API_URL", "https://api.loke.global/"),

		WebhookSecret:          strings.TrimSpace(env.GetEnv("WEBHOOK_SECRET", "")),
		WebhookSignaturePolicy: strings.ToLower(env.GetEnv("WEBHOOK_SIGNATURE_POLICY", SignaturePolicyReject)),
		RefundPointsPolicy:     strings.ToLower(env.GetEnv("REFUND_POINTS_POLICY", RefundPolicyMatch)),

		// The in-memory repository is for local development only.
		UseMemoryRepo: isDev && env.GetEnv("USE_MEMORY_REPO", "false") == "true",
		DatabaseDSN:   env.GetEnv("DATABASE_DSN", ""),

		CacheHost:     env.GetEnv("CACHE_HOST", "localhost"),
		CachePort:     env.GetEnv("CACHE_PORT", "6379"),
		CachePassword: env.GetEnv("CACHE_PASSWORD", ""),

		ProviderAPIURL:    env.GetEnv("PROVIDER_API_URL", "https://api.fidel.uk/v1"),
		ProviderAPIKey:    strings.TrimSpace(env.GetEnv("PROVIDER_API_KEY", "")),
		ProviderProgramID: strings.TrimSpace(env.GetEnv("PROVIDER_PROGRAM_ID", "")),

		MetricsUser:     env.GetEnv("METRICS_USER", ""),
		MetricsPassword: env.GetEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks the struct tags and converts failures into a ConfigError
// naming the environment variables involved.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate configuration: %w", err)
	}

	cfgErr := &ConfigError{}
	for _, fe := range verrs {
		name := fe.Field()
		switch fe.Tag() {
		case "required", "required_without":
			cfgErr.Missing = append(cfgErr.Missing, name)
		default:
			cfgErr.Invalid = append(cfgErr.Invalid, name)
		}
	}
	return cfgErr
}

// StrictSignatures reports whether webhooks with a bad signature are rejected.
func (c *Config) StrictSignatures() bool {
	return c.WebhookSignaturePolicy != SignaturePolicyLog
}
