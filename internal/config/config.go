package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Image      ImageConfig      `mapstructure:"image" validate:"required"`
	Assets     AssetsConfig     `mapstructure:"assets" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	StaticDir       string        `mapstructure:"static_dir" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the SQL backend: "sqlite" for a local file, "postgres"
	// for a server.
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	// URL is a file path for sqlite or a connection URL for postgres.
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains the admin shared secret.
type AuthConfig struct {
	AdminSecret string `mapstructure:"admin_secret" validate:"required,min=8"`
}

// LLMConfig contains all text-generation settings.
type LLMConfig struct {
	GeminiAPIKey       string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName          string `mapstructure:"model_name" validate:"required"`
	BaseURL            string `mapstructure:"base_url" validate:"omitempty,url"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
}

// ImageConfig contains all image-generation settings.
type ImageConfig struct {
	// Provider is "replicate" (asynchronous, polled) or "imagen" (synchronous).
	Provider              string        `mapstructure:"provider" validate:"required,oneof=replicate imagen"`
	ReplicateAPIToken     string        `mapstructure:"replicate_api_token" validate:"required_if=Provider replicate"`
	ReplicateBaseURL      string        `mapstructure:"replicate_base_url" validate:"required,url"`
	ReplicateModelVersion string        `mapstructure:"replicate_model_version" validate:"required_if=Provider replicate"`
	ImagenModel           string        `mapstructure:"imagen_model" validate:"required_if=Provider imagen"`
	Width                 int           `mapstructure:"width" validate:"gt=0"`
	Height                int           `mapstructure:"height" validate:"gt=0"`
	PollInterval          time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	MaxPollAttempts       int           `mapstructure:"max_poll_attempts" validate:"gt=0"`
	Timeout               time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// AssetsConfig locates generated artwork and curated icons on disk and in
// public URLs.
type AssetsConfig struct {
	ImagesDir    string `mapstructure:"images_dir" validate:"required"`
	IconsDir     string `mapstructure:"icons_dir" validate:"required"`
	PublicPrefix string `mapstructure:"public_prefix" validate:"required,startswith=/"`
	Placeholder  string `mapstructure:"placeholder" validate:"required"`
}

// GenerationConfig contains orchestration pacing.
type GenerationConfig struct {
	// RequestDelay is waited before every item of a bulk run to stay inside
	// the text provider's quota.
	RequestDelay time.Duration `mapstructure:"request_delay" validate:"gte=0"`
	// RefreshConcurrency bounds the refresh-all fan-out; 0 means unbounded.
	RefreshConcurrency int `mapstructure:"refresh_concurrency" validate:"gte=0"`
}
