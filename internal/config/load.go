package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DEVDECK"

// legacyEnv maps config keys to the bare variable names used by earlier
// deployments. The prefixed name always wins when both are set.
var legacyEnv = map[string]string{
	"server.port":               "PORT",
	"database.url":              "DATABASE_URL",
	"auth.admin_secret":         "ADMIN_SECRET",
	"llm.gemini_api_key":        "GEMINI_API_KEY",
	"image.replicate_api_token": "REPLICATE_API_TOKEN",
}

// setDefaults registers every known key. Viper only resolves environment
// variables for keys it knows about, so each key needs a default here.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.static_dir", "web")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", int64(10<<20))

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "data/cards.db")

	v.SetDefault("auth.admin_secret", "")

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.prompt_template_path", "")

	v.SetDefault("image.provider", "replicate")
	v.SetDefault("image.replicate_api_token", "")
	v.SetDefault("image.replicate_base_url", "https://api.replicate.com/v1")
	v.SetDefault("image.replicate_model_version",
		"ac732df83cea7fff18b8472768c88ad041fa750ff7682a21affe81863cbe77e4")
	v.SetDefault("image.imagen_model", "imagen-3.0-generate-002")
	v.SetDefault("image.width", 512)
	v.SetDefault("image.height", 640)
	v.SetDefault("image.poll_interval", time.Second)
	v.SetDefault("image.max_poll_attempts", 30)
	v.SetDefault("image.timeout", 60*time.Second)

	v.SetDefault("assets.images_dir", "public/images")
	v.SetDefault("assets.icons_dir", "public/icons")
	v.SetDefault("assets.public_prefix", "/public")
	v.SetDefault("assets.placeholder", "/public/images/placeholder.png")

	v.SetDefault("generation.request_delay", 2*time.Second)
	v.SetDefault("generation.refresh_concurrency", 0)
}

// Load configuration from a .env file, an optional config.yaml and
// environment variables. Environment variables take precedence over values
// from the config file. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	// A missing .env file is the normal case in production.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
