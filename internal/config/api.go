package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/bestiary/pkg/formatting"
	"github.com/JaimeStill/bestiary/pkg/middleware"
	"github.com/JaimeStill/bestiary/pkg/openapi"
)

const (
	EnvAPIBasePath    = "BESTIARY_API_BASE_PATH"
	EnvAPIMaxBodySize = "BESTIARY_API_MAX_BODY_SIZE"

	defaultMaxBodySize = 1 << 20
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "BESTIARY_CORS_ENABLED",
	Origins:          "BESTIARY_CORS_ORIGINS",
	AllowedMethods:   "BESTIARY_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "BESTIARY_CORS_ALLOWED_HEADERS",
	AllowCredentials: "BESTIARY_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "BESTIARY_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "BESTIARY_OPENAPI_TITLE",
	Description: "BESTIARY_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, request limits, CORS, and OpenAPI settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes, falling back to 1MB when it
// cannot be parsed.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return defaultMaxBodySize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and OpenAPI configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	return nil
}
