package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Backend settings
	BackendURL     string
	RequestTimeout time.Duration // zero means no client-side timeout

	// Output settings
	DownloadDir string
	Markdown    bool
	Charts      bool

	// Startup settings
	InitialFile string

	Verbose bool
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		BackendURL:     "http://localhost:8001",
		RequestTimeout: 0,

		DownloadDir: ".",
		Markdown:    true,
		Charts:      true,

		Verbose: false,
	}
}

// LoadEnv overrides defaults from the process environment. A .env file in
// the working directory is read first when present.
func (c *Config) LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	c.BackendURL = getEnv("EDA_BACKEND_URL", c.BackendURL)
	c.DownloadDir = getEnv("EDA_DOWNLOAD_DIR", c.DownloadDir)

	if v, ok := os.LookupEnv("EDA_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid EDA_TIMEOUT %q: %w", v, err)
		}
		c.RequestTimeout = d
	}

	if v, ok := os.LookupEnv("EDA_VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid EDA_VERBOSE %q: %w", v, err)
		}
		c.Verbose = b
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL cannot be empty")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend URL %q is not an absolute URL", c.BackendURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
