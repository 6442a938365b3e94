package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// TMDB catalog API
	TMDBAPIKey   string
	TMDBBaseURL  string
	TMDBLanguage string

	// Archive service (file downloads)
	ArchiveBaseURL string

	// Timeouts
	CatalogTimeout time.Duration // budget for a single catalog API call
	ArchiveTimeout time.Duration // archive upstreams are slow; this only bounds the response headers

	// Downloads
	DownloadRetentionDays int // days before finished download records are pruned

	// Server
	ServerPort string

	// Paths
	DatabaseFile string // $CONFIG_DIR/cinedex.db
	DownloadDir  string // $CONFIG_DIR/downloads

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_LANGUAGE", "en-US")
	viper.SetDefault("ARCHIVE_BASE_URL", "https://archive.org")
	viper.SetDefault("CATALOG_TIMEOUT_SECONDS", 15)
	viper.SetDefault("ARCHIVE_TIMEOUT_SECONDS", 30)
	viper.SetDefault("DOWNLOAD_RETENTION_DAYS", 30)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "cinedex")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// TMDB
		TMDBAPIKey:   viper.GetString("TMDB_API_KEY"),
		TMDBBaseURL:  viper.GetString("TMDB_BASE_URL"),
		TMDBLanguage: viper.GetString("TMDB_LANGUAGE"),

		// Archive
		ArchiveBaseURL: viper.GetString("ARCHIVE_BASE_URL"),

		// Timeouts
		CatalogTimeout: time.Duration(viper.GetInt("CATALOG_TIMEOUT_SECONDS")) * time.Second,
		ArchiveTimeout: time.Duration(viper.GetInt("ARCHIVE_TIMEOUT_SECONDS")) * time.Second,

		// Downloads
		DownloadRetentionDays: viper.GetInt("DOWNLOAD_RETENTION_DAYS"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "cinedex.db"),
		DownloadDir:  filepath.Join(configDir, "downloads"),

		// Logging
		LogLevel:  viper.GetString("LOG_LEVEL"),
		LogFormat: viper.GetString("LOG_FORMAT"),
	}

	// Validate required fields
	if config.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	if config.CatalogTimeout <= 0 {
		return nil, fmt.Errorf("CATALOG_TIMEOUT_SECONDS must be positive")
	}
	if config.ArchiveTimeout <= 0 {
		return nil, fmt.Errorf("ARCHIVE_TIMEOUT_SECONDS must be positive")
	}

	return config, nil
}
