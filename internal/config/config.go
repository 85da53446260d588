// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Import   ImportConfig
	Analysis AnalysisConfig
	BlogCMS  BlogCMSConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local storage configuration.
type DataConfig struct {
	// BasePath is the root directory for all persistent state.
	// The document store lives in {base}/db, search indexes in
	// {base}/search, and export bundles in {base}/exports.
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// ImportConfig holds WXR import configuration.
type ImportConfig struct {
	// InboxPath is an optional directory watched for dropped WXR files.
	// Empty disables the inbox watcher.
	InboxPath string
	// WorkerTimeout bounds each per-post derivation worker (default: 30s).
	WorkerTimeout time.Duration
	// MaxUploadBytes caps the size of uploaded WXR files (default: 256 MiB).
	MaxUploadBytes int64
}

// AnalysisConfig holds analysis tuning knobs.
type AnalysisConfig struct {
	// TagSimilarityThreshold is the minimum similarity for two tag
	// slugs to land in the same cluster (default: 0.8).
	TagSimilarityThreshold float64
}

// BlogCMSConfig holds remote BlogCMS import configuration.
type BlogCMSConfig struct {
	BaseURL  string // e.g. https://cms.example.com/api
	APIToken string // bearer token, never logged
	AuthorID string // author assigned to created posts
	// RequestsPerSecond throttles outbound API calls (default: 4).
	RequestsPerSecond float64
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for persistent data")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Import flags
	inboxPath := flag.String("inbox-path", "", "Directory watched for dropped WXR files (default: disabled)")
	workerTimeout := flag.String("worker-timeout", "", "Per-post derivation timeout (default: 30s)")

	// Analysis flags
	tagSimilarity := flag.String("tag-similarity", "", "Tag clustering similarity threshold (default: 0.8)")

	// BlogCMS flags
	cmsBaseURL := flag.String("blogcms-url", "", "BlogCMS API base URL")
	cmsAuthorID := flag.String("blogcms-author", "", "BlogCMS author ID for created posts")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Import: ImportConfig{
			InboxPath:      getConfigValue(*inboxPath, "IMPORT_INBOX_PATH", ""),
			MaxUploadBytes: getInt64ConfigValue("", "IMPORT_MAX_UPLOAD_BYTES", 256<<20),
		},
		BlogCMS: BlogCMSConfig{
			BaseURL:           getConfigValue(*cmsBaseURL, "BLOGCMS_URL", ""),
			APIToken:          getConfigValue("", "BLOGCMS_TOKEN", ""),
			AuthorID:          getConfigValue(*cmsAuthorID, "BLOGCMS_AUTHOR_ID", ""),
			RequestsPerSecond: getFloatConfigValue("", "BLOGCMS_RPS", 4),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	// Write timeout is generous because CSV export endpoints stream
	// whole bundles in one response.
	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	workerTimeoutStr := getConfigValue(*workerTimeout, "IMPORT_WORKER_TIMEOUT", "30s")
	workerTimeoutDuration, err := time.ParseDuration(workerTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid worker timeout %q: %w", workerTimeoutStr, err)
	}
	cfg.Import.WorkerTimeout = workerTimeoutDuration

	similarityStr := getConfigValue(*tagSimilarity, "TAG_SIMILARITY_THRESHOLD", "0.8")
	similarity, err := strconv.ParseFloat(similarityStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid tag similarity threshold %q: %w", similarityStr, err)
	}
	cfg.Analysis.TagSimilarityThreshold = similarity

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Expand inbox path if set.
	if err := cfg.expandInboxPath(); err != nil {
		return nil, fmt.Errorf("invalid inbox path: %w", err)
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Analysis.TagSimilarityThreshold <= 0 || c.Analysis.TagSimilarityThreshold > 1 {
		return fmt.Errorf("tag similarity threshold must be in (0, 1], got %v", c.Analysis.TagSimilarityThreshold)
	}

	// BlogCMS settings are optional at startup; the export service
	// rejects remote imports when no base URL or token is configured.

	return nil
}

// DBPath returns the document store directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Data.BasePath, "db")
}

// SearchPath returns the search index directory.
func (c *Config) SearchPath() string {
	return filepath.Join(c.Data.BasePath, "search")
}

// ExportPath returns the directory export bundles are written to.
func (c *Config) ExportPath() string {
	return filepath.Join(c.Data.BasePath, "exports")
}

// SnapshotPath returns the directory dataset snapshots are written to.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Data.BasePath, "snapshots")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "PressMap", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandInboxPath expands ~ and makes the path absolute.
// If empty, leaves it empty to keep the inbox watcher disabled.
func (c *Config) expandInboxPath() error {
	if c.Import.InboxPath == "" {
		return nil
	}

	expanded, err := expandPath(c.Import.InboxPath, "")
	if err != nil {
		return err
	}
	c.Import.InboxPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseInt(strValue, 10, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
