// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Admin     AdminConfig
	Search    SearchConfig
	Blacklist BlacklistConfig
	Cache     CacheConfig
	Engine    EngineConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name          string
	LocalURL      string        // Optional
	RemoteURL     string        // Optional
	Port          string        // Server port (default: 8080)
	ReadTimeout   time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 60s)
	AdvertiseMDNS bool          // Advertise via mDNS/Zeroconf (default: true)
}

// AdminConfig holds admin authentication configuration.
type AdminConfig struct {
	// PASETO v4 symmetric key for admin tokens (32 bytes)
	TokenKey []byte
	// Token lifetime (default: 12h)
	TokenDuration time.Duration
	// Argon2id hash of the admin password. Empty disables admin routes.
	PasswordHash string
}

// SearchConfig holds full-text index configuration.
type SearchConfig struct {
	// IndexPath is the directory for the note index (default: {data}/index/notes)
	IndexPath string
	// PageSize is the number of note hits per page (default: 20)
	PageSize int
}

// BlacklistConfig holds tag blacklist configuration.
type BlacklistConfig struct {
	// Path to the blacklist pattern file. Empty disables blacklisting.
	Path string
	// Watch reloads the file on change (default: true)
	Watch bool
}

// CacheConfig holds result and vocabulary cache configuration.
type CacheConfig struct {
	ResultTTL     time.Duration // Search result cache TTL (default: 5m)
	ResultEntries int           // Max cached search results (default: 512)
	VocabTTL      time.Duration // Tag vocabulary cache TTL (default: 10m)
	VocabEntries  int           // Max cached vocabulary lookups (default: 4096)
}

// EngineConfig holds query and recommendation tuning.
type EngineConfig struct {
	// WildcardLimit caps how many tags a single wildcard may expand to (default: 500)
	WildcardLimit int
	// RecommendCeiling excludes tags more popular than this from similarity (default: 1000)
	RecommendCeiling int
	// RecommendThreshold is the minimum similarity for a recommendation (default: 0.15)
	RecommendThreshold float64
	// RecommendLimit is the maximum recommendations returned (default: 12)
	RecommendLimit int
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
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverName := flag.String("server-name", "", "Name for the server")
	serverLocalURL := flag.String("local-url", "", "Internal server url")
	serverRemoteURL := flag.String("remote-url", "", "Remote server url")

	// Admin flags
	adminTokenDuration := flag.String("admin-token-duration", "", "Admin token lifetime (e.g., 12h)")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	advertiseMDNS := flag.String("advertise-mdns", "", "Advertise via mDNS/Zeroconf (default: true)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Search flags
	indexPath := flag.String("index-path", "", "Path for the note full-text index")
	notePageSize := flag.String("note-page-size", "", "Note hits per page (default: 20)")

	// Blacklist flags
	blacklistPath := flag.String("blacklist-path", "", "Path to tag blacklist file")
	blacklistWatch := flag.String("blacklist-watch", "", "Reload blacklist on file change (default: true)")

	// Parse flags but don't exit on error - we want to handle it gracefully.
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
			Name:          getConfigValue(*serverName, "SERVER_NAME", "Nextbooru Server"),
			LocalURL:      getConfigValue(*serverLocalURL, "SERVER_LOCAL_URL", ""),
			RemoteURL:     getConfigValue(*serverRemoteURL, "SERVER_REMOTE_URL", ""),
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AdvertiseMDNS: getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", true),
		},

		Admin: AdminConfig{
			TokenKey:     nil, // Will be set by auth.LoadOrGenerateKey in main
			PasswordHash: getConfigValue("", "ADMIN_PASSWORD_HASH", ""),
		},

		Search: SearchConfig{
			IndexPath: getConfigValue(*indexPath, "INDEX_PATH", ""),
			PageSize:  getIntConfigValue(*notePageSize, "NOTE_PAGE_SIZE", 20),
		},

		Blacklist: BlacklistConfig{
			Path:  getConfigValue(*blacklistPath, "BLACKLIST_PATH", ""),
			Watch: getBoolConfigValue(*blacklistWatch, "BLACKLIST_WATCH", true),
		},

		Cache: CacheConfig{
			ResultEntries: getIntConfigValue("", "CACHE_RESULT_ENTRIES", 512),
			VocabEntries:  getIntConfigValue("", "CACHE_VOCAB_ENTRIES", 4096),
		},

		Engine: EngineConfig{
			WildcardLimit:      getIntConfigValue("", "WILDCARD_LIMIT", 500),
			RecommendCeiling:   getIntConfigValue("", "RECOMMEND_CEILING", 1000),
			RecommendThreshold: 0.15,
			RecommendLimit:     getIntConfigValue("", "RECOMMEND_LIMIT", 12),
		},
	}

	// Parse admin token duration.
	adminDurationStr := getConfigValue(*adminTokenDuration, "ADMIN_TOKEN_DURATION", "12h")
	adminDuration, err := time.ParseDuration(adminDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid admin token duration %q: %w", adminDurationStr, err)
	}
	cfg.Admin.TokenDuration = adminDuration

	// Parse cache TTLs.
	resultTTLStr := getConfigValue("", "CACHE_RESULT_TTL", "5m")
	resultTTL, err := time.ParseDuration(resultTTLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid result cache TTL %q: %w", resultTTLStr, err)
	}
	cfg.Cache.ResultTTL = resultTTL

	vocabTTLStr := getConfigValue("", "CACHE_VOCAB_TTL", "10m")
	vocabTTL, err := time.ParseDuration(vocabTTLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid vocab cache TTL %q: %w", vocabTTLStr, err)
	}
	cfg.Cache.VocabTTL = vocabTTL

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
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

	// Expand and validate data path.
	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	// Expand index path (defaults to {data}/index/notes).
	if err := cfg.expandIndexPath(); err != nil {
		return nil, fmt.Errorf("invalid index path: %w", err)
	}

	// Expand blacklist path if set.
	if err := cfg.expandBlacklistPath(); err != nil {
		return nil, fmt.Errorf("invalid blacklist path: %w", err)
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

	if c.Engine.WildcardLimit <= 0 {
		return fmt.Errorf("wildcard limit must be positive, got %d", c.Engine.WildcardLimit)
	}

	if c.Engine.RecommendLimit <= 0 {
		return fmt.Errorf("recommendation limit must be positive, got %d", c.Engine.RecommendLimit)
	}

	// Blacklist path is optional - empty disables blacklisting.

	// Admin token key is set by auth.LoadOrGenerateKey in main.

	return nil
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
	defaultPath := filepath.Join(homeDir, "Nextbooru", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandIndexPath expands ~ and makes the path absolute.
// Defaults to {data}/index/notes if not specified.
func (c *Config) expandIndexPath() error {
	defaultPath := filepath.Join(c.Data.BasePath, "index", "notes")

	expanded, err := expandPath(c.Search.IndexPath, defaultPath)
	if err != nil {
		return err
	}
	c.Search.IndexPath = expanded
	return nil
}

// expandBlacklistPath expands ~ and makes the path absolute.
// If empty, leaves it empty to disable blacklisting.
func (c *Config) expandBlacklistPath() error {
	if c.Blacklist.Path == "" {
		return nil
	}

	expanded, err := expandPath(c.Blacklist.Path, "")
	if err != nil {
		return err
	}
	c.Blacklist.Path = expanded
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

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
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
