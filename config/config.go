// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/mediscript/instructions-api/vocabulary/entities"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               string
	LogLevel          string
	LogRetentionWeeks int    // Number of weeks to keep log files
	VocabDir          string // Directory holding the vocabulary CSV files
	VocabTTLMinutes   int    // Vocabulary cache lifetime before a reload is attempted
	DefaultLanguage   string // Target language preselected for new sessions
	MaxRequestBody    int64  // Maximum request body size in bytes
	MaxHeaderSize     int64  // Maximum header size in bytes
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               getEnvWithDefault("ENV", "dev"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),      // 4 weeks default
		VocabDir:          getEnvWithDefault("VOCAB_DIR", "vocab"),
		VocabTTLMinutes:   getIntEnvWithDefault("VOCAB_TTL_MINUTES", 60),       // 1 hour default
		DefaultLanguage:   getEnvWithDefault("DEFAULT_LANGUAGE", "zu"),
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576), // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),  // 1MB default
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateVocabDir(cfg.VocabDir); err != nil {
		return fmt.Errorf("invalid VOCAB_DIR: %w", err)
	}

	if err := validateVocabTTL(cfg.VocabTTLMinutes); err != nil {
		return fmt.Errorf("invalid VOCAB_TTL_MINUTES: %w", err)
	}

	if err := validateLanguage(cfg.DefaultLanguage); err != nil {
		return fmt.Errorf("invalid DEFAULT_LANGUAGE: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		// This is acceptable for development
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env string) error {
	if env == "" {
		return fmt.Errorf("ENV cannot be empty")
	}

	validEnvs := []string{"dev", "staging", "prod", "test"}
	env = strings.ToLower(env)

	for _, validEnv := range validEnvs {
		if env == validEnv {
			return nil
		}
	}

	return fmt.Errorf("ENV must be one of: %v, got: %s", validEnvs, env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateVocabDir validates the VOCAB_DIR environment variable
func validateVocabDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("VOCAB_DIR cannot be empty")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("VOCAB_DIR %s is not accessible: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("VOCAB_DIR %s is not a directory", dir)
	}

	return nil
}

// validateVocabTTL validates the VOCAB_TTL_MINUTES environment variable
func validateVocabTTL(minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("VOCAB_TTL_MINUTES must be positive, got: %d", minutes)
	}

	if minutes > 24*60 { // 1 day maximum
		return fmt.Errorf("VOCAB_TTL_MINUTES is too large (max 1440), got: %d", minutes)
	}

	return nil
}

// validateLanguage validates the DEFAULT_LANGUAGE environment variable
func validateLanguage(lang string) error {
	if lang == "" {
		return fmt.Errorf("DEFAULT_LANGUAGE cannot be empty")
	}

	for _, supported := range entities.Languages {
		if lang == supported {
			return nil
		}
	}

	return fmt.Errorf("DEFAULT_LANGUAGE must be one of: %v, got: %s", entities.Languages, lang)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_RETENTION_WEEKS",
		"VOCAB_DIR",
		"VOCAB_TTL_MINUTES",
		"DEFAULT_LANGUAGE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
	}
}
