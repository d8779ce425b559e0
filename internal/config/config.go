// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Dataset   DatasetConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Stream    StreamConfig
	Tracing   TracingConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatasetConfig holds movie dataset configuration.
type DatasetConfig struct {
	Path        string        // CSV file with the movie rows
	MinYear     int           // Rows released before this year are dropped (default: 2010)
	Watch       bool          // Reload when the file changes (default: true)
	SettleDelay time.Duration // Quiet period before a changed file is reloaded (default: 250ms)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name           string
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 0, streams stay open)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: *)
}

// RateLimitConfig throttles gesture endpoints per client IP.
type RateLimitConfig struct {
	GesturesPerSecond float64
	Burst             int
}

// StreamConfig holds SSE stream configuration.
type StreamConfig struct {
	Heartbeat    time.Duration
	ClientBuffer int
}

// TracingConfig holds OpenTelemetry trace export configuration.
type TracingConfig struct {
	Endpoint    string  // OTLP/HTTP collector URL; tracing is off when empty
	SampleRatio float64 // Fraction of root spans kept (default: 1)
}

// Enabled reports whether spans are exported.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != ""
}

// LoadConfig loads configuration from the process command line.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("moviescope", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	datasetPath := fs.String("dataset", "", "Path to the movie CSV (default: data/movies.csv)")
	minYear := fs.String("min-year", "", "Drop movies released before this year (default: 2010)")
	watch := fs.String("watch", "", "Reload the dataset when it changes (default: true)")
	settleDelay := fs.String("settle-delay", "", "Quiet period before reloading a changed dataset (default: 250ms)")

	serverName := fs.String("server-name", "", "Name for the server")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 0)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma separated CORS origins (default: *)")

	gestureRate := fs.String("gesture-rate", "", "Gestures per second per client (default: 20)")
	gestureBurst := fs.String("gesture-burst", "", "Gesture burst per client (default: 40)")

	heartbeat := fs.String("stream-heartbeat", "", "SSE heartbeat interval (default: 30s)")
	clientBuffer := fs.String("stream-buffer", "", "Buffered events per SSE client (default: 100)")

	otelEndpoint := fs.String("otel-endpoint", "", "OTLP/HTTP trace collector URL (default: tracing off)")
	otelSampleRatio := fs.String("otel-sample-ratio", "", "Fraction of traces to export (default: 1)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Dataset: DatasetConfig{
			Path:    getConfigValue(*datasetPath, "DATASET_PATH", filepath.Join("data", "movies.csv")),
			MinYear: getIntConfigValue(*minYear, "DATASET_MIN_YEAR", 2010),
			Watch:   getBoolConfigValue(*watch, "DATASET_WATCH", true),
		},
		Server: ServerConfig{
			Name:           getConfigValue(*serverName, "SERVER_NAME", "MovieScope"),
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			Burst: getIntConfigValue(*gestureBurst, "GESTURE_BURST", 40),
		},
		Stream: StreamConfig{
			ClientBuffer: getIntConfigValue(*clientBuffer, "STREAM_CLIENT_BUFFER", 100),
		},
		Tracing: TracingConfig{
			Endpoint: getConfigValue(*otelEndpoint, "OTEL_ENDPOINT", ""),
		},
	}

	rate, err := strconv.ParseFloat(getConfigValue(*gestureRate, "GESTURE_RATE", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid gesture rate: %w", err)
	}
	cfg.RateLimit.GesturesPerSecond = rate

	ratio, err := strconv.ParseFloat(getConfigValue(*otelSampleRatio, "OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid trace sample ratio: %w", err)
	}
	cfg.Tracing.SampleRatio = ratio

	durations := []struct {
		name     string
		flag     string
		envKey   string
		fallback string
		dst      *time.Duration
	}{
		{"settle delay", *settleDelay, "DATASET_SETTLE_DELAY", "250ms", &cfg.Dataset.SettleDelay},
		{"read timeout", *readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"write timeout", *writeTimeout, "SERVER_WRITE_TIMEOUT", "0s", &cfg.Server.WriteTimeout},
		{"idle timeout", *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"stream heartbeat", *heartbeat, "STREAM_HEARTBEAT", "30s", &cfg.Stream.Heartbeat},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dst = parsed
	}

	expanded, err := expandPath(cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset path: %w", err)
	}
	cfg.Dataset.Path = expanded

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

	if c.Dataset.Path == "" {
		return errors.New("dataset path cannot be empty")
	}
	if c.Dataset.MinYear < 1888 || c.Dataset.MinYear > 2100 {
		return fmt.Errorf("invalid min year: %d", c.Dataset.MinYear)
	}
	if c.Dataset.Watch && c.Dataset.SettleDelay <= 0 {
		return errors.New("settle delay must be positive when watching the dataset")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", c.Server.Port)
	}

	if c.RateLimit.GesturesPerSecond <= 0 {
		return fmt.Errorf("gesture rate must be positive, got %g", c.RateLimit.GesturesPerSecond)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("gesture burst must be at least 1, got %d", c.RateLimit.Burst)
	}

	if c.Stream.Heartbeat < time.Second {
		return fmt.Errorf("stream heartbeat must be at least 1s, got %s", c.Stream.Heartbeat)
	}
	if c.Stream.ClientBuffer < 1 {
		return fmt.Errorf("stream buffer must be at least 1, got %d", c.Stream.ClientBuffer)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be between 0 and 1, got %g", c.Tracing.SampleRatio)
	}
	if c.Tracing.Enabled() {
		u, err := url.Parse(c.Tracing.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid trace endpoint: %s", c.Tracing.Endpoint)
		}
	}

	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

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
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
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

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
