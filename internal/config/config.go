package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"desembolsos/internal/core"
	applog "desembolsos/internal/log"
)

// Source kinds.
const (
	SourceCSV    = "csv"
	SourceXLSX   = "xlsx"
	SourceSheets = "sheets"
)

const DefaultSourcePath = "Controle de Processos COPP - 2025 - Página5.csv"

type Config struct {
	// HTTP Server
	Port         string
	RateLimitRPM int
	// TrustedProxies are CIDRs whose forwarding headers are honoured.
	TrustedProxies []string

	// Source table
	SourceKind      string
	SourcePath      string
	SourceSheet     string
	SourceDelimiter string

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetRange    string

	// Reports
	DefaultGranularity string
	CacheSize          int
	CacheTTL           time.Duration

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8050"),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		SourceKind:      strings.ToLower(getEnv("SOURCE_KIND", SourceCSV)),
		SourcePath:      getEnv("SOURCE_PATH", DefaultSourcePath),
		SourceSheet:     getEnv("SOURCE_SHEET", ""),
		SourceDelimiter: getEnv("SOURCE_DELIMITER", ","),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:    getEnv("GOOGLE_SHEET_RANGE", "Página5"),

		DefaultGranularity: getEnv("DEFAULT_GRANULARITY", string(core.DefaultGranularity)),
		CacheSize:          getEnvInt("CACHE_SIZE", 256),
		CacheTTL:           getEnvDuration("CACHE_TTL", 10*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Delimiter returns the CSV field separator.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.SourceDelimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// Granularity returns the parsed default granularity.
func (c *Config) Granularity() core.Granularity {
	g, err := core.ParseGranularity(c.DefaultGranularity)
	if err != nil {
		return core.DefaultGranularity
	}
	return g
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validKinds := []string{SourceCSV, SourceXLSX, SourceSheets}
	isValidKind := false
	for _, k := range validKinds {
		if c.SourceKind == k {
			isValidKind = true
			break
		}
	}
	if !isValidKind {
		errors = append(errors, fmt.Sprintf("invalid source kind '%s': must be one of %v", c.SourceKind, validKinds))
	}

	switch c.SourceKind {
	case SourceCSV:
		if c.SourcePath == "" {
			errors = append(errors, "source path cannot be empty when using csv source")
		}
		if utf8.RuneCountInString(c.SourceDelimiter) != 1 {
			errors = append(errors, fmt.Sprintf("invalid source delimiter '%s': must be a single character", c.SourceDelimiter))
		} else if d := c.Delimiter(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
			errors = append(errors, fmt.Sprintf("invalid source delimiter %q", c.SourceDelimiter))
		}
	case SourceXLSX:
		if c.SourcePath == "" {
			errors = append(errors, "source path cannot be empty when using xlsx source")
		}
	case SourceSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleSheetRange == "" {
			errors = append(errors, "Google sheet range is required when using sheets source")
		}
	}

	if _, err := core.ParseGranularity(c.DefaultGranularity); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default granularity '%s': must be one of MS, QS, 6MS, YS", c.DefaultGranularity))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	} else if c.CacheSize > 100000 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at most 100000", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache ttl %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache ttl %v: must be at most 24 hours", c.CacheTTL))
	}

	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': %v", cidr, err))
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
