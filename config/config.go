package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PagePlaceholder marks where the page index goes in a search URL template.
const PagePlaceholder = "{page}"

// PageParam is the query parameter used when the template has no placeholder.
const PageParam = "currentpage"

// Selectors locate the listing container and its fields within a results page.
type Selectors struct {
	Container   string
	Title       string
	Link        string
	Description string
	OpenedOn    string
}

// Config holds extractor and cleaner configuration.
type Config struct {
	SearchURL   string
	SiteOrigin  string
	MaxPages    int
	Timeout     time.Duration
	DedupeSize  int
	JSONPath    string
	SheetPath   string
	UserAgent   string
	MetricsAddr string
	Verbose     bool
	Selectors   Selectors
}

// DefaultConfig returns the defaults for the internship search target.
func DefaultConfig() *Config {
	return &Config{
		SearchURL:  "https://www.myjobmag.co.ke/search/jobs?q=Internship&location=Nairobi&location-sinput=Nairobi",
		MaxPages:   5,
		Timeout:    30 * time.Second,
		DedupeSize: 1000,
		JSONPath:   "data.json",
		SheetPath:  "internships.xlsx",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		Selectors: Selectors{
			Container:   "li.job-list-li",
			Title:       "h2",
			Link:        "a",
			Description: "li.job-desc",
			OpenedOn:    "li#job-date",
		},
	}
}

// Load reads an optional .env file and overlays environment variables on the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	cfg := DefaultConfig()
	if v, ok := EnvString("INTERNSHIPS_SEARCH_URL"); ok {
		cfg.SearchURL = v
	}
	if v, ok := EnvString("INTERNSHIPS_SITE_ORIGIN"); ok {
		cfg.SiteOrigin = v
	}
	if v, ok := EnvString("INTERNSHIPS_JSON_PATH"); ok {
		cfg.JSONPath = v
	}
	if v, ok := EnvString("INTERNSHIPS_XLSX_PATH"); ok {
		cfg.SheetPath = v
	}
	if v, ok := EnvString("METRICS_ADDR"); ok {
		cfg.MetricsAddr = v
	}

	v, ok, err := EnvInt("INTERNSHIPS_PAGES")
	if err != nil {
		return nil, fmt.Errorf("invalid INTERNSHIPS_PAGES: %w", err)
	} else if ok {
		cfg.MaxPages = v
	}
	v, ok, err = EnvInt("INTERNSHIPS_DEDUPE_SIZE")
	if err != nil {
		return nil, fmt.Errorf("invalid INTERNSHIPS_DEDUPE_SIZE: %w", err)
	} else if ok {
		cfg.DedupeSize = v
	}
	if raw, ok := EnvString("INTERNSHIPS_TIMEOUT"); ok {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid INTERNSHIPS_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if level, ok := EnvString("LOG_LEVEL"); ok && strings.EqualFold(level, "debug") {
		cfg.Verbose = true
	}
	if raw, ok := EnvString("VERBOSE"); ok {
		if b, err := strconv.ParseBool(raw); err == nil && b {
			cfg.Verbose = true
		}
	}

	return cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.SearchURL == "" {
		return fmt.Errorf("search URL cannot be empty")
	}
	parsed, err := url.Parse(strings.ReplaceAll(c.SearchURL, PagePlaceholder, "1"))
	if err != nil {
		return fmt.Errorf("invalid search URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("search URL must include a host")
	}

	if c.SiteOrigin != "" {
		origin, err := url.Parse(c.SiteOrigin)
		if err != nil {
			return fmt.Errorf("invalid site origin: %w", err)
		}
		if origin.Host == "" {
			return fmt.Errorf("site origin must include a host")
		}
	}

	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DedupeSize < 0 {
		return fmt.Errorf("dedupe size cannot be negative")
	}
	if c.JSONPath == "" {
		return fmt.Errorf("JSON path cannot be empty")
	}
	if c.SheetPath == "" {
		return fmt.Errorf("spreadsheet path cannot be empty")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Selectors.Container == "" {
		return fmt.Errorf("container selector cannot be empty")
	}
	return nil
}

// PageURL builds the search URL for a 1-based page index.
func (c *Config) PageURL(page int) (string, error) {
	if strings.Contains(c.SearchURL, PagePlaceholder) {
		return strings.ReplaceAll(c.SearchURL, PagePlaceholder, strconv.Itoa(page)), nil
	}

	u, err := url.Parse(c.SearchURL)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set(PageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Origin returns the URL that relative listing links are resolved against.
func (c *Config) Origin() (*url.URL, error) {
	if c.SiteOrigin != "" {
		u, err := url.Parse(c.SiteOrigin)
		if err != nil {
			return nil, fmt.Errorf("parse site origin: %w", err)
		}
		return u, nil
	}

	u, err := url.Parse(strings.ReplaceAll(c.SearchURL, PagePlaceholder, "1"))
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// EnvString returns a trimmed, non-empty environment value.
func EnvString(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", false
	}
	return v, true
}

// EnvInt parses an integer environment value. ok is false when the variable is unset.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s=%q: %w", key, raw, err)
	}
	return n, true, nil
}
