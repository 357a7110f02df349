package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SiteConfig identifies the catalog site the digests are sent on behalf of.
type SiteConfig struct {
	// Title is interpolated into email subjects ("3 new activities from <Title>").
	Title string `mapstructure:"title" yaml:"title"`

	// URL is the public root URL of the catalog, used to reconstruct
	// browsable links to saved searches.
	URL string `mapstructure:"url" yaml:"url"`
}

// DatabaseConfig holds the local store settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `mapstructure:"path" yaml:"path"`
}

// SearchConfig holds settings for the catalog's search API.
type SearchConfig struct {
	// BaseURL is the root URL of the search service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Rows is the result page size requested when re-running a saved
	// search. It is deliberately generous so the diff sees the full set.
	Rows int `mapstructure:"rows" yaml:"rows"`

	// IncludePrivate controls whether private datasets are included when
	// re-running saved searches.
	IncludePrivate bool `mapstructure:"include_private" yaml:"include_private"`
}

// NotificationsConfig holds notification-run settings.
type NotificationsConfig struct {
	// Since is a duration string (e.g. "2 days", "4:35:00"). Events older
	// than now minus this span are never considered, regardless of when
	// the user was last notified.
	Since string `mapstructure:"since" yaml:"since"`
}

// SMTPConfig holds outgoing mail settings. Password may be left empty, in
// which case it is looked up in the system keyring.
type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from" yaml:"from"`
	FromName string `mapstructure:"from_name" yaml:"from_name"`

	// TLS selects implicit TLS; when false, STARTTLS is used.
	TLS bool `mapstructure:"tls" yaml:"tls"`
}

// AppConfig is the top-level service configuration.
type AppConfig struct {
	Site          SiteConfig          `mapstructure:"site" yaml:"site"`
	Database      DatabaseConfig      `mapstructure:"database" yaml:"database"`
	Search        SearchConfig        `mapstructure:"search" yaml:"search"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	SMTP          SMTPConfig          `mapstructure:"smtp" yaml:"smtp"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/catalog-notifier/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "catalog-notifier", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Site: SiteConfig{
			Title: "Open Data Catalog",
			URL:   "http://localhost:5000",
		},
		Database: DatabaseConfig{
			Path: "catalog-notifier.db",
		},
		Search: SearchConfig{
			BaseURL:        "http://localhost:8983",
			Rows:           1000,
			IncludePrivate: true,
		},
		Notifications: NotificationsConfig{
			Since: "2 days",
		},
		SMTP: SMTPConfig{
			Port: "587",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("site.title", "Open Data Catalog")
	v.SetDefault("site.url", "http://localhost:5000")
	v.SetDefault("database.path", "catalog-notifier.db")
	v.SetDefault("search.base_url", "http://localhost:8983")
	v.SetDefault("search.rows", 1000)
	v.SetDefault("notifications.since", "2 days")
	v.SetDefault("smtp.port", "587")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Viper unmarshals missing bools as false; treat an absent
	// search.include_private as true.
	if !cfg.Search.IncludePrivate && !v.IsSet("search.include_private") {
		cfg.Search.IncludePrivate = true
	}

	return cfg, nil
}
