// Package config reads searchbridge configuration. The core consumes
// this configuration but does not own it; applications resolve it once
// at startup and pass it to search.New.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Embedded holds the embedded file-based engine configuration.
type Embedded struct {
	// StoragePath is the directory holding one index per collection.
	StoragePath string `json:"storage_path" yaml:"storage_path"`
}

// Typesense holds remote Typesense connection parameters.
type Typesense struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Protocol string `json:"protocol" yaml:"protocol"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// URL renders the server address.
func (t *Typesense) URL() string {
	protocol := t.Protocol
	if protocol == "" {
		protocol = "http"
	}
	port := t.Port
	if port == 0 {
		port = 8108
	}
	return fmt.Sprintf("%s://%s:%d", protocol, t.Host, port)
}

// Meilisearch holds remote Meilisearch connection parameters.
type Meilisearch struct {
	Host   string `json:"host" yaml:"host"`
	APIKey string `json:"api_key" yaml:"api_key"`
}

// Elasticsearch holds connection parameters for the elastic extension
// adapter.
type Elasticsearch struct {
	Addresses []string `json:"addresses" yaml:"addresses"`
	Username  string   `json:"username" yaml:"username"`
	Password  string   `json:"password" yaml:"password"`
}

// Retry holds the remote-adapter retry policy for transient
// connection failures. Query errors are never retried.
type Retry struct {
	Attempts int           `json:"attempts" yaml:"attempts"`
	Backoff  time.Duration `json:"backoff" yaml:"backoff"`
}

// Config represents the full searchbridge configuration.
type Config struct {
	// DefaultAdapter names the adapter constructed on startup.
	DefaultAdapter string `json:"default_adapter" yaml:"default_adapter"`
	// DefaultLimit applies when a search passes no limit.
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`
	// MaxLimit caps any requested limit.
	MaxLimit int `json:"max_limit" yaml:"max_limit"`
	// CacheTTL is consumed by the caller's result cache; the core
	// only carries it.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	LogLevel string        `json:"log_level" yaml:"log_level"`

	Retry         Retry          `json:"retry" yaml:"retry"`
	Embedded      *Embedded      `json:"embedded" yaml:"embedded"`
	Typesense     *Typesense     `json:"typesense" yaml:"typesense"`
	Meilisearch   *Meilisearch   `json:"meilisearch" yaml:"meilisearch"`
	Elasticsearch *Elasticsearch `json:"elasticsearch" yaml:"elasticsearch"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		DefaultAdapter: "embedded",
		DefaultLimit:   10,
		MaxLimit:       100,
		CacheTTL:       5 * time.Minute,
		LogLevel:       "info",
		Retry:          Retry{Attempts: 3, Backoff: 200 * time.Millisecond},
		Embedded:       &Embedded{StoragePath: "storage/search"},
	}
}

// Load reads configuration from v under the "search" namespace.
func Load(v *viper.Viper) *Config {
	cfg := Default()

	if v.IsSet("search.default_adapter") {
		cfg.DefaultAdapter = v.GetString("search.default_adapter")
	}
	if v.IsSet("search.default_limit") {
		cfg.DefaultLimit = v.GetInt("search.default_limit")
	}
	if v.IsSet("search.max_limit") {
		cfg.MaxLimit = v.GetInt("search.max_limit")
	}
	if v.IsSet("search.cache_ttl") {
		cfg.CacheTTL = v.GetDuration("search.cache_ttl")
	}
	if v.IsSet("search.log_level") {
		cfg.LogLevel = v.GetString("search.log_level")
	}
	if v.IsSet("search.retry.attempts") {
		cfg.Retry.Attempts = v.GetInt("search.retry.attempts")
	}
	if v.IsSet("search.retry.backoff") {
		cfg.Retry.Backoff = v.GetDuration("search.retry.backoff")
	}

	cfg.Embedded = getEmbeddedConfig(v, cfg.Embedded)
	cfg.Typesense = getTypesenseConfig(v)
	cfg.Meilisearch = getMeilisearchConfig(v)
	cfg.Elasticsearch = getElasticsearchConfig(v)

	return cfg
}

// getEmbeddedConfig reads the embedded engine configuration.
func getEmbeddedConfig(v *viper.Viper, def *Embedded) *Embedded {
	if !v.IsSet("search.embedded.storage_path") {
		return def
	}
	return &Embedded{StoragePath: v.GetString("search.embedded.storage_path")}
}

// getTypesenseConfig reads Typesense configuration.
func getTypesenseConfig(v *viper.Viper) *Typesense {
	if !v.IsSet("search.typesense.host") {
		return nil
	}
	return &Typesense{
		Host:     v.GetString("search.typesense.host"),
		Port:     v.GetInt("search.typesense.port"),
		Protocol: v.GetString("search.typesense.protocol"),
		APIKey:   v.GetString("search.typesense.api_key"),
	}
}

// getMeilisearchConfig reads Meilisearch configuration. The flat
// `meilisearch.*` namespace is kept as a fallback for configurations
// predating the `search.*` grouping.
func getMeilisearchConfig(v *viper.Viper) *Meilisearch {
	host := v.GetString("search.meilisearch.host")
	if host == "" {
		host = v.GetString("meilisearch.host")
	}
	if host == "" {
		return nil
	}
	apiKey := v.GetString("search.meilisearch.api_key")
	if apiKey == "" {
		apiKey = v.GetString("meilisearch.api_key")
	}
	return &Meilisearch{Host: host, APIKey: apiKey}
}

// getElasticsearchConfig reads configuration for the elastic
// extension adapter.
func getElasticsearchConfig(v *viper.Viper) *Elasticsearch {
	addresses := v.GetStringSlice("search.elasticsearch.addresses")
	if len(addresses) == 0 {
		return nil
	}
	return &Elasticsearch{
		Addresses: addresses,
		Username:  v.GetString("search.elasticsearch.username"),
		Password:  v.GetString("search.elasticsearch.password"),
	}
}

// ClampLimit applies the default and maximum limits to a requested
// limit.
func (c *Config) ClampLimit(limit int) int {
	if limit <= 0 {
		if c.DefaultLimit > 0 {
			return c.DefaultLimit
		}
		return 10
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
