package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultAdapter != "embedded" {
		t.Errorf("default adapter %q, want embedded", cfg.DefaultAdapter)
	}
	if cfg.DefaultLimit != 10 || cfg.MaxLimit != 100 {
		t.Errorf("limits %d/%d, want 10/100", cfg.DefaultLimit, cfg.MaxLimit)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.Backoff != 200*time.Millisecond {
		t.Errorf("retry %+v", cfg.Retry)
	}
	if cfg.Embedded == nil || cfg.Embedded.StoragePath == "" {
		t.Error("embedded defaults missing")
	}
	if cfg.Typesense != nil || cfg.Meilisearch != nil || cfg.Elasticsearch != nil {
		t.Error("remote engines must default to unconfigured")
	}
}

func TestLoad(t *testing.T) {
	v := viper.New()
	v.Set("search.default_adapter", "typesense")
	v.Set("search.default_limit", 25)
	v.Set("search.max_limit", 200)
	v.Set("search.log_level", "debug")
	v.Set("search.retry.attempts", 5)
	v.Set("search.retry.backoff", "1s")
	v.Set("search.embedded.storage_path", "/var/lib/app/search")
	v.Set("search.typesense.host", "ts.internal")
	v.Set("search.typesense.port", 9108)
	v.Set("search.typesense.protocol", "https")
	v.Set("search.typesense.api_key", "ts-key")
	v.Set("search.meilisearch.host", "http://meili.internal:7700")
	v.Set("search.meilisearch.api_key", "meili-key")
	v.Set("search.elasticsearch.addresses", []string{"http://es1:9200", "http://es2:9200"})
	v.Set("search.elasticsearch.username", "elastic")

	cfg := Load(v)

	if cfg.DefaultAdapter != "typesense" {
		t.Errorf("default adapter %q", cfg.DefaultAdapter)
	}
	if cfg.DefaultLimit != 25 || cfg.MaxLimit != 200 {
		t.Errorf("limits %d/%d", cfg.DefaultLimit, cfg.MaxLimit)
	}
	if cfg.Retry.Attempts != 5 || cfg.Retry.Backoff != time.Second {
		t.Errorf("retry %+v", cfg.Retry)
	}
	if cfg.Embedded.StoragePath != "/var/lib/app/search" {
		t.Errorf("storage path %q", cfg.Embedded.StoragePath)
	}
	if cfg.Typesense == nil || cfg.Typesense.URL() != "https://ts.internal:9108" {
		t.Errorf("typesense %+v", cfg.Typesense)
	}
	if cfg.Meilisearch == nil || cfg.Meilisearch.APIKey != "meili-key" {
		t.Errorf("meilisearch %+v", cfg.Meilisearch)
	}
	if cfg.Elasticsearch == nil || len(cfg.Elasticsearch.Addresses) != 2 {
		t.Errorf("elasticsearch %+v", cfg.Elasticsearch)
	}
}

func TestLoadDefaultsWhenUnset(t *testing.T) {
	cfg := Load(viper.New())
	if cfg.DefaultAdapter != "embedded" {
		t.Errorf("default adapter %q, want embedded", cfg.DefaultAdapter)
	}
	if cfg.Typesense != nil {
		t.Error("typesense must stay unconfigured")
	}
}

func TestLoadMeilisearchLegacyNamespace(t *testing.T) {
	v := viper.New()
	v.Set("meilisearch.host", "http://meili.internal:7700")
	v.Set("meilisearch.api_key", "legacy-key")

	cfg := Load(v)
	if cfg.Meilisearch == nil {
		t.Fatal("legacy namespace ignored")
	}
	if cfg.Meilisearch.Host != "http://meili.internal:7700" || cfg.Meilisearch.APIKey != "legacy-key" {
		t.Errorf("got %+v", cfg.Meilisearch)
	}

	// The grouped namespace wins when both are present.
	v.Set("search.meilisearch.host", "http://meili.new:7700")
	cfg = Load(v)
	if cfg.Meilisearch.Host != "http://meili.new:7700" {
		t.Errorf("grouped namespace must win, got %q", cfg.Meilisearch.Host)
	}
}

func TestTypesenseURLDefaults(t *testing.T) {
	ts := &Typesense{Host: "localhost"}
	if got := ts.URL(); got != "http://localhost:8108" {
		t.Errorf("got %q", got)
	}
}

func TestClampLimit(t *testing.T) {
	cfg := &Config{DefaultLimit: 10, MaxLimit: 100}

	cases := []struct {
		in, want int
	}{
		{0, 10},
		{-5, 10},
		{42, 42},
		{100, 100},
		{101, 100},
	}
	for _, tc := range cases {
		if got := cfg.ClampLimit(tc.in); got != tc.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	zero := &Config{}
	if got := zero.ClampLimit(0); got != 10 {
		t.Errorf("zero config ClampLimit(0) = %d, want 10", got)
	}
	if got := zero.ClampLimit(5000); got != 5000 {
		t.Errorf("no max limit must pass through, got %d", got)
	}
}
