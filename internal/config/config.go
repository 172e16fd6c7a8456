// Package config loads the application configuration from a YAML file and the
// environment. Environment variables win over the file: github.token is read from
// GITHUB_TOKEN, query.page_size from QUERY_PAGE_SIZE, and so on.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Github struct {
		Owner             string        `mapstructure:"owner"`
		Repo              string        `mapstructure:"repo"`
		Token             string        `mapstructure:"token"`
		GraphQLURL        string        `mapstructure:"graphql_url"`
		RESTURL           string        `mapstructure:"rest_url"`
		RequestsPerSecond float64       `mapstructure:"requests_per_second"`
		Timeout           time.Duration `mapstructure:"timeout"`
	} `mapstructure:"github"`
	Query struct {
		Category    string `mapstructure:"category"`
		PageSize    int    `mapstructure:"page_size"`
		IncludeBody bool   `mapstructure:"include_body"`
	} `mapstructure:"query"`
	Cache struct {
		RedisAddr string        `mapstructure:"redis_addr"`
		RedisDB   int           `mapstructure:"redis_db"`
		Prefix    string        `mapstructure:"prefix"`
		TTL       time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`
	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.graphql_url", "")
	v.SetDefault("github.rest_url", "")
	v.SetDefault("github.requests_per_second", 0)
	v.SetDefault("github.timeout", 30*time.Second)

	v.SetDefault("query.category", "")
	v.SetDefault("query.page_size", 100)
	v.SetDefault("query.include_body", false)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.prefix", "discussionblog")
	v.SetDefault("cache.ttl", time.Duration(0))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// New returns a viper instance with defaults and environment binding applied.
// When cfgFile is empty, config.yaml is looked up in the working directory.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration. A missing config.yaml is not an error, a missing
// explicit cfgFile is.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Github.Owner == "" {
		return errors.New("github.owner is required")
	}
	if c.Github.Repo == "" {
		return errors.New("github.repo is required")
	}
	if c.Github.Token == "" {
		return errors.New("github.token is required (set GITHUB_TOKEN)")
	}
	return nil
}

// CachePrefix namespaces shared cache keys by repository.
func (c *Config) CachePrefix() string {
	return fmt.Sprintf("%s:%s/%s:", c.Cache.Prefix, c.Github.Owner, c.Github.Repo)
}
