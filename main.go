package main

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"discussionblog/core"
	"discussionblog/internal/blog"
	"discussionblog/internal/cache"
	"discussionblog/internal/config"
	"discussionblog/internal/fetcher"
	"discussionblog/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("pretty", false, "human-readable logs instead of JSON")
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"pretty":    "log.pretty",
	"category":  "query.category",
	"page-size": "query.page_size",
	"body":      "query.include_body",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func initConfig(cmd *cobra.Command) error {
	v := config.New(cfgFile)
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	return cfg.Validate()
}

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Read a blog's posts from GitHub Discussions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newService wires the transport, page fetcher and optional Redis layer.
// The returned func releases the Redis connection.
func newService(cfg *config.Config) (*blog.Service, *core.API, func(), error) {
	api, err := core.NewApi(cfg.Github.Owner, cfg.Github.Repo, cfg.Github.Token, core.Options{
		GraphQLURL:        cfg.Github.GraphQLURL,
		RESTURL:           cfg.Github.RESTURL,
		RequestsPerSecond: cfg.Github.RequestsPerSecond,
		Timeout:           cfg.Github.Timeout,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	pages := fetcher.NewGitHubFetcher(api, api.Owner(), api.Repo())

	var store cache.Store
	cleanup := func() {}
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
		store = cache.NewRedisStore(client, cfg.CachePrefix(), cfg.Cache.TTL)
		cleanup = func() { _ = client.Close() }
	}

	return blog.NewService(pages, store), api, cleanup, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
