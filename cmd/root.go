// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rero/thumbnails/internal/cache"
	"github.com/rero/thumbnails/internal/config"
	"github.com/rero/thumbnails/internal/providers"
	"github.com/rero/thumbnails/internal/resolver"
	"github.com/rero/thumbnails/internal/retry"
	"github.com/rero/thumbnails/internal/server"
	"github.com/rero/thumbnails/internal/watcher"
)

var cfgFile string

// newRootCmd builds the full command tree. A fresh tree per invocation
// keeps flag state from leaking between runs; pflag slice values
// accumulate across repeated Execute calls on a shared command.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "thumbnails",
		Short: "Resolve ISBNs to book cover thumbnails",
		Long: `Thumbnails resolves ISBN identifiers to book cover images by walking
an ordered chain of providers: local files, Open Library, BnF, DNB,
Google Books and more. Results are cached with a TTL and can be served
over HTTP or resolved one-off from the command line.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.thumbnails.yaml)")
	rootCmd.PersistentFlags().String("files-dir", "", "directory with local thumbnail files named <isbn>.<ext>")
	rootCmd.PersistentFlags().String("public-url", "", "external base URL for served thumbnails")
	rootCmd.PersistentFlags().String("cache-type", "memory", "cache backend: memory, pebble or redis")
	rootCmd.PersistentFlags().String("cache-path", "", "path to the pebble cache database")
	rootCmd.PersistentFlags().String("redis-addr", "", "redis address (host:port)")
	rootCmd.PersistentFlags().StringSlice("providers", nil, "ordered provider chain")

	viper.BindPFlag("files_dir", rootCmd.PersistentFlags().Lookup("files-dir"))
	viper.BindPFlag("public_url", rootCmd.PersistentFlags().Lookup("public-url"))
	viper.BindPFlag("cache_type", rootCmd.PersistentFlags().Lookup("cache-type"))
	viper.BindPFlag("cache_path", rootCmd.PersistentFlags().Lookup("cache-path"))
	viper.BindPFlag("redis_addr", rootCmd.PersistentFlags().Lookup("redis-addr"))
	viper.BindPFlag("providers", rootCmd.PersistentFlags().Lookup("providers"))

	serveCmd := newServeCmd()
	serveCmd.Flags().String("listen", "", "listen address (overrides listen_addr)")
	viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen"))

	resolveCmd := newResolveCmd()
	resolveCmd.Flags().Bool("no-cache", false, "bypass the cache for this resolution")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	configInitCmd := newConfigInitCmd()
	configInitCmd.Flags().String("output", "config.yaml", "where to write the config file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(configCmd)
	return rootCmd
}

// Execute builds the command tree and runs it
func Execute() error {
	return newRootCmd().Execute()
}

// buildStack assembles the resolver and its collaborators from the
// loaded configuration. The returned store must be closed by the caller.
func buildStack(ctx context.Context) (*resolver.Resolver, *providers.FilesProvider, cache.Store, error) {
	cfg := config.AppConfig

	store, err := cache.Open(ctx, cfg.CacheType, cfg.CachePath, cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}

	exec := retry.NewExecutor(cfg.Retry)
	fetcher := providers.NewFetcher(cfg.HTTPTimeout, exec, cfg.OutboundRPS, cfg.OutboundBurst)
	deps := providers.Deps{
		Fetcher:      fetcher,
		FilesDir:     cfg.FilesDir,
		PublicURL:    cfg.PublicURL,
		MinDimension: cfg.MinDimension,
	}

	chain, err := providers.NewRegistry().Build(cfg.Providers, deps)
	if err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("failed to build provider chain: %w", err)
	}

	files := providers.NewFilesProvider(cfg.FilesDir, cfg.PublicURL)
	res := resolver.New(chain, store, fetcher, cfg.CacheTTL, cfg.MinDimension)
	return res, files, store, nil
}

// newServeCmd runs the HTTP service.
func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the thumbnail resolution HTTP service",
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig
		ctx := cmd.Context()

		res, files, store, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		// Local thumbnail changes make cached resolutions stale.
		if cfg.FilesDir != "" {
			w := watcher.New(func(isbns []string) {
				for _, isbn := range isbns {
					store.Invalidate(context.Background(), cache.Key(isbn))
				}
			}, 0)
			if err := w.Start(cfg.FilesDir); err != nil {
				log.Printf("[WARN] cannot watch %s: %v", cfg.FilesDir, err)
			} else {
				defer w.Stop()
			}
		}

		srv := server.NewServer(server.Options{
			Resolver:       res,
			Files:          files,
			MaxAge:         cfg.HTTPCacheMaxAge,
			RateLimitRPS:   cfg.ServerRPS,
			RateLimitBurst: cfg.ServerBurst,
		})
		return srv.Start(cfg.ListenAddr)
	}
	return c
}

// newResolveCmd performs a one-shot resolution.
func newResolveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "resolve <isbn>",
		Short: "Resolve a single ISBN and print the thumbnail URL",
		Args:  cobra.ExactArgs(1),
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		noCache, _ := cmd.Flags().GetBool("no-cache")
		ctx := cmd.Context()

		res, _, store, err := buildStack(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := res.Resolve(ctx, args[0], !noCache)
		if err != nil {
			var nf *resolver.NotFoundError
			switch {
			case errors.Is(err, resolver.ErrInvalidIdentifier):
				return fmt.Errorf("invalid ISBN: %s", args[0])
			case errors.As(err, &nf):
				for _, f := range nf.Failures {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Provider, f.Kind)
				}
				return fmt.Errorf("no thumbnail found for %s", args[0])
			default:
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (provider: %s", result.URL, result.Provider)
		if result.FromCache {
			fmt.Fprint(cmd.OutOrStdout(), ", cached")
		}
		fmt.Fprintln(cmd.OutOrStdout(), ")")
		return nil
	}
	return c
}

// newConfigInitCmd writes a starter config file with the effective settings.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			if err := config.SaveConfigToFile(config.AppConfig, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".thumbnails")
	}

	viper.SetEnvPrefix("THUMBS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	if err := config.InitConfig(); err != nil {
		cobra.CheckErr(err)
	}
}
