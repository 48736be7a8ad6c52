package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardtex/internal/config"
	"github.com/matzehuels/boardtex/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached sheet and tile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config().Cache
			store, err := cfg.Open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			r := newReport(cmd)
			switch s := store.(type) {
			case *cache.FileCache:
				count, _, err := s.Usage()
				if err != nil {
					return fmt.Errorf("scan cache: %w", err)
				}
				if count == 0 {
					r.info("Cache is empty")
					return nil
				}
				if err := s.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				r.success("Cleared %d cached entries", count)
				r.detail("Directory: %s", s.Dir())
			case *cache.RedisCache:
				if err := s.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				r.success("Cleared redis keys under %q", cfg.RedisPrefix)
				r.detail("Server: %s", cfg.RedisAddr)
			default:
				r.info("The %s backend keeps nothing between runs", cfg.Backend)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config().Cache
			switch cfg.Backend {
			case config.BackendRedis:
				fmt.Fprintf(cmd.OutOrStdout(), "redis://%s/%d\n", cfg.RedisAddr, cfg.RedisDB)
			case config.BackendFile:
				dir, err := cfg.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Backend)
			}
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache backend and its size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			w := cmd.OutOrStdout()
			writeKeyValue(w, "Backend", cfg.Cache.Backend)
			writeKeyValue(w, "TTL", cfg.Cache.TTL.String())
			if cfg.File != "" {
				writeKeyValue(w, "Config", cfg.File)
			}
			if cfg.Cache.Backend != config.BackendFile {
				return nil
			}

			dir, err := cfg.Cache.CacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			store, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, size, err := store.Usage()
			if err != nil {
				return fmt.Errorf("scan cache: %w", err)
			}
			writeKeyValue(w, "Directory", dir)
			writeKeyValue(w, "Entries", fmt.Sprintf("%d (%.1f MiB)", count, float64(size)/(1<<20)))
			return nil
		},
	}
}
