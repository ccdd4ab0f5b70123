package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartmotion/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// clearer is implemented by the networked cache backends.
type clearer interface {
	Clear(ctx context.Context) (int, error)
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached scenes and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadedConfig()
			if err != nil {
				return err
			}
			store, err := newCache(cmd.Context(), cfg.Cache, false)
			if err != nil {
				return err
			}
			defer store.Close()

			out := c.printer()
			var count int
			switch s := store.(type) {
			case *cache.FileCache:
				count, err = s.Clear()
				if err == nil {
					defer out.detail("Directory: %s", s.Dir())
				}
			case clearer:
				count, err = s.Clear(cmd.Context())
			default:
				out.info("Cache is disabled")
				return nil
			}
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			out.success("Cleared %d cached entries", count)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadedConfig()
			if err != nil {
				return err
			}
			dir := cfg.Cache.Dir
			if dir == "" {
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}
