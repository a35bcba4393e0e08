package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/model"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the response cache",
		Long: `Show statistics of the in-memory response cache and clear it.

The cache lives for the duration of one process, so these commands are most
useful together with --warm, or from inside 'repodash browse' (press i).`,
	}

	cmd.AddCommand(
		newCacheInfoCmd(),
		newCacheClearCmd(),
	)

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	var warm []string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the cache configuration and hit statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			warmCache(cmd.Context(), a, warm)

			p := newPrinter(cmd.OutOrStdout(), a.registry, a.cfg.Settings.OutputFormat)
			return p.printCacheInfo(a.mediator.CacheInfo())
		},
	}

	cmd.Flags().StringSliceVar(&warm, "warm", nil, "search these categories twice before reporting")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var warm []string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached responses",
		Long:  "Drop every cached response and forget the loaded snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			warmCache(cmd.Context(), a, warm)

			result := a.mediator.ClearCache()
			p := newPrinter(cmd.OutOrStdout(), a.registry, a.cfg.Settings.OutputFormat)
			return p.printCleanResult(result)
		},
	}

	cmd.Flags().StringSliceVar(&warm, "warm", nil, "search these categories before clearing")
	return cmd
}

// warmCache fills the cache by searching the first page of each category twice.
// The second lookup is served from the cache.
func warmCache(ctx context.Context, a *app, categories []string) {
	for _, name := range categories {
		name = strings.TrimSpace(name)
		for i := 0; i < 2; i++ {
			if _, err := a.mediator.Search(ctx, name, model.SortStars, 1); err != nil {
				logger.Warn("Warm-up search failed", logger.Fields{"category": name, "error": err.Error()})
				break
			}
		}
	}
}
