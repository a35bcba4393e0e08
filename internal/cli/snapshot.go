package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/snapshot"
)

// NewSnapshotCmd creates the snapshot command with subcommands.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Build and inspect the snapshot file",
		Long: `The snapshot is a pre-generated document holding the top repositories of
every category for every sort. While it is fresh, searches are served from it
instead of the GitHub API.`,
	}

	cmd.AddCommand(
		newSnapshotBuildCmd(),
		newSnapshotInfoCmd(),
	)

	return cmd
}

type snapshotBuildOptions struct {
	out      string
	perPage  int
	delay    time.Duration
	compress string
}

func newSnapshotBuildCmd() *cobra.Command {
	var opts snapshotBuildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate a snapshot from the GitHub API",
		Long: `Query every category for each of the stars, forks and updated orders and
write the results to a snapshot file. Failed queries leave an empty list and
do not abort the build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshotBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "output path (default: the configured snapshot source)")
	cmd.Flags().IntVar(&opts.perPage, "per-page", snapshot.DefaultBuildPerPage, "repositories per category and sort")
	cmd.Flags().DurationVar(&opts.delay, "delay", snapshot.DefaultBuildDelay, "pause between API requests")
	cmd.Flags().StringVar(&opts.compress, "compress", "none",
		"compression ("+strings.Join(snapshot.Compressions(), ", ")+")")

	return cmd
}

func runSnapshotBuild(cmd *cobra.Command, opts snapshotBuildOptions) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = a.cfg.Snapshot.Source
		if strings.HasPrefix(out, "http://") || strings.HasPrefix(out, "https://") {
			out = snapshot.DefaultSource
		}
	}
	if opts.compress != "" && opts.compress != "none" && filepath.Ext(out) != "."+opts.compress {
		out += "." + opts.compress
	}

	builder := snapshot.NewBuilder(a.api, a.registry, snapshot.BuildOptions{
		PerPage:   opts.perPage,
		Delay:     opts.delay,
		Generator: "repodash/" + Version,
		Now:       time.Now,
		Progress: func(category string, sort model.SortKey, count int, err error) {
			if err != nil {
				return
			}
			logger.Info("Fetched", logger.Fields{"category": category, "sort": string(sort), "repositories": count})
		},
	})

	logger.Info("Building snapshot", logger.Fields{
		"categories": len(a.registry.Names()),
		"per_page":   opts.perPage,
		"delay":      opts.delay.String(),
	})

	snap, err := builder.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("snapshot build aborted: %w", err)
	}

	if err := snapshot.Write(snap, out, opts.compress); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	fields := logger.Fields{"path": out, "repositories": snap.Count()}
	if info, err := os.Stat(out); err == nil {
		fields["size"] = humanize.Bytes(uint64(info.Size()))
	}
	logger.Success("Snapshot written", fields)
	return nil
}

type snapshotInfoView struct {
	Source      string         `json:"source"`
	Loaded      bool           `json:"loaded"`
	Fresh       bool           `json:"fresh"`
	LoadedAt    *time.Time     `json:"loaded_at,omitempty"`
	LastUpdated *time.Time     `json:"last_updated,omitempty"`
	Format      string         `json:"format_version,omitempty"`
	Generator   string         `json:"generator,omitempty"`
	Records     int            `json:"records"`
	Categories  map[string]int `json:"categories,omitempty"`
}

func newSnapshotInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show snapshot information",
		Long:  "Load the configured snapshot and report its age, freshness and contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			view := snapshotInfoView{Source: a.snapshots.Source()}
			snap, ok := a.snapshots.Load(cmd.Context())
			if ok {
				view.Loaded = true
				view.Fresh = a.snapshots.IsFresh()
				loadedAt := a.snapshots.LoadedAt()
				view.LoadedAt = &loadedAt
				view.Records = snap.Count()
				view.Categories = make(map[string]int, len(snap.Categories))
				for name, sorts := range snap.Categories {
					for _, leaf := range sorts {
						view.Categories[name] += len(leaf)
					}
				}
				if !snap.LastUpdated.IsZero() {
					t := snap.LastUpdated
					view.LastUpdated = &t
				}
				if snap.Metadata != nil {
					view.Format = snap.Metadata.FormatVersion
					view.Generator = snap.Metadata.Generator
				}
			}

			p := newPrinter(cmd.OutOrStdout(), a.registry, a.cfg.Settings.OutputFormat)
			if p.json {
				return p.printJSON(view)
			}
			return printSnapshotInfo(p, view)
		},
	}
}

func printSnapshotInfo(p *printer, view snapshotInfoView) error {
	p.printf("Source: %s\n", view.Source)
	if !view.Loaded {
		p.printf("Status: unavailable\n")
		return nil
	}

	status := "stale"
	if view.Fresh {
		status = "fresh"
	}
	p.printf("Status: %s\n", status)
	if view.LastUpdated != nil {
		p.printf("Last Updated: %s\n", formatAge(*view.LastUpdated))
	}
	if view.Format != "" {
		p.printf("Format: %s\n", view.Format)
	}
	if view.Generator != "" {
		p.printf("Generator: %s\n", view.Generator)
	}
	p.printf("Repositories: %s\n\n", humanize.Comma(int64(view.Records)))

	names := make([]string, 0, len(view.Categories))
	for name := range view.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(p.out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tRECORDS")
	for _, name := range names {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", name, view.Categories[name])
	}
	return tw.Flush()
}
