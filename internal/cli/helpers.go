package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/glorpus-work/repodash/internal/logger"
	"github.com/glorpus-work/repodash/pkg/cache"
	"github.com/glorpus-work/repodash/pkg/category"
	"github.com/glorpus-work/repodash/pkg/config"
	"github.com/glorpus-work/repodash/pkg/github"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/retrieval"
	"github.com/glorpus-work/repodash/pkg/search"
	"github.com/glorpus-work/repodash/pkg/snapshot"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// app bundles the components every data command needs.
type app struct {
	cfg       *config.Config
	registry  *category.Registry
	api       github.Client
	remote    *search.Client
	snapshots *snapshot.Store
	mediator  *retrieval.Mediator
}

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	logger.InitLogger(cfg.Settings.LogLevel, cfg.Settings.OutputFormat == "json")
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}
	return config.GetDefaultConfigPath()
}

// loadApp wires the retrieval stack from the configuration.
func loadApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to build category registry: %w", err)
	}

	credentials := cfg.Authenticator()
	if credentials == nil {
		logger.Debug("No GitHub token configured, unauthenticated rate limits apply")
	} else {
		logger.Debug("Using GitHub credentials", logger.Fields{"type": string(credentials.Type())})
	}

	api := github.NewHTTPClient(github.Options{
		BaseURL:   cfg.API.BaseURL,
		Auth:      credentials,
		Timeout:   cfg.API.HTTPTimeout,
		UserAgent: "repodash/" + Version,
	})

	store, err := cache.New[[]model.Repository](cfg.Cache.TTL, cache.WithDisabled(!cfg.Cache.Enabled))
	if err != nil {
		return nil, fmt.Errorf("failed to create response cache: %w", err)
	}

	remote := search.NewClient(api, registry, store, search.Options{
		PerPage:             cfg.Search.PerPage,
		TrendingDays:        cfg.Search.TrendingDays,
		TrendingConcurrency: cfg.Search.TrendingConcurrency,
	})

	snapshots := snapshot.NewStore(snapshot.Options{
		Source:     cfg.Snapshot.Source,
		MaxAge:     cfg.SnapshotMaxAge(),
		HTTPClient: &http.Client{Timeout: cfg.API.HTTPTimeout},
		Now:        time.Now,
	})

	mediator := retrieval.New(remote, snapshots, retrieval.Options{
		SnapshotFirst: cfg.Snapshot.Enabled,
		PerPage:       cfg.Search.PerPage,
	})

	return &app{
		cfg:       cfg,
		registry:  registry,
		api:       api,
		remote:    remote,
		snapshots: snapshots,
		mediator:  mediator,
	}, nil
}

func colorEnabled() bool {
	return NoColor == nil || !*NoColor
}
