package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"scoop/internal/catalog"
	"scoop/internal/config"
	"scoop/internal/logging"
	"scoop/internal/match"
	"scoop/internal/registry"
	"scoop/internal/resolution"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// app bundles the wired engine components for one command invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *catalog.Store
	snapshot *catalog.Snapshotter
	engine   *catalog.Engine
	matcher  *match.Matcher
	registry *registry.Registry
	workflow *resolution.Service
}

// withApp opens the catalog and runs fn with the fully wired components,
// closing the store afterwards.
func (c *commandContext) withApp(fn func(*app) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "scoop.log")},
	})
	if err != nil {
		return err
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshotter := catalog.NewSnapshotter(store, cfg.SnapshotPath(), logger)
	engine := catalog.NewEngine(store, logger, catalog.WithExporter(snapshotter))
	matcher := match.New(store, cfg, logger)
	workflow := resolution.New(store, engine, logger, resolution.WithInvalidator(matcher))

	return fn(&app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		snapshot: snapshotter,
		engine:   engine,
		matcher:  matcher,
		registry: registry.New(store, cfg, logger),
		workflow: workflow,
	})
}
