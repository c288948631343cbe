// Package app assembles the service from configuration so the binary
// and tests share one composition root.
package app

import (
	"context"
	"fmt"

	"github.com/starsign-web/starsign/internal/config"
	"github.com/starsign-web/starsign/internal/feed"
	"github.com/starsign-web/starsign/internal/httpapi"
	"github.com/starsign-web/starsign/internal/observability"
	"github.com/starsign-web/starsign/internal/submissions"
)

type BuildResult struct {
	Config    config.Config
	API       *httpapi.Server
	Store     submissions.Store
	StoreMode string
	Hub       *feed.Hub
	Metrics   *observability.Metrics

	// Cleanup should be called on shutdown to release external resources
	// (database handles).
	Cleanup func() error
}

// Build wires metrics, the submission store, the live feed hub, and the
// API server from cfg.
func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, storeMode, err := submissions.NewStore(ctx, submissions.Options{
		Backend:      cfg.StoreBackend,
		DatabaseURL:  cfg.DatabaseURL,
		FilePath:     cfg.StoreFilePath,
		SQLitePath:   cfg.StoreSQLitePath,
		RetentionCap: cfg.RetentionCap,
	})
	if err != nil {
		return nil, fmt.Errorf("submission store init failed: %w", err)
	}

	hub := feed.NewHub()
	api := httpapi.New(cfg, store, storeMode, hub, metrics)

	return &BuildResult{
		Config:    cfg,
		API:       api,
		Store:     store,
		StoreMode: storeMode,
		Hub:       hub,
		Metrics:   metrics,
		Cleanup:   store.Close,
	}, nil
}
