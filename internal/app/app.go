package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/holdings/internal/analytics"
	"github.com/newthinker/holdings/internal/cache"
	"github.com/newthinker/holdings/internal/config"
	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/identity"
	"github.com/newthinker/holdings/internal/logger"
	"github.com/newthinker/holdings/internal/metrics"
	"github.com/newthinker/holdings/internal/storage/blob"
	"github.com/newthinker/holdings/internal/store"
	"go.uber.org/zap"
)

// App is the main application orchestrator. It owns the loaded snapshot
// store and the engine computing views over it.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry

	mu       sync.RWMutex
	store    *store.Store
	engine   *analytics.Engine
	cache    *cache.Cache
	loadedAt time.Time
}

// New creates a new App instance. reg may be nil.
func New(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) *App {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		cfg:     cfg,
		logger:  log,
		metrics: reg,
	}
}

// Load reads the snapshot documents and the sector table and builds a
// fresh engine. A failed load keeps the previous engine.
func (a *App) Load(ctx context.Context) error {
	start := time.Now()

	bucket, err := blob.Open(a.bucketConfig())
	if err != nil {
		return core.WrapError(core.ErrLoadFailed, fmt.Errorf("opening data source: %w", err))
	}

	s, err := store.NewLoader(bucket, a.cfg.Data.Prefix, logger.Named(a.logger, "loader")).Load(ctx)
	if err != nil {
		return err
	}

	table, err := a.loadSectorTable(ctx, bucket)
	if err != nil {
		return core.WrapError(core.ErrLoadFailed, err)
	}

	var observer cache.Observer
	var recorder analytics.Recorder
	if a.metrics != nil {
		observer, recorder = a.metrics, a.metrics
		a.metrics.SetLoaded(len(s.Active()), s.SnapshotCount())
	}

	c := cache.New(observer)
	opts := []analytics.Option{
		analytics.WithCache(c),
		analytics.WithLogger(logger.Named(a.logger, "engine")),
	}
	if recorder != nil {
		opts = append(opts, analytics.WithRecorder(recorder))
	}
	resolver := identity.NewResolver(table)
	engine := analytics.New(s, resolver, a.cfg.Analytics, opts...)

	a.mu.Lock()
	a.store, a.engine, a.cache = s, engine, c
	a.loadedAt = time.Now()
	a.mu.Unlock()

	latest, _ := engine.Index().SmartLatest(a.cfg.Analytics.MinCoveragePercent)
	a.logger.Info("holdings loaded",
		zap.Int("investors", s.Len()),
		zap.Int("snapshots", s.SnapshotCount()),
		zap.Int("quarters", len(engine.Index().All())),
		zap.Stringer("latest", latest),
		zap.Int("sectors", len(table.Sectors)),
		zap.String("locale", resolver.Locale()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Engine returns the current engine, or core.ErrMissingData before the
// first successful Load.
func (a *App) Engine() (*analytics.Engine, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.engine == nil {
		return nil, core.WrapError(core.ErrMissingData, fmt.Errorf("holdings not loaded"))
	}
	return a.engine, nil
}

// GetStats returns load and cache statistics.
func (a *App) GetStats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"loaded": a.engine != nil,
		"source": a.cfg.Data.Source,
	}
	if a.engine == nil {
		return stats
	}

	hits, misses := a.cache.Stats()
	stats["investors"] = a.store.Len()
	stats["snapshots"] = a.store.SnapshotCount()
	stats["cache_entries"] = a.cache.Len()
	stats["cache_hits"] = hits
	stats["cache_misses"] = misses
	stats["loaded_at"] = a.loadedAt
	return stats
}

func (a *App) bucketConfig() blob.Config {
	d := a.cfg.Data
	return blob.Config{
		Type: d.Source,
		Path: d.Path,
		S3: blob.S3Config{
			Bucket:    d.S3.Bucket,
			Endpoint:  d.S3.Endpoint,
			Region:    d.S3.Region,
			AccessKey: d.S3.AccessKey,
			SecretKey: d.S3.SecretKey,
			Prefix:    d.S3.Prefix,
		},
	}
}

// loadSectorTable reads the table from the local filesystem, or with the
// s3 source from the data bucket.
func (a *App) loadSectorTable(ctx context.Context, bucket blob.Bucket) (identity.SectorTable, error) {
	path := a.cfg.Data.SectorTable
	if path == "" || a.cfg.Data.Source != "s3" {
		return identity.LoadTable(path)
	}

	data, err := bucket.Read(ctx, path)
	if err != nil {
		return identity.SectorTable{}, fmt.Errorf("reading sector table: %w", err)
	}
	return identity.ParseTable(data)
}
