// Package analytics derives cross-investor signals from quarterly holdings
// snapshots: momentum shifts, exits, discoveries, capital flows, sector
// rollups and concentration.
package analytics

import (
	"time"

	"github.com/newthinker/holdings/internal/cache"
	"github.com/newthinker/holdings/internal/concentration"
	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/differ"
	"github.com/newthinker/holdings/internal/identity"
	"github.com/newthinker/holdings/internal/quarter"
	"github.com/newthinker/holdings/internal/store"
	"go.uber.org/zap"
)

// View names, used for cache keys and metrics labels.
const (
	ViewMomentum      = "momentum"
	ViewExits         = "exits"
	ViewDiscoveries   = "discoveries"
	ViewBalance       = "balance"
	ViewSectorFlows   = "sector_flows"
	ViewTopSectors    = "top_sectors"
	ViewConcentration = "concentration"
)

// Config holds the engine's policy knobs.
type Config struct {
	MinCoveragePercent float64                  `mapstructure:"min_coverage_percent"`
	NeutralityBand     float64                  `mapstructure:"neutrality_band"`
	Concentration      concentration.Thresholds `mapstructure:"concentration"`
	TopNSectors        int                      `mapstructure:"top_n_sectors"`
	TopNConcentration  int                      `mapstructure:"top_n_concentration"`
}

// DefaultConfig returns the default policy.
func DefaultConfig() Config {
	return Config{
		MinCoveragePercent: quarter.DefaultMinCoveragePercent,
		NeutralityBand:     0.01,
		Concentration:      concentration.DefaultThresholds(),
		TopNSectors:        10,
		TopNConcentration:  20,
	}
}

// Recorder receives engine measurements.
type Recorder interface {
	RecordView(view string, seconds float64)
	RecordUnclassified(count int)
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache makes the engine memoize into c instead of a private cache.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// Engine computes the derived views. Its inputs are immutable, so the only
// shared mutable state is the cache, which is safe for concurrent use.
type Engine struct {
	store    *store.Store
	index    *quarter.Index
	resolver *identity.Resolver
	scorer   *concentration.Scorer
	cache    *cache.Cache
	cfg      Config
	logger   *zap.Logger
	recorder Recorder
}

// New creates an engine over s. The quarter index is derived from s.
func New(s *store.Store, resolver *identity.Resolver, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		index:    quarter.NewIndex(s),
		resolver: resolver,
		scorer:   concentration.NewScorer(cfg.Concentration),
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.New(nil)
	}
	if e.resolver == nil {
		e.resolver = identity.NewResolver(identity.SectorTable{})
	}
	return e
}

// Index returns the quarter index the engine works from.
func (e *Engine) Index() *quarter.Index {
	return e.index
}

// compute memoizes fn under the view name and params, timing actual
// computations.
func compute[T any](e *Engine, view string, params []any, fn func() T) T {
	key := cache.Key(view, params...)
	return cache.Memo(e.cache, key, func() T {
		start := time.Now()
		out := fn()
		elapsed := time.Since(start).Seconds()

		e.logger.Debug("view computed",
			zap.String("view", view),
			zap.String("key", key),
			zap.Float64("seconds", elapsed),
		)
		if e.recorder != nil {
			e.recorder.RecordView(view, elapsed)
		}
		return out
	})
}

// transition is one investor's change into a reported quarter.
type transition struct {
	quarter  core.Quarter
	snapshot core.Snapshot
	records  []differ.Record
}

// diff compares the investor's snapshot at q with their own last report
// before q. The bool is false when the investor did not report at q.
func (e *Engine) diff(slug string, q core.Quarter) (transition, bool) {
	cur, ok := e.store.At(slug, q)
	if !ok {
		return transition{}, false
	}
	records := cache.Memo(e.cache, cache.Key("diff", slug, q), func() []differ.Record {
		if prev, ok := e.store.Before(slug, q); ok {
			return differ.Diff(&prev, cur)
		}
		return differ.Diff(nil, cur)
	})
	return transition{quarter: q, snapshot: cur, records: records}, true
}

// transitions returns the investor's transitions into each window quarter
// they reported in, oldest first.
func (e *Engine) transitions(slug string, w Window) []transition {
	var out []transition
	for i := len(w.Quarters) - 1; i >= 0; i-- {
		if t, ok := e.diff(slug, w.Quarters[i]); ok {
			out = append(out, t)
		}
	}
	return out
}

// investors returns the active investors, logging the ones excluded for
// having no data.
func (e *Engine) investors() []string {
	active := e.store.Active()
	if skipped := e.store.Len() - len(active); skipped > 0 {
		e.logger.Debug("investors without snapshots excluded", zap.Int("count", skipped))
	}
	return active
}
