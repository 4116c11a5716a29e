// Package services holds the playlist candidate engine: strategy resolution,
// seed harvesting, filtering, scoring, distribution and the sonic passes.
package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
	"github.com/ewilliams-labs/cadenza/internal/core/ports"
	"github.com/ewilliams-labs/cadenza/internal/worker"
)

const defaultConcurrency = 8

// Engine computes ordered track lists from declarative intent. It never
// mutates the catalog; materialization is the caller's concern.
type Engine struct {
	catalog     ports.CatalogProvider
	log         zerolog.Logger
	concurrency int
	seedFn      func() int64
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithConcurrency bounds concurrent catalog queries within one run.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithFixedSeed pins the random source, making runs reproducible for tests.
func WithFixedSeed(seed int64) Option {
	return func(e *Engine) { e.seedFn = func() int64 { return seed } }
}

// WithClock overrides the engine clock for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs an Engine over the given catalog.
func NewEngine(catalog ports.CatalogProvider, opts ...Option) *Engine {
	e := &Engine{
		catalog:     catalog,
		log:         zerolog.Nop(),
		concurrency: defaultConcurrency,
		seedFn:      func() int64 { return time.Now().UnixNano() },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runState carries one run's immutable snapshot through the pipeline stages.
// Runs share nothing mutable; concurrent runs only share the catalog handle.
type runState struct {
	id       string
	strategy domain.Strategy
	spec     domain.SeedSpec
	filter   domain.FilterSpec
	params   domain.PlaylistParams
	seeds    SeedSet
	history  []domain.TrackRef // history sub-pool, already history-filtered
	period   string
	rng      *rand.Rand
	now      time.Time
}

// Run executes one playlist computation. An empty result is a valid terminal
// state, not an error; catalog transport failures abort the whole run.
func (e *Engine) Run(ctx context.Context, spec domain.SeedSpec, filter domain.FilterSpec, params domain.PlaylistParams) (domain.Result, error) {
	if err := params.Validate(); err != nil {
		return domain.Result{}, err
	}
	if err := filter.Validate(); err != nil {
		return domain.Result{}, err
	}

	run := &runState{
		id:       uuid.NewString(),
		strategy: resolveStrategy(spec),
		spec:     spec,
		filter:   filter,
		params:   params,
		period:   periodAnytime,
		rng:      rand.New(rand.NewSource(e.seedFn())),
		now:      e.now(),
	}
	if params.UseTimePeriods {
		run.period = currentPeriod(run.now)
	}

	log := e.log.With().
		Str("run_id", run.id).
		Str("strategy", string(run.strategy)).
		Logger()
	log.Info().Msg("playlist run started")

	seeds, err := e.harvestSeeds(ctx, log, spec)
	if err != nil {
		return domain.Result{}, err
	}
	run.seeds = seeds
	log.Debug().
		Int("seed_tracks", len(seeds.Tracks)).
		Int("seed_artists", len(seeds.Artists)).
		Msg("seeds harvested")

	if err := checkMandatorySeeds(run.strategy, spec, seeds); err != nil {
		return domain.Result{}, fmt.Errorf("service: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.Result{}, err
	}

	if e.needsHistory(run) {
		history, err := e.fetchHistory(ctx, run)
		if err != nil {
			return domain.Result{}, err
		}
		run.history = history
		log.Debug().Int("history_tracks", len(history)).Msg("history sub-pool ready")
	}

	var selected []domain.TrackRef
	if run.strategy == domain.StrategySonicJourney {
		selected, err = e.runJourney(ctx, run)
	} else {
		selected, err = e.runRanked(ctx, log, run)
	}
	if err != nil {
		return domain.Result{}, err
	}

	result := domain.Result{
		RunID:       run.id,
		Strategy:    run.strategy,
		Tracks:      selected,
		Title:       buildTitle(run.strategy, run.period, params.CustomTitle, run.now),
		Description: buildDescription(run.strategy, run.period, selected, run.now),
	}
	if result.Empty() {
		log.Info().Msg("no tracks selected")
	} else {
		log.Info().Int("tracks", len(selected)).Msg("playlist run finished")
	}
	return result, nil
}

// runJourney computes the order-significant path and filters it without
// reordering. Scoring, distribution, fallback and smoothing do not apply;
// they would all destroy the chain.
func (e *Engine) runJourney(ctx context.Context, run *runState) ([]domain.TrackRef, error) {
	path, err := e.buildJourneyPath(ctx, run)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := e.buildFilterSnapshot(ctx, path, run.filter)
	if err != nil {
		return nil, err
	}
	return applyFilters(path, snap, run.filter, run.params, run.spec.GenreSeeds, false, run.now), nil
}

// runRanked is the common pipeline: raw pool, filters, scoring, fair-share
// distribution with historical blending, fallback fill, optional smoothing.
func (e *Engine) runRanked(ctx context.Context, log zerolog.Logger, run *runState) ([]domain.TrackRef, error) {
	pool, err := e.buildPool(ctx, run)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("raw_pool", pool.Len()).Msg("candidate pool built")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracks := pool.Tracks()
	snap, err := e.buildFilterSnapshot(ctx, tracks, run.filter)
	if err != nil {
		return nil, err
	}
	filtered := applyFilters(tracks, snap, run.filter, run.params, run.spec.GenreSeeds, run.strategy == domain.StrategyGenre, run.now)
	if run.strategy == domain.StrategyHistorySeeds {
		// The history sub-pool already passed the history filter pair in
		// fetchHistory; the full FilterSpec applies to the seed portion only.
		merged := domain.NewPool()
		merged.AddAll(run.history, stageHistory)
		merged.AddAll(filtered, stageSeeds)
		filtered = merged.Tracks()
	}
	log.Debug().Int("filtered_pool", len(filtered)).Msg("filter pipeline applied")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mainScored := scoreTracks(filtered, run.params, run.rng, run.now)

	var historyScored []domain.ScoredTrack
	if e.blendsHistory(run) {
		historyScored = scoreTracks(run.history, run.params, run.rng, run.now)
	}

	selected := assemble(mainScored, historyScored, run.params)

	if len(selected) < run.params.MaxTracks {
		selected, err = e.fallbackFill(ctx, run, selected)
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if run.params.SonicSmoothing && len(selected) > 2 {
		selected, err = e.smoothOrder(ctx, selected)
		if err != nil {
			return nil, err
		}
	}
	return selected, nil
}

// needsHistory reports whether the run touches a history-sourced sub-pool.
func (e *Engine) needsHistory(run *runState) bool {
	switch run.strategy {
	case domain.StrategyHistorySeeds, domain.StrategySonicHistory:
		return true
	}
	return run.params.HistoricalRatio > 0 || run.params.FallbackMode == domain.FallbackHistory
}

// blendsHistory reports whether the historical-ratio reservation applies:
// non-history strategies only.
func (e *Engine) blendsHistory(run *runState) bool {
	switch run.strategy {
	case domain.StrategyHistorySeeds, domain.StrategySonicHistory:
		return false
	}
	return run.params.HistoricalRatio > 0 && len(run.history) > 0
}

// fetchHistory builds the history sub-pool: lookback window, optional
// time-of-day restriction, then the narrow history filter pair.
func (e *Engine) fetchHistory(ctx context.Context, run *runState) ([]domain.TrackRef, error) {
	tracks, err := e.catalog.HistoryTopTracks(ctx, run.params.HistoryLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("service: fetch history: %w", err)
	}

	if run.params.UseTimePeriods {
		inPeriod := tracks[:0:0]
		for _, t := range tracks {
			if t.LastPlayedAt.IsZero() || hourInPeriod(t.LastPlayedAt.Hour(), run.period) {
				inPeriod = append(inPeriod, t)
			}
		}
		tracks = inPeriod
	}

	return applyHistoryFilters(tracks, run.filter, run.params, run.now), nil
}

// fallbackFill tops up a short selection according to the fallback mode.
// History fills in ranked order from the history sub-pool; Genre fills with
// a random draw from the genre pool; None leaves the list short.
func (e *Engine) fallbackFill(ctx context.Context, run *runState, selected []domain.TrackRef) ([]domain.TrackRef, error) {
	need := run.params.MaxTracks - len(selected)
	if need <= 0 {
		return selected, nil
	}

	var candidates []domain.TrackRef
	switch run.params.FallbackMode {
	case domain.FallbackHistory:
		candidates = run.history
	case domain.FallbackGenre:
		if len(run.spec.GenreSeeds) == 0 {
			return selected, nil
		}
		pool := domain.NewPool()
		results := make([][]domain.TrackRef, len(run.spec.GenreSeeds))
		g := worker.NewGroup(e.concurrency)
		for i, genre := range run.spec.GenreSeeds {
			i, genre := i, genre
			g.Go(ctx, func() error {
				res, err := e.catalog.TracksByGenre(ctx, genre)
				if err != nil {
					return fmt.Errorf("service: fallback genre search %q: %w", genre, err)
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, res := range results {
			pool.AddAll(res, stageGenre)
		}

		genreSnap, err := e.buildFilterSnapshot(ctx, pool.Tracks(), run.filter)
		if err != nil {
			return nil, err
		}
		candidates = applyFilters(pool.Tracks(), genreSnap, run.filter, run.params, run.spec.GenreSeeds, true, run.now)
		run.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	default:
		return selected, nil
	}

	chosen := make(map[string]bool, len(selected))
	for _, t := range selected {
		chosen[t.ID] = true
	}
	for _, t := range candidates {
		if len(selected) >= run.params.MaxTracks {
			break
		}
		if chosen[t.ID] {
			continue
		}
		chosen[t.ID] = true
		selected = append(selected, t)
	}
	return selected, nil
}
