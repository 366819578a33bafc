package tracker

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Config holds every knob the engine uses. There is no implicit global
// state: construct one of these and hand it to NewEngine.
type Config struct {
	// SampleSize is how many recent uploads feed the channel baseline.
	SampleSize int
	// LookbackHours is the maximum upload age eligible for classification.
	LookbackHours int
	// Threshold is the outlier multiplier over the channel average.
	Threshold float64
	// TopicKeywords, when non-empty, switches classification to topic mode.
	TopicKeywords []string
	// RetentionDays is how long persisted records are kept before archival.
	RetentionDays int
	// TopResults is how many ranked videos the cycle result highlights.
	TopResults int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		SampleSize:    20,
		LookbackHours: 168,
		Threshold:     1.5,
		RetentionDays: 7,
		TopResults:    10,
	}
}

// Engine runs one tracking cycle at a time: retention sweep, per-channel
// baseline and classification, cross-channel ranking, dedup against the
// store, and sync of the survivors. All state is local to a single Run call;
// the caller's scheduler is responsible for not overlapping cycles.
type Engine struct {
	cfg      Config
	platform VideoPlatform
	store    RecordStore
	now      func() time.Time
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(cfg Config, platform VideoPlatform, store RecordStore) *Engine {
	return &Engine{
		cfg:      cfg,
		platform: platform,
		store:    store,
		now:      time.Now,
	}
}

// ChannelStats summarizes one channel's contribution to a cycle.
type ChannelStats struct {
	// Baseline is the channel's computed baseline for this cycle.
	Baseline ChannelBaseline
	// Sampled is how many uploads were fetched for the baseline.
	Sampled int
	// Outliers is how many videos the channel contributed to the cycle.
	Outliers int
}

// CycleResult reports the outcome of one tracking cycle.
type CycleResult struct {
	// RunID uniquely identifies this cycle run.
	RunID string
	// StartedAt is the cycle reference time; every age comparison in the
	// cycle is made against it.
	StartedAt time.Time
	// Channels holds per-channel statistics in processing order.
	Channels []ChannelStats
	// ChannelsSkipped counts channels dropped due to resolution failures.
	ChannelsSkipped int
	// Archived is the number of records expired by the retention sweep.
	Archived int
	// Ranked is the full candidate list sorted by outlier score descending.
	Ranked []ClassifiedVideo
	// DuplicatesSkipped counts candidates already present in the store.
	DuplicatesSkipped int
	// Written and Attempted report the sync writer outcome.
	Written   int
	Attempted int
	// Synced is true when the writer succeeded (at least one write when
	// there was anything to write).
	Synced bool
}

// Top returns the leading ranked videos for reporting, bounded by the
// configured TopResults.
func (r *CycleResult) Top(n int) []ClassifiedVideo {
	return TopN(r.Ranked, n)
}

// Run executes one full tracking cycle over the given channels. It aborts
// only when no channels are configured; every other failure degrades to
// partial results.
func (e *Engine) Run(ctx context.Context, channels []ChannelRef) (*CycleResult, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	now := e.now().UTC()
	res := &CycleResult{
		RunID:     uuid.NewString(),
		StartedAt: now,
	}

	// Expire stale records first so dedup sees the post-sweep store.
	res.Archived = e.sweepExpired(ctx, now)

	opts := ClassifyOptions{
		LookbackHours: e.cfg.LookbackHours,
		Threshold:     e.cfg.Threshold,
		Keywords:      e.cfg.TopicKeywords,
	}

	var candidates []ClassifiedVideo
	for _, ch := range channels {
		stats, classified, err := e.processChannel(ctx, ch, now, opts)
		if err != nil {
			log.Printf("tracker: skipping channel %s: %v", ch, err)
			res.ChannelsSkipped++
			continue
		}
		res.Channels = append(res.Channels, *stats)
		candidates = append(candidates, classified...)
	}

	res.Ranked = Rank(candidates)

	fresh, skipped := Dedup(res.Ranked, e.knownURLs(ctx))
	res.DuplicatesSkipped = skipped

	res.Written, res.Attempted, res.Synced = e.writeRecords(ctx, fresh, now)

	return res, nil
}

// processChannel computes one channel's baseline and classifies its recent
// uploads. Resolution failures are returned to the caller; fetch failures
// degrade to partial data.
func (e *Engine) processChannel(ctx context.Context, ch ChannelRef, now time.Time, opts ClassifyOptions) (*ChannelStats, []ClassifiedVideo, error) {
	info, err := e.platform.ResolveChannel(ctx, ch.Identifier)
	if err != nil {
		return nil, nil, err
	}

	ids, err := e.platform.ListRecentUploads(ctx, info.UploadsPlaylistID, int64(e.cfg.SampleSize))
	if err != nil {
		log.Printf("tracker: list uploads for %s: %v", info.Name, err)
	}

	samples, err := e.platform.FetchVideoDetails(ctx, ids)
	if err != nil {
		// Failed batches were dropped by the client; keep the partial data.
		log.Printf("tracker: fetch details for %s: %v", info.Name, err)
	}

	average := AverageViews(samples)
	baseline := ChannelBaseline{
		ChannelID:    info.ID,
		Name:         info.Name,
		AverageViews: average,
		SampleCount:  len(samples),
	}

	classified := Classify(now, info.Name, samples, average, opts)

	return &ChannelStats{
		Baseline: baseline,
		Sampled:  len(samples),
		Outliers: len(classified),
	}, classified, nil
}

// knownURLs loads the dedup key set from the store. A listing failure is
// treated as an empty known-set so the cycle can continue; that trade
// accepts the risk of duplicate writes over aborting.
func (e *Engine) knownURLs(ctx context.Context) map[string]struct{} {
	records, err := e.store.ListRecords(ctx)
	if err != nil {
		log.Printf("tracker: store listing failed, proceeding without dedup: %v", err)
		return map[string]struct{}{}
	}
	return KnownURLs(records)
}
