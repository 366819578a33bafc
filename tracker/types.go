// Package tracker implements the outlier scoring and sync-reconciliation
// engine: per-channel baselines, outlier classification, topic filtering,
// cross-channel ranking, deduplication against the persisted store, and
// retention expiry. All network access happens behind the VideoPlatform and
// RecordStore interfaces.
package tracker

import (
	"context"
	"errors"
	"math"
	"time"
)

// Sentinel errors for cycle execution.
var (
	// ErrNoChannels indicates that no channels are configured to track.
	ErrNoChannels = errors.New("tracker: no channels configured")
)

// VideoSample contains raw metadata for a single video as fetched from the
// platform. A zero PublishedAt means the publish timestamp is unknown.
type VideoSample struct {
	// ID is the platform video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`
	// Title is the video title.
	Title string `json:"title"`
	// PublishedAt is when the video was published. Zero if unknown.
	PublishedAt time.Time `json:"published_at"`
	// Views is the view count at fetch time.
	Views int64 `json:"views"`
	// Likes is the like count at fetch time.
	Likes int64 `json:"likes"`
	// Comments is the comment count at fetch time.
	Comments int64 `json:"comments"`
	// URL is the canonical watch URL. It is the dedup key for sync.
	URL string `json:"url"`
	// Thumbnail is the URL of the video thumbnail, if any.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// ChannelBaseline holds a channel's computed view average for one cycle.
// Baselines are recomputed every cycle and never persisted.
type ChannelBaseline struct {
	// ChannelID is the platform channel ID.
	ChannelID string `json:"channel_id"`
	// Name is the channel display name.
	Name string `json:"name"`
	// AverageViews is the mean view count over the sampled uploads.
	AverageViews float64 `json:"average_views"`
	// SampleCount is how many uploads went into the average.
	SampleCount int `json:"sample_count"`
}

// ClassifiedVideo is a VideoSample that passed classification, enriched with
// the channel context and the computed scoring fields. The numeric fields
// hold raw values; rounding is presentation-only and exposed through the
// Display accessors so ranking always compares unrounded scores.
type ClassifiedVideo struct {
	VideoSample

	// ChannelName is the display name of the channel the video belongs to.
	ChannelName string `json:"channel_name"`
	// ChannelAverage is the channel's baseline average at classification time.
	ChannelAverage float64 `json:"channel_average"`
	// OutlierScore is views divided by the channel average (0 when the
	// average is 0).
	OutlierScore float64 `json:"outlier_score"`
	// HoursSinceUpload is the elapsed time since publish in hours, clamped
	// to a minimum of 1.
	HoursSinceUpload float64 `json:"hours_since_upload"`
	// ViewsPerHour is views divided by HoursSinceUpload.
	ViewsPerHour float64 `json:"views_per_hour"`
}

// DisplayScore returns the outlier score rounded to two decimals.
func (v ClassifiedVideo) DisplayScore() float64 {
	return math.Round(v.OutlierScore*100) / 100
}

// DisplayViewsPerHour returns the velocity rounded to the nearest integer.
func (v ClassifiedVideo) DisplayViewsPerHour() int64 {
	return int64(math.Round(v.ViewsPerHour))
}

// DisplayChannelAverage returns the baseline rounded to the nearest integer.
func (v ClassifiedVideo) DisplayChannelAverage() int64 {
	return int64(math.Round(v.ChannelAverage))
}

// DisplayHoursSinceUpload returns the elapsed hours rounded to one decimal.
func (v ClassifiedVideo) DisplayHoursSinceUpload() float64 {
	return math.Round(v.HoursSinceUpload*10) / 10
}

// Record is the tracker's view of a previously synced entry in the persisted
// store. URL is the dedup key and is unique across the store.
type Record struct {
	// ID is the store-assigned record identifier used for archival.
	ID string `json:"id"`
	// URL is the canonical video URL the record was created from.
	URL string `json:"url"`
	// FoundAt is when the record was first written, used for retention.
	FoundAt time.Time `json:"found_at"`
}

// RecordProperties is the property set the sync writer sends to the store
// when creating a record.
type RecordProperties struct {
	Title          string
	Channel        string
	Views          int64
	OutlierScore   float64
	ChannelAverage int64
	ViewsPerHour   int64
	URL            string
	PublishedAt    time.Time
	FoundAt        time.Time
	// CoverURL is an optional external image attached to the record.
	CoverURL string
}

// ChannelInfo identifies a resolved channel and its upload source.
type ChannelInfo struct {
	// ID is the canonical channel ID.
	ID string
	// Name is the channel display name.
	Name string
	// UploadsPlaylistID is the playlist holding the channel's uploads.
	UploadsPlaylistID string
}

// ChannelRef names a channel to track: the identifier to resolve (canonical
// ID, @handle, or bare handle) and an optional human label for logs.
type ChannelRef struct {
	Identifier string
	Label      string
}

// String returns the label when set, the identifier otherwise.
func (c ChannelRef) String() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Identifier
}

// VideoPlatform is the video platform capability set consumed by the engine.
// Implementations own their retry and batching policy; the engine never
// retries.
type VideoPlatform interface {
	// ResolveChannel resolves a channel identifier to channel info.
	ResolveChannel(ctx context.Context, identifier string) (*ChannelInfo, error)

	// ListRecentUploads returns up to max recent video IDs from the
	// channel's upload source, newest first.
	ListRecentUploads(ctx context.Context, uploadsPlaylistID string, max int64) ([]string, error)

	// FetchVideoDetails fetches metadata for the given video IDs. A failed
	// batch is dropped, so the result may cover only part of the input.
	FetchVideoDetails(ctx context.Context, videoIDs []string) ([]VideoSample, error)
}

// RecordStore is the persisted-record capability set consumed by the engine.
type RecordStore interface {
	// ListRecords returns every record in the store, paging internally
	// until the store reports no further pages.
	ListRecords(ctx context.Context) ([]Record, error)

	// ListRecordsFoundBefore returns records whose found timestamp is
	// strictly before cutoff.
	ListRecordsFoundBefore(ctx context.Context, cutoff time.Time) ([]Record, error)

	// ArchiveRecord soft-deletes a record. Archived records no longer
	// appear in listings.
	ArchiveRecord(ctx context.Context, recordID string) error

	// CreateRecord writes a new record with the given properties.
	CreateRecord(ctx context.Context, props RecordProperties) error
}
