// Package youtube implements the video platform client on top of the
// YouTube Data API v3. It resolves channel identifiers, lists recent uploads
// from a channel's uploads playlist, and fetches video statistics in batches.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"outliertrack/retry"
	"outliertrack/tracker"
)

// Sentinel errors for platform operations.
var (
	ErrMissingAPIKey   = errors.New("youtube: api key required")
	ErrChannelNotFound = errors.New("youtube: channel not found")
)

// detailsBatchSize is the API limit on video IDs per videos.list call.
const detailsBatchSize = 50

// channelIDRegex matches canonical channel IDs (e.g., "UCuAXFkgsw1L7xaCfnd5JJOw").
var channelIDRegex = regexp.MustCompile(`^UC[\w-]{22}$`)

// Client is a VideoPlatform implementation backed by YouTube Data API v3.
// Retrying transient API failures is this client's business, not the
// engine's.
type Client struct {
	service *youtube.Service
	retry   retry.Config
}

var _ tracker.VideoPlatform = (*Client)(nil)

// New creates a YouTube client authenticated with an API key.
func New(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		service: service,
		retry:   retry.DefaultConfig(),
	}, nil
}

// ResolveChannel resolves a channel identifier to its ID, display name, and
// uploads playlist. The identifier may be a canonical "UC…" channel ID, an
// "@handle", or a bare handle string; each form is resolved explicitly.
func (c *Client) ResolveChannel(ctx context.Context, identifier string) (*tracker.ChannelInfo, error) {
	var info *tracker.ChannelInfo

	err := retry.Do(ctx, c.retry, apiErrorClassifier, func(ctx context.Context) error {
		call := c.service.Channels.List([]string{"snippet", "contentDetails"}).Context(ctx)

		switch {
		case strings.HasPrefix(identifier, "@"):
			call = call.ForHandle(strings.TrimPrefix(identifier, "@"))
		case channelIDRegex.MatchString(identifier):
			call = call.Id(identifier)
		default:
			// Bare string: assume a handle without the @ prefix.
			call = call.ForHandle(identifier)
		}

		resp, err := call.Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrChannelNotFound
		}

		ch := resp.Items[0]
		info = &tracker.ChannelInfo{ID: ch.Id}
		if ch.Snippet != nil {
			info.Name = ch.Snippet.Title
		}
		if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
			info.UploadsPlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("resolve channel %s: %w", identifier, err)
	}
	return info, nil
}

// ListRecentUploads returns up to max video IDs from the uploads playlist,
// newest first, paging with the API's page token until max is reached or the
// playlist is exhausted.
func (c *Client) ListRecentUploads(ctx context.Context, uploadsPlaylistID string, max int64) ([]string, error) {
	var ids []string

	pageToken := ""
	for {
		remaining := max - int64(len(ids))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > 50 {
			pageSize = 50
		}

		err := retry.Do(ctx, c.retry, apiErrorClassifier, func(ctx context.Context) error {
			call := c.service.PlaylistItems.List([]string{"contentDetails"}).
				PlaylistId(uploadsPlaylistID).
				MaxResults(pageSize).
				PageToken(pageToken).
				Context(ctx)

			resp, err := call.Do()
			if err != nil {
				return err
			}

			for _, item := range resp.Items {
				if item.ContentDetails != nil {
					ids = append(ids, item.ContentDetails.VideoId)
				}
			}
			pageToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return ids, fmt.Errorf("list uploads from %s: %w", uploadsPlaylistID, err)
		}

		if pageToken == "" {
			break
		}
	}

	return ids, nil
}

// FetchVideoDetails fetches title, publish time, and statistics for the
// given video IDs. The API caps videos.list at 50 IDs per call, so the input
// is chunked; a failed chunk is logged and dropped, and the partial result
// is returned alongside an error describing how many chunks failed.
func (c *Client) FetchVideoDetails(ctx context.Context, videoIDs []string) ([]tracker.VideoSample, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}

	var samples []tracker.VideoSample
	failed := 0

	for _, batch := range chunkIDs(videoIDs, detailsBatchSize) {
		err := retry.Do(ctx, c.retry, apiErrorClassifier, func(ctx context.Context) error {
			call := c.service.Videos.List([]string{"snippet", "statistics"}).
				Id(batch...).
				Context(ctx)

			resp, err := call.Do()
			if err != nil {
				return err
			}

			for _, item := range resp.Items {
				samples = append(samples, sampleFromItem(item))
			}
			return nil
		})
		if err != nil {
			log.Printf("youtube: details batch of %d failed: %v", len(batch), err)
			failed++
		}
	}

	if failed > 0 {
		return samples, fmt.Errorf("youtube: %d detail batch(es) dropped", failed)
	}
	return samples, nil
}

// sampleFromItem converts an API video resource to a VideoSample. An
// unparseable publish timestamp is left as the zero time, which the
// classifier treats as missing.
func sampleFromItem(item *youtube.Video) tracker.VideoSample {
	sample := tracker.VideoSample{
		ID:  item.Id,
		URL: WatchURL(item.Id),
	}

	if item.Snippet != nil {
		sample.Title = item.Snippet.Title
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			sample.PublishedAt = t
		}
		sample.Thumbnail = bestThumbnail(item.Snippet.Thumbnails)
	}

	if item.Statistics != nil {
		sample.Views = int64(item.Statistics.ViewCount)
		sample.Likes = int64(item.Statistics.LikeCount)
		sample.Comments = int64(item.Statistics.CommentCount)
	}

	return sample
}

// bestThumbnail prefers the high-resolution thumbnail, falling back to the
// default one.
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	if t.High != nil {
		return t.High.Url
	}
	if t.Default != nil {
		return t.Default.Url
	}
	return ""
}

// WatchURL returns the canonical watch URL for a video ID. This is the
// dedup key used across the persisted store.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// chunkIDs splits ids into slices of at most size entries.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// apiErrorClassifier determines if an API error is retryable. Quota and rate
// limit errors are; a missing channel is permanent.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrChannelNotFound) {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "quotaExceeded") || strings.Contains(msg, "rateLimitExceeded") {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return true
}
