package tracker

import (
	"context"
	"log"
	"time"
)

// maxPropertyLen bounds the title and channel name sent to the store.
const maxPropertyLen = 100

// writeRecords persists the deduplicated candidates. Per-record failures are
// logged and skipped rather than aborting the batch. It returns the number
// of successful writes, the number attempted, and whether at least one write
// succeeded (vacuously true for an empty batch).
func (e *Engine) writeRecords(ctx context.Context, fresh []ClassifiedVideo, now time.Time) (int, int, bool) {
	if len(fresh) == 0 {
		return 0, 0, true
	}

	written := 0
	for _, v := range fresh {
		props := buildRecordProperties(v, now)
		if err := e.store.CreateRecord(ctx, props); err != nil {
			log.Printf("tracker: create record for %q: %v", truncate(v.Title, 50), err)
			continue
		}
		written++
	}

	log.Printf("tracker: wrote %d/%d new records", written, len(fresh))
	return written, len(fresh), written > 0
}

// buildRecordProperties maps a classified video onto the store property set,
// applying display rounding and bounded truncation.
func buildRecordProperties(v ClassifiedVideo, now time.Time) RecordProperties {
	return RecordProperties{
		Title:          truncate(v.Title, maxPropertyLen),
		Channel:        truncate(v.ChannelName, maxPropertyLen),
		Views:          v.Views,
		OutlierScore:   v.DisplayScore(),
		ChannelAverage: v.DisplayChannelAverage(),
		ViewsPerHour:   v.DisplayViewsPerHour(),
		URL:            v.URL,
		PublishedAt:    v.PublishedAt,
		FoundAt:        now,
		CoverURL:       v.Thumbnail,
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
