package tracker

import (
	"strings"
	"time"
)

// ClassifyOptions configures outlier classification for one channel.
type ClassifyOptions struct {
	// LookbackHours is the maximum age of an upload to be eligible.
	LookbackHours int

	// Threshold is the outlier multiplier: with no keywords configured, a
	// video is included only when its score is at least this value.
	Threshold float64

	// Keywords restricts results to videos whose title contains at least
	// one entry as a case-insensitive substring. When non-empty, every
	// matching video is included regardless of its score (topic mode).
	// Empty means no topic filter.
	Keywords []string
}

// Classify scores the given samples against the channel average and returns
// the videos that qualify, in input order.
//
// Per video: samples without a publish timestamp or published before
// now-lookback are dropped. The outlier score is views/average (0 when the
// average is 0). Hours since upload is clamped to a minimum of 1 so the
// velocity divisor is never zero. Inclusion is keyword-driven when keywords
// are configured, threshold-driven otherwise.
func Classify(now time.Time, channelName string, samples []VideoSample, average float64, opts ClassifyOptions) []ClassifiedVideo {
	cutoff := now.Add(-time.Duration(opts.LookbackHours) * time.Hour)
	topicMode := len(opts.Keywords) > 0

	var out []ClassifiedVideo
	for _, s := range samples {
		if s.PublishedAt.IsZero() {
			continue
		}
		if s.PublishedAt.Before(cutoff) {
			continue
		}

		var score float64
		if average > 0 {
			score = float64(s.Views) / average
		}

		hours := now.Sub(s.PublishedAt).Hours()
		if hours < 1 {
			hours = 1
		}

		if !matchesKeywords(s.Title, opts.Keywords) {
			continue
		}

		// Topic mode captures every matching video; otherwise the score
		// has to clear the threshold.
		if !topicMode && score < opts.Threshold {
			continue
		}

		out = append(out, ClassifiedVideo{
			VideoSample:      s,
			ChannelName:      channelName,
			ChannelAverage:   average,
			OutlierScore:     score,
			HoursSinceUpload: hours,
			ViewsPerHour:     float64(s.Views) / hours,
		})
	}

	return out
}

// matchesKeywords reports whether title contains any of the keywords,
// case-insensitively. An empty keyword set matches everything.
func matchesKeywords(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
