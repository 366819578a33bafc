// Package report provides terminal output formatting for cycle results.
package report

import (
	"fmt"
	"strings"
	"time"

	"outliertrack/tracker"
)

const divider = "============================================================"

// Formatter renders cycle results for terminal display.
type Formatter struct{}

// NewFormatter creates a new terminal formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatSummary renders the full cycle summary: per-channel statistics, the
// top-ranked outliers, and the sync outcome.
func (f *Formatter) FormatSummary(res *tracker.CycleResult, topN int) string {
	var b strings.Builder

	b.WriteString(divider + "\n")
	b.WriteString("SUMMARY\n")
	b.WriteString(fmt.Sprintf("Run %s at %s\n", res.RunID, res.StartedAt.Format("2006-01-02 15:04 UTC")))
	b.WriteString(divider + "\n\n")

	if res.Archived > 0 {
		b.WriteString(fmt.Sprintf("Expired %d stale records\n\n", res.Archived))
	}

	for _, ch := range res.Channels {
		b.WriteString(f.FormatChannel(ch))
	}
	if res.ChannelsSkipped > 0 {
		b.WriteString(fmt.Sprintf("Skipped %d unresolvable channels\n", res.ChannelsSkipped))
	}
	b.WriteString("\n")

	if len(res.Ranked) == 0 {
		b.WriteString("No outliers found across all channels in this window.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Total outliers found: %d\n\n", len(res.Ranked)))
	b.WriteString("TOP PERFORMERS:\n")
	b.WriteString("----------------------------------------\n")
	for i, v := range res.Top(topN) {
		b.WriteString(f.FormatVideo(i+1, v))
	}

	b.WriteString(fmt.Sprintf("\nSynced %d/%d new records (%d duplicates skipped)\n",
		res.Written, res.Attempted, res.DuplicatesSkipped))

	return b.String()
}

// FormatChannel renders one channel's statistics line.
func (f *Formatter) FormatChannel(ch tracker.ChannelStats) string {
	return fmt.Sprintf("%s: avg %.0f views over %d uploads, %d outliers\n",
		ch.Baseline.Name, ch.Baseline.AverageViews, ch.Sampled, ch.Outliers)
}

// FormatVideo renders one ranked video entry.
func (f *Formatter) FormatVideo(rank int, v tracker.ClassifiedVideo) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%d. [%s] %s\n", rank, v.ChannelName, f.TruncateText(v.Title, 60)))
	b.WriteString(fmt.Sprintf("   Views: %d | Score: %.2fx | %d/hr | %s\n",
		v.Views, v.DisplayScore(), v.DisplayViewsPerHour(), f.FormatAge(v.HoursSinceUpload)))
	b.WriteString("   " + v.URL + "\n")

	return b.String()
}

// FormatAge renders hours since upload as a readable age.
func (f *Formatter) FormatAge(hours float64) string {
	d := time.Duration(hours * float64(time.Hour))
	switch {
	case d < 24*time.Hour:
		return fmt.Sprintf("%.1fh ago", hours)
	default:
		return fmt.Sprintf("%.1fd ago", hours/24)
	}
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *Formatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
