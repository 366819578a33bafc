package report

import (
	"strings"
	"testing"
	"time"

	"outliertrack/tracker"
)

func testResult() *tracker.CycleResult {
	return &tracker.CycleResult{
		RunID:     "run-1",
		StartedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Archived:  2,
		Channels: []tracker.ChannelStats{
			{
				Baseline: tracker.ChannelBaseline{ChannelID: "UC1", Name: "GeoWatch", AverageViews: 50000},
				Sampled:  20,
				Outliers: 1,
			},
		},
		Ranked: []tracker.ClassifiedVideo{
			{
				VideoSample: tracker.VideoSample{
					Title: "Volcano erupts!",
					Views: 120000,
					URL:   "https://www.youtube.com/watch?v=x",
				},
				ChannelName:      "GeoWatch",
				OutlierScore:     2.4,
				ViewsPerHour:     1700,
				HoursSinceUpload: 70.6,
			},
		},
		Written:           1,
		Attempted:         1,
		DuplicatesSkipped: 3,
		Synced:            true,
	}
}

func TestFormatSummary(t *testing.T) {
	f := NewFormatter()
	out := f.FormatSummary(testResult(), 10)

	for _, want := range []string{
		"SUMMARY",
		"run-1",
		"Expired 2 stale records",
		"GeoWatch: avg 50000 views over 20 uploads, 1 outliers",
		"Total outliers found: 1",
		"1. [GeoWatch] Volcano erupts!",
		"Score: 2.40x",
		"1700/hr",
		"https://www.youtube.com/watch?v=x",
		"Synced 1/1 new records (3 duplicates skipped)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}

func TestFormatSummaryNoOutliers(t *testing.T) {
	f := NewFormatter()
	res := &tracker.CycleResult{RunID: "run-2", StartedAt: time.Now()}

	out := f.FormatSummary(res, 10)
	if !strings.Contains(out, "No outliers found") {
		t.Errorf("summary missing empty-cycle message\n%s", out)
	}
	if strings.Contains(out, "TOP PERFORMERS") {
		t.Error("empty cycle should not render a top list")
	}
}

func TestFormatAge(t *testing.T) {
	f := NewFormatter()

	if got := f.FormatAge(5.5); got != "5.5h ago" {
		t.Errorf("FormatAge(5.5) = %q", got)
	}
	if got := f.FormatAge(48); got != "2.0d ago" {
		t.Errorf("FormatAge(48) = %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	f := NewFormatter()

	if got := f.TruncateText("short", 10); got != "short" {
		t.Errorf("TruncateText(short) = %q", got)
	}
	if got := f.TruncateText("a very long title indeed", 10); got != "a very ..." {
		t.Errorf("TruncateText(long) = %q", got)
	}
	if got := f.TruncateText("abcdef", 3); got != "..." {
		t.Errorf("TruncateText(tiny limit) = %q", got)
	}
}
