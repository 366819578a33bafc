package tracker

import "sort"

// Rank sorts videos by outlier score, highest first. The sort is stable:
// equal scores keep their per-channel encounter order. Sorting compares the
// raw score, not the display-rounded one.
func Rank(videos []ClassifiedVideo) []ClassifiedVideo {
	ranked := make([]ClassifiedVideo, len(videos))
	copy(ranked, videos)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OutlierScore > ranked[j].OutlierScore
	})
	return ranked
}

// TopN returns the first n entries of ranked, or all of them if fewer exist.
func TopN(ranked []ClassifiedVideo, n int) []ClassifiedVideo {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
