package tracker

// AverageViews computes the arithmetic mean of the view counts in samples.
// It returns 0 for an empty sample set.
func AverageViews(samples []VideoSample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var total int64
	for _, s := range samples {
		total += s.Views
	}
	return float64(total) / float64(len(samples))
}
