package tracker

// Dedup filters out every candidate whose URL is already a known dedup key.
// It returns the surviving candidates in order plus the number skipped.
// Re-running a full cycle against unchanged upstream data therefore yields
// zero new writes the second time.
func Dedup(candidates []ClassifiedVideo, known map[string]struct{}) ([]ClassifiedVideo, int) {
	var fresh []ClassifiedVideo
	for _, c := range candidates {
		if _, ok := known[c.URL]; ok {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh, len(candidates) - len(fresh)
}

// KnownURLs builds the dedup key set from a store listing.
func KnownURLs(records []Record) map[string]struct{} {
	known := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.URL != "" {
			known[r.URL] = struct{}{}
		}
	}
	return known
}
