package tracker

import (
	"context"
	"log"
	"time"
)

// sweepExpired archives every persisted record found before now minus the
// retention window. It runs at the start of a cycle so the dedup key set
// reflects the post-sweep store. Records are soft-deleted only; a failure to
// archive an individual record is logged and does not abort the sweep.
// It returns the number of records archived.
func (e *Engine) sweepExpired(ctx context.Context, now time.Time) int {
	if e.cfg.RetentionDays <= 0 {
		return 0
	}

	cutoff := now.AddDate(0, 0, -e.cfg.RetentionDays)
	expired, err := e.store.ListRecordsFoundBefore(ctx, cutoff)
	if err != nil {
		log.Printf("tracker: retention sweep listing failed: %v", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	archived := 0
	for _, rec := range expired {
		if err := e.store.ArchiveRecord(ctx, rec.ID); err != nil {
			log.Printf("tracker: archive record %s: %v", rec.ID, err)
			continue
		}
		archived++
	}

	log.Printf("tracker: retention sweep archived %d/%d records older than %s",
		archived, len(expired), cutoff.Format("2006-01-02"))
	return archived
}
