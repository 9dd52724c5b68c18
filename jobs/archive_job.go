package jobs

import (
	"context"
	"log"
	"time"

	"github.com/classmatch/api/services"
)

// AvailabilityArchiver sweeps Active availability documents past their
// useful age so stale declarations stop matching.
type AvailabilityArchiver struct {
	matcher *services.Matcher
	maxAge  time.Duration
}

func NewAvailabilityArchiver(matcher *services.Matcher, maxAgeDays int) *AvailabilityArchiver {
	return &AvailabilityArchiver{
		matcher: matcher,
		maxAge:  time.Duration(maxAgeDays) * 24 * time.Hour,
	}
}

func (j *AvailabilityArchiver) Run() {
	log.Println("Running job: ArchiveStaleAvailability...")

	cutoff := time.Now().UTC().Add(-j.maxAge)
	archived, err := j.matcher.ArchiveStale(context.Background(), cutoff)
	if err != nil {
		log.Printf("Error archiving stale availability: %v", err)
		return
	}
	if archived == 0 {
		log.Println("No stale availability found.")
		return
	}
	log.Printf("Archived %d stale availability document(s).", archived)
}
