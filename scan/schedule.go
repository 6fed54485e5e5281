// Package scan decides when channels need rescanning and drives feed
// reads into the video ledger.
package scan

import (
	"time"

	"ytcurate/storage"
)

// Decision is the scheduler's verdict for one channel.
type Decision int

const (
	// Skip: a sufficiently recent exhaustive scan exists, nothing to do.
	Skip Decision = iota
	// Incremental: scan back to Plan.Since only.
	Incremental
	// Full: scan back to the epoch.
	Full
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case Incremental:
		return "incremental"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// Policy holds the three scheduling durations.
type Policy struct {
	// MinInterval is the minimum re-scan interval: a channel scanned more
	// recently than this is skipped outright.
	MinInterval time.Duration
	// StaleAfter is the age past which exhaustive coverage no longer
	// counts as fresh and a full scan is due again.
	StaleAfter time.Duration
	// LookBack is subtracted from the coverage boundary when scanning
	// incrementally, as a margin for items that appear in the feed late.
	LookBack time.Duration
}

// DefaultPolicy returns the scheduling defaults.
func DefaultPolicy() Policy {
	return Policy{
		MinInterval: 12 * time.Hour,
		StaleAfter:  30 * 24 * time.Hour,
		LookBack:    24 * time.Hour,
	}
}

// Plan is a scheduling decision plus the watermark to scan back to.
type Plan struct {
	Decision Decision
	// Since is the lower-bound watermark for an incremental scan. Zero
	// for full scans.
	Since time.Time
}

// Schedule decides whether a channel is due for a scan. It is a pure
// function of the channel's scan history (most recent first, as returned
// by the store) and the current time; staleness is always derived, never
// cached.
//
// An exhaustive scan within MinInterval means skip. Exhaustive coverage
// that exists but has aged past MinInterval is topped up incrementally,
// back to the boundary the history actually covers. No exhaustive scan,
// or exhaustive coverage older than StaleAfter, forces a full scan.
func Schedule(history []*storage.Scan, now time.Time, policy Policy) Plan {
	var latestExhaustive *storage.Scan
	for _, s := range history {
		if s.Exhaustive() {
			latestExhaustive = s
			break
		}
	}

	if latestExhaustive == nil {
		return Plan{Decision: Full}
	}
	if now.Sub(latestExhaustive.ScannedAt) >= policy.StaleAfter {
		return Plan{Decision: Full}
	}
	if now.Sub(latestExhaustive.ScannedAt) < policy.MinInterval {
		return Plan{Decision: Skip}
	}

	boundary := coverageBoundary(history, latestExhaustive)
	if now.Sub(boundary) < policy.MinInterval {
		return Plan{Decision: Skip}
	}

	return Plan{Decision: Incremental, Since: boundary.Add(-policy.LookBack)}
}

// coverageBoundary returns the most recent time up to which the scan
// history guarantees coverage. The exhaustive scan covers everything up
// to its start; each later scan extends the boundary to its own start,
// but only if its recorded watermark reaches back far enough to leave no
// gap. An interrupted attempt is evidence only up to the watermark it
// recorded.
func coverageBoundary(history []*storage.Scan, exhaustive *storage.Scan) time.Time {
	boundary := exhaustive.ScannedAt

	// History is most recent first; walk oldest to newest from the
	// exhaustive scan forward.
	for i := len(history) - 1; i >= 0; i-- {
		s := history[i]
		if !s.ScannedAt.After(boundary) {
			continue
		}
		if s.ScannedTo != nil && s.ScannedTo.After(boundary) {
			// Gap between this scan's watermark and prior coverage.
			continue
		}
		boundary = s.ScannedAt
	}
	return boundary
}
