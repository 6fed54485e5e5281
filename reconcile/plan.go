// Package reconcile converges live playlists to their desired
// membership and order with a minimal sequence of remote mutations.
package reconcile

import (
	"ytcurate/youtube"
)

// Move repositions an existing remote entry to its desired index.
type Move struct {
	EntryID  string
	VideoID  string
	Position int64
}

// Insertion adds a video at an explicit position in the final list.
type Insertion struct {
	VideoID  string
	Position int64
}

// Plan is the computed convergence plan for one playlist. Removals are
// applied first (keyed by entry handle, so they are insensitive to
// order), then moves and insertions in ascending target position, so
// each lands at its index in the final desired list.
type Plan struct {
	// Matched counts remote entries already in correct relative order.
	Matched    int
	Removals   []string
	Moves      []Move
	Insertions []Insertion
}

// Empty reports whether the plan issues no mutations.
func (p *Plan) Empty() bool {
	return len(p.Removals) == 0 && len(p.Moves) == 0 && len(p.Insertions) == 0
}

// Mutations returns the total number of remote mutations the plan costs.
func (p *Plan) Mutations() int {
	return len(p.Removals) + len(p.Moves) + len(p.Insertions)
}

// BuildPlan computes the convergence plan between a playlist's current
// remote entries and the desired ordered video list.
//
// The match pass walks the remote list keeping a cursor into the
// desired list: an entry whose desired index is strictly past the
// cursor is in correct relative order and left alone. Everything else
// is either moved (its video is still wanted elsewhere), or removed
// (not wanted, or a duplicate). Desired videos with no remote entry are
// inserted. The greedy match is near-optimal on the edit patterns that
// occur in practice; it is not a minimum-edit solver.
func BuildPlan(current []youtube.PlaylistItem, desired []string) Plan {
	desiredIndex := make(map[string]int, len(desired))
	for i, id := range desired {
		if _, dup := desiredIndex[id]; !dup {
			desiredIndex[id] = i
		}
	}

	var plan Plan
	matched := make(map[int]bool, len(desired))
	var unmatched []youtube.PlaylistItem

	lastMatched := -1
	for _, item := range current {
		idx, wanted := desiredIndex[item.VideoID]
		if wanted && idx > lastMatched {
			matched[idx] = true
			lastMatched = idx
			plan.Matched++
		} else {
			unmatched = append(unmatched, item)
		}
	}

	// Pair unmatched remote entries with the desired slots still open
	// for their video; those become moves. Duplicate remote entries
	// cannot pair twice and fall through to removal.
	spare := make(map[string][]string)
	for _, item := range unmatched {
		spare[item.VideoID] = append(spare[item.VideoID], item.EntryID)
	}

	// Target positions are indices into the final list, which holds one
	// entry per distinct desired video. Skipped duplicate slots must not
	// advance the position counter or every later mutation would
	// overshoot the list.
	var pos int64
	for i, videoID := range desired {
		if desiredIndex[videoID] != i {
			// Duplicate desired entry; only the first occurrence is placed.
			continue
		}
		if matched[i] {
			pos++
			continue
		}
		if entries := spare[videoID]; len(entries) > 0 {
			plan.Moves = append(plan.Moves, Move{
				EntryID:  entries[0],
				VideoID:  videoID,
				Position: pos,
			})
			spare[videoID] = entries[1:]
			pos++
			continue
		}
		plan.Insertions = append(plan.Insertions, Insertion{
			VideoID:  videoID,
			Position: pos,
		})
		pos++
	}

	moved := make(map[string]bool, len(plan.Moves))
	for _, m := range plan.Moves {
		moved[m.EntryID] = true
	}
	for _, item := range unmatched {
		if !moved[item.EntryID] {
			plan.Removals = append(plan.Removals, item.EntryID)
		}
	}

	return plan
}
