package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ytcurate/storage"
	"ytcurate/youtube"
)

// Source reads remote feed listings. Satisfied by *youtube.Client.
type Source interface {
	ReadFeed(ctx context.Context, listingID string, opts youtube.FeedOptions, yield func(youtube.FeedItem) error) (bool, error)
}

// Resolver resolves channel references. Satisfied by *youtube.Directory.
type Resolver interface {
	Resolve(ctx context.Context, handleOrURL string) (*storage.Channel, error)
}

// Runner executes scan attempts: it schedules each channel, drains the
// public and members feeds into the ledger, sweeps for removals and
// appends the resulting scan record.
type Runner struct {
	store    *storage.Store
	resolver Resolver
	source   Source
	policy   Policy
	log      zerolog.Logger

	now func() time.Time
}

// NewRunner creates a scan runner.
func NewRunner(store *storage.Store, resolver Resolver, source Source, policy Policy, logger zerolog.Logger) *Runner {
	return &Runner{
		store:    store,
		resolver: resolver,
		source:   source,
		policy:   policy,
		log:      logger.With().Str("component", "scan").Logger(),
		now:      time.Now,
	}
}

// Run scans every referenced channel in order. Per-channel failures are
// isolated: a failing channel is logged and the rest still run. The
// returned error is non-nil if any channel failed.
func (r *Runner) Run(ctx context.Context, refs []string) error {
	failed := 0
	for _, ref := range refs {
		if err := r.ScanChannel(ctx, ref); err != nil {
			r.log.Error().Err(err).Str("channel", ref).Msg("channel scan failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("scan: %d of %d channels failed", failed, len(refs))
	}
	return nil
}

// ScanChannel runs one scan attempt for a channel reference. A skip
// decision performs no remote calls at all. A transport error aborts the
// attempt without appending a scan record, so the next run retries from
// the previous watermark.
func (r *Runner) ScanChannel(ctx context.Context, ref string) error {
	ch, err := r.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	now := r.now().UTC()
	plan := Schedule(r.store.ScanHistory(ch.ChannelID), now, r.policy)

	log := r.log.With().Str("channel", ch.ChannelID).Str("handle", ch.Handle).Logger()
	log.Info().Stringer("decision", plan.Decision).Time("since", plan.Since).Msg("scan scheduled")

	if plan.Decision == Skip {
		return nil
	}

	// Candidates for the removal sweep: every stored video inside the
	// range this attempt claims to cover. Observation removes a video
	// from the set; survivors were missing from their feed.
	candidates := make(map[string]struct{})
	for _, v := range r.store.VideosByChannel(ch.ChannelID) {
		if plan.Since.IsZero() || !v.PublishedAt.Before(plan.Since) {
			candidates[v.VideoID] = struct{}{}
		}
	}

	publicDone, err := r.mergeFeed(ctx, youtube.UploadsFeedID(ch.ChannelID), ch.ChannelID, plan.Since, false, candidates)
	if err != nil {
		return err
	}
	membersDone, err := r.mergeFeed(ctx, youtube.MembersFeedID(ch.ChannelID), ch.ChannelID, plan.Since, true, candidates)
	if err != nil {
		return err
	}

	// Absence under an incomplete attempt is not evidence of deletion:
	// survivors are marked only when both feeds reached their true end.
	exhaustive := publicDone && membersDone
	if exhaustive {
		for id := range candidates {
			log.Warn().Str("video", id).Msg("video missing from feed, marking removed")
			if err := r.store.MarkRemoved(id, now); err != nil {
				return err
			}
		}
	}

	scan := &storage.Scan{
		ChannelID:     ch.ChannelID,
		ChannelHandle: ch.Handle,
		ScannedAt:     now,
	}
	if !exhaustive {
		since := plan.Since
		scan.ScannedTo = &since
	}
	if err := r.store.AppendScan(scan); err != nil {
		return err
	}
	return r.store.Flush()
}

// mergeFeed drains one feed listing into the ledger, crossing observed
// videos off the candidate set. A listing that does not exist on the
// platform is an empty, exhaustive result, not an error.
func (r *Runner) mergeFeed(ctx context.Context, listingID, channelID string, since time.Time, membersOnly bool, candidates map[string]struct{}) (bool, error) {
	opts := youtube.FeedOptions{Since: since, Details: true}

	exhaustive, err := r.source.ReadFeed(ctx, listingID, opts, func(item youtube.FeedItem) error {
		delete(candidates, item.VideoID)
		return r.store.UpsertVideo(&storage.Video{
			VideoID:        item.VideoID,
			ChannelID:      channelID,
			PublishedAt:    item.PublishedAt,
			Title:          item.Title,
			Duration:       item.Duration,
			MembersOnly:    membersOnly,
			ViewCount:      item.ViewCount,
			LikeCount:      item.LikeCount,
			CommentCount:   item.CommentCount,
			RegionsAllowed: item.RegionsAllowed,
			RegionsBlocked: item.RegionsBlocked,
		})
	})
	if err != nil {
		if errors.Is(err, youtube.ErrListingNotFound) {
			r.log.Debug().Str("listing", listingID).Msg("listing not found, treating as empty")
			return true, nil
		}
		return false, err
	}
	return exhaustive, nil
}
