package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ytcurate/storage"
	"ytcurate/youtube"
)

// PlaylistAPI is the slice of the platform client the reconciler
// mutates playlists through. Satisfied by *youtube.Client.
type PlaylistAPI interface {
	PlaylistInfo(ctx context.Context, playlistID string) (*youtube.PlaylistInfo, error)
	UpdatePlaylistInfo(ctx context.Context, playlistID, title, description string) error
	PlaylistEntries(ctx context.Context, playlistID string) ([]youtube.PlaylistItem, error)
	InsertPlaylistEntry(ctx context.Context, playlistID, videoID string, position int64) error
	MovePlaylistEntry(ctx context.Context, entryID, playlistID, videoID string, position int64) error
	DeletePlaylistEntry(ctx context.Context, entryID string) error
}

// Reconciler applies convergence plans to live playlists.
type Reconciler struct {
	api PlaylistAPI
	log zerolog.Logger
}

// NewReconciler creates a reconciler over the given playlist API.
func NewReconciler(api PlaylistAPI, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		api: api,
		log: logger.With().Str("component", "reconcile").Logger(),
	}
}

// Run reconciles every playlist that has a remote ID. Failures are
// isolated per playlist: one playlist aborting never blocks the rest.
// The returned error is non-nil if any playlist failed.
func (r *Reconciler) Run(ctx context.Context, playlists []*storage.Playlist) error {
	failed := 0
	published := 0
	for _, pl := range playlists {
		if pl.PlaylistID == "" {
			r.log.Debug().Str("playlist", pl.Name).Msg("playlist has no remote id, skipping")
			continue
		}
		published++
		if err := r.Reconcile(ctx, pl); err != nil {
			r.log.Error().Err(err).Str("playlist", pl.Name).Msg("playlist reconciliation failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("reconcile: %d of %d playlists failed", failed, published)
	}
	return nil
}

// Reconcile converges one playlist: removals, then moves and insertions
// in ascending position, then the metadata update. A mutation failure
// aborts the remaining steps for this playlist only; the next run picks
// up from whatever state the remote list was left in.
func (r *Reconciler) Reconcile(ctx context.Context, pl *storage.Playlist) error {
	log := r.log.With().Str("playlist", pl.Name).Str("id", pl.PlaylistID).Logger()

	current, err := r.api.PlaylistEntries(ctx, pl.PlaylistID)
	if err != nil {
		return err
	}

	plan := BuildPlan(current, pl.VideoIDs())
	log.Info().
		Int("okay", plan.Matched).
		Int("remove", len(plan.Removals)).
		Int("move", len(plan.Moves)).
		Int("insert", len(plan.Insertions)).
		Msg("reconciliation plan")

	if !plan.Empty() {
		if err := r.apply(ctx, pl.PlaylistID, plan, log); err != nil {
			return err
		}
	}

	return r.updateMetadata(ctx, pl, log)
}

func (r *Reconciler) apply(ctx context.Context, playlistID string, plan Plan, log zerolog.Logger) error {
	for _, entryID := range plan.Removals {
		log.Debug().Str("entry", entryID).Msg("removing entry")
		if err := r.api.DeletePlaylistEntry(ctx, entryID); err != nil {
			return err
		}
	}

	// Moves and insertions interleave in ascending target position, so
	// every earlier position is final by the time a later one is placed.
	moves, inserts := plan.Moves, plan.Insertions
	for len(moves) > 0 || len(inserts) > 0 {
		if len(inserts) == 0 || (len(moves) > 0 && moves[0].Position < inserts[0].Position) {
			m := moves[0]
			moves = moves[1:]
			log.Debug().Str("video", m.VideoID).Int64("position", m.Position).Msg("moving entry")
			if err := r.api.MovePlaylistEntry(ctx, m.EntryID, playlistID, m.VideoID, m.Position); err != nil {
				return err
			}
			continue
		}
		in := inserts[0]
		inserts = inserts[1:]
		log.Debug().Str("video", in.VideoID).Int64("position", in.Position).Msg("inserting entry")
		if err := r.api.InsertPlaylistEntry(ctx, playlistID, in.VideoID, in.Position); err != nil {
			return err
		}
	}
	return nil
}

// updateMetadata writes the playlist's title and description, but only
// if the trimmed strings actually differ from the remote state.
func (r *Reconciler) updateMetadata(ctx context.Context, pl *storage.Playlist, log zerolog.Logger) error {
	info, err := r.api.PlaylistInfo(ctx, pl.PlaylistID)
	if err != nil {
		return err
	}

	titleChanged := strings.TrimSpace(info.Title) != strings.TrimSpace(pl.Name)
	descriptionChanged := strings.TrimSpace(info.Description) != strings.TrimSpace(pl.Description)
	if !titleChanged && !descriptionChanged {
		return nil
	}

	log.Info().Bool("title", titleChanged).Bool("description", descriptionChanged).Msg("updating metadata")
	return r.api.UpdatePlaylistInfo(ctx, pl.PlaylistID, pl.Name, pl.Description)
}
