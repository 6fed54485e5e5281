package curation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"ytcurate/storage"
	"ytcurate/youtube"
)

// Ledger is the read-only slice of the record store the projector needs.
// Satisfied by *storage.Store.
type Ledger interface {
	VideoByID(id string) (*storage.Video, error)
}

// Projection is an ordered target list plus the derived counts used for
// description templating. A multi-part episode counts once toward
// Episodes or Extras; every part counts toward Videos and the duration.
type Projection struct {
	Entries []storage.PlaylistEntry

	Episodes int
	Extras   int
	Seasons  int
	Videos   int
	Members  int
	// TotalDuration is the summed video duration in seconds, from the
	// ledger where known and the authored duration otherwise.
	TotalDuration int64
}

// Hours returns the total duration in whole hours, rounded to nearest.
func (p *Projection) Hours() int64 {
	return (p.TotalDuration + 1800) / 3600
}

// Describe substitutes the derived counts into a description template.
// Recognized placeholders: {episodes}, {extras}, {seasons}, {videos},
// {members}, {hours}.
func (p *Projection) Describe(template string) string {
	r := strings.NewReplacer(
		"{episodes}", strconv.Itoa(p.Episodes),
		"{extras}", strconv.Itoa(p.Extras),
		"{seasons}", strconv.Itoa(p.Seasons),
		"{videos}", strconv.Itoa(p.Videos),
		"{members}", strconv.Itoa(p.Members),
		"{hours}", strconv.FormatInt(p.Hours(), 10),
	)
	return r.Replace(template)
}

// Projector maps the curated corpus and a playlist predicate to an
// ordered target list. Ledger lookups are best-effort: a missing video
// gets a placeholder title and the inconsistency is logged, never fatal.
type Projector struct {
	ledger Ledger
	log    zerolog.Logger
}

// NewProjector creates a projector over the given ledger.
func NewProjector(ledger Ledger, logger zerolog.Logger) *Projector {
	return &Projector{
		ledger: ledger,
		log:    logger.With().Str("component", "curation").Logger(),
	}
}

// Project computes one playlist's desired entries and derived counts.
func (p *Projector) Project(seasons []*Season, spec *PlaylistSpec) *Projection {
	proj := &Projection{}
	log := p.log.With().Str("playlist", spec.Name).Logger()

	for _, season := range seasons {
		if !spec.Include.MatchesSeason(season) {
			continue
		}

		var seasonEntries []storage.PlaylistEntry
		for _, ep := range season.Videos {
			seasonEntries = append(seasonEntries, p.projectEpisode(season, ep, spec, proj, log)...)
		}
		if len(seasonEntries) == 0 {
			continue
		}

		proj.Seasons++
		if season.SortBy == "oldest" {
			p.sortByPublished(seasonEntries)
		}
		proj.Entries = append(proj.Entries, seasonEntries...)
	}

	return proj
}

// projectEpisode resolves one curated entry to zero or more playlist
// entries, updating the derived counts.
func (p *Projector) projectEpisode(season *Season, ep *Episode, spec *PlaylistSpec, proj *Projection, log zerolog.Logger) []storage.PlaylistEntry {
	typ := ep.Type()
	if typ == "" {
		// No title field set: nothing identifies this entry.
		log.Error().Str("season", season.Season).Msg("curated entry has no recognized type, skipping")
		return nil
	}
	if !spec.Include.MatchesType(typ) {
		return nil
	}

	refs, members := ep.videoRefs()
	if len(refs) == 0 {
		if ep.Dropout != "" {
			// Off-platform only; nothing to place in a playlist.
			return nil
		}
		log.Error().Str("season", season.Season).Str("title", ep.Title()).
			Msg("curated entry has no video reference, skipping")
		return nil
	}
	if members && spec.Include.FreeOnly {
		return nil
	}

	var entries []storage.PlaylistEntry
	for _, ref := range refs {
		id := videoIDFromRef(ref)
		if !youtube.IsVideoID(id) {
			log.Error().Str("season", season.Season).Str("ref", ref).
				Msg("curated entry has malformed video reference, skipping part")
			continue
		}

		title := ep.Title()
		if v, err := p.ledger.VideoByID(id); err == nil {
			title = v.Title
			proj.TotalDuration += v.Duration
		} else {
			log.Warn().Str("video", id).Str("title", ep.Title()).
				Msg("curated video missing from ledger, using authored title")
			proj.TotalDuration += ep.Duration
		}

		entries = append(entries, storage.PlaylistEntry{VideoID: id, Title: title})
		proj.Videos++
		if members {
			proj.Members++
		}
	}
	if len(entries) == 0 {
		return nil
	}

	// Multi-part uploads count once toward the episode/extra tallies.
	if typ == TypeEpisode {
		proj.Episodes++
	} else {
		proj.Extras++
	}
	return entries
}

// videoRefs returns the episode's video references for the preferred
// tier: free if available, members otherwise. The second return reports
// whether the members tier was used.
func (e *Episode) videoRefs() ([]string, bool) {
	if len(e.PublicParts) > 0 {
		return e.PublicParts, false
	}
	if e.Public != "" {
		return []string{e.Public}, false
	}
	if e.Members != "" {
		return []string{e.Members}, true
	}
	return nil, false
}

// videoIDFromRef extracts a video ID from an authored reference, which
// may be a bare ID or a share URL.
func videoIDFromRef(ref string) string {
	ref = strings.TrimSpace(ref)
	for _, prefix := range []string{
		"https://youtu.be/",
		"https://www.youtube.com/watch?v=",
		"https://youtube.com/watch?v=",
	} {
		if rest, ok := strings.CutPrefix(ref, prefix); ok {
			ref = rest
			break
		}
	}
	if i := strings.IndexAny(ref, "?&"); i >= 0 {
		ref = ref[:i]
	}
	return ref
}

// sortByPublished reorders entries by ledger publish time, ascending.
// Entries missing from the ledger keep their authored position among
// themselves at the front.
func (p *Projector) sortByPublished(entries []storage.PlaylistEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		vi, erri := p.ledger.VideoByID(entries[i].VideoID)
		vj, errj := p.ledger.VideoByID(entries[j].VideoID)
		if erri != nil || errj != nil {
			return erri != nil && errj == nil
		}
		return vi.PublishedAt.Before(vj.PublishedAt)
	})
}
