package curation

import "ytcurate/storage"

// Rebuild projects every target playlist from scratch, in spec order.
// Desired playlist state is never merged with previous runs; the result
// replaces whatever the store held.
func (p *Projector) Rebuild(seasons []*Season, specs []*PlaylistSpec) []*storage.Playlist {
	playlists := make([]*storage.Playlist, 0, len(specs))
	for _, spec := range specs {
		proj := p.Project(seasons, spec)
		p.log.Info().Str("playlist", spec.Name).
			Int("entries", len(proj.Entries)).
			Int("episodes", proj.Episodes).
			Int("extras", proj.Extras).
			Msg("playlist projected")

		playlists = append(playlists, &storage.Playlist{
			Name:        spec.Name,
			PlaylistID:  spec.PlaylistID,
			Description: proj.Describe(spec.Description),
			Videos:      proj.Entries,
		})
	}
	return playlists
}
