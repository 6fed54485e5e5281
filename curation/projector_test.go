package curation

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytcurate/storage"
)

// fakeLedger serves canned ledger entries.
type fakeLedger struct {
	videos map[string]*storage.Video
}

func (f *fakeLedger) VideoByID(id string) (*storage.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, &storage.StorageError{Op: "read", Entity: "video", ID: id, Err: storage.ErrNotFound}
	}
	return v, nil
}

func testSeasons() []*Season {
	return []*Season{
		{
			Season: "Season One",
			From:   "Some Show",
			Cast:   "main",
			World:  "spire",
			Videos: []*Episode{
				{Trailer: "Season One Trailer", Public: "trailer0000"},
				{Episode: "Episode 1", Public: "episode0001"},
				{Episode: "Episode 2", Members: "episode0002"},
				{Special: "Live Special", PublicParts: []string{"special001a", "special001b"}},
			},
		},
		{
			Season: "Side Quest",
			From:   "Some Show",
			Cast:   "guest",
			World:  "moonhaven",
			Videos: []*Episode{
				{Episode: "Side Episode 1", Public: "https://youtu.be/sidequest01"},
			},
		},
	}
}

func testLedger() *fakeLedger {
	return &fakeLedger{videos: map[string]*storage.Video{
		"trailer0000": {VideoID: "trailer0000", Title: "Trailer (ledger)", Duration: 120,
			PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		"episode0001": {VideoID: "episode0001", Title: "Episode 1 (ledger)", Duration: 7200,
			PublishedAt: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		"episode0002": {VideoID: "episode0002", Title: "Episode 2 (ledger)", Duration: 7200,
			PublishedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), MembersOnly: true},
		"special001a": {VideoID: "special001a", Title: "Special Part 1", Duration: 3600,
			PublishedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		"special001b": {VideoID: "special001b", Title: "Special Part 2", Duration: 3600,
			PublishedAt: time.Date(2024, 2, 1, 1, 0, 0, 0, time.UTC)},
		"sidequest01": {VideoID: "sidequest01", Title: "Side Episode 1 (ledger)", Duration: 5400,
			PublishedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}
}

func newTestProjector() *Projector {
	return NewProjector(testLedger(), zerolog.Nop())
}

func TestProject_AllEntriesInAuthoredOrder(t *testing.T) {
	proj := newTestProjector().Project(testSeasons(), &PlaylistSpec{Name: "everything"})

	ids := make([]string, len(proj.Entries))
	for i, e := range proj.Entries {
		ids[i] = e.VideoID
	}
	assert.Equal(t, []string{
		"trailer0000", "episode0001", "episode0002",
		"special001a", "special001b", "sidequest01",
	}, ids)

	assert.Equal(t, 3, proj.Episodes)
	assert.Equal(t, 2, proj.Extras, "trailer and special, multi-part counted once")
	assert.Equal(t, 2, proj.Seasons)
	assert.Equal(t, 6, proj.Videos)
	assert.Equal(t, 1, proj.Members)
}

func TestProject_FreeOnlyOmitsMembersEpisodes(t *testing.T) {
	spec := &PlaylistSpec{Name: "free", Include: Predicate{FreeOnly: true}}

	proj := newTestProjector().Project(testSeasons(), spec)

	for _, e := range proj.Entries {
		assert.NotEqual(t, "episode0002", e.VideoID, "members-only episode must be omitted")
	}
	assert.Equal(t, 0, proj.Members)
	assert.Equal(t, 2, proj.Episodes)
}

func TestProject_TypeAndSeasonFilters(t *testing.T) {
	spec := &PlaylistSpec{Name: "episodes only", Include: Predicate{
		Seasons: []string{"Season One"},
		Types:   []string{"episode"},
	}}

	proj := newTestProjector().Project(testSeasons(), spec)

	require.Len(t, proj.Entries, 2)
	assert.Equal(t, "episode0001", proj.Entries[0].VideoID)
	assert.Equal(t, "episode0002", proj.Entries[1].VideoID)
	assert.Equal(t, 1, proj.Seasons)
}

func TestProject_CastAndWorldFilters(t *testing.T) {
	spec := &PlaylistSpec{Name: "side quests", Include: Predicate{Worlds: []string{"moonhaven"}}}

	proj := newTestProjector().Project(testSeasons(), spec)

	require.Len(t, proj.Entries, 1)
	assert.Equal(t, "sidequest01", proj.Entries[0].VideoID)
}

func TestProject_LedgerTitlesPreferred(t *testing.T) {
	proj := newTestProjector().Project(testSeasons(), &PlaylistSpec{Name: "everything"})

	assert.Equal(t, "Episode 1 (ledger)", proj.Entries[1].Title)
}

func TestProject_MissingLedgerEntryUsesAuthoredTitle(t *testing.T) {
	seasons := []*Season{{
		Season: "S",
		Videos: []*Episode{
			{Episode: "Unscanned Episode", Public: "unscanned01", Duration: 300},
		},
	}}
	p := NewProjector(&fakeLedger{videos: map[string]*storage.Video{}}, zerolog.Nop())

	proj := p.Project(seasons, &PlaylistSpec{Name: "x"})

	require.Len(t, proj.Entries, 1)
	assert.Equal(t, "Unscanned Episode", proj.Entries[0].Title)
	assert.Equal(t, int64(300), proj.TotalDuration, "authored duration stands in for the ledger")
}

func TestProject_EntryWithoutReferenceSkipped(t *testing.T) {
	seasons := []*Season{{
		Season: "S",
		Videos: []*Episode{
			{Episode: "Lost Episode"},
			{Episode: "Kept Episode", Public: "keptepisode"},
		},
	}}

	proj := newTestProjector().Project(seasons, &PlaylistSpec{Name: "x"})

	require.Len(t, proj.Entries, 1)
	assert.Equal(t, "keptepisode", proj.Entries[0].VideoID)
	assert.Equal(t, 1, proj.Episodes)
}

func TestProject_DropoutOnlyOmittedQuietly(t *testing.T) {
	seasons := []*Season{{
		Season: "S",
		Videos: []*Episode{
			{Episode: "Paid Episode", Dropout: "https://www.dropout.tv/some-episode"},
		},
	}}

	proj := newTestProjector().Project(seasons, &PlaylistSpec{Name: "x"})

	assert.Empty(t, proj.Entries)
	assert.Zero(t, proj.Episodes)
}

func TestProject_SortByOldest(t *testing.T) {
	seasons := []*Season{{
		Season: "S",
		SortBy: "oldest",
		Videos: []*Episode{
			// Authored newest-first; ledger publish times invert the order.
			{Episode: "Episode 2", Members: "episode0002"},
			{Episode: "Episode 1", Public: "episode0001"},
		},
	}}

	proj := newTestProjector().Project(seasons, &PlaylistSpec{Name: "x"})

	require.Len(t, proj.Entries, 2)
	assert.Equal(t, "episode0001", proj.Entries[0].VideoID)
	assert.Equal(t, "episode0002", proj.Entries[1].VideoID)
}

func TestDescribe(t *testing.T) {
	proj := &Projection{Episodes: 20, Extras: 5, Seasons: 2, Videos: 25, Members: 3, TotalDuration: 90000}

	got := proj.Describe("All {episodes} episodes and {extras} extras across {seasons} seasons ({hours} hours).")

	assert.Equal(t, "All 20 episodes and 5 extras across 2 seasons (25 hours).", got)
}

func TestVideoIDFromRef(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc123", "dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, videoIDFromRef(tt.ref), tt.ref)
	}
}

func TestRebuild(t *testing.T) {
	specs := []*PlaylistSpec{
		{Name: "everything", PlaylistID: "PLxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", Description: "{episodes} episodes"},
		{Name: "free", Include: Predicate{FreeOnly: true}, Description: "free stuff"},
	}

	playlists := newTestProjector().Rebuild(testSeasons(), specs)

	require.Len(t, playlists, 2)
	assert.Equal(t, "everything", playlists[0].Name)
	assert.Equal(t, "3 episodes", playlists[0].Description)
	assert.Len(t, playlists[0].Videos, 6)
	assert.Empty(t, playlists[1].PlaylistID)
}
