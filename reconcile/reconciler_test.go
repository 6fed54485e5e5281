package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytcurate/storage"
	"ytcurate/youtube"
)

// fakeAPI keeps one in-memory playlist per ID and counts mutations.
type fakeAPI struct {
	entries   map[string][]youtube.PlaylistItem
	info      map[string]youtube.PlaylistInfo
	failList  map[string]error
	mutations int
	updates   int
	nextEntry int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		entries:  map[string][]youtube.PlaylistItem{},
		info:     map[string]youtube.PlaylistInfo{},
		failList: map[string]error{},
	}
}

func (f *fakeAPI) PlaylistInfo(ctx context.Context, playlistID string) (*youtube.PlaylistInfo, error) {
	info := f.info[playlistID]
	return &info, nil
}

func (f *fakeAPI) UpdatePlaylistInfo(ctx context.Context, playlistID, title, description string) error {
	f.updates++
	f.info[playlistID] = youtube.PlaylistInfo{Title: title, Description: description}
	return nil
}

func (f *fakeAPI) PlaylistEntries(ctx context.Context, playlistID string) ([]youtube.PlaylistItem, error) {
	if err := f.failList[playlistID]; err != nil {
		return nil, err
	}
	return append([]youtube.PlaylistItem(nil), f.entries[playlistID]...), nil
}

func (f *fakeAPI) InsertPlaylistEntry(ctx context.Context, playlistID, videoID string, position int64) error {
	f.mutations++
	f.nextEntry++
	item := youtube.PlaylistItem{EntryID: fmt.Sprintf("new-%d", f.nextEntry), VideoID: videoID}
	list := f.entries[playlistID]
	if int(position) > len(list) {
		return fmt.Errorf("insert position %d out of range", position)
	}
	f.entries[playlistID] = append(list[:position], append([]youtube.PlaylistItem{item}, list[position:]...)...)
	return nil
}

func (f *fakeAPI) MovePlaylistEntry(ctx context.Context, entryID, playlistID, videoID string, position int64) error {
	f.mutations++
	list := f.entries[playlistID]
	for i, item := range list {
		if item.EntryID == entryID {
			list = append(list[:i], list[i+1:]...)
			f.entries[playlistID] = append(list[:position], append([]youtube.PlaylistItem{item}, list[position:]...)...)
			return nil
		}
	}
	return fmt.Errorf("move of unknown entry %q", entryID)
}

func (f *fakeAPI) DeletePlaylistEntry(ctx context.Context, entryID string) error {
	f.mutations++
	for playlistID, list := range f.entries {
		for i, item := range list {
			if item.EntryID == entryID {
				f.entries[playlistID] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("delete of unknown entry %q", entryID)
}

func (f *fakeAPI) videoIDs(playlistID string) []string {
	ids := make([]string, 0, len(f.entries[playlistID]))
	for _, item := range f.entries[playlistID] {
		ids = append(ids, item.VideoID)
	}
	return ids
}

func TestReconcile_NoOpIssuesNoMutations(t *testing.T) {
	api := newFakeAPI()
	api.entries["PL1"] = itemsOf("abc")
	api.info["PL1"] = youtube.PlaylistInfo{Title: "My Playlist", Description: "desc"}

	pl := &storage.Playlist{
		Name: "My Playlist", PlaylistID: "PL1", Description: "desc",
		Videos: []storage.PlaylistEntry{{VideoID: "a"}, {VideoID: "b"}, {VideoID: "c"}},
	}

	require.NoError(t, NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), pl))

	assert.Zero(t, api.mutations)
	assert.Zero(t, api.updates)
}

func TestReconcile_ConvergesScrambledPlaylist(t *testing.T) {
	api := newFakeAPI()
	api.entries["PL1"] = itemsOf("cabzx")
	api.info["PL1"] = youtube.PlaylistInfo{Title: "old title", Description: "old"}

	pl := &storage.Playlist{
		Name: "new title", PlaylistID: "PL1", Description: "new",
		Videos: []storage.PlaylistEntry{
			{VideoID: "a"}, {VideoID: "b"}, {VideoID: "c"}, {VideoID: "d"},
		},
	}

	require.NoError(t, NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), pl))

	assert.Equal(t, []string{"a", "b", "c", "d"}, api.videoIDs("PL1"))
	assert.Equal(t, youtube.PlaylistInfo{Title: "new title", Description: "new"}, api.info["PL1"])
	assert.Equal(t, 1, api.updates)
}

func TestReconcile_TrimmedMetadataComparison(t *testing.T) {
	api := newFakeAPI()
	api.entries["PL1"] = itemsOf("a")
	api.info["PL1"] = youtube.PlaylistInfo{Title: "  My Playlist ", Description: "desc\n"}

	pl := &storage.Playlist{
		Name: "My Playlist", PlaylistID: "PL1", Description: "desc",
		Videos: []storage.PlaylistEntry{{VideoID: "a"}},
	}

	require.NoError(t, NewReconciler(api, zerolog.Nop()).Reconcile(context.Background(), pl))

	assert.Zero(t, api.updates, "whitespace-only differences must not trigger writes")
}

func TestRun_IsolatesPlaylistFailures(t *testing.T) {
	api := newFakeAPI()
	api.entries["PL2"] = itemsOf("")
	api.failList["PL1"] = errors.New("backend error")

	playlists := []*storage.Playlist{
		{Name: "broken", PlaylistID: "PL1", Videos: []storage.PlaylistEntry{{VideoID: "a"}}},
		{Name: "fine", PlaylistID: "PL2", Videos: []storage.PlaylistEntry{{VideoID: "b"}}},
	}

	err := NewReconciler(api, zerolog.Nop()).Run(context.Background(), playlists)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")

	assert.Equal(t, []string{"b"}, api.videoIDs("PL2"), "healthy playlist still reconciled")
}

func TestRun_SkipsPlaylistsWithoutRemoteID(t *testing.T) {
	api := newFakeAPI()

	playlists := []*storage.Playlist{
		{Name: "draft", Videos: []storage.PlaylistEntry{{VideoID: "a"}}},
	}

	require.NoError(t, NewReconciler(api, zerolog.Nop()).Run(context.Background(), playlists))
	assert.Zero(t, api.mutations)
}
