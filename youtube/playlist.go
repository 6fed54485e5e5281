package youtube

import (
	"context"

	"google.golang.org/api/youtube/v3"
)

// PlaylistItem is one entry in a live playlist: the platform's entry
// handle (needed for deletion) plus the video it points at.
type PlaylistItem struct {
	EntryID string
	VideoID string
}

// PlaylistInfo is a live playlist's metadata snapshot.
type PlaylistInfo struct {
	Title       string
	Description string
}

// PlaylistInfo reads a playlist's current title and description.
func (c *Client) PlaylistInfo(ctx context.Context, playlistID string) (*PlaylistInfo, error) {
	var info *PlaylistInfo

	err := c.call(ctx, "playlists.list", func(ctx context.Context) error {
		resp, err := c.svc.Playlists.List([]string{"snippet"}).
			Id(playlistID).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrListingNotFound
		}
		info = &PlaylistInfo{
			Title:       resp.Items[0].Snippet.Title,
			Description: resp.Items[0].Snippet.Description,
		}
		return nil
	})
	if err != nil {
		return nil, &APIError{Op: "playlists.list", ID: playlistID, Err: err}
	}
	return info, nil
}

// UpdatePlaylistInfo overwrites a playlist's title and description.
func (c *Client) UpdatePlaylistInfo(ctx context.Context, playlistID, title, description string) error {
	err := c.call(ctx, "playlists.update", func(ctx context.Context) error {
		update := &youtube.Playlist{
			Id: playlistID,
			Snippet: &youtube.PlaylistSnippet{
				Title:       title,
				Description: description,
			},
		}
		_, err := c.svc.Playlists.Update([]string{"snippet"}, update).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "playlists.update", ID: playlistID, Err: err}
	}
	return nil
}

// PlaylistEntries reads a playlist's full current membership in order.
func (c *Client) PlaylistEntries(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var entries []PlaylistItem
	pageToken := ""

	for {
		var nextToken string
		err := c.call(ctx, "playlistItems.list", func(ctx context.Context) error {
			resp, err := c.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(playlistID).
				MaxResults(feedPageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			if err != nil {
				if isNotFound(err) {
					return ErrListingNotFound
				}
				return err
			}
			for _, item := range resp.Items {
				entries = append(entries, PlaylistItem{
					EntryID: item.Id,
					VideoID: item.ContentDetails.VideoId,
				})
			}
			nextToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return nil, &APIError{Op: "playlistItems.list", ID: playlistID, Err: err}
		}
		if nextToken == "" {
			return entries, nil
		}
		pageToken = nextToken
	}
}

// InsertPlaylistEntry inserts a video at an explicit position.
func (c *Client) InsertPlaylistEntry(ctx context.Context, playlistID, videoID string, position int64) error {
	err := c.call(ctx, "playlistItems.insert", func(ctx context.Context) error {
		insert := &youtube.PlaylistItem{
			Snippet: &youtube.PlaylistItemSnippet{
				PlaylistId: playlistID,
				Position:   position,
				ResourceId: &youtube.ResourceId{
					Kind:    "youtube#video",
					VideoId: videoID,
				},
			},
		}
		// Position zero is meaningful and must be sent explicitly.
		insert.Snippet.ForceSendFields = []string{"Position"}
		_, err := c.svc.PlaylistItems.Insert([]string{"snippet"}, insert).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "playlistItems.insert", ID: videoID, Err: err}
	}
	return nil
}

// MovePlaylistEntry repositions an existing entry within its playlist.
// Moving keeps the entry handle stable, so a reorder is one mutation
// instead of a delete and a re-insert.
func (c *Client) MovePlaylistEntry(ctx context.Context, entryID, playlistID, videoID string, position int64) error {
	err := c.call(ctx, "playlistItems.update", func(ctx context.Context) error {
		update := &youtube.PlaylistItem{
			Id: entryID,
			Snippet: &youtube.PlaylistItemSnippet{
				PlaylistId: playlistID,
				Position:   position,
				ResourceId: &youtube.ResourceId{
					Kind:    "youtube#video",
					VideoId: videoID,
				},
			},
		}
		update.Snippet.ForceSendFields = []string{"Position"}
		_, err := c.svc.PlaylistItems.Update([]string{"snippet"}, update).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return &APIError{Op: "playlistItems.update", ID: entryID, Err: err}
	}
	return nil
}

// DeletePlaylistEntry removes an entry by its entry handle. Entry
// handles are stable under reordering, which is why removals are keyed
// by them rather than by position.
func (c *Client) DeletePlaylistEntry(ctx context.Context, entryID string) error {
	err := c.call(ctx, "playlistItems.delete", func(ctx context.Context) error {
		return c.svc.PlaylistItems.Delete(entryID).Context(ctx).Do()
	})
	if err != nil {
		return &APIError{Op: "playlistItems.delete", ID: entryID, Err: err}
	}
	return nil
}
