package storage

import (
	"sort"
	"time"
)

// Channel is a tracked YouTube channel. Channels are created the first
// time a handle is resolved and keyed by their platform-assigned ID;
// only the counters and RefreshedAt are ever updated afterwards.
type Channel struct {
	// ChannelID is the platform channel ID, including the leading "UC".
	ChannelID string `yaml:"channelId"`
	// Handle is the channel's handle, lowercased, without the leading "@".
	Handle string `yaml:"handle"`
	// Name is the channel's display name ("title" in the API).
	Name string `yaml:"name"`
	// CreatedAt is the channel's creation time ("publishedAt" in the API).
	CreatedAt time.Time `yaml:"createdAt"`
	// RefreshedAt is when this metadata was last fetched.
	RefreshedAt time.Time `yaml:"refreshedAt"`
	// VideoCount is the channel's count of publicly-visible videos.
	VideoCount int64 `yaml:"videoCount"`
	// SubscriberCount is the subscriber count, to three digits of precision.
	SubscriberCount int64 `yaml:"subscriberCount"`
	// ViewCount is the channel's total view count, if visible.
	ViewCount int64 `yaml:"viewCount"`
}

// Video is the ledger's record of a single video as last observed in a
// feed. Videos are never physically deleted: absence from a covered
// feed range is recorded in RemovedBefore instead.
type Video struct {
	// VideoID is the platform video ID (11-character token).
	VideoID string `yaml:"videoId"`
	// ChannelID is the owning channel's ID.
	ChannelID string `yaml:"channelId"`
	// PublishedAt is the video's publication time.
	PublishedAt time.Time `yaml:"publishedAt"`
	// Title is the video title.
	Title string `yaml:"title"`
	// Duration is the video length in seconds.
	Duration int64 `yaml:"duration"`
	// MembersOnly is true if the video was observed in the members-only feed.
	MembersOnly bool `yaml:"membersOnly,omitempty"`
	// RemovedBefore is the start time of the scan that first observed this
	// video missing from a feed range that previously contained it. Set
	// once; cleared only if the video reappears.
	RemovedBefore *time.Time `yaml:"removedBefore,omitempty"`

	// Engagement counters from the detail lookup. Nil when the observing
	// scan did not fetch details; an upsert with nil counters preserves
	// previously known values.
	ViewCount    *int64 `yaml:"viewCount,omitempty"`
	LikeCount    *int64 `yaml:"likeCount,omitempty"`
	CommentCount *int64 `yaml:"commentCount,omitempty"`

	// Region restriction lists, when the platform reports them.
	RegionsAllowed []string `yaml:"regionsAllowed,omitempty"`
	RegionsBlocked []string `yaml:"regionsBlocked,omitempty"`
}

// Removed reports whether the video carries a soft-deletion marker.
func (v *Video) Removed() bool { return v.RemovedBefore != nil }

// Scan records one scan attempt of a channel. ScannedAt doubles as the
// scan's unique identifier. Appended once the attempt concludes and
// never mutated afterwards.
type Scan struct {
	// ChannelID is the channel that was scanned.
	ChannelID string `yaml:"channelId"`
	// ChannelHandle is denormalized for readability of the scans file.
	ChannelHandle string `yaml:"channelHandle"`
	// ScannedAt is when this scan attempt started.
	ScannedAt time.Time `yaml:"scannedAt"`
	// ScannedTo is the watermark this attempt is valid down to. Nil means
	// the scan exhausted every feed back to the beginning of time.
	ScannedTo *time.Time `yaml:"scannedTo"`
}

// Exhaustive reports whether the scan walked its feeds to their true end.
func (s *Scan) Exhaustive() bool { return s.ScannedTo == nil }

// Playlist is the desired state of one target playlist, rebuilt from
// scratch on every aggregation run. Entry order is the desired remote
// order.
type Playlist struct {
	Name        string          `yaml:"name"`
	PlaylistID  string          `yaml:"playlistId"`
	Description string          `yaml:"description"`
	Videos      []PlaylistEntry `yaml:"videos"`
}

// PlaylistEntry pairs a video ID with its display title at projection time.
type PlaylistEntry struct {
	VideoID string `yaml:"videoId"`
	Title   string `yaml:"title"`
}

// VideoIDs returns the playlist's video IDs in desired order.
func (p *Playlist) VideoIDs() []string {
	ids := make([]string, len(p.Videos))
	for i, e := range p.Videos {
		ids[i] = e.VideoID
	}
	return ids
}

// Documented sort keys, applied before every write.

func sortChannels(channels []*Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].CreatedAt.Before(channels[j].CreatedAt)
	})
}

func sortVideos(videos []*Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		if !videos[i].PublishedAt.Equal(videos[j].PublishedAt) {
			return videos[i].PublishedAt.Before(videos[j].PublishedAt)
		}
		return videos[i].VideoID < videos[j].VideoID
	})
}

func sortScans(scans []*Scan) {
	sort.SliceStable(scans, func(i, j int) bool {
		if scans[i].ChannelID != scans[j].ChannelID {
			return scans[i].ChannelID < scans[j].ChannelID
		}
		return scans[i].ScannedAt.After(scans[j].ScannedAt)
	})
}

func sortPlaylists(playlists []*Playlist) {
	sort.SliceStable(playlists, func(i, j int) bool {
		return playlists[i].Name < playlists[j].Name
	})
}
