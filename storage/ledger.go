package storage

import "time"

// Ledger operations: the video table is append/merge-only. Each channel
// scan only touches its own channel's rows, so merges commute across
// channels.

// VideoByID returns the ledger entry for a video.
func (s *Store) VideoByID(id string) (*Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videoByID[id]
	if !ok {
		return nil, &StorageError{Op: "read", Entity: "video", ID: id, Err: ErrNotFound}
	}
	return v, nil
}

// VideosByChannel returns the ledger entries for one channel, in
// persisted order (published ascending, ties broken by ID).
func (s *Store) VideosByChannel(channelID string) []*Video {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var videos []*Video
	for _, v := range s.videos {
		if v.ChannelID == channelID {
			videos = append(videos, v)
		}
	}
	sortVideos(videos)
	return videos
}

// UpsertVideo merges an observed feed record into the ledger. Inserts
// if absent; otherwise overwrites mutable fields in place, last write
// wins per field: a partial record (zero duration, nil counters) does
// not null out previously known values. Observation in a feed clears
// any soft-deletion marker, since the feed that yielded the record
// covers its published timestamp by construction.
func (s *Store) UpsertVideo(rec *Video) error {
	if rec.VideoID == "" || rec.ChannelID == "" {
		return &StorageError{Op: "upsert", Entity: "video", ID: rec.VideoID, Err: ErrInvalidRecord}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.videoByID[rec.VideoID]
	if !ok {
		stored := *rec
		stored.RemovedBefore = nil
		s.videos = append(s.videos, &stored)
		s.videoByID[stored.VideoID] = &stored
		return nil
	}

	existing.ChannelID = rec.ChannelID
	existing.PublishedAt = rec.PublishedAt
	existing.Title = rec.Title
	existing.MembersOnly = rec.MembersOnly
	if rec.Duration != 0 {
		existing.Duration = rec.Duration
	}
	if rec.ViewCount != nil {
		existing.ViewCount = rec.ViewCount
	}
	if rec.LikeCount != nil {
		existing.LikeCount = rec.LikeCount
	}
	if rec.CommentCount != nil {
		existing.CommentCount = rec.CommentCount
	}
	if rec.RegionsAllowed != nil {
		existing.RegionsAllowed = rec.RegionsAllowed
	}
	if rec.RegionsBlocked != nil {
		existing.RegionsBlocked = rec.RegionsBlocked
	}
	existing.RemovedBefore = nil

	return nil
}

// MarkRemoved sets a video's soft-deletion marker to the given scan
// start time. The marker is set-once: a video already marked keeps its
// original (earlier) marker.
func (s *Store) MarkRemoved(videoID string, scanStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videoByID[videoID]
	if !ok {
		return &StorageError{Op: "update", Entity: "video", ID: videoID, Err: ErrNotFound}
	}
	if v.RemovedBefore == nil {
		t := scanStart
		v.RemovedBefore = &t
	}
	return nil
}
