package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// File names within the store directory, one logical array per entity.
const (
	channelsFile  = "channels.yaml"
	videosFile    = "videos.yaml"
	scansFile     = "scans.yaml"
	playlistsFile = "playlists.yaml"

	lockTimeout = 5 * time.Second
)

// Store is the record store backing all persisted state: the channel
// directory, the video ledger, the scan history and the generated
// playlists. All mutations are in-memory until Flush writes every file
// back in its documented sort order; callers flush at unit-of-work
// boundaries so a crash never leaves a half-merged scan behind.
//
// A Store holds an exclusive lock on its directory for its lifetime.
// The design assumes a single run owns the store for its duration.
type Store struct {
	dir  string
	lock *FileLock

	mu        sync.RWMutex
	channels  []*Channel
	videos    []*Video
	scans     []*Scan
	playlists []*Playlist

	channelByID map[string]*Channel
	videoByID   map[string]*Video
}

// Open loads the record store rooted at dir, creating the directory if
// needed. It fails fast on records that violate uniqueness invariants,
// since continuing would corrupt persisted state.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StorageError{Op: "open", Entity: "store", ID: dir, Err: err}
	}

	s := &Store{
		dir:  dir,
		lock: NewFileLock(filepath.Join(dir, "store")),
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

// Close releases the store's directory lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Unlock()
}

func (s *Store) load() error {
	if err := readRecords(filepath.Join(s.dir, channelsFile), &s.channels); err != nil {
		return &StorageError{Op: "read", Entity: "channel", Err: err}
	}
	if err := readRecords(filepath.Join(s.dir, videosFile), &s.videos); err != nil {
		return &StorageError{Op: "read", Entity: "video", Err: err}
	}
	if err := readRecords(filepath.Join(s.dir, scansFile), &s.scans); err != nil {
		return &StorageError{Op: "read", Entity: "scan", Err: err}
	}
	if err := readRecords(filepath.Join(s.dir, playlistsFile), &s.playlists); err != nil {
		return &StorageError{Op: "read", Entity: "playlist", Err: err}
	}

	s.channelByID = make(map[string]*Channel, len(s.channels))
	for _, ch := range s.channels {
		if _, dup := s.channelByID[ch.ChannelID]; dup {
			return &StorageError{Op: "read", Entity: "channel", ID: ch.ChannelID, Err: ErrDuplicateID}
		}
		s.channelByID[ch.ChannelID] = ch
	}

	s.videoByID = make(map[string]*Video, len(s.videos))
	for _, v := range s.videos {
		if _, dup := s.videoByID[v.VideoID]; dup {
			return &StorageError{Op: "read", Entity: "video", ID: v.VideoID, Err: ErrDuplicateID}
		}
		s.videoByID[v.VideoID] = v
	}

	return nil
}

// Flush sorts every entity array by its documented key and writes all
// files atomically (temp file + rename, one file at a time).
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sortChannels(s.channels)
	sortVideos(s.videos)
	sortScans(s.scans)
	sortPlaylists(s.playlists)

	if err := writeRecords(filepath.Join(s.dir, channelsFile), s.channels); err != nil {
		return &StorageError{Op: "write", Entity: "channel", Err: err}
	}
	if err := writeRecords(filepath.Join(s.dir, videosFile), s.videos); err != nil {
		return &StorageError{Op: "write", Entity: "video", Err: err}
	}
	if err := writeRecords(filepath.Join(s.dir, scansFile), s.scans); err != nil {
		return &StorageError{Op: "write", Entity: "scan", Err: err}
	}
	if err := writeRecords(filepath.Join(s.dir, playlistsFile), s.playlists); err != nil {
		return &StorageError{Op: "write", Entity: "playlist", Err: err}
	}
	return nil
}

func readRecords(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

func writeRecords[T any](path string, records []*T) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return err
	}

	w, err := NewAtomicWriter(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}

// --- Channel directory ---

// ChannelByID returns the channel with the given platform ID.
func (s *Store) ChannelByID(id string) (*Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.channelByID[id]
	if !ok {
		return nil, &StorageError{Op: "read", Entity: "channel", ID: id, Err: ErrNotFound}
	}
	return ch, nil
}

// ChannelByHandle returns the channel with the given normalized handle.
// Handles are mutable over time; the channel ID is the primary key.
func (s *Store) ChannelByHandle(handle string) (*Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.channels {
		if ch.Handle == handle {
			return ch, nil
		}
	}
	return nil, &StorageError{Op: "read", Entity: "channel", ID: handle, Err: ErrNotFound}
}

// PutChannel inserts a newly resolved channel, or refreshes the mutable
// fields of an existing one. ChannelID and CreatedAt never change once
// recorded.
func (s *Store) PutChannel(ch *Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.channelByID[ch.ChannelID]
	if !ok {
		stored := *ch
		s.channels = append(s.channels, &stored)
		s.channelByID[stored.ChannelID] = &stored
		return nil
	}

	existing.Handle = ch.Handle
	existing.Name = ch.Name
	existing.RefreshedAt = ch.RefreshedAt
	existing.VideoCount = ch.VideoCount
	existing.SubscriberCount = ch.SubscriberCount
	existing.ViewCount = ch.ViewCount
	return nil
}

// Channels returns all known channels.
func (s *Store) Channels() []*Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Channel(nil), s.channels...)
}

// --- Scan history ---

// AppendScan records a concluded scan attempt. Scan records are
// append-only; attempting to append the same (channel, start) twice is
// an invariant violation.
func (s *Store) AppendScan(scan *Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.scans {
		if existing.ChannelID == scan.ChannelID && existing.ScannedAt.Equal(scan.ScannedAt) {
			return &StorageError{Op: "append", Entity: "scan", ID: scan.ChannelID, Err: ErrDuplicateID}
		}
	}

	stored := *scan
	s.scans = append(s.scans, &stored)
	return nil
}

// ScanHistory returns all scans for a channel, most recent first.
func (s *Store) ScanHistory(channelID string) []*Scan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []*Scan
	for _, scan := range s.scans {
		if scan.ChannelID == channelID {
			history = append(history, scan)
		}
	}
	sortScans(history)
	return history
}

// --- Playlists ---

// SetPlaylists replaces the stored playlists wholesale. Desired playlist
// state is rebuilt from scratch on every aggregation run, never merged.
func (s *Store) SetPlaylists(playlists []*Playlist) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playlists = make([]*Playlist, len(playlists))
	for i, p := range playlists {
		stored := *p
		s.playlists[i] = &stored
	}
}

// Playlists returns the stored desired playlists.
func (s *Store) Playlists() []*Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Playlist(nil), s.playlists...)
}
