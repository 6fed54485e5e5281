package youtube

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ytcurate/storage"
)

// Directory resolves channel handles to stable channel IDs, backed by
// the record store. A handle already present in the store is never
// re-resolved; the store row is the cache.
type Directory struct {
	client *Client
	store  *storage.Store
	log    zerolog.Logger
}

// NewDirectory creates a channel directory over the given client and store.
func NewDirectory(client *Client, store *storage.Store, logger zerolog.Logger) *Directory {
	return &Directory{
		client: client,
		store:  store,
		log:    logger.With().Str("component", "directory").Logger(),
	}
}

// Resolve returns the channel for a handle, handle URL, or
// "channel/<id>" reference, consulting the store first and the platform
// only for handles never seen before. Newly resolved channels are added
// to the store; existing rows are returned as-is without refreshing.
func (d *Directory) Resolve(ctx context.Context, handleOrURL string) (*storage.Channel, error) {
	normalized := NormalizeHandle(handleOrURL)

	var handle, channelID string
	if id, ok := strings.CutPrefix(normalized, "channel/"); ok {
		channelID = id
		if existing, err := d.store.ChannelByID(channelID); err == nil {
			return existing, nil
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	} else {
		handle = normalized
		if existing, err := d.store.ChannelByHandle(handle); err == nil {
			return existing, nil
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	refreshedAt := time.Now().UTC()
	d.log.Info().Str("handle", handleOrURL).Msg("resolving unknown channel")

	resolved, err := d.client.LookupChannel(ctx, handle, channelID)
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339, resolved.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	channel := &storage.Channel{
		ChannelID:       resolved.ChannelID,
		Handle:          resolved.Handle,
		Name:            resolved.Name,
		CreatedAt:       createdAt,
		RefreshedAt:     refreshedAt,
		VideoCount:      resolved.VideoCount,
		SubscriberCount: resolved.SubscriberCount,
		ViewCount:       resolved.ViewCount,
	}
	if channel.Handle == "" {
		channel.Handle = handle
	}

	if err := d.store.PutChannel(channel); err != nil {
		return nil, err
	}
	return channel, nil
}
