package youtube

import (
	"context"
	"time"
)

const feedPageSize = 50

// FeedItem is one video observed while walking a feed listing, with
// optional detail fields filled in when the caller requested them.
type FeedItem struct {
	VideoID     string
	Title       string
	PublishedAt time.Time
	// Duration is the precise length in seconds; zero when details were
	// not fetched.
	Duration int64
	// Engagement counters; nil when details were not fetched or hidden.
	ViewCount    *int64
	LikeCount    *int64
	CommentCount *int64
	// Region restriction lists, when the platform reports them.
	RegionsAllowed []string
	RegionsBlocked []string
}

// FeedOptions configures a feed read.
type FeedOptions struct {
	// Since is the lower-bound watermark: the walk stops as soon as an
	// item published strictly before it is reached, and the read is then
	// reported non-exhaustive. Zero means walk to the end of the feed.
	Since time.Time
	// Details requests a batched per-page detail lookup (precise duration,
	// engagement counters, region restrictions).
	Details bool
}

// ReadFeed walks a feed listing newest-first, yielding each item in
// platform order. Restartable but not resumable: every call starts from
// the head of the feed. The returned exhaustive flag is true only when
// the feed's true end was reached; it is false when the walk was cut
// short by the watermark or by a yield error.
//
// A listing that does not exist on the platform is reported as
// ErrListingNotFound; callers decide whether that is tolerable.
func (c *Client) ReadFeed(ctx context.Context, listingID string, opts FeedOptions, yield func(FeedItem) error) (bool, error) {
	pageToken := ""

	for {
		var items []FeedItem
		var nextToken string

		err := c.call(ctx, "playlistItems.list", func(ctx context.Context) error {
			call := c.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
				PlaylistId(listingID).
				MaxResults(feedPageSize).
				PageToken(pageToken).
				Context(ctx)

			resp, err := call.Do()
			if err != nil {
				if isNotFound(err) {
					return ErrListingNotFound
				}
				return err
			}

			items = items[:0]
			for _, item := range resp.Items {
				fi := FeedItem{VideoID: item.ContentDetails.VideoId}
				if item.Snippet != nil {
					fi.Title = item.Snippet.Title
				}
				if t, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt); err == nil {
					fi.PublishedAt = t
				}
				items = append(items, fi)
			}
			nextToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return false, &APIError{Op: "playlistItems.list", ID: listingID, Err: err}
		}

		if opts.Details && len(items) > 0 {
			if err := c.fetchDetails(ctx, items); err != nil {
				return false, err
			}
		}

		for _, item := range items {
			if !opts.Since.IsZero() && item.PublishedAt.Before(opts.Since) {
				// More data exists below the watermark: non-exhaustive.
				return false, nil
			}
			if err := yield(item); err != nil {
				return false, err
			}
		}

		if nextToken == "" {
			return true, nil
		}
		pageToken = nextToken
	}
}

// fetchDetails fills in detail fields for one page of items with a
// single batched videos.list call. Batching keeps the call count at one
// per page instead of one per item.
func (c *Client) fetchDetails(ctx context.Context, items []FeedItem) error {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.VideoID
	}

	details := make(map[string]FeedItem, len(ids))
	err := c.call(ctx, "videos.list", func(ctx context.Context) error {
		resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(ids...).
			MaxResults(feedPageSize).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		for _, v := range resp.Items {
			d := FeedItem{VideoID: v.Id}
			if v.ContentDetails != nil {
				d.Duration = parseISODuration(v.ContentDetails.Duration)
				if rr := v.ContentDetails.RegionRestriction; rr != nil {
					d.RegionsAllowed = rr.Allowed
					d.RegionsBlocked = rr.Blocked
				}
			}
			if v.Statistics != nil {
				views := int64(v.Statistics.ViewCount)
				likes := int64(v.Statistics.LikeCount)
				comments := int64(v.Statistics.CommentCount)
				d.ViewCount = &views
				d.LikeCount = &likes
				d.CommentCount = &comments
			}
			details[v.Id] = d
		}
		return nil
	})
	if err != nil {
		return &APIError{Op: "videos.list", Err: err}
	}

	for i := range items {
		d, ok := details[items[i].VideoID]
		if !ok {
			// Detail lookup can omit videos that vanished between the two
			// calls; the summary fields still stand.
			continue
		}
		items[i].Duration = d.Duration
		items[i].ViewCount = d.ViewCount
		items[i].LikeCount = d.LikeCount
		items[i].CommentCount = d.CommentCount
		items[i].RegionsAllowed = d.RegionsAllowed
		items[i].RegionsBlocked = d.RegionsBlocked
	}
	return nil
}
