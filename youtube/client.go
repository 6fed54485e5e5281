package youtube

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytcurate/internal/retry"
)

// Client wraps the YouTube Data API v3 service with rate limiting and
// retries. Construct one per run and pass it to the components that
// need it; it holds no global state.
type Client struct {
	svc     *youtube.Service
	limiter *rate.Limiter
	retry   retry.Config
	log     zerolog.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// APIKey is the Data API key used for read calls.
	APIKey string
	// RequestsPerSecond caps outgoing calls. Zero means the default (1 rps).
	RequestsPerSecond float64
	// Retry overrides the retry policy. Zero value means retry.DefaultConfig.
	Retry retry.Config
	// Options are extra service options, e.g. an OAuth token source for
	// playlist mutations. Token refresh bookkeeping lives with the caller.
	Options []option.ClientOption
}

// NewClient creates a platform API client.
func NewClient(ctx context.Context, cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" && len(cfg.Options) == 0 {
		return nil, fmt.Errorf("youtube: api key or client options required")
	}

	opts := make([]option.ClientOption, 0, len(cfg.Options)+1)
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	opts = append(opts, cfg.Options...)

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}

	rcfg := cfg.Retry
	if rcfg.MaxRetries == 0 {
		rcfg = retry.DefaultConfig()
	}

	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   rcfg,
		log:     logger.With().Str("component", "youtube").Logger(),
	}, nil
}

// call waits for the rate limiter and runs fn under the retry policy.
// A quota rejection that survives the retries surfaces as ErrRateLimited.
func (c *Client) call(ctx context.Context, op string, fn func(context.Context) error) error {
	err := retry.Do(ctx, c.retry, classifyAPIError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		c.log.Debug().Str("op", op).Msg("api call")
		return fn(ctx)
	})
	if err != nil && isQuotaError(err) {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}

// classifyAPIError determines whether an API error is worth retrying.
// Not-found and other 4xx responses are permanent; quota rejections and
// transport failures are retried with backoff.
func classifyAPIError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if isNotFound(err) {
		return false
	}
	if isQuotaError(err) {
		return true
	}
	if errors.Is(err, ErrChannelNotFound) || errors.Is(err, ErrListingNotFound) {
		return false
	}
	return true
}

// ResolvedChannel is the remote metadata for a resolved channel.
type ResolvedChannel struct {
	ChannelID       string
	Handle          string
	Name            string
	CreatedAt       string // RFC3339, parsed by the caller
	VideoCount      int64
	SubscriberCount int64
	ViewCount       int64
}

// LookupChannel resolves a handle or channel ID against the platform.
// Exactly one of handle and channelID must be non-empty.
func (c *Client) LookupChannel(ctx context.Context, handle, channelID string) (*ResolvedChannel, error) {
	var resolved *ResolvedChannel

	err := c.call(ctx, "channels.list", func(ctx context.Context) error {
		call := c.svc.Channels.List([]string{"snippet", "statistics", "contentDetails"}).Context(ctx)
		if handle != "" {
			call = call.ForHandle(handle)
		} else {
			call = call.Id(channelID)
		}

		resp, err := call.Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrChannelNotFound
		}
		if len(resp.Items) > 1 {
			return fmt.Errorf("ambiguous channel lookup: %d results", len(resp.Items))
		}

		item := resp.Items[0]
		resolved = &ResolvedChannel{
			ChannelID: item.Id,
			Name:      item.Snippet.Title,
			CreatedAt: item.Snippet.PublishedAt,
		}
		if item.Snippet.CustomUrl != "" {
			resolved.Handle = NormalizeHandle(item.Snippet.CustomUrl)
		}
		if item.Statistics != nil {
			resolved.VideoCount = int64(item.Statistics.VideoCount)
			resolved.SubscriberCount = int64(item.Statistics.SubscriberCount)
			resolved.ViewCount = int64(item.Statistics.ViewCount)
		}
		return nil
	})
	if err != nil {
		id := handle
		if id == "" {
			id = channelID
		}
		return nil, &APIError{Op: "channels.list", ID: id, Err: err}
	}

	return resolved, nil
}
