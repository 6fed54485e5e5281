// Package youtube talks to the YouTube Data API v3: channel resolution,
// feed listing with batched detail lookup, and playlist mutation. All
// remote calls go through a shared token-bucket rate limiter and the
// retry policy configured on the Client.
package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for remote platform operations.
var (
	// ErrChannelNotFound indicates the channel handle or ID does not resolve.
	ErrChannelNotFound = errors.New("youtube: channel not found")
	// ErrListingNotFound indicates a feed or playlist listing does not exist
	// on the platform, e.g. a channel with no members-only tier. Callers
	// treat this as an empty, exhaustive listing rather than a failure.
	ErrListingNotFound = errors.New("youtube: listing not found")
	// ErrRateLimited indicates the platform rejected a request for quota reasons.
	ErrRateLimited = errors.New("youtube: rate limited")
)

// APIError wraps platform API errors with context about what failed.
type APIError struct {
	// Op is the remote operation ("channels.list", "playlistItems.insert", ...).
	Op string
	// ID is the channel, listing or entry ID involved.
	ID string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the API error.
func (e *APIError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("youtube: %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("youtube: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *APIError) Unwrap() error { return e.Err }

var (
	videoIDPattern   = regexp.MustCompile(`^[0-9A-Za-z_\-]{11}$`)
	channelIDPattern = regexp.MustCompile(`^UC[0-9A-Za-z_\-]{22}$`)
)

// IsVideoID reports whether s is a well-formed video ID.
func IsVideoID(s string) bool { return videoIDPattern.MatchString(s) }

// IsChannelID reports whether s is a well-formed channel ID.
func IsChannelID(s string) bool { return channelIDPattern.MatchString(s) }

// UploadsFeedID derives a channel's public uploads listing ID. The
// platform uses the channel ID with the "UC" prefix swapped for "UU".
func UploadsFeedID(channelID string) string {
	return "UU" + strings.TrimPrefix(channelID, "UC")
}

// MembersFeedID derives a channel's members-only listing ID ("UUMO"
// prefix). The listing does not exist for channels without a members
// tier; reading it then yields ErrListingNotFound.
func MembersFeedID(channelID string) string {
	return "UUMO" + strings.TrimPrefix(channelID, "UC")
}

// NormalizeHandle canonicalizes user input for directory lookup. The API
// lowercases handles even where URLs and UI preserve case, so matching
// has to normalize the same way. Accepts bare handles, "@handle",
// youtube.com handle URLs with share suffixes, and "channel/<id>" paths
// (returned unchanged apart from the prefix).
func NormalizeHandle(input string) string {
	s := strings.TrimSpace(input)
	s = urlPrefixPattern.ReplaceAllString(s, "")
	s = shareSuffixPattern.ReplaceAllString(s, "")
	if strings.HasPrefix(s, "channel/") {
		return s
	}
	return strings.ToLower(s)
}

var (
	urlPrefixPattern   = regexp.MustCompile(`^(https?://(www\.)?youtube\.com/)?/?@?`)
	shareSuffixPattern = regexp.MustCompile(`\?si=\w+$`)
)

// isNotFound reports whether err is the platform's 404 response.
func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// isQuotaError reports whether err is a quota or rate limit rejection.
func isQuotaError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	for _, e := range gerr.Errors {
		if e.Reason == "quotaExceeded" || e.Reason == "rateLimitExceeded" {
			return true
		}
	}
	return false
}
