package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Acquisition failure kinds. Every failure surfaced by the engine wraps
// exactly one of these sentinels so callers can branch with errors.Is.
var (
	// ErrInvalidURL is returned when the input is not an Instagram post URL.
	ErrInvalidURL = errors.New("invalid instagram URL")

	// ErrNoShortcode is returned when no shortcode can be extracted from the URL.
	ErrNoShortcode = errors.New("could not extract shortcode from URL")

	// ErrUnauthorized is returned when the upstream rejects the request as unauthorized.
	ErrUnauthorized = errors.New("unauthorized by upstream")

	// ErrNotFound is returned when the post does not exist or was deleted.
	ErrNotFound = errors.New("post not found")

	// ErrPrivateContent is returned when the post is private or access is denied.
	ErrPrivateContent = errors.New("post is private")

	// ErrNoVideoFound is returned when the post exists but contains no video.
	ErrNoVideoFound = errors.New("no video found in post")

	// ErrNetwork is returned for transport-level failures.
	ErrNetwork = errors.New("network error")

	// ErrTimeout is returned when a request or download exceeds its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrTooLarge is returned when the asset exceeds the configured size bound.
	ErrTooLarge = errors.New("asset exceeds maximum file size")

	// ErrUpstreamFormat is returned when a response parses but not into the
	// shape we expect. Catch-all for upstream markup/schema changes.
	ErrUpstreamFormat = errors.New("upstream response format changed")

	// ErrUnknown is returned for failures that fit no other kind.
	ErrUnknown = errors.New("unknown acquisition error")

	// ErrNoJobs is returned when there are no queued jobs to process.
	ErrNoJobs = errors.New("no jobs available")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")
)

// kinds lists the failure sentinels in classification precedence order.
var kinds = []error{
	ErrInvalidURL, ErrNoShortcode, ErrUnauthorized, ErrNotFound,
	ErrPrivateContent, ErrNoVideoFound, ErrTimeout, ErrTooLarge,
	ErrUpstreamFormat, ErrNetwork, ErrUnknown,
}

// IsTerminal reports whether err is a failure that no alternate strategy or
// retry can fix: the resource is genuinely absent, restricted, or the input
// itself is unusable.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrPrivateContent) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidURL)
}

// Classify maps an arbitrary error to one of the acquisition failure
// sentinels. Errors already wrapping a sentinel are returned unchanged.
// Opaque errors (third-party resolvers, recovered panics) fall back to
// keyword matching on the error text.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return err
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	case strings.Contains(msg, "private"):
		return fmt.Errorf("%w: %s", ErrPrivateContent, err)
	case strings.Contains(msg, "not found") || strings.Contains(msg, "404"):
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	case strings.Contains(msg, "403") || strings.Contains(msg, "forbidden") || strings.Contains(msg, "access denied"):
		return fmt.Errorf("%w: %s", ErrPrivateContent, err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return fmt.Errorf("%w: %s", ErrUnauthorized, err)
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") || strings.Contains(msg, "network"):
		return fmt.Errorf("%w: %s", ErrNetwork, err)
	default:
		return fmt.Errorf("%w: %s", ErrUnknown, err)
	}
}

// KindName returns a short stable name for the failure kind wrapped by err.
// Used for metric labels and event metadata.
func KindName(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrNoShortcode):
		return "no_shortcode"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPrivateContent):
		return "private_content"
	case errors.Is(err, ErrNoVideoFound):
		return "no_video_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, ErrUpstreamFormat):
		return "upstream_format_changed"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	default:
		return "unknown"
	}
}

// AcquireError wraps an error with acquisition context.
type AcquireError struct {
	Shortcode string
	Op        string
	Err       error
}

func (e *AcquireError) Error() string {
	if e.Shortcode != "" {
		return e.Op + " [" + e.Shortcode + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// NewAcquireError creates a new AcquireError.
func NewAcquireError(shortcode, op string, err error) *AcquireError {
	return &AcquireError{
		Shortcode: shortcode,
		Op:        op,
		Err:       err,
	}
}

// UserMessage renders a failure as a single human-readable line. Internal
// diagnostics never reach the end user.
func UserMessage(err error, maxFileSizeMB int) string {
	switch {
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrNoShortcode):
		return "That doesn't look like an Instagram reel link. Please check the URL and try again."
	case errors.Is(err, ErrPrivateContent):
		return "This reel is private and cannot be downloaded."
	case errors.Is(err, ErrNotFound):
		return "Reel not found - it might be deleted. Please check the URL and try again."
	case errors.Is(err, ErrNoVideoFound):
		return "No video found in this post."
	case errors.Is(err, ErrTooLarge):
		return fmt.Sprintf("File too large - maximum size is %dMB.", maxFileSizeMB)
	case errors.Is(err, ErrTimeout):
		return "Download timed out - the reel might be too large or the connection is slow."
	case errors.Is(err, ErrNetwork):
		return "Network error - please try again later."
	default:
		return "Failed to download reel - it might be private, deleted, or temporarily unavailable."
	}
}
