package locate

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Kind names a category of location failure, by meaning rather than by the
// numeric code a platform reports.
type Kind string

const (
	KindUnsupported         Kind = "unsupported"
	KindPermissionDenied    Kind = "permission_denied"
	KindPositionUnavailable Kind = "position_unavailable"
	KindTimeout             Kind = "timeout"
	KindUnknown             Kind = "unknown"
)

// Error is a classified location failure, shaped for display.
type Error struct {
	Kind        Kind   `json:"kind"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Classify wraps an arbitrary failure from a provider boundary. Already
// classified errors pass through; context deadlines become Timeout;
// everything else is Unknown with the raw message preserved.
func Classify(err error) *Error {
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "position request timed out"}
	}
	return &Error{Kind: KindUnknown, Message: err.Error()}
}

// WithRemediation attaches platform-specific guidance for permission
// failures. Other kinds are returned unchanged.
func (e *Error) WithRemediation(userAgent string) *Error {
	if e == nil || e.Kind != KindPermissionDenied {
		return e
	}
	c := *e
	c.Remediation = Remediation(userAgent)
	return &c
}

var iosAgent = regexp.MustCompile(`iPhone|iPad|iPod`)

// Remediation returns the steps a user must take to restore location access,
// worded per platform. Newlines are literal and must survive to the display.
func Remediation(userAgent string) string {
	switch {
	case iosAgent.MatchString(userAgent):
		return "Location access is blocked.\n" +
			"Open Settings > Privacy & Security > Location Services.\n" +
			"Turn Location Services on, then allow access for your browser."
	case strings.Contains(userAgent, "Android"):
		return "Location access is blocked.\n" +
			"Open Settings > Location and turn location on.\n" +
			"Then allow location for your browser under Site settings."
	default:
		return "Location access is blocked.\n" +
			"Allow location for this site in your browser settings, then try again."
	}
}
