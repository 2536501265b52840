// Package notifications announces story compile results via ntfy.
//
// NewService returns an ntfy-backed Service when notifications.ntfy_topic is
// configured and a no-op implementation otherwise, so callers never need to
// check whether notifications are enabled.
package notifications
