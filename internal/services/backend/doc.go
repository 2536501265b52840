// Package backend talks to the character-chat backend's REST API.
//
// Only the endpoints the scene queue needs are wrapped: compile-story, which
// concatenates queued scenes into one story video, and a health probe used by
// preflight checks.
package backend
