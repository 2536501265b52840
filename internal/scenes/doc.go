// Package scenes owns the story scene queue: an ordered, durable list of
// generated media references that is projected into a panel view and
// submitted to the backend for compilation into a single story video.
//
// A Manager is constructed with its collaborators (key/value store, panel
// renderer, transcript, compiler) and holds no package-level state. Every
// mutation writes the full queue through to the store under one key and
// re-renders the panel; Compile snapshots the queue before the backend call so
// edits made while a request is in flight never alter what was submitted.
package scenes
