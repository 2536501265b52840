// Package transcript renders scene queue activity for a terminal.
//
// Terminal implements both scenes.Renderer and scenes.Transcript. System
// messages and compiled videos are written as they arrive; panel projections
// are buffered and written by Flush so a one-shot command prints the final
// queue state once. Recorder captures the same calls in memory for tests.
package transcript
