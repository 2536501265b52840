package scenes_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reverie/internal/scenes"
	"reverie/internal/services"
)

type detailErr struct{ detail string }

func (e detailErr) Error() string        { return "backend rejected compile: " + e.detail }
func (e detailErr) ServerDetail() string { return e.detail }

func TestCompileSuccessClearsQueue(t *testing.T) {
	h := newHarness(t, nil)
	h.mustAdd(t, "/a.mp4", "wan", scenes.MediaVideo)
	h.mustAdd(t, "/b.mp4", "s2v", scenes.MediaVideo)
	h.compiler.result = scenes.CompileResult{VideoURL: "/outputs/story.mp4"}

	outcome, err := h.manager.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if outcome.VideoURL != "/outputs/story.mp4" || len(outcome.Submitted) != 2 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if h.manager.Len() != 0 {
		t.Fatalf("expected queue cleared, len=%d", h.manager.Len())
	}
	videos := h.recorder.Videos()
	if len(videos) != 1 || videos[0].URL != "/outputs/story.mp4" || videos[0].Caption != "Compiled Story" || videos[0].Kind != "story" {
		t.Fatalf("unexpected videos %+v", videos)
	}
	msgs := h.recorder.Messages()
	if len(msgs) != 2 || msgs[0] != "Compiling 2 clips into story video..." || msgs[1] != "Story compiled successfully!" {
		t.Fatalf("unexpected messages %v", msgs)
	}
	if h.recorder.Visible() {
		t.Fatal("expected panel hidden after successful compile")
	}
	if h.manager.Compiling() {
		t.Fatal("expected compiling flag cleared")
	}
}

func TestCompileFailurePreservesQueue(t *testing.T) {
	h := newHarness(t, nil)
	h.mustAdd(t, "A", "wan", scenes.MediaVideo)
	h.mustAdd(t, "B", "wan", scenes.MediaVideo)
	h.compiler.err = detailErr{detail: "ffmpeg failed"}

	if _, err := h.manager.Compile(context.Background()); err == nil {
		t.Fatal("expected compile error")
	}
	if got := urls(h.manager.Items()); !equalStrings(got, []string{"A", "B"}) {
		t.Fatalf("expected queue preserved, got %v", got)
	}
	msgs := h.recorder.Messages()
	last := msgs[len(msgs)-1]
	if last != "Failed to compile story: ffmpeg failed" {
		t.Fatalf("unexpected failure message %q", last)
	}
	if len(h.recorder.Videos()) != 0 {
		t.Fatal("expected no video posted on failure")
	}

	panel, _ := h.recorder.LastPanel()
	if panel.Compiling || !panel.CompileEnabled || panel.CompileLabel != "Compile Story" {
		t.Fatalf("expected trigger restored, got %+v", panel)
	}
}

func TestCompileFailureWithoutDetailUsesGenericText(t *testing.T) {
	h := newHarness(t, nil)
	h.mustAdd(t, "A", "wan", scenes.MediaVideo)
	h.mustAdd(t, "B", "wan", scenes.MediaVideo)
	h.compiler.err = detailErr{}

	h.manager.Compile(context.Background())
	msgs := h.recorder.Messages()
	if last := msgs[len(msgs)-1]; last != "Failed to compile story: Compilation failed" {
		t.Fatalf("unexpected failure message %q", last)
	}
}

func TestCompileTransportErrorShowsErrorText(t *testing.T) {
	h := newHarness(t, nil)
	h.mustAdd(t, "A", "wan", scenes.MediaVideo)
	h.mustAdd(t, "B", "wan", scenes.MediaVideo)
	h.compiler.err = services.Wrap(services.ErrTransport, "backend", "compile-story", "request failed", errors.New("connection refused"))

	_, err := h.manager.Compile(context.Background())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	msgs := h.recorder.Messages()
	if last := msgs[len(msgs)-1]; !strings.Contains(last, "connection refused") {
		t.Fatalf("expected network error text, got %q", last)
	}
}

func TestCompileEmptyVideoURLIsFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.mustAdd(t, "A", "wan", scenes.MediaVideo)
	h.mustAdd(t, "B", "wan", scenes.MediaVideo)

	if _, err := h.manager.Compile(context.Background()); err == nil {
		t.Fatal("expected error for missing video url")
	}
	if h.manager.Len() != 2 {
		t.Fatal("expected queue preserved")
	}
}

func TestCompileRejectsConcurrentSubmission(t *testing.T) {
	h := newHarness(t, nil)
	h.mustAdd(t, "A", "wan", scenes.MediaVideo)
	h.mustAdd(t, "B", "wan", scenes.MediaVideo)
	h.compiler.block = make(chan struct{})
	h.compiler.entered = make(chan struct{}, 1)
	h.compiler.result = scenes.CompileResult{VideoURL: "/story.mp4"}

	done := make(chan error, 1)
	go func() {
		_, err := h.manager.Compile(context.Background())
		done <- err
	}()
	<-h.compiler.entered

	if !h.manager.Compiling() {
		t.Fatal("expected compiling flag set while in flight")
	}
	panel := h.manager.Render()
	if panel.CompileEnabled || panel.CompileLabel != "Compiling..." {
		t.Fatalf("expected disabled trigger while compiling, got %+v", panel)
	}
	if _, err := h.manager.Compile(context.Background()); !errors.Is(err, scenes.ErrCompileInFlight) {
		t.Fatalf("expected ErrCompileInFlight, got %v", err)
	}

	// Mutations during flight do not change the submitted snapshot.
	h.mustAdd(t, "C", "wan", scenes.MediaVideo)

	close(h.compiler.block)
	if err := <-done; err != nil {
		t.Fatalf("first compile: %v", err)
	}
	calls := h.compiler.Calls()
	if len(calls) != 1 || len(calls[0]) != 2 {
		t.Fatalf("expected single two-scene submission, got %+v", calls)
	}
}

func TestCompileWithoutCompiler(t *testing.T) {
	h := newHarness(t, nil)
	mgr, err := scenes.New(scenes.Dependencies{Store: h.store, Renderer: h.recorder, Transcript: h.recorder})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	mgr.Add(ctx, "A", "wan", scenes.MediaVideo)
	mgr.Add(ctx, "B", "wan", scenes.MediaVideo)
	if _, err := mgr.Compile(ctx); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if mgr.Len() != 2 {
		t.Fatal("expected queue preserved")
	}
}
