package transcript_test

import (
	"bytes"
	"strings"
	"testing"

	"reverie/internal/scenes"
	"reverie/internal/transcript"
)

func TestTerminalBuffersPanelUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	term := transcript.NewTerminal(&buf)

	term.RenderPanel(scenes.Panel{
		Count:          2,
		CompileEnabled: true,
		CompileLabel:   "Compile Story",
		Cards: []scenes.Card{
			{Ordinal: 1, Label: "WAN", Thumbnail: scenes.ThumbnailMutedPreview, URL: "/v/a.mp4"},
			{Ordinal: 2, Label: "Image", Thumbnail: scenes.ThumbnailStill, URL: "/i/b.png"},
		},
	})
	if buf.Len() != 0 {
		t.Fatalf("expected no output before flush, got %q", buf.String())
	}

	term.Flush()
	if buf.Len() != 0 {
		t.Fatalf("expected hidden panel to stay silent, got %q", buf.String())
	}

	term.SetPanelVisible(true)
	term.Flush()
	out := buf.String()
	for _, want := range []string{"Story queue (2)", "Compile Story [ready]", "WAN", "/i/b.png", "video (muted)", "still"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTerminalWritesMessagesImmediately(t *testing.T) {
	var buf bytes.Buffer
	term := transcript.NewTerminal(&buf)

	term.PostSystemMessage("Story compiled successfully!")
	term.PostVideo("/v/story.mp4", "Compiled Story", "story")

	out := buf.String()
	if !strings.Contains(out, "[OK] Story compiled successfully!") {
		t.Fatalf("expected OK status line, got %q", out)
	}
	if !strings.Contains(out, "Compiled Story [story]: /v/story.mp4") {
		t.Fatalf("expected video line, got %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for non-tty writer, got %q", out)
	}
}

func TestFormatPanelEmptyHint(t *testing.T) {
	out := transcript.FormatPanel(scenes.Panel{CompileLabel: "Compile Story", EmptyHint: scenes.EmptyHint})
	if !strings.Contains(out, "Story queue (0)") || !strings.Contains(out, "[disabled]") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "Add images/videos to build your story") {
		t.Fatalf("expected empty hint, got %q", out)
	}
}

func TestStatusLineColor(t *testing.T) {
	plain := transcript.StatusLine("Backend", transcript.StatusError, "unreachable", false)
	if !strings.Contains(plain, "Backend:") || !strings.Contains(plain, "[ERROR] unreachable") {
		t.Fatalf("unexpected status line %q", plain)
	}
	colored := transcript.StatusLine("Backend", transcript.StatusOK, "", true)
	if !strings.HasPrefix(colored, "\x1b[32m") || !strings.HasSuffix(colored, "\x1b[0m") {
		t.Fatalf("expected green color codes, got %q", colored)
	}
}

func TestRecorderCapturesCalls(t *testing.T) {
	rec := transcript.NewRecorder()
	rec.PostSystemMessage("hello")
	rec.PostVideo("u", "c", "k")
	rec.RenderPanel(scenes.Panel{Count: 1})
	rec.SetPanelVisible(true)
	rec.SetPanelVisible(false)
	rec.ResetAddedMarkers()

	if got := rec.Messages(); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("unexpected messages %v", got)
	}
	if got := rec.Videos(); len(got) != 1 || got[0] != (transcript.Video{URL: "u", Caption: "c", Kind: "k"}) {
		t.Fatalf("unexpected videos %v", got)
	}
	if panel, ok := rec.LastPanel(); !ok || panel.Count != 1 {
		t.Fatalf("unexpected last panel %+v ok=%v", panel, ok)
	}
	if rec.Visible() {
		t.Fatal("expected panel hidden after last call")
	}
	if got := rec.VisibilityChanges(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("unexpected visibility changes %v", got)
	}
	if rec.MarkerResets() != 1 {
		t.Fatalf("expected one marker reset, got %d", rec.MarkerResets())
	}
}
