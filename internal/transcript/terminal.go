package transcript

import (
	"fmt"
	"io"
	"sync"

	"reverie/internal/scenes"
)

// Terminal writes transcript output to an io.Writer.
type Terminal struct {
	out      io.Writer
	colorize bool

	mu      sync.Mutex
	panel   *scenes.Panel
	visible bool
}

// NewTerminal returns a Terminal writing to out. Color is enabled when out is
// a TTY.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out, colorize: ShouldColorize(out)}
}

// PostSystemMessage implements scenes.Transcript.
func (t *Terminal) PostSystemMessage(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, StatusLine("system", messageKind(text), text, t.colorize))
}

// PostVideo implements scenes.Transcript.
func (t *Terminal) PostVideo(url, caption, kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "%s [%s]: %s\n", caption, kind, url)
}

// RenderPanel implements scenes.Renderer. The panel is buffered until Flush.
func (t *Terminal) RenderPanel(panel scenes.Panel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel = &panel
}

// SetPanelVisible implements scenes.Renderer.
func (t *Terminal) SetPanelVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = visible
}

// ResetAddedMarkers implements scenes.Renderer. A terminal has no persistent
// markers to reset.
func (t *Terminal) ResetAddedMarkers() {}

// Flush writes the most recent panel if it is visible.
func (t *Terminal) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.visible || t.panel == nil {
		return
	}
	io.WriteString(t.out, FormatPanel(*t.panel))
}

// WritePanel writes panel regardless of visibility.
func (t *Terminal) WritePanel(panel scenes.Panel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.out, FormatPanel(panel))
}
