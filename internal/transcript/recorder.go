package transcript

import (
	"sync"

	"reverie/internal/scenes"
)

// Video is one PostVideo call captured by a Recorder.
type Video struct {
	URL     string
	Caption string
	Kind    string
}

// Recorder captures renderer and transcript calls in memory.
type Recorder struct {
	mu           sync.Mutex
	messages     []string
	videos       []Video
	panels       []scenes.Panel
	visibility   []bool
	visible      bool
	markerResets int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) PostSystemMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
}

func (r *Recorder) PostVideo(url, caption, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos = append(r.videos, Video{URL: url, Caption: caption, Kind: kind})
}

func (r *Recorder) RenderPanel(panel scenes.Panel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels = append(r.panels, panel)
}

func (r *Recorder) SetPanelVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = visible
	r.visibility = append(r.visibility, visible)
}

func (r *Recorder) ResetAddedMarkers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markerResets++
}

// Messages returns every system message in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Videos returns every posted video in order.
func (r *Recorder) Videos() []Video {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Video(nil), r.videos...)
}

// Panels returns every rendered panel in order.
func (r *Recorder) Panels() []scenes.Panel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]scenes.Panel(nil), r.panels...)
}

// LastPanel returns the most recent panel and whether any was rendered.
func (r *Recorder) LastPanel() (scenes.Panel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.panels) == 0 {
		return scenes.Panel{}, false
	}
	return r.panels[len(r.panels)-1], true
}

// Visible reports the last visibility the renderer was told.
func (r *Recorder) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// VisibilityChanges returns every SetPanelVisible argument in order.
func (r *Recorder) VisibilityChanges() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.visibility...)
}

// MarkerResets counts ResetAddedMarkers calls.
func (r *Recorder) MarkerResets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.markerResets
}
