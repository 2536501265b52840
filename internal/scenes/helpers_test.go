package scenes_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"reverie/internal/kvstore"
	"reverie/internal/scenes"
	"reverie/internal/transcript"
)

type fakeCompiler struct {
	mu     sync.Mutex
	calls  [][]scenes.CompileScene
	result scenes.CompileResult
	err    error
	// block, when set, holds CompileStory until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeCompiler) CompileStory(ctx context.Context, submitted []scenes.CompileScene) (scenes.CompileResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]scenes.CompileScene(nil), submitted...))
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return scenes.CompileResult{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakeCompiler) Calls() [][]scenes.CompileScene {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]scenes.CompileScene(nil), f.calls...)
}

type harness struct {
	store    *kvstore.MemoryStore
	recorder *transcript.Recorder
	compiler *fakeCompiler
	manager  *scenes.Manager
}

func fixedClock() func() time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return base }
}

func newHarness(t *testing.T, store *kvstore.MemoryStore) *harness {
	t.Helper()
	if store == nil {
		store = kvstore.NewMemoryStore()
	}
	h := &harness{
		store:    store,
		recorder: transcript.NewRecorder(),
		compiler: &fakeCompiler{},
	}
	mgr, err := scenes.New(scenes.Dependencies{
		Store:      h.store,
		Renderer:   h.recorder,
		Transcript: h.recorder,
		Compiler:   h.compiler,
		Now:        fixedClock(),
	})
	if err != nil {
		t.Fatalf("scenes.New: %v", err)
	}
	mgr.Initialize(context.Background())
	h.manager = mgr
	return h
}

func (h *harness) mustAdd(t *testing.T, url, kind string, media scenes.MediaType) scenes.Item {
	t.Helper()
	item, err := h.manager.Add(context.Background(), url, kind, media)
	if err != nil {
		t.Fatalf("Add(%q): %v", url, err)
	}
	return item
}

func (h *harness) reload(t *testing.T) *harness {
	t.Helper()
	return newHarness(t, h.store)
}

func urls(items []scenes.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.URL)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
