package scenes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"reverie/internal/kvstore"
	"reverie/internal/logging"
	"reverie/internal/services"
)

// DefaultStoreKey is the key the queue is persisted under.
const DefaultStoreKey = "reverie_scene_queue"

// Renderer receives panel projections.
type Renderer interface {
	RenderPanel(panel Panel)
	SetPanelVisible(visible bool)
	// ResetAddedMarkers returns every "added to story" affordance to its
	// default state.
	ResetAddedMarkers()
}

// Transcript surfaces compile progress and results in the conversation.
type Transcript interface {
	PostSystemMessage(text string)
	PostVideo(url, caption, kind string)
}

// Compiler submits a queue snapshot for compilation.
type Compiler interface {
	CompileStory(ctx context.Context, scenes []CompileScene) (CompileResult, error)
}

// Dependencies wires a Manager to its collaborators. Store, Renderer and
// Transcript are required; Compiler may be nil when only queue editing is
// needed.
type Dependencies struct {
	Store      kvstore.Store
	Renderer   Renderer
	Transcript Transcript
	Compiler   Compiler
	Logger     *slog.Logger
	// Key overrides DefaultStoreKey.
	Key string
	// Now overrides time.Now.
	Now func() time.Time
}

// Manager owns the scene queue.
type Manager struct {
	store      kvstore.Store
	renderer   Renderer
	transcript Transcript
	compiler   Compiler
	logger     *slog.Logger
	key        string
	now        func() time.Time

	// writeMu orders mutations with their store writes so the last
	// mutation applied is also the last one persisted.
	writeMu   sync.Mutex
	mu        sync.Mutex
	items     []Item
	lastAdded time.Time
	compiling atomic.Bool
}

// New validates deps and returns an empty Manager. Call Initialize to hydrate
// it from the store.
func New(deps Dependencies) (*Manager, error) {
	if deps.Store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "scenes", "new", "store is required", nil)
	}
	if deps.Renderer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "scenes", "new", "renderer is required", nil)
	}
	if deps.Transcript == nil {
		return nil, services.Wrap(services.ErrConfiguration, "scenes", "new", "transcript is required", nil)
	}
	key := strings.TrimSpace(deps.Key)
	if key == "" {
		key = DefaultStoreKey
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:      deps.Store,
		renderer:   deps.Renderer,
		transcript: deps.Transcript,
		compiler:   deps.Compiler,
		logger:     logging.NewComponentLogger(deps.Logger, "scenes"),
		key:        key,
		now:        now,
	}, nil
}

// Initialize loads the persisted queue. Read failures and malformed data are
// logged and leave the queue empty.
func (m *Manager) Initialize(ctx context.Context) {
	logger := logging.WithContext(ctx, m.logger)

	raw, ok, err := m.store.Get(ctx, m.key)
	var restored []Item
	switch {
	case err != nil:
		wrapped := services.Wrap(services.ErrPersistence, "scenes", "initialize", "read scene queue", err)
		logger.Warn("scene queue load failed; starting empty",
			logging.Error(wrapped),
			logging.String(logging.FieldErrorKind, services.Kind(wrapped)),
		)
	case !ok || strings.TrimSpace(raw) == "":
	default:
		items, dropped, decodeErr := decodeQueue(raw)
		if decodeErr != nil {
			logger.Warn("scene queue data malformed; starting empty",
				logging.Error(decodeErr),
				logging.Int("bytes", len(raw)),
			)
			break
		}
		if dropped > 0 {
			logger.Warn("dropped scene queue entries without url", logging.Int("dropped", dropped))
		}
		restored = items
	}

	m.mu.Lock()
	m.items = restored
	m.lastAdded = time.Time{}
	for _, item := range restored {
		if item.AddedAt.After(m.lastAdded) {
			m.lastAdded = item.AddedAt
		}
	}
	count := len(m.items)
	m.mu.Unlock()

	logger.Debug("scene queue initialized", logging.Int(logging.FieldSceneCount, count))
	if count > 0 {
		m.Render()
		m.renderer.SetPanelVisible(true)
	}
}

// Add appends a scene, persists the queue, and shows the panel.
func (m *Manager) Add(ctx context.Context, url, kind string, mediaType MediaType) (Item, error) {
	url = strings.TrimSpace(url)
	kind = strings.TrimSpace(kind)
	if url == "" {
		return Item{}, services.Wrap(services.ErrValidation, "scenes", "add", "url is required", nil)
	}
	if mediaType == "" {
		mediaType = MediaVideo
	}
	if mediaType != MediaImage && mediaType != MediaVideo {
		return Item{}, services.Wrap(services.ErrValidation, "scenes", "add", fmt.Sprintf("unknown media type %q", mediaType), nil)
	}

	m.writeMu.Lock()
	m.mu.Lock()
	addedAt := m.now().Truncate(time.Millisecond)
	if !addedAt.After(m.lastAdded) {
		addedAt = m.lastAdded.Add(time.Millisecond)
	}
	m.lastAdded = addedAt
	item := Item{URL: url, Kind: kind, MediaType: mediaType, AddedAt: addedAt}
	m.items = append(m.items, item)
	snapshot := cloneItems(m.items)
	m.mu.Unlock()

	m.persist(ctx, "add", snapshot)
	m.writeMu.Unlock()

	m.Render()
	m.renderer.SetPanelVisible(true)
	logging.WithContext(ctx, m.logger).Info("scene added",
		logging.MediaURL(logging.FieldSceneURL, url),
		logging.String("kind", kind),
		logging.String("media_type", string(mediaType)),
		logging.Int(logging.FieldSceneCount, len(snapshot)),
	)
	return item, nil
}

// RemoveAt deletes the scene at index. Out-of-range indices are ignored and
// reported as false.
func (m *Manager) RemoveAt(ctx context.Context, index int) bool {
	m.writeMu.Lock()
	m.mu.Lock()
	if index < 0 || index >= len(m.items) {
		count := len(m.items)
		m.mu.Unlock()
		m.writeMu.Unlock()
		logging.WithContext(ctx, m.logger).Debug("ignoring remove of stale index",
			logging.Int("index", index),
			logging.Int(logging.FieldSceneCount, count),
		)
		return false
	}
	m.items = append(m.items[:index], m.items[index+1:]...)
	snapshot := cloneItems(m.items)
	m.mu.Unlock()

	m.persist(ctx, "remove", snapshot)
	m.writeMu.Unlock()

	m.Render()
	if len(snapshot) == 0 {
		m.renderer.SetPanelVisible(false)
	}
	logging.WithContext(ctx, m.logger).Info("scene removed",
		logging.Int("index", index),
		logging.Int(logging.FieldSceneCount, len(snapshot)),
	)
	return true
}

// Clear empties the queue and resets "added" markers.
func (m *Manager) Clear(ctx context.Context) {
	m.writeMu.Lock()
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
	m.persist(ctx, "clear", nil)
	m.writeMu.Unlock()

	m.Render()
	m.renderer.SetPanelVisible(false)
	m.renderer.ResetAddedMarkers()
	logging.WithContext(ctx, m.logger).Info("scene queue cleared")
}

// Render pushes the current projection to the renderer and returns it.
func (m *Manager) Render() Panel {
	m.mu.Lock()
	panel := buildPanel(m.items, m.compiling.Load())
	m.mu.Unlock()
	m.renderer.RenderPanel(panel)
	return panel
}

// Items returns a copy of the queue.
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneItems(m.items)
}

// Len reports the queue length.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Compiling reports whether a compile request is in flight.
func (m *Manager) Compiling() bool {
	return m.compiling.Load()
}

// persist writes the full queue. Failures are logged and the in-memory
// mutation stands.
func (m *Manager) persist(ctx context.Context, operation string, items []Item) {
	encoded, err := encodeQueue(items)
	if err == nil {
		err = m.store.Set(ctx, m.key, encoded)
	}
	if err == nil {
		return
	}
	wrapped := services.Wrap(services.ErrPersistence, "scenes", operation, "write scene queue", err)
	logging.WithContext(ctx, m.logger).Warn("scene queue persist failed",
		logging.Error(wrapped),
		logging.String(logging.FieldErrorKind, services.Kind(wrapped)),
		logging.Int(logging.FieldSceneCount, len(items)),
	)
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
