package scenes

import (
	"context"
	"fmt"
	"time"

	"reverie/internal/logging"
	"reverie/internal/services"
)

const (
	compiledCaption = "Compiled Story"
	compiledKind    = "story"
	notEnoughNotice = "Need at least 2 clips to compile a story."
)

// CompileOutcome summarizes one Compile call.
type CompileOutcome struct {
	// Submitted is the snapshot sent to the backend, in queue order.
	Submitted []CompileScene
	VideoURL  string
	Duration  time.Duration
}

// Compile submits the queue to the backend. On success the compiled video is
// posted to the transcript and the queue is cleared; on failure the queue is
// left as it was so the user can retry. Every outcome is reported through the
// transcript, and the returned error only classifies what happened.
func (m *Manager) Compile(ctx context.Context) (CompileOutcome, error) {
	logger := logging.WithContext(ctx, m.logger)

	if m.Len() < MinCompileScenes {
		m.transcript.PostSystemMessage(notEnoughNotice)
		return CompileOutcome{}, ErrNotEnoughScenes
	}
	if m.compiler == nil {
		err := services.Wrap(services.ErrConfiguration, "scenes", "compile", "no compiler configured", nil)
		m.transcript.PostSystemMessage("Failed to compile story: " + genericCompileFailure)
		return CompileOutcome{}, err
	}
	if !m.compiling.CompareAndSwap(false, true) {
		logger.Debug("compile already in flight")
		return CompileOutcome{}, ErrCompileInFlight
	}
	defer func() {
		m.compiling.Store(false)
		m.Render()
	}()

	// The queue may have shrunk since the first check.
	snapshot := m.snapshot()
	if len(snapshot) < MinCompileScenes {
		m.transcript.PostSystemMessage(notEnoughNotice)
		return CompileOutcome{}, ErrNotEnoughScenes
	}
	m.Render()
	m.transcript.PostSystemMessage(fmt.Sprintf("Compiling %d clips into story video...", len(snapshot)))
	logger.Info("compile started", logging.Int(logging.FieldSceneCount, len(snapshot)))

	started := m.now()
	result, err := m.compiler.CompileStory(ctx, snapshot)
	outcome := CompileOutcome{Submitted: snapshot, Duration: m.now().Sub(started)}
	if err == nil && result.VideoURL == "" {
		err = services.Wrap(services.ErrTransport, "scenes", "compile", "backend returned no video url", nil)
	}
	if err != nil {
		m.transcript.PostSystemMessage("Failed to compile story: " + failureDetail(err))
		logger.Error("compile failed",
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Int(logging.FieldSceneCount, len(snapshot)),
			logging.Duration("duration", outcome.Duration),
		)
		return outcome, err
	}

	outcome.VideoURL = result.VideoURL
	m.transcript.PostSystemMessage("Story compiled successfully!")
	m.transcript.PostVideo(result.VideoURL, compiledCaption, compiledKind)
	logger.Info("compile succeeded",
		logging.MediaURL(logging.FieldVideoURL, result.VideoURL),
		logging.Int(logging.FieldSceneCount, len(snapshot)),
		logging.Duration("duration", outcome.Duration),
	)
	m.Clear(ctx)
	return outcome, nil
}

func (m *Manager) snapshot() []CompileScene {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompileScene, 0, len(m.items))
	for _, item := range m.items {
		media := item.MediaType
		if media == "" {
			media = MediaVideo
		}
		out = append(out, CompileScene{URL: item.URL, MediaType: media})
	}
	return out
}
