package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reverie/internal/config"
)

const userAgent = "Reverie-Go/0.1.0"

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyStoryCompiled(ctx context.Context, sceneCount int, videoURL string, duration time.Duration) error
	NotifyCompileFailed(ctx context.Context, sceneCount int, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyStoryCompiled(ctx context.Context, sceneCount int, videoURL string, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("🎥 Story compiled from %d clips in %s", sceneCount, duration)
	if videoURL = strings.TrimSpace(videoURL); videoURL != "" {
		message = fmt.Sprintf("%s\n%s", message, videoURL)
	}
	return n.send(ctx, payload{
		title:   "Reverie - Story Ready",
		message: message,
		tags:    []string{"reverie", "story", "completed"},
	})
}

func (n *ntfyService) NotifyCompileFailed(ctx context.Context, sceneCount int, err error) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "❌ Story compile failed (%d clips): ", sceneCount)
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Reverie - Compile Failed",
		message:  builder.String(),
		tags:     []string{"reverie", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Reverie - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"reverie", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyStoryCompiled(context.Context, int, string, time.Duration) error {
	return nil
}

func (noopService) NotifyCompileFailed(context.Context, int, error) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
