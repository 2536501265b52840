package scenes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MediaType controls how a scene is previewed and decoded during compilation.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType normalizes user input into a MediaType. An empty value
// selects MediaVideo.
func ParseMediaType(raw string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(MediaVideo):
		return MediaVideo, nil
	case string(MediaImage):
		return MediaImage, nil
	default:
		return "", fmt.Errorf("unknown media type %q (want image or video)", raw)
	}
}

// Item is one queued media reference.
type Item struct {
	URL       string
	Kind      string
	MediaType MediaType
	AddedAt   time.Time
}

// CompileScene is the per-item payload submitted to the compile endpoint.
// Kind is intentionally absent; the backend only needs to know how to decode
// each source.
type CompileScene struct {
	URL       string    `json:"url"`
	MediaType MediaType `json:"mediaType"`
}

// CompileResult is the backend's answer to a successful compile.
type CompileResult struct {
	VideoURL string `json:"video_url"`
}

// storedItem is the persisted shape of one Item.
type storedItem struct {
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	MediaType MediaType `json:"mediaType,omitempty"`
	Timestamp int64     `json:"timestamp,omitempty"`
}

func encodeQueue(items []Item) (string, error) {
	out := make([]storedItem, 0, len(items))
	for _, item := range items {
		stored := storedItem{
			URL:       item.URL,
			Type:      item.Kind,
			MediaType: item.MediaType,
		}
		if !item.AddedAt.IsZero() {
			stored.Timestamp = item.AddedAt.UnixMilli()
		}
		out = append(out, stored)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeQueue parses a persisted queue. Entries without a mediaType predate
// image support and are treated as video. Entries without a URL are skipped
// and counted in dropped.
func decodeQueue(raw string) (items []Item, dropped int, err error) {
	var stored []storedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, 0, err
	}
	items = make([]Item, 0, len(stored))
	for _, entry := range stored {
		if strings.TrimSpace(entry.URL) == "" {
			dropped++
			continue
		}
		media := MediaVideo
		if entry.MediaType == MediaImage {
			media = MediaImage
		}
		item := Item{URL: entry.URL, Kind: entry.Type, MediaType: media}
		if entry.Timestamp != 0 {
			item.AddedAt = time.UnixMilli(entry.Timestamp)
		}
		items = append(items, item)
	}
	return items, dropped, nil
}
