package scenes

import (
	"golang.org/x/text/cases"
)

// Thumbnail selects how a card previews its media.
type Thumbnail string

const (
	ThumbnailStill        Thumbnail = "still"
	ThumbnailMutedPreview Thumbnail = "muted-preview"
)

const (
	compileLabelIdle      = "Compile Story"
	compileLabelCompiling = "Compiling..."
	// EmptyHint is shown in place of cards when the queue is empty.
	EmptyHint = "Add images/videos to build your story"
)

// Panel is the view projection of the queue.
type Panel struct {
	Count          int
	CompileEnabled bool
	Compiling      bool
	CompileLabel   string
	EmptyHint      string
	Cards          []Card
}

// Card is one rendered queue entry. Index is the current position to pass to
// RemoveAt; it is only valid until the next mutation.
type Card struct {
	Ordinal   int
	Index     int
	Label     string
	Thumbnail Thumbnail
	URL       string
	MediaType MediaType
	Kind      string
}

var kindLabels = map[string]string{
	"wan":          "WAN",
	"s2v":          "S2V",
	"infinitetalk": "Talk",
}

// TypeLabel returns the short label shown on a card.
func TypeLabel(mediaType MediaType, kind string) string {
	if mediaType == MediaImage {
		return "Image"
	}
	if label, ok := kindLabels[cases.Fold().String(kind)]; ok {
		return label
	}
	return kind
}

func thumbnailFor(mediaType MediaType) Thumbnail {
	if mediaType == MediaImage {
		return ThumbnailStill
	}
	return ThumbnailMutedPreview
}

func buildPanel(items []Item, compiling bool) Panel {
	panel := Panel{
		Count:          len(items),
		Compiling:      compiling,
		CompileEnabled: !compiling && len(items) >= MinCompileScenes,
		CompileLabel:   compileLabelIdle,
		Cards:          make([]Card, 0, len(items)),
	}
	if compiling {
		panel.CompileLabel = compileLabelCompiling
	}
	if len(items) == 0 {
		panel.EmptyHint = EmptyHint
	}
	for idx, item := range items {
		panel.Cards = append(panel.Cards, Card{
			Ordinal:   idx + 1,
			Index:     idx,
			Label:     TypeLabel(item.MediaType, item.Kind),
			Thumbnail: thumbnailFor(item.MediaType),
			URL:       item.URL,
			MediaType: item.MediaType,
			Kind:      item.Kind,
		})
	}
	return panel
}
