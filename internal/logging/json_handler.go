package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// newJSONHandler writes one object per record with short keys ("ts", "level")
// and media URLs redacted the same way as the console handler.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch {
			case attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime:
				return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339))
			case attr.Key == slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case attr.Key == slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			case isMediaURLKey(attr.Key) && attr.Value.Kind() == slog.KindString:
				attr.Value = slog.StringValue(redactMediaURL(attr.Value.String()))
			}
			return attr
		},
	})
}
