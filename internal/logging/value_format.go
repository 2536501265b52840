package logging

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

// mediaURLKeys are the attribute keys whose values are media locations.
var mediaURLKeys = map[string]struct{}{
	FieldSceneURL: {},
	FieldVideoURL: {},
}

func isMediaURLKey(key string) bool {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	_, ok := mediaURLKeys[key]
	return ok
}

// redactMediaURL drops the query and fragment of an absolute URL. Relative
// paths such as "/static/out.mp4" pass through unchanged.
func redactMediaURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.RawQuery == "" && parsed.Fragment == "") {
		return raw
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String() + "?redacted"
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

func componentName(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

func formatValue(key string, v slog.Value) string {
	v = v.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
		if isMediaURLKey(key) {
			s = redactMediaURL(s)
		}
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
