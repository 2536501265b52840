package transcript

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// StatusKind classifies a status line.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusOK
	StatusWarn
	StatusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

// StatusLine formats "label: [KIND] message", optionally wrapped in ANSI color.
func StatusLine(label string, kind StatusKind, message string, colorize bool) string {
	statusText := kindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := kindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

// SectionHeader returns a title line and its underline.
func SectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// ShouldColorize reports whether writer is an interactive terminal.
func ShouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func kindLabel(kind StatusKind) string {
	switch kind {
	case StatusOK:
		return "OK"
	case StatusWarn:
		return "WARN"
	case StatusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func kindColor(kind StatusKind) string {
	switch kind {
	case StatusOK:
		return ansiGreen
	case StatusWarn:
		return ansiYellow
	case StatusError:
		return ansiRed
	case StatusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// messageKind guesses a status kind from a transcript system message.
func messageKind(text string) StatusKind {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "failed"):
		return StatusError
	case strings.HasPrefix(lower, "need at least"):
		return StatusWarn
	case strings.Contains(lower, "successfully"):
		return StatusOK
	default:
		return StatusInfo
	}
}
