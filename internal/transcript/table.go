package transcript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"reverie/internal/scenes"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// FormatPanel renders the queue panel: a header with the count badge and
// compile trigger state, then either the card table or the empty hint.
func FormatPanel(panel scenes.Panel) string {
	var b strings.Builder
	trigger := "disabled"
	if panel.CompileEnabled {
		trigger = "ready"
	}
	fmt.Fprintf(&b, "Story queue (%d) | %s [%s]\n", panel.Count, panel.CompileLabel, trigger)
	if len(panel.Cards) == 0 {
		hint := panel.EmptyHint
		if hint == "" {
			hint = scenes.EmptyHint
		}
		b.WriteString(hint)
		b.WriteString("\n")
		return b.String()
	}
	rows := make([][]string, 0, len(panel.Cards))
	for _, card := range panel.Cards {
		rows = append(rows, []string{
			strconv.Itoa(card.Ordinal),
			card.Label,
			previewLabel(card.Thumbnail),
			card.URL,
		})
	}
	b.WriteString(renderTable([]string{"#", "Type", "Preview", "URL"}, rows, []columnAlignment{alignRight}))
	b.WriteString("\n")
	return b.String()
}

func previewLabel(thumb scenes.Thumbnail) string {
	switch thumb {
	case scenes.ThumbnailStill:
		return "still"
	case scenes.ThumbnailMutedPreview:
		return "video (muted)"
	default:
		return string(thumb)
	}
}
