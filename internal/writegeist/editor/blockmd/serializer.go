package blockmd

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
)

var blankRunsReg = regexp.MustCompile(`\n{3,}`)

// Serialize обходит дерево блоков и собирает markdown. Порядок обработки
// фиксирован: жирный текст, курсив, заголовки, цитаты, линии, списки,
// параграфы, переносы; неизвестные элементы отдают только свой текст.
// После обхода серии из трех и более переносов схлопываются до двух,
// края результата обрезаются. Функция детерминирована и тотальна.
func Serialize(doc *editor.Document) string {
	var sb strings.Builder
	for _, rawBlock := range doc.Blocks {
		serializeBlock(&sb, rawBlock)
	}

	out := blankRunsReg.ReplaceAllString(sb.String(), "\n\n")
	return strings.TrimSpace(out)
}

func serializeBlock(sb *strings.Builder, rawBlock any) {
	switch block := rawBlock.(type) {
	case editor.Heading:
		level := block.Level
		if level < 1 || level > 3 {
			level = 1
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("#", level))
		sb.WriteString(" ")
		serializeSpans(sb, block.Spans)
		sb.WriteString("\n")
	case editor.Blockquote:
		sb.WriteString("\n> ")
		serializeSpans(sb, block.Spans)
		sb.WriteString("\n")
	case editor.HorizontalRule:
		sb.WriteString("\n---\n")
	case editor.ListItem:
		sb.WriteString("\n* ")
		serializeSpans(sb, block.Spans)
	case editor.Paragraph:
		// Параграф-подсказка пустого документа в markdown не попадает
		if block.Placeholder {
			return
		}
		sb.WriteString("\n")
		serializeSpans(sb, block.Spans)
		sb.WriteString("\n")
	case editor.BlankLine:
		sb.WriteString("\n\n")
	default:
		slog.Warn("Unknown block type for markdown serialization", "type", block)
	}
}

func serializeSpans(sb *strings.Builder, spans []any) {
	for _, rawSpan := range spans {
		switch span := rawSpan.(type) {
		case editor.Text:
			content := span.Content
			if span.Italic {
				content = "*" + content + "*"
			}
			if span.Bold {
				content = "**" + content + "**"
			}
			sb.WriteString(content)
		case editor.Break:
			sb.WriteString("\n")
		default:
			slog.Warn("Unknown span type for markdown serialization", "type", span)
		}
	}
}
