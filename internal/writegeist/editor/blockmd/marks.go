package blockmd

import (
	"strings"

	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
)

// ResolveMarks разворачивает литеральную разметку **bold** и *italic* внутри
// текстовых фрагментов в отдельные фрагменты с выставленными флагами.
// Используется потребителями, которым нужны готовые стили (PDF, предпросмотр);
// построчный разбор Parse инлайн-разметку намеренно не трогает.
// Незакрытые маркеры остаются литеральным текстом.
func ResolveMarks(spans []any) []any {
	out := make([]any, 0, len(spans))
	for _, rawSpan := range spans {
		text, ok := rawSpan.(editor.Text)
		if !ok || text.Bold || text.Italic {
			out = append(out, rawSpan)
			continue
		}
		out = append(out, resolveBold(text.Content)...)
	}
	return out
}

func resolveBold(content string) []any {
	var out []any
	for {
		start := strings.Index(content, "**")
		if start < 0 {
			break
		}
		length := strings.Index(content[start+2:], "**")
		if length < 0 {
			break
		}

		if before := content[:start]; before != "" {
			out = append(out, resolveItalic(before)...)
		}
		if inner := content[start+2 : start+2+length]; inner != "" {
			out = append(out, editor.Text{Content: inner, Bold: true})
		}
		content = content[start+4+length:]
	}
	if content != "" {
		out = append(out, resolveItalic(content)...)
	}
	return out
}

func resolveItalic(content string) []any {
	var out []any
	for {
		start := strings.Index(content, "*")
		if start < 0 {
			break
		}
		length := strings.Index(content[start+1:], "*")
		if length < 0 {
			break
		}

		if before := content[:start]; before != "" {
			out = append(out, editor.Text{Content: before})
		}
		if inner := content[start+1 : start+1+length]; inner != "" {
			out = append(out, editor.Text{Content: inner, Italic: true})
		}
		content = content[start+2+length:]
	}
	if content != "" {
		out = append(out, editor.Text{Content: content})
	}
	return out
}
