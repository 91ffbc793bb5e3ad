// Пакет blockmd преобразует markdown-текст проекта в блочную модель editor.Document
// и обратно. Разбор построчный, сериализация - обход дерева блоков.
//
// Основные возможности:
//   - Построчный разбор markdown в блоки (заголовки, списки, цитаты, линии).
//   - Сериализация дерева блоков в markdown с нормализацией пустых строк.
//   - Подсчет слов документа.
//   - Очистка HTML-артефактов и нормализация входящего markdown.
//   - Разрешение инлайн-разметки **bold** / *italic* в текстовые фрагменты.
package blockmd

import (
	"strings"

	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
)

func init() {
	editor.MarkdownParser = Parse
	editor.MarkdownSerializer = Serialize
	editor.MarkdownWordCounter = WordCount
}

// Parse разбирает markdown в блочный документ. Правила применяются к каждой
// строке сверху вниз, первое совпадение выигрывает:
//
//	пустая строка  - разделитель
//	"### " "## " "# " - заголовки уровней 3/2/1
//	"* " или "- " - элемент списка
//	"> " - цитата
//	ровно "---" - горизонтальная линия
//	всё прочее - параграф
//
// Инлайн-разметка (**bold**, *italic*) на этом этапе не трогается и остается
// литеральным текстом фрагментов. Пустой вход дает единственный
// параграф-подсказку. Функция тотальна: любой вход дает документ.
func Parse(markdown string) *editor.Document {
	if markdown == "" {
		return &editor.Document{Blocks: []any{
			editor.Paragraph{
				Spans:       []any{editor.Text{Content: editor.HintText}},
				Placeholder: true,
			},
		}}
	}

	lines := strings.Split(markdown, "\n")
	doc := &editor.Document{Blocks: make([]any, 0, len(lines))}

	for _, line := range lines {
		doc.Blocks = append(doc.Blocks, parseLine(line))
	}
	return doc
}

func parseLine(line string) any {
	switch {
	case line == "":
		return editor.BlankLine{}
	case strings.HasPrefix(line, "### "):
		return editor.Heading{Level: 3, Spans: textSpans(line[4:])}
	case strings.HasPrefix(line, "## "):
		return editor.Heading{Level: 2, Spans: textSpans(line[3:])}
	case strings.HasPrefix(line, "# "):
		return editor.Heading{Level: 1, Spans: textSpans(line[2:])}
	case strings.HasPrefix(line, "* "), strings.HasPrefix(line, "- "):
		return editor.ListItem{Spans: textSpans(line[2:])}
	case strings.HasPrefix(line, "> "):
		return editor.Blockquote{Spans: textSpans(line[2:])}
	case line == "---":
		return editor.HorizontalRule{}
	default:
		return editor.Paragraph{Spans: textSpans(line)}
	}
}

func textSpans(text string) []any {
	return []any{editor.Text{Content: text}}
}
