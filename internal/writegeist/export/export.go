// Экспорт рукописи в переносимые форматы.
//
// Основные возможности:
//   - Сборка единого markdown-манускрипта из проектного документа и глав.
//   - Генерация PDF обходом дерева блоков документа.
//   - Генерация минифицированного HTML через goldmark.
package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
)

// Форматы экспорта.
const (
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatHTML     = "html"
)

// Manuscript - материал для экспорта: проектный документ и главы по порядку.
type Manuscript struct {
	Title       string
	ProjectDoc  string
	Chapters    []dao.Chapter
	GeneratedAt time.Time
}

// WriteMarkdown собирает манускрипт в один markdown-файл: проектный документ,
// затем главы с заголовками первого уровня и статистикой.
func WriteMarkdown(m *Manuscript, out io.Writer) error {
	builder := md.NewMarkdown(out).
		PlainText(m.ProjectDoc).
		HorizontalRule()

	for _, chapter := range m.Chapters {
		builder.
			H1(chapter.Title).
			PlainTextf("*%d words, ~%d min read*", chapter.WordCount, chapter.ReadingTimeMinutes).
			PlainText("").
			PlainText(chapter.Text).
			PlainText("")
	}

	return builder.Build()
}

// ContentType возвращает MIME-тип формата экспорта.
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// FileName возвращает имя файла выгрузки с отметкой времени.
func FileName(format string, at time.Time) string {
	ext := "md"
	switch format {
	case FormatPDF:
		ext = "pdf"
	case FormatHTML:
		ext = "html"
	}
	return fmt.Sprintf("manuscript-%s.%s", at.Format("2006-01-02"), ext)
}

// Export пишет манускрипт в выбранном формате.
func Export(m *Manuscript, format string, out io.Writer) error {
	switch format {
	case FormatPDF:
		return WritePDF(m, out)
	case FormatHTML:
		return WriteHTML(m, out)
	case FormatMarkdown:
		return WriteMarkdown(m, out)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// combinedMarkdown возвращает весь манускрипт одним markdown-текстом.
func combinedMarkdown(m *Manuscript) (string, error) {
	var buf bytes.Buffer
	if err := WriteMarkdown(m, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
