package export

import (
	"io"

	"codeberg.org/go-pdf/fpdf"

	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
	"github.com/writegeist/writegeist.go/internal/writegeist/editor/blockmd"
)

const (
	bodyFontSize    = 12
	bodyLineHeight  = 6
	quoteIndent     = 10
	chapterFontSize = 20
)

type pdfWriter struct {
	pdf *fpdf.Fpdf
}

// WritePDF генерирует PDF манускрипта: проектный документ, затем главы,
// каждая с новой страницы. Текст набирается обходом дерева блоков.
func WritePDF(m *Manuscript, out io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "") // 210*297 mm
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, pdf.UnicodeTranslatorFromDescriptor("")(m.Title), "", 0, "C", false, 0, "")
	})

	w := pdfWriter{pdf: pdf}

	pdf.AddPage()
	doc, err := editor.FromMarkdown(m.ProjectDoc)
	if err != nil {
		return err
	}
	w.writeDocument(doc)

	for _, chapter := range m.Chapters {
		pdf.AddPage()
		pdf.Bookmark(chapter.Title, 0, -1)

		pdf.SetFont("Helvetica", "B", chapterFontSize)
		w.write(chapter.Title)
		pdf.Ln(12)

		doc, err := editor.FromMarkdown(chapter.Text)
		if err != nil {
			return err
		}
		w.writeDocument(doc)
	}

	return pdf.Output(out)
}

func (w *pdfWriter) writeDocument(doc *editor.Document) {
	for _, rawBlock := range doc.Blocks {
		switch block := rawBlock.(type) {
		case editor.Heading:
			size := float64(18 - 2*block.Level)
			w.pdf.SetFont("Helvetica", "B", size)
			w.writeSpans(block.Spans, false)
			w.pdf.Ln(bodyLineHeight + 2)
		case editor.Paragraph:
			if block.Placeholder {
				continue
			}
			w.writeSpans(block.Spans, true)
			w.pdf.Ln(bodyLineHeight)
		case editor.ListItem:
			w.pdf.SetFont("Helvetica", "", bodyFontSize)
			w.write("• ")
			w.writeSpans(block.Spans, true)
			w.pdf.Ln(bodyLineHeight)
		case editor.Blockquote:
			left, _, _, _ := w.pdf.GetMargins()
			w.pdf.SetLeftMargin(left + quoteIndent)
			w.pdf.SetX(left + quoteIndent)
			w.pdf.SetFont("Helvetica", "I", bodyFontSize)
			w.writeSpans(block.Spans, false)
			w.pdf.SetLeftMargin(left)
			w.pdf.Ln(bodyLineHeight)
		case editor.HorizontalRule:
			w.pdf.Ln(3)
			w.pdf.Line(w.pdf.GetX(), w.pdf.GetY(), 200, w.pdf.GetY())
			w.pdf.Ln(3)
		case editor.BlankLine:
			w.pdf.Ln(bodyLineHeight / 2)
		}
	}
}

// writeSpans набирает фрагменты строки, при resolveMarks разворачивая
// литеральную **жирную** и *курсивную* разметку в стили шрифта.
func (w *pdfWriter) writeSpans(spans []any, resolveMarks bool) {
	if resolveMarks {
		spans = blockmd.ResolveMarks(spans)
	}
	for _, rawSpan := range spans {
		switch span := rawSpan.(type) {
		case editor.Text:
			style := ""
			if span.Bold {
				style += "B"
			}
			if span.Italic {
				style += "I"
			}
			w.pdf.SetFont("Helvetica", style, bodyFontSize)
			w.write(span.Content)
		case editor.Break:
			w.pdf.Ln(bodyLineHeight)
		}
	}
}

func (w *pdfWriter) write(text string) {
	tr := w.pdf.UnicodeTranslatorFromDescriptor("")
	w.pdf.Write(bodyLineHeight, tr(text))
}
