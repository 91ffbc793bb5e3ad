package export

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	minifyhtml "github.com/tdewolff/minify/v2/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var minifier *minify.M = minify.New()

// Главы могут содержать вставленный извне HTML, страница отдается браузеру как есть
var htmlPolicy = bluemonday.UGCPolicy()

func init() {
	minifier.AddFunc("text/html", minifyhtml.Minify)
}

var htmlEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

const pageStyle = `body{max-width:42em;margin:2em auto;padding:0 1em;font-family:Georgia,serif;line-height:1.6}blockquote{border-left:3px solid #ccc;margin-left:0;padding-left:1em;color:#555}h1{page-break-before:always}`

// WriteHTML рендерит манускрипт в одностраничный HTML-документ и минифицирует его.
func WriteHTML(m *Manuscript, out io.Writer) error {
	markdown, err := combinedMarkdown(m)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := htmlEngine.Convert([]byte(markdown), &body); err != nil {
		return err
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body>`,
		html.EscapeString(m.Title), pageStyle)
	page.Write(htmlPolicy.SanitizeBytes(body.Bytes()))
	page.WriteString("</body></html>")

	minified, err := minifier.Bytes("text/html", page.Bytes())
	if err != nil {
		// Страница остается валидной и без минификации
		minified = page.Bytes()
	}

	_, err = out.Write(minified)
	return err
}
