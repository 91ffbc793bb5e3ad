package blockmd

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var newlineRunsReg = regexp.MustCompile(`\n{3,}`)

// CleanHTMLArtifacts убирает HTML-остатки из текста, пришедшего от внешних
// сервисов (n8n, вставка из браузера). Вместо регулярных выражений по тегам
// используется настоящий HTML-токенизатор: элементы списков превращаются в
// markdown-маркеры, прочие теги отбрасываются, сущности декодируются.
// Текст без разметки возвращается как есть.
func CleanHTMLArtifacts(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	z := html.NewTokenizer(strings.NewReader(text))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.ReplaceAll(sb.String(), " ", " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "li":
				sb.WriteString("* ")
			case "ul", "ol", "p", "br", "div":
				sb.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "li", "ul", "ol", "p", "div":
				sb.WriteString("\n")
			}
		}
	}
}

// Normalize приводит входящий markdown к канонической форме хранения:
// HTML-артефакты вычищаются, переводы строк приводятся к LF, хвостовые
// пробелы строк обрезаются, серии из трех и более переносов схлопываются
// до двух, ведущие пустые строки удаляются, текст завершается ровно одним
// переносом. Пустой или пробельный вход дает пустую строку.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = CleanHTMLArtifacts(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	text = newlineRunsReg.ReplaceAllString(text, "\n\n")
	text = strings.TrimLeft(text, "\n")
	return strings.TrimRight(text, " \t\n") + "\n"
}
