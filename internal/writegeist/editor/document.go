package editor

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// MarkdownParser - функция преобразования markdown в Document, устанавливается из blockmd пакета
var MarkdownParser func(string) *Document

// MarkdownSerializer - функция сериализации Document в markdown, устанавливается из blockmd пакета
var MarkdownSerializer func(*Document) string

// Document - упорядоченная последовательность блоков проекта.
type Document struct {
	Blocks []any
}

// Markdown сериализует документ обратно в markdown через зарегистрированный сериализатор.
func (d *Document) Markdown() (string, error) {
	if MarkdownSerializer == nil {
		return "", errors.New("MarkdownSerializer not registered, import blockmd package to enable markdown serialization")
	}
	return MarkdownSerializer(d), nil
}

// FromMarkdown строит документ из markdown через зарегистрированный парсер.
func FromMarkdown(markdown string) (*Document, error) {
	if MarkdownParser == nil {
		return nil, errors.New("MarkdownParser not registered, import blockmd package to enable markdown parsing")
	}
	return MarkdownParser(markdown), nil
}

// Value реализует интерфейс driver.Valuer: документ хранится в БД как markdown-текст.
func (d Document) Value() (driver.Value, error) {
	return d.Markdown()
}

// Scan реализует интерфейс sql.Scanner: читает markdown-текст из БД и парсит его.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{Blocks: make([]any, 0)}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return errors.New(fmt.Sprint("Failed to scan markdown value:", value))
	}

	doc, err := FromMarkdown(raw)
	if err != nil {
		return err
	}
	d.Blocks = doc.Blocks
	return nil
}

// GormDataType указывает GORM использовать текстовый тип колонки.
func (Document) GormDataType() string {
	return "text"
}

// PlainText возвращает текст документа без разметки. Блоки разделяются переносом строки.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for _, rawBlock := range d.Blocks {
		switch block := rawBlock.(type) {
		case Heading:
			writeSpansText(&sb, block.Spans)
			sb.WriteString("\n")
		case Paragraph:
			if block.Placeholder {
				continue
			}
			writeSpansText(&sb, block.Spans)
			sb.WriteString("\n")
		case ListItem:
			writeSpansText(&sb, block.Spans)
			sb.WriteString("\n")
		case Blockquote:
			writeSpansText(&sb, block.Spans)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeSpansText(sb *strings.Builder, spans []any) {
	for _, rawSpan := range spans {
		switch span := rawSpan.(type) {
		case Text:
			sb.WriteString(span.Content)
		case Break:
			sb.WriteString("\n")
		}
	}
}

// SpanText собирает текст фрагментов без форматирования в одну строку.
func SpanText(spans []any) string {
	var sb strings.Builder
	writeSpansText(&sb, spans)
	return sb.String()
}
