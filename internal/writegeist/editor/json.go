package editor

import (
	"encoding/json"
	"log/slog"
)

// blockNode - JSON-представление блока для обмена с интерактивным редактором.
// Универсальная структура покрывает все типы блоков и фрагментов.
type blockNode struct {
	Type  string     `json:"type"`
	Level int        `json:"level,omitempty"`
	Hint  bool       `json:"hint,omitempty"`
	Spans []spanNode `json:"spans,omitempty"`
}

type spanNode struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// MarshalJSON сериализует документ в блочный JSON для интерактивного редактора.
func (d Document) MarshalJSON() ([]byte, error) {
	nodes := make([]blockNode, 0, len(d.Blocks))
	for _, block := range d.Blocks {
		if node := serializeBlock(block); node != nil {
			nodes = append(nodes, *node)
		}
	}
	return json.Marshal(struct {
		Blocks []blockNode `json:"blocks"`
	}{nodes})
}

// UnmarshalJSON восстанавливает документ из блочного JSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Blocks []blockNode `json:"blocks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Blocks = make([]any, 0, len(raw.Blocks))
	for _, node := range raw.Blocks {
		if block := parseBlockNode(node); block != nil {
			d.Blocks = append(d.Blocks, block)
		}
	}
	return nil
}

func serializeBlock(block any) *blockNode {
	switch b := block.(type) {
	case Heading:
		return &blockNode{Type: "heading", Level: b.Level, Spans: serializeSpans(b.Spans)}
	case Paragraph:
		return &blockNode{Type: "paragraph", Hint: b.Placeholder, Spans: serializeSpans(b.Spans)}
	case ListItem:
		return &blockNode{Type: "listItem", Spans: serializeSpans(b.Spans)}
	case Blockquote:
		return &blockNode{Type: "blockquote", Spans: serializeSpans(b.Spans)}
	case HorizontalRule:
		return &blockNode{Type: "horizontalRule"}
	case BlankLine:
		return &blockNode{Type: "blankLine"}
	default:
		slog.Warn("Unknown block type for serialization", "type", b)
		return nil
	}
}

func serializeSpans(spans []any) []spanNode {
	nodes := make([]spanNode, 0, len(spans))
	for _, rawSpan := range spans {
		switch span := rawSpan.(type) {
		case Text:
			nodes = append(nodes, spanNode{Type: "text", Text: span.Content, Bold: span.Bold, Italic: span.Italic})
		case Break:
			nodes = append(nodes, spanNode{Type: "break"})
		default:
			slog.Warn("Unknown span type for serialization", "type", span)
		}
	}
	return nodes
}

func parseBlockNode(node blockNode) any {
	switch node.Type {
	case "heading":
		level := node.Level
		if level < 1 || level > 3 {
			level = 1
		}
		return Heading{Level: level, Spans: parseSpanNodes(node.Spans)}
	case "paragraph":
		return Paragraph{Spans: parseSpanNodes(node.Spans), Placeholder: node.Hint}
	case "listItem":
		return ListItem{Spans: parseSpanNodes(node.Spans)}
	case "blockquote":
		return Blockquote{Spans: parseSpanNodes(node.Spans)}
	case "horizontalRule":
		return HorizontalRule{}
	case "blankLine":
		return BlankLine{}
	default:
		slog.Warn("Unknown block node type", "type", node.Type)
		return nil
	}
}

func parseSpanNodes(nodes []spanNode) []any {
	spans := make([]any, 0, len(nodes))
	for _, node := range nodes {
		switch node.Type {
		case "text":
			spans = append(spans, Text{Content: node.Text, Bold: node.Bold, Italic: node.Italic})
		case "break":
			spans = append(spans, Break{})
		default:
			slog.Warn("Unknown span node type", "type", node.Type)
		}
	}
	return spans
}
