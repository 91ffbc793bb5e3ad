package blockmd

import (
	"strings"
	"testing"

	"github.com/writegeist/writegeist.go/internal/writegeist/editor"
)

func spans(text string) []any {
	return []any{editor.Text{Content: text}}
}

func TestSerializeBlocks(t *testing.T) {
	tests := []struct {
		name string
		doc  *editor.Document
		want string
	}{
		{
			name: "heading levels",
			doc: &editor.Document{Blocks: []any{
				editor.Heading{Level: 1, Spans: spans("One")},
				editor.Heading{Level: 2, Spans: spans("Two")},
				editor.Heading{Level: 3, Spans: spans("Three")},
			}},
			want: "# One\n\n## Two\n\n### Three",
		},
		{
			name: "blockquote",
			doc:  &editor.Document{Blocks: []any{editor.Blockquote{Spans: spans("wisdom")}}},
			want: "> wisdom",
		},
		{
			name: "horizontal rule between paragraphs",
			doc: &editor.Document{Blocks: []any{
				editor.Paragraph{Spans: spans("a")},
				editor.HorizontalRule{},
				editor.Paragraph{Spans: spans("b")},
			}},
			want: "a\n\n---\n\nb",
		},
		{
			name: "list items stay adjacent",
			doc: &editor.Document{Blocks: []any{
				editor.ListItem{Spans: spans("first")},
				editor.ListItem{Spans: spans("second")},
			}},
			want: "* first\n* second",
		},
		{
			name: "placeholder paragraph is dropped",
			doc: &editor.Document{Blocks: []any{
				editor.Paragraph{Spans: spans(editor.HintText), Placeholder: true},
			}},
			want: "",
		},
		{
			name: "blank separators collapse",
			doc: &editor.Document{Blocks: []any{
				editor.Paragraph{Spans: spans("a")},
				editor.BlankLine{},
				editor.BlankLine{},
				editor.BlankLine{},
				editor.Paragraph{Spans: spans("b")},
			}},
			want: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Serialize(tt.doc); got != tt.want {
				t.Errorf("Serialize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerializeInlineMarks(t *testing.T) {
	doc := &editor.Document{Blocks: []any{
		editor.Paragraph{Spans: []any{
			editor.Text{Content: "plain "},
			editor.Text{Content: "strong", Bold: true},
			editor.Text{Content: " and "},
			editor.Text{Content: "slanted", Italic: true},
		}},
	}}

	if got := Serialize(doc); got != "plain **strong** and *slanted*" {
		t.Errorf("Serialize = %q", got)
	}
}

func TestSerializeLineBreak(t *testing.T) {
	doc := &editor.Document{Blocks: []any{
		editor.Paragraph{Spans: []any{
			editor.Text{Content: "one"},
			editor.Break{},
			editor.Text{Content: "two"},
		}},
	}}

	if got := Serialize(doc); got != "one\ntwo" {
		t.Errorf("Serialize = %q, want %q", got, "one\ntwo")
	}
}

func TestHeadingRoundTrip(t *testing.T) {
	got := Serialize(Parse("# Title"))
	if !strings.Contains(got, "# Title") {
		t.Errorf("round trip lost heading: %q", got)
	}
}

func TestRoundTripIdempotence(t *testing.T) {
	// Один проход нормализует документ, дальнейшие обязаны быть стабильными
	inputs := []string{
		"",
		"# Title",
		"plain text",
		"a\n\nb",
		"a\n\n\n\n\nb",
		"## Setting\n\nA city of bridges.\n\n* District One\n* District Two",
		"# H\n> quote\n---\n* one\n- two\n\ntail",
		"   \n\n  \nleading blanks",
		"**bold** and *italic* survive as text",
	}

	for _, input := range inputs {
		first := Serialize(Parse(input))
		second := Serialize(Parse(first))
		if first != second {
			t.Errorf("round trip not stable for %q:\n first = %q\nsecond = %q", input, first, second)
		}
	}
}

func TestEndToEndOutline(t *testing.T) {
	input := "## Setting\n\nA city of bridges.\n\n* District One\n* District Two"
	doc := Parse(input)

	var content []any
	for _, block := range doc.Blocks {
		if _, blank := block.(editor.BlankLine); !blank {
			content = append(content, block)
		}
	}

	if len(content) != 4 {
		t.Fatalf("content blocks = %d, want 4", len(content))
	}
	if h, ok := content[0].(editor.Heading); !ok || h.Level != 2 {
		t.Errorf("content[0] = %T, want Heading level 2", content[0])
	}
	if _, ok := content[1].(editor.Paragraph); !ok {
		t.Errorf("content[1] = %T, want Paragraph", content[1])
	}
	if _, ok := content[2].(editor.ListItem); !ok {
		t.Errorf("content[2] = %T, want ListItem", content[2])
	}
	if _, ok := content[3].(editor.ListItem); !ok {
		t.Errorf("content[3] = %T, want ListItem", content[3])
	}

	out := Serialize(doc)
	for _, part := range []string{"## Setting", "A city of bridges.", "* District One", "* District Two"} {
		if !strings.Contains(out, part) {
			t.Errorf("serialized output lost %q: %q", part, out)
		}
	}

	if words := WordCount(out); words < 9 {
		t.Errorf("WordCount = %d, want >= 9", words)
	}
}
