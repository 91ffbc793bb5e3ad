package tts

import (
	"strings"
	"testing"
)

func TestSplitChunksShortText(t *testing.T) {
	chunks := SplitChunks("One paragraph.\n\nTwo paragraph.", 100)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0] != "One paragraph.\n\nTwo paragraph." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestSplitChunksParagraphBoundary(t *testing.T) {
	first := strings.Repeat("aaaa ", 12)  // 60 bytes
	second := strings.Repeat("bbbb ", 12) // 60 bytes
	text := strings.TrimSpace(first) + "\n\n" + strings.TrimSpace(second)

	chunks := SplitChunks(text, 80)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2: %q", len(chunks), chunks)
	}
	if strings.Contains(chunks[0], "bbbb") {
		t.Errorf("paragraphs were not split on boundary: %q", chunks[0])
	}
	for i, chunk := range chunks {
		if len(chunk) > 80 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(chunk))
		}
	}
}

func TestSplitChunksLongParagraph(t *testing.T) {
	paragraph := strings.TrimSpace(strings.Repeat("word ", 50)) // 249 bytes, no blank lines

	chunks := SplitChunks(paragraph, 100)
	if len(chunks) < 3 {
		t.Fatalf("chunks = %d, want at least 3", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds limit: %d bytes", i, len(chunk))
		}
	}

	joined := strings.Join(chunks, " ")
	if len(strings.Fields(joined)) != 50 {
		t.Errorf("words lost while splitting: %d of 50", len(strings.Fields(joined)))
	}
}

func TestSplitChunksEmpty(t *testing.T) {
	if chunks := SplitChunks("   \n\n  ", 100); len(chunks) != 0 {
		t.Errorf("chunks = %v, want none", chunks)
	}
}

func TestEstimateDuration(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 150))

	got := estimateDuration(text)
	if got != 60 {
		t.Errorf("duration = %v, want 60", got)
	}

	if estimateDuration("") != 0 {
		t.Errorf("empty text should have zero duration")
	}
}
