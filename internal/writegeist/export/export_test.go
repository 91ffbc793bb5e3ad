package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writegeist/writegeist.go/internal/writegeist/dao"
)

func sampleManuscript() *Manuscript {
	return &Manuscript{
		Title:      "Harbor Lights",
		ProjectDoc: "# My Project\n\n## Setting\n\nThe docks at night.",
		Chapters: []dao.Chapter{
			{Title: "Chapter One", Text: "Anna walked to the docks.", WordCount: 5, ReadingTimeMinutes: 1},
			{Title: "Chapter Two", Text: "Boris waited in the fog.", WordCount: 5, ReadingTimeMinutes: 1},
		},
		GeneratedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(sampleManuscript(), &buf))
	out := buf.String()

	assert.Contains(t, out, "# My Project")
	assert.Contains(t, out, "---")
	assert.Contains(t, out, "# Chapter One")
	assert.Contains(t, out, "*5 words, ~1 min read*")
	assert.Contains(t, out, "Anna walked to the docks.")
	assert.Contains(t, out, "# Chapter Two")

	// Проектный документ идет до глав
	assert.Less(t, strings.Index(out, "The docks at night."), strings.Index(out, "# Chapter One"))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(sampleManuscript(), &buf))
	out := buf.String()

	assert.Contains(t, out, "<!doctype html>")
	assert.Contains(t, out, "<title>Harbor Lights</title>")
	assert.Contains(t, out, "Anna walked to the docks.")
	assert.Contains(t, out, "Chapter Two")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(sampleManuscript(), &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output is not a PDF")
	assert.Greater(t, buf.Len(), 1000)
}

func TestExportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Export(sampleManuscript(), "docx", &buf)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "manuscript-2026-03-14.md", FileName(FormatMarkdown, at))
	assert.Equal(t, "manuscript-2026-03-14.pdf", FileName(FormatPDF, at))
	assert.Equal(t, "manuscript-2026-03-14.html", FileName(FormatHTML, at))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/markdown; charset=utf-8", ContentType(FormatMarkdown))
	assert.Equal(t, "application/pdf", ContentType(FormatPDF))
	assert.Equal(t, "text/html; charset=utf-8", ContentType(FormatHTML))
}
