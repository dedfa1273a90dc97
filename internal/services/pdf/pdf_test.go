package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestConvertMarkdownToPDF(t *testing.T) {
	exporter := NewExporter(arbor.NewLogger())

	tests := []struct {
		name     string
		markdown string
	}{
		{name: "briefing", markdown: "## Strategic Daily Briefing (2026-10-19)\n\n### 1. Real Estate Alpha\n\n- Item 1\n- Item 2"},
		{name: "empty", markdown: ""},
		{name: "styling", markdown: "Normal **Bold** *Italic* `code`\n\n---\n\nAfter break"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfBytes, err := exporter.ConvertMarkdownToPDF(tt.markdown, "Briefing")
			require.NoError(t, err)
			require.NotEmpty(t, pdfBytes)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))
		})
	}
}

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "simple Tj",
			stream: "BT /F1 12 Tf 72 712 Td (Hello World) Tj ET",
			want:   "Hello World",
		},
		{
			name:   "TJ array with kerning",
			stream: "BT [(Out) -20 (look) 15 ( 2026)] TJ ET",
			want:   "Outlook 2026",
		},
		{
			name:   "escaped parentheses and octal",
			stream: `BT (Rate \(bps\) \101) Tj ET`,
			want:   "Rate (bps) A",
		},
		{
			name:   "multiple lines",
			stream: "BT (Line one) Tj T* (Line two) Tj ET",
			want:   "Line one\nLine two",
		},
		{
			name:   "hex string",
			stream: "BT <48656C6C6F> Tj ET",
			want:   "Hello",
		},
		{
			name:   "no text operators",
			stream: "q 1 0 0 1 0 0 cm /Im1 Do Q",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextFromContentStream([]byte(tt.stream)))
		})
	}
}

func TestExtractText_RoundTrip(t *testing.T) {
	logger := arbor.NewLogger()
	pdfBytes, err := NewExporter(logger).ConvertMarkdownToPDF("Market Outlook\n\nRates stay higher for longer", "Outlook")
	require.NoError(t, err)

	text, err := NewExtractor(logger).ExtractText(context.Background(), pdfBytes)
	require.NoError(t, err)

	assert.Contains(t, text, "Market Outlook")
	assert.Contains(t, text, "Rates stay higher for longer")
}

func TestExtractText_InvalidPDF(t *testing.T) {
	_, err := NewExtractor(arbor.NewLogger()).ExtractText(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
