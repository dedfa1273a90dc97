package interfaces

import "context"

// PDFExtractor extracts page-ordered text from a PDF document
type PDFExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// PDFExporter renders markdown into a PDF document
type PDFExporter interface {
	ConvertMarkdownToPDF(markdown string, title string) ([]byte, error)
}
