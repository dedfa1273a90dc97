// Package pdf extracts text from downloaded reports and renders briefings as PDF.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
)

// Extractor pulls page-ordered text out of PDF content streams using pdfcpu
type Extractor struct {
	logger  arbor.ILogger
	tempDir string
}

var _ interfaces.PDFExtractor = (*Extractor)(nil)

var pageNumberPattern = regexp.MustCompile(`page_(\d+)`)

// NewExtractor creates a new PDF extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{
		logger:  logger,
		tempDir: os.TempDir(),
	}
}

// ExtractText extracts the text of a PDF held in memory
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp(e.tempDir, "augur-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp PDF file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	return e.ExtractFile(ctx, tmp.Name())
}

// ExtractFile extracts the text of a PDF on disk. Pages are joined with newlines.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF context: %w", err)
	}

	outDir, err := os.MkdirTemp(e.tempDir, "augur-pages-*")
	if err != nil {
		return "", fmt.Errorf("failed to create page directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted content: %w", err)
	}

	pageTexts := make(map[int]string, pdfCtx.PageCount)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		m := pageNumberPattern.FindStringSubmatch(file.Name())
		if m == nil {
			continue
		}
		pageNum, _ := strconv.Atoi(m[1])
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			e.logger.Debug().Err(err).Str("file", file.Name()).Msg("Skipping unreadable content stream")
			continue
		}
		pageTexts[pageNum] += TextFromContentStream(content)
	}

	pageNums := make([]int, 0, len(pageTexts))
	for n := range pageTexts {
		pageNums = append(pageNums, n)
	}
	sort.Ints(pageNums)

	var builder strings.Builder
	for _, n := range pageNums {
		text := strings.TrimSpace(pageTexts[n])
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	e.logger.Debug().
		Str("file", filepath.Base(path)).
		Int("pages", pdfCtx.PageCount).
		Int("chars", builder.Len()).
		Msg("Extracted PDF text")

	return builder.String(), nil
}

// TextFromContentStream collects the strings shown by text operators
// (Tj, TJ, ' and ") in a decoded page content stream.
func TextFromContentStream(content []byte) string {
	var (
		out     strings.Builder
		pending []string
	)

	flush := func() {
		for _, s := range pending {
			out.WriteString(s)
		}
		pending = pending[:0]
	}

	for i := 0; i < len(content); {
		c := content[i]
		switch {
		case c == '%':
			for i < len(content) && content[i] != '\n' && content[i] != '\r' {
				i++
			}
		case c == '(':
			s, next := readLiteralString(content, i)
			pending = append(pending, s)
			i = next
		case c == '<' && i+1 < len(content) && content[i+1] != '<':
			s, next := readHexString(content, i)
			pending = append(pending, s)
			i = next
		case c == '[' || c == ']':
			i++
		case isRegular(c):
			start := i
			for i < len(content) && isRegular(content[i]) {
				i++
			}
			switch string(content[start:i]) {
			case "Tj", "TJ":
				flush()
			case "'", "\"":
				out.WriteString("\n")
				flush()
			case "T*", "ET":
				pending = pending[:0]
				out.WriteString("\n")
			case "Td", "TD":
				pending = pending[:0]
				out.WriteString(" ")
			default:
				// numbers and other operators drop any dangling operands
				if !isNumber(content[start:i]) {
					pending = pending[:0]
				}
			}
		default:
			i++
		}
	}

	lines := strings.Split(out.String(), "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func isRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

func isNumber(tok []byte) bool {
	_, err := strconv.ParseFloat(string(tok), 64)
	return err == nil
}

func readLiteralString(content []byte, start int) (string, int) {
	var b strings.Builder
	depth := 0
	i := start
	for i < len(content) {
		c := content[i]
		switch c {
		case '(':
			if depth > 0 {
				b.WriteByte(c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), i + 1
			}
			b.WriteByte(c)
		case '\\':
			i++
			if i >= len(content) {
				break
			}
			switch e := content[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
			default:
				if e >= '0' && e <= '7' {
					n := 0
					j := 0
					for j < 3 && i < len(content) && content[i] >= '0' && content[i] <= '7' {
						n = n*8 + int(content[i]-'0')
						i++
						j++
					}
					i--
					b.WriteByte(byte(n))
				} else {
					b.WriteByte(e)
				}
			}
		default:
			b.WriteByte(c)
		}
		i++
	}
	return b.String(), i
}

func readHexString(content []byte, start int) (string, int) {
	end := start + 1
	for end < len(content) && content[end] != '>' {
		end++
	}
	hex := strings.Join(strings.Fields(string(content[start+1:min(end, len(content))])), "")
	if len(hex)%2 == 1 {
		hex += "0"
	}
	var b strings.Builder
	for i := 0; i+1 < len(hex); i += 2 {
		v, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			continue
		}
		if v >= 0x20 && v < 0x7f {
			b.WriteByte(byte(v))
		}
	}
	return b.String(), end + 1
}
