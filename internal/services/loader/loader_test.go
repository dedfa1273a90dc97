package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return s.text, s.err
}

var baseTime = time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, dir, name, body string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	mod := baseTime.Add(-age)
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func newTestLoader(extractor *stubExtractor) *Loader {
	if extractor == nil {
		return NewLoader(nil, Options{}, arbor.NewLogger())
	}
	return NewLoader(extractor, Options{}, arbor.NewLogger())
}

func TestLoad_BoundsPerDirectory(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"assets", "trends"} {
		for i := 0; i < 5; i++ {
			writeFile(t, filepath.Join(root, dir), fmt.Sprintf("f%d.txt", i), fmt.Sprintf("%s body %d", dir, i), time.Duration(i)*time.Hour)
		}
	}

	corpus := newTestLoader(nil).Load(context.Background(), filepath.Join(root, "assets"), filepath.Join(root, "trends"))

	require.Len(t, corpus, 6)
	perDir := map[string]int{}
	for _, e := range corpus {
		perDir[e.Dir]++
	}
	assert.Equal(t, 3, perDir["assets"])
	assert.Equal(t, 3, perDir["trends"])

	// Newest first within a directory
	assert.Equal(t, []string{"f0.txt", "f1.txt", "f2.txt"}, []string{corpus[0].File, corpus[1].File, corpus[2].File})
	assert.Equal(t, "[assets/f0.txt] assets body 0", corpus[0].Label)
}

func TestLoad_JSONRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "news")
	writeFile(t, dir, "1.json", `{"title":"Fed holds rates","content":"line one\nline two","extra":true}`, 0)
	writeFile(t, dir, "2.json", `{"content":"untitled body"}`, time.Hour)
	writeFile(t, dir, "collector_state.json", `{"title":"state","content":"ignored"}`, -time.Hour)

	corpus := newTestLoader(nil).Load(context.Background(), dir)

	require.Len(t, corpus, 2)
	assert.Equal(t, "[news] Fed holds rates: line one line two", corpus[0].Label)
	assert.Equal(t, "[news] No Title: untitled body", corpus[1].Label)
}

func TestLoad_FailuresDoNotConsumeCap(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "community")
	writeFile(t, dir, "broken.json", `{not json`, 0)
	writeFile(t, dir, "ignored.csv", `a,b`, time.Minute)
	for i := 1; i <= 4; i++ {
		writeFile(t, dir, fmt.Sprintf("%d.json", i), fmt.Sprintf(`{"title":"t%d","content":"c%d"}`, i, i), time.Duration(i)*time.Hour)
	}

	corpus := newTestLoader(nil).Load(context.Background(), dir)

	require.Len(t, corpus, 3)
	assert.Equal(t, "1.json", corpus[0].File)
	assert.Equal(t, "3.json", corpus[2].File)
}

func TestLoad_ExcerptCaps(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("가", DefaultMaxExcerpt+500)
	writeFile(t, filepath.Join(root, "reports"), "big.txt", long, 0)
	writeFile(t, filepath.Join(root, "reports"), "deck.pdf", "%PDF-1.4", time.Hour)

	extractor := &stubExtractor{text: strings.Repeat("x", 5000)}
	corpus := newTestLoader(extractor).Load(context.Background(), filepath.Join(root, "reports"))

	require.Len(t, corpus, 2)
	assert.Equal(t, DefaultMaxExcerpt, len([]rune(corpus[0].Text)))
	assert.Equal(t, DefaultMaxPDFExcerpt, len([]rune(corpus[1].Text)))
	assert.True(t, strings.HasPrefix(corpus[1].Label, "[reports] PDF: "))
}

func TestLoad_PDFWithoutTextIsSkipped(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	writeFile(t, dir, "scan.pdf", "%PDF", 0)
	writeFile(t, dir, "broken.pdf", "%PDF", time.Minute)

	corpus := newTestLoader(&stubExtractor{text: "   "}).Load(context.Background(), dir)
	assert.Empty(t, corpus)

	corpus = newTestLoader(&stubExtractor{err: errors.New("encrypted")}).Load(context.Background(), dir)
	assert.Empty(t, corpus)
}

func TestLoad_MissingDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "assets"), "a.txt", "alpha", 0)

	corpus := newTestLoader(nil).Load(context.Background(), filepath.Join(root, "missing"), filepath.Join(root, "assets"))

	require.Len(t, corpus, 1)
	assert.Equal(t, "[assets/a.txt] alpha", corpus.String())
}

func TestCorpus_String(t *testing.T) {
	corpus := Corpus{{Label: "[a] x"}, {Label: "[b] y"}}
	assert.Equal(t, "[a] x\n\n[b] y", corpus.String())
	assert.Equal(t, "", Corpus{}.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "가나", Truncate("가나다", 2))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("x", 0))
}
