package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

type fakeInsights struct {
	reports []*models.InsightReport
	err     error
}

func (f *fakeInsights) Save(ctx context.Context, report *models.InsightReport) error {
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeInsights) Latest(ctx context.Context) (*models.InsightReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reports) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return f.reports[len(f.reports)-1], nil
}

func (f *fakeInsights) List(ctx context.Context, limit int) ([]*models.InsightReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := append([]*models.InsightReport(nil), f.reports...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeChats struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (f *fakeChats) SaveAll(ctx context.Context, exchanges []models.ChatExchange) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	saved := 0
	for _, e := range exchanges {
		if f.seen[e.Question] {
			continue
		}
		f.seen[e.Question] = true
		saved++
	}
	return saved, nil
}

func (f *fakeChats) ListSince(ctx context.Context, since time.Time) ([]*models.ChatLog, error) {
	return nil, nil
}

func (f *fakeChats) Count(ctx context.Context) (int, error) {
	return len(f.seen), nil
}

type fakeScheduler struct {
	triggerErr error
	batches    int
	analyses   int
	running    bool
	next       *time.Time
}

func (f *fakeScheduler) Start(cronExpr string) error { f.running = true; return nil }
func (f *fakeScheduler) Stop() error                 { f.running = false; return nil }
func (f *fakeScheduler) IsRunning() bool             { return f.running }
func (f *fakeScheduler) NextRun() *time.Time         { return f.next }

func (f *fakeScheduler) TriggerBatch() error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.batches++
	return nil
}

func (f *fakeScheduler) TriggerAnalysis() error {
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.analyses++
	return nil
}

type fakeExporter struct {
	markdown string
	title    string
}

func (f *fakeExporter) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	f.markdown, f.title = markdown, title
	return []byte("%PDF-1.4 fake"), nil
}
