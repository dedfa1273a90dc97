package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

// PageRenderer loads a page in a headless browser and returns the rendered HTML
type PageRenderer interface {
	Render(ctx context.Context, url string, wait time.Duration) (string, error)
}

// WebSearcher runs a web search and returns up to max organic results
type WebSearcher interface {
	Search(ctx context.Context, query string, max int) ([]models.SearchResult, error)
}
