package interfaces

import (
	"context"

	"github.com/ternarybob/augur/internal/models"
)

// Collector fetches items from one external source and persists the admitted
// ones into its category directory.
type Collector interface {
	// Name is the batch step name, e.g. "news".
	Name() string

	// Category is the directory the collector writes into.
	Category() models.Category

	// Collect runs one fetch/admit/dedup/persist pass. Per-item problems are
	// recorded in the report; an error is returned only when the source as a
	// whole could not be read.
	Collect(ctx context.Context) (*models.CollectionReport, error)
}
