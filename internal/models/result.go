package models

import "time"

// ItemStatus is the outcome of one collected item
type ItemStatus string

const (
	ItemSaved   ItemStatus = "saved"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// Common skip reasons
const (
	ReasonDuplicate = "duplicate"
	ReasonUnchanged = "unchanged"
	ReasonFiltered  = "filtered"
)

// ItemResult records what happened to a single item
type ItemResult struct {
	ID     string     `json:"id"`
	Status ItemStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// CollectionReport aggregates item results for one collector run
type CollectionReport struct {
	Collector  string       `json:"collector"`
	Category   Category     `json:"category"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Items      []ItemResult `json:"items"`
}

// NewCollectionReport starts a report for the named collector
func NewCollectionReport(collector string, category Category) *CollectionReport {
	return &CollectionReport{
		Collector: collector,
		Category:  category,
		StartedAt: time.Now(),
	}
}

// Saved records a persisted item
func (r *CollectionReport) Saved(id string) {
	r.Items = append(r.Items, ItemResult{ID: id, Status: ItemSaved})
}

// Skipped records an item that was intentionally not persisted
func (r *CollectionReport) Skipped(id, reason string) {
	r.Items = append(r.Items, ItemResult{ID: id, Status: ItemSkipped, Reason: reason})
}

// Failed records an item that could not be fetched, parsed or written
func (r *CollectionReport) Failed(id string, err error) {
	r.Items = append(r.Items, ItemResult{ID: id, Status: ItemFailed, Reason: err.Error()})
}

// Finish stamps the completion time and returns the report
func (r *CollectionReport) Finish() *CollectionReport {
	r.FinishedAt = time.Now()
	return r
}

// Count returns the number of items with the given status
func (r *CollectionReport) Count(status ItemStatus) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}
