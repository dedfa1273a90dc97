package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Category identifies a category directory under the data root
type Category string

const (
	CategoryAssets    Category = "assets"
	CategoryTrends    Category = "trends"
	CategoryIPO       Category = "ipo_data"
	CategoryGuru      Category = "guru_data"
	CategoryNews      Category = "news"
	CategoryAINews    Category = "ai_news"
	CategoryReports   Category = "reports"
	CategoryCommunity Category = "community"
	CategoryWeather   Category = "weather"
)

// AllCategories lists every category directory
var AllCategories = []Category{
	CategoryAssets, CategoryTrends, CategoryIPO, CategoryGuru,
	CategoryNews, CategoryAINews, CategoryReports, CategoryCommunity, CategoryWeather,
}

// Valid reports whether c names a known category
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// SourceRecord is one collected item persisted as <category>/<id>.json.
// At most one detail block may be set and it must match Category.
// Unknown JSON fields are ignored on decode.
type SourceRecord struct {
	Category  Category  `json:"category" validate:"required,category"`
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Source    string    `json:"source" validate:"required"`
	CreatedAt time.Time `json:"created_at" validate:"required"`

	News      *NewsDetail      `json:"news,omitempty"`
	Community *CommunityDetail `json:"community,omitempty"`
	AINews    *AINewsDetail    `json:"ai_news,omitempty"`
}

// NewsDetail carries news-specific fields
type NewsDetail struct {
	Tags   []string `json:"tags,omitempty"`
	Author string   `json:"author,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// CommunityDetail carries community-post fields
type CommunityDetail struct {
	Author    string `json:"author,omitempty"`
	ViewCount int    `json:"view_count"`
	Likes     int    `json:"likes"`
}

// AINewsDetail is a full snapshot of the AI news stream
type AINewsDetail struct {
	Items []AINewsItem `json:"items"`
}

// AINewsItem is one card on the AI news stream
type AINewsItem struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("register category validation: %v", err))
	}
	return v
}

// Validate checks required fields and that the detail block matches the category
func (r *SourceRecord) Validate() error {
	if err := recordValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid %s record: %w", r.Category, err)
	}

	details := 0
	if r.News != nil {
		details++
		if r.Category != CategoryNews {
			return fmt.Errorf("news detail on %s record %s", r.Category, r.ID)
		}
	}
	if r.Community != nil {
		details++
		if r.Category != CategoryCommunity {
			return fmt.Errorf("community detail on %s record %s", r.Category, r.ID)
		}
	}
	if r.AINews != nil {
		details++
		if r.Category != CategoryAINews {
			return fmt.Errorf("ai_news detail on %s record %s", r.Category, r.ID)
		}
	}
	if details > 1 {
		return fmt.Errorf("record %s carries %d detail blocks", r.ID, details)
	}

	return nil
}
