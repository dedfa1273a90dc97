package collectors

import (
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/augur/internal/models"
)

// Field selects which text an admission rule inspects
type Field int

const (
	FieldTitle Field = iota
	FieldBody
	FieldTitleAndBody
)

// Filter is a domain noise filter: a minimum length and a case-insensitive
// keyword denylist
type Filter struct {
	MinLength int
	LengthOn  Field
	Denylist  []string
	DenyOn    Field
}

// NewsFilter admits news whose title is at least 5 characters and free of
// gossip, rumor and sports keywords
var NewsFilter = Filter{
	MinLength: 5,
	LengthOn:  FieldTitle,
	Denylist: []string{
		"찌라시", "루머", "rumor",
		"열애", "결별", "dating", "scandal", "폭로", "충격",
		"경기 결과", "match result", "highlight",
	},
	DenyOn: FieldTitle,
}

// CommunityFilter admits posts with at least 30 characters of content that
// are not about elections or sports
var CommunityFilter = Filter{
	MinLength: 30,
	LengthOn:  FieldBody,
	Denylist:  []string{"election", "vote", "soccer", "baseball"},
	DenyOn:    FieldTitleAndBody,
}

func pick(field Field, title, body string) string {
	switch field {
	case FieldBody:
		return body
	case FieldTitleAndBody:
		return title + " " + body
	}
	return title
}

// Admit reports whether an item passes the filter and, if not, why
func (f Filter) Admit(title, body string) (bool, string) {
	if utf8.RuneCountInString(strings.TrimSpace(pick(f.LengthOn, title, body))) < f.MinLength {
		return false, models.ReasonFiltered + ": too short"
	}

	text := strings.ToLower(pick(f.DenyOn, title, body))
	for _, keyword := range f.Denylist {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return false, models.ReasonFiltered + ": " + keyword
		}
	}
	return true, ""
}
