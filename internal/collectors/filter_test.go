package collectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewsFilter_Admit(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		admit  bool
		reason string
	}{
		{name: "regular headline", title: "Fed holds rates steady", admit: true},
		{name: "short title", title: "속보", reason: "filtered: too short"},
		{name: "four runes", title: "대박이다", reason: "filtered: too short"},
		{name: "five runes", title: "금리 동결", admit: true},
		{name: "rumor keyword", title: "Tech merger Rumor spreads", reason: "filtered: rumor"},
		{name: "korean tabloid", title: "배우 A씨 열애 인정", reason: "filtered: 열애"},
		{name: "sports result", title: "Match Result: Team A wins", reason: "filtered: match result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := NewsFilter.Admit(tt.title, "")
			assert.Equal(t, tt.admit, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestCommunityFilter_Admit(t *testing.T) {
	long := "Semiconductor capex is rising faster than consensus expects this year."

	tests := []struct {
		name  string
		title string
		body  string
		admit bool
	}{
		{name: "substantive post", title: "Chips", body: long, admit: true},
		{name: "short body", title: "A long and descriptive title for a short post", body: "lol"},
		{name: "denylist in title", title: "Election odds", body: long},
		{name: "denylist in body", title: "Weekend", body: long + " Also the baseball game was great."},
		{name: "case insensitive", title: "VOTE now", body: long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := CommunityFilter.Admit(tt.title, tt.body)
			assert.Equal(t, tt.admit, ok)
		})
	}
}
