package models

import "time"

// InsightReport is one persisted daily briefing
type InsightReport struct {
	ID        string    `json:"id" badgerhold:"key"`
	CreatedAt time.Time `json:"created_at" badgerholdIndex:"CreatedAt"`
	Content   string    `json:"content"`
}

// ChatLog is a question/answer pair captured from the assistant UI
type ChatLog struct {
	ID        string    `json:"id" badgerhold:"key"`
	CreatedAt time.Time `json:"created_at" badgerholdIndex:"CreatedAt"`
	Question  string    `json:"question" badgerholdIndex:"Question"`
	Answer    string    `json:"answer"`
}

// ChatExchange is the inbound shape of a chat pair before it is stored
type ChatExchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
