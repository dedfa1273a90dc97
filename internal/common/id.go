package common

import (
	"github.com/google/uuid"
)

// NewInsightID generates a unique insight report ID
// Format: ins_<uuid>
func NewInsightID() string {
	return "ins_" + uuid.New().String()
}

// NewChatID generates a unique chat log ID
// Format: chat_<uuid>
func NewChatID() string {
	return "chat_" + uuid.New().String()
}

// NewRecordID generates an ID for source records whose origin provides none
func NewRecordID() string {
	return uuid.New().String()
}
