package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// ChatLogHandler stores question/answer pairs pushed by the browser extension
type ChatLogHandler struct {
	chats  interfaces.ChatLogStorage
	logger arbor.ILogger
}

func NewChatLogHandler(chats interfaces.ChatLogStorage, logger arbor.ILogger) *ChatLogHandler {
	return &ChatLogHandler{chats: chats, logger: logger}
}

// SaveAllHandler stores every exchange whose question is new
func (h *ChatLogHandler) SaveAllHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var exchanges []models.ChatExchange
	if err := json.NewDecoder(r.Body).Decode(&exchanges); err != nil {
		WriteError(w, http.StatusBadRequest, "body must be a JSON array of {question, answer}")
		return
	}

	saved, err := h.chats.SaveAll(r.Context(), exchanges)
	if err != nil {
		h.logger.Error().Err(err).Int("received", len(exchanges)).Msg("Failed to save chat logs")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info().Int("received", len(exchanges)).Int("saved", saved).Msg("Chat logs saved")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"saved_count": saved,
	})
}
