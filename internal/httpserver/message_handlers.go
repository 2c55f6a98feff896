package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dmchat/internal/observability"
	"dmchat/internal/service"
)

type messageCreateRequest struct {
	// json.Number accepts both 2 and "2"; browser clients often send ids as strings.
	RecipientID json.Number `json:"recipientId"`
	Content     string      `json:"content"`
}

type messageEnvelope struct {
	Message string               `json:"message"`
	Data    *service.MessageView `json:"data"`
}

func handleSendMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}
		var recipientID int64
		if req.RecipientID != "" {
			id, err := req.RecipientID.Int64()
			if err != nil {
				writeBadRequest(w, "invalid recipient id")
				return
			}
			recipientID = id
		}

		view, err := msgSvc.Send(r.Context(), currentUser.ID, service.MessageCreateInput{
			RecipientID: recipientID,
			Content:     req.Content,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		observability.IncMessagesSent()
		writeJSON(w, http.StatusCreated, messageEnvelope{Message: "Message sent successfully", Data: view})
	}
}

func handleGetConversation(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		partnerID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid user id")
			return
		}

		msgs, err := msgSvc.Conversation(r.Context(), currentUser.ID, partnerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	}
}

func handleMarkRead(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		messageID, err := strconv.ParseInt(chi.URLParam(r, "messageID"), 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid message id")
			return
		}

		view, err := msgSvc.MarkRead(r.Context(), messageID, currentUser.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		observability.IncMessagesRead()
		writeJSON(w, http.StatusOK, messageEnvelope{Message: "Message marked as read", Data: view})
	}
}

func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		convs, err := convSvc.ListConversations(r.Context(), currentUser.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"conversations": convs})
	}
}
