package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adilzhanb/shiftdesk/internal/services"
	"github.com/adilzhanb/shiftdesk/pkg/middleware"
	"github.com/gorilla/mux"
)

// ChatHandler handles HTTP requests for groups and messaging.
type ChatHandler struct {
	Service *services.ChatService
}

// NewChatHandler creates a new instance of ChatHandler.
func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{Service: service}
}

// CreateGroupHandler handles PUT /chat/group/new.
func (h *ChatHandler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Members     []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	group, result, err := h.Service.CreateGroup(r.Context(), claims.UserID, req.Name, req.Description, req.Members)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  result.Message,
		"warnings": result.Warnings,
		"group":    group,
	})
}

// ChangeGroupMembersHandler handles PATCH /chat/group/{id}/change with
// ?type=add|remove&user=<id>.
func (h *ChatHandler) ChangeGroupMembersHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := mux.Vars(r)["id"]
	changeType := r.URL.Query().Get("type")
	userID := r.URL.Query().Get("user")

	result, err := h.Service.ChangeGroupMembers(r.Context(), claims.UserID, groupID, userID, changeType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// EditGroupHandler handles PATCH /chat/group/{id}/edit.
func (h *ChatHandler) EditGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.Service.EditGroup(r.Context(), claims.UserID, mux.Vars(r)["id"], req.Name, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// DeleteGroupHandler handles DELETE /chat/group/{id}.
func (h *ChatHandler) DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.Service.DeleteGroup(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SendGroupMessageHandler handles PUT /chat/group/{id}/message.
func (h *ChatHandler) SendGroupMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	msg, result, err := h.Service.SendGroupMessage(r.Context(), claims.UserID, mux.Vars(r)["id"], req.Text)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      result.Message,
		"warnings":     result.Warnings,
		"chat_message": msg,
	})
}

// GetGroupMessagesHandler handles GET /chat/group/{id}/messages.
func (h *ChatHandler) GetGroupMessagesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.Service.GetGroupMessages(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// SendDirectMessageHandler handles PUT /chat/message.
func (h *ChatHandler) SendDirectMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		To   string `json:"to"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	msg, result, err := h.Service.SendDirectMessage(r.Context(), claims.UserID, req.To, req.Text)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      result.Message,
		"warnings":     result.Warnings,
		"chat_message": msg,
	})
}

// GetChatHistoryHandler handles GET /chat/history/{id}, the 1:1 thread
// between the caller and the user in the path.
func (h *ChatHandler) GetChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.Service.GetThread(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
