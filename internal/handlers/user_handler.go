package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adilzhanb/shiftdesk/internal/services"
	jwtutil "github.com/adilzhanb/shiftdesk/pkg/jwt"
	"github.com/adilzhanb/shiftdesk/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles account management and authentication endpoints.
type UserHandler struct {
	Service     *services.UserService
	JWTSecret   string
	TokenExpiry time.Duration
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, jwtSecret string, tokenExpiry time.Duration) *UserHandler {
	return &UserHandler{Service: service, JWTSecret: jwtSecret, TokenExpiry: tokenExpiry}
}

// LoginHandler handles POST /auth/login.
func (h *UserHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), creds.Email, creds.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.IsAdmin, h.JWTSecret, h.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}

// RegisterEmployeeHandler handles PUT /auth/employee/new.
func (h *UserHandler) RegisterEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, password, result, err := h.Service.RegisterEmployee(r.Context(), claims.UserID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":          result.Message,
		"warnings":         result.Warnings,
		"user":             user.Public(),
		"initial_password": password,
	})
}

// UpdateEmployeeHandler handles PATCH /auth/employee/{uid}/change.
func (h *UserHandler) UpdateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.EmployeeUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, result, err := h.Service.UpdateEmployee(r.Context(), claims.UserID, mux.Vars(r)["uid"], req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  result.Message,
		"warnings": result.Warnings,
		"user":     user.Public(),
	})
}

// DeleteEmployeeHandler handles DELETE /auth/employee/{uid}.
func (h *UserHandler) DeleteEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.Service.DeleteEmployee(r.Context(), claims.UserID, mux.Vars(r)["uid"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetUserHandler handles GET /users/{id}.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

// GetChangeHistoryHandler handles GET /changes/{id}, the audit trail of
// one subject document.
func (h *UserHandler) GetChangeHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	changes, err := h.Service.GetChangeHistory(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, changes)
}

// RegisterDeviceTokenHandler handles POST /auth/device.
func (h *UserHandler) RegisterDeviceTokenHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.RegisterDeviceToken(r.Context(), claims.UserID, req.Token); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Device token registered"})
}

// RemoveDeviceTokenHandler handles DELETE /auth/device.
func (h *UserHandler) RemoveDeviceTokenHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveDeviceToken(r.Context(), claims.UserID, req.Token); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Device token removed"})
}
