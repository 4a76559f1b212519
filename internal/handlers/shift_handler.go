package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adilzhanb/shiftdesk/internal/services"
	"github.com/adilzhanb/shiftdesk/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// ShiftHandler handles HTTP requests related to shift operations.
type ShiftHandler struct {
	Service *services.ShiftService
}

// NewShiftHandler creates a new instance of ShiftHandler.
func NewShiftHandler(service *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{Service: service}
}

// AddShiftHandler handles PUT /shift/add.
func (h *ShiftHandler) AddShiftHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	shift, result, err := h.Service.AddShift(r.Context(), claims.UserID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	log.WithField("shiftID", shift.ID.Hex()).Info("Shift added")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  result.Message,
		"warnings": result.Warnings,
		"shift":    shift,
	})
}

// UpdateShiftHandler handles PATCH /shift/update/{id}.
func (h *ShiftHandler) UpdateShiftHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	shift, result, err := h.Service.UpdateShift(r.Context(), claims.UserID, mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  result.Message,
		"warnings": result.Warnings,
		"shift":    shift,
	})
}

// DeleteShiftHandler handles DELETE /shift/delete/{id}.
func (h *ShiftHandler) DeleteShiftHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.Service.DeleteShift(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// RequestAddShiftHandler handles POST /shift/request/add.
func (h *ShiftHandler) RequestAddShiftHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.Service.RequestAddShift(r.Context(), claims.UserID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RequestUpdateShiftHandler handles POST /shift/request/update/{id}.
func (h *ShiftHandler) RequestUpdateShiftHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.Service.RequestUpdateShift(r.Context(), claims.UserID, mux.Vars(r)["id"], req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RequestDeleteShiftHandler handles POST /shift/request/delete/{id}.
func (h *ShiftHandler) RequestDeleteShiftHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.Service.RequestDeleteShift(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetShiftsHandler handles GET /shift/list, optionally filtered with
// ?employee=<id>.
func (h *ShiftHandler) GetShiftsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	employeeID := r.URL.Query().Get("employee")
	if !claims.IsAdmin {
		// Non-admins only see their own schedule.
		employeeID = claims.UserID
	}

	shifts, err := h.Service.GetShifts(r.Context(), employeeID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shifts)
}
