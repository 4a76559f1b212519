package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adilzhanb/shiftdesk/internal/apperrors"
	"github.com/adilzhanb/shiftdesk/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps the error kind to an HTTP status and a machine-readable
// error code, keeping the distinguishable outcomes of each workflow.
func respondError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindInvalidActor:
		status = http.StatusForbidden
	case apperrors.KindInvalidFormat:
		status = http.StatusBadRequest
	case apperrors.KindInvalidMembership, apperrors.KindAlreadyExists:
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).Error("Request failed")
		message = "internal server error"
	}

	respondJSON(w, status, map[string]string{
		"error":   string(kind),
		"message": message,
	})
}
