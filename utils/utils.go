package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ray-remotestate/bistro/models"
)

func HashPassword(pw string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hashed, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusForError maps every error kind to its one stable HTTP status.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthenticated),
		errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInsufficientInventory):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WriteError renders an error body with the kind and message only; internal
// detail never reaches the client.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	body := errorBody{Kind: models.ErrorKind(err), Message: err.Error()}

	if status == http.StatusInternalServerError {
		logrus.WithError(err).Error("internal error")
		body.Message = "internal server error"
	}

	RespondJSON(w, status, map[string]errorBody{"error": body})
}
