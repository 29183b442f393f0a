package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ray-remotestate/bistro/models"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", models.ErrUnauthenticated, http.StatusForbidden},
		{"permission denied", models.ErrPermissionDenied, http.StatusForbidden},
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"validation", models.ErrValidation, http.StatusBadRequest},
		{"empty cart", models.ErrEmptyCart, http.StatusBadRequest},
		{"insufficient inventory", models.ErrInsufficientInventory, http.StatusBadRequest},
		{"conflict", models.ErrConflict, http.StatusConflict},
		{"wrapped kind", fmt.Errorf("%w: order abc", models.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForError(tt.err); got != tt.want {
				t.Errorf("StatusForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("%w: title is required", models.ErrValidation))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Kind != "validation_error" {
		t.Errorf("kind = %q, want validation_error", body.Error.Kind)
	}
	if body.Error.Message == "" {
		t.Error("message should not be empty")
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Errorf("message = %q, internal detail must not leak", body.Error.Message)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "s3cret" {
		t.Fatal("password stored in the clear")
	}
	if !CheckPassword(hashed, "s3cret") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hashed, "wrong") {
		t.Error("wrong password accepted")
	}
}
