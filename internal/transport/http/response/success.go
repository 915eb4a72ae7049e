package response

import (
	"encoding/json"
	"net/http"
)

// Body is the envelope every endpoint writes: a success flag, an
// optional human-readable message, and an optional user payload.
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    any    `json:"user,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
// It sets Content-Type to application/json; charset=utf-8 if not already set.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, message string, user any) {
	WriteJSON(w, http.StatusOK, Body{Success: true, Message: message, User: user})
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, message string, user any) {
	WriteJSON(w, http.StatusCreated, Body{Success: true, Message: message, User: user})
}
