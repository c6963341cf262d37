package web

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform failure envelope every handler returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

func ErrorWithDetails(w http.ResponseWriter, status int, msg, details string) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}
