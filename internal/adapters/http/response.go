package http

import (
	"encoding/json"
	"net/http"
)

// Every response body carries a status discriminator so relying
// agencies can branch without inspecting HTTP codes. Successful
// payloads sit under "data"; failures carry a stable machine code
// alongside the human-readable message.
type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type messageEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, successEnvelope{Status: "success", Data: data})
}

// writeMessage is for operations whose only result is an
// acknowledgement, such as logout or a password-reset request.
func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, messageEnvelope{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorEnvelope{Status: "error", Code: code, Message: message})
}
