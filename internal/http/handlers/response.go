package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps inbound form and JSON payloads.
const maxBodyBytes = 1 << 20

// envelope is the body of every JSON response the relay writes.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

type errorData struct {
	Error string `json:"error"`
}

var now = time.Now

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// respond writes the standard envelope. Success follows the status class.
func respond(w http.ResponseWriter, status int, message string, data any) {
	if message == "" {
		message = "Error"
		if status >= 200 && status < 300 {
			message = "Success"
		}
	}
	writeJSON(w, status, envelope{
		Success:   status >= 200 && status < 300,
		Message:   message,
		Data:      data,
		Timestamp: now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	var data any
	if err != nil {
		data = errorData{Error: err.Error()}
	}
	respond(w, status, message, data)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// NotFound answers unknown paths.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusNotFound, "Endpoint not found", nil)
}

// MethodNotAllowed answers known paths hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
