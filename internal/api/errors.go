package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gaspardpetit/tasksplit/internal/gemini"
	"github.com/gaspardpetit/tasksplit/internal/logx"
	"github.com/gaspardpetit/tasksplit/internal/metrics"
)

// ErrInvalidRequest is returned when neither goal nor prompt is provided.
var ErrInvalidRequest = errors.New("missing goal or prompt")

const (
	invalidRequestMessage = "Missing goal or prompt"
	missingKeyMessage     = "Server missing GEMINI_API_KEY env var"
)

// ErrorResponse is the body of every failed proxy request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("write response")
	}
}

// writeError maps err onto a status code and error body.
func writeError(w http.ResponseWriter, err error) {
	var ue *gemini.UpstreamError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		metrics.RecordProxyRequest(metrics.OutcomeInvalidRequest)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: invalidRequestMessage})
	case errors.Is(err, gemini.ErrMissingAPIKey):
		metrics.RecordProxyRequest(metrics.OutcomeMissingConfig)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: missingKeyMessage})
	case errors.As(err, &ue):
		metrics.RecordProxyRequest(metrics.OutcomeUpstreamError)
		writeJSON(w, ue.Status(), ErrorResponse{Error: fmt.Sprintf("Upstream error %d", ue.Status()), Details: ue.Body})
	default:
		metrics.RecordProxyRequest(metrics.OutcomeUnexpectedError)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
