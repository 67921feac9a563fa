package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gaspardpetit/tasksplit/internal/gemini"
	"github.com/gaspardpetit/tasksplit/internal/logx"
	"github.com/gaspardpetit/tasksplit/internal/metrics"
	"github.com/gaspardpetit/tasksplit/internal/prompt"
)

// maxRequestBody bounds the JSON body accepted by the proxy endpoint.
const maxRequestBody = 1 << 20

// GenerateRequest is the body accepted by POST /api/gemini.
type GenerateRequest struct {
	Goal   string `json:"goal,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

// GenerateResponse is returned on success. Tasks is Text split into items.
type GenerateResponse struct {
	Text  string   `json:"text"`
	Tasks []string `json:"tasks"`
}

// Generator produces text for a single prompt.
type Generator interface {
	Configured() bool
	Model() string
	GenerateText(ctx context.Context, text string) (string, error)
}

// GeminiHandler handles POST /api/gemini: it builds a prompt from the goal or
// the explicit prompt, asks gen for a completion and returns its text.
func GeminiHandler(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !gen.Configured() {
			writeError(w, gemini.ErrMissingAPIKey)
			return
		}
		req := decodeGenerateRequest(w, r)
		goal := strings.TrimSpace(req.Goal)
		p := strings.TrimSpace(req.Prompt)
		if goal == "" && p == "" {
			writeError(w, ErrInvalidRequest)
			return
		}

		start := time.Now()
		text, err := gen.GenerateText(r.Context(), prompt.Build(goal, p))
		metrics.ObserveUpstream(gen.Model(), upstreamCode(err), time.Since(start))
		if err != nil {
			logx.Log.Warn().Err(err).Str("request_id", chiMiddleware.GetReqID(r.Context())).Str("model", gen.Model()).Msg("gemini request failed")
			writeError(w, err)
			return
		}
		metrics.RecordProxyRequest(metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, GenerateResponse{Text: text, Tasks: prompt.Tasks(text)})
	}
}

// decodeGenerateRequest reads the request body. Anything that is not a JSON
// object with string fields decodes as an empty request.
func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) GenerateRequest {
	var req GenerateRequest
	if r.Body == nil {
		return req
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		return GenerateRequest{}
	}
	return req
}

func upstreamCode(err error) string {
	if err == nil {
		return metrics.StatusClass(http.StatusOK)
	}
	var ue *gemini.UpstreamError
	if errors.As(err, &ue) {
		return metrics.StatusClass(ue.StatusCode)
	}
	return "error"
}
