package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tokenlens/tokenlens/core/errors"
	"github.com/tokenlens/tokenlens/core/traverse"
)

// maxInputBytes bounds request bodies; tokens are short.
const maxInputBytes = 1 << 20

// APIResponse is the standard response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// InterpretRequest is the request body for interpretation.
type InterpretRequest struct {
	Input         string   `json:"input"`
	Allow         []string `json:"allow,omitempty"`
	MinConfidence float64  `json:"min_confidence,omitempty"`
}

// InterpretationInfo is one recognized reading of the input.
type InterpretationInfo struct {
	Format      string  `json:"format"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	ValueKind   string  `json:"value_kind"`
}

// RepresentationInfo is one reachable rendering of the decoded value.
type RepresentationInfo struct {
	TargetFormat string   `json:"target_format"`
	Display      string   `json:"display"`
	Path         []string `json:"path"`
	Lossy        bool     `json:"lossy,omitempty"`
}

// InterpretResult is the response body for interpretation.
type InterpretResult struct {
	Input           string               `json:"input"`
	Interpretations []InterpretationInfo `json:"interpretations"`
	Representations []RepresentationInfo `json:"representations,omitempty"`
	Annotations     []string             `json:"annotations,omitempty"`
}

// ValidateRequest is the request body for validation.
type ValidateRequest struct {
	Input  string `json:"input"`
	Format string `json:"format"`
}

// ValidateResult is the response body for validation.
type ValidateResult struct {
	Input      string `json:"input"`
	Format     string `json:"format"`
	Valid      bool   `json:"valid"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Formats int    `json:"formats"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"name":    "tokenlens API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"POST /api/v1/interpret",
			"GET /api/v1/formats",
			"POST /api/v1/validate",
			"GET /api/v1/rates",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(s.started).String(),
		Formats: s.interp.Registry().Len(),
	})
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req InterpretRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "input is required")
		return
	}

	result := s.interpret(req)
	respondTotal(w, http.StatusOK, result, len(result.Interpretations))
}

// interpret runs the full pipeline for one token. Shared with the
// WebSocket handler.
func (s *Server) interpret(req InterpretRequest) InterpretResult {
	opts := s.opts
	if len(req.Allow) > 0 {
		opts.Allow = req.Allow
	}
	if req.MinConfidence > 0 {
		opts.MinConfidence = req.MinConfidence
	}

	result := InterpretResult{Input: req.Input}
	interps := s.interp.Parse(req.Input, opts)
	result.Interpretations = make([]InterpretationInfo, 0, len(interps))
	for _, it := range interps {
		result.Interpretations = append(result.Interpretations, InterpretationInfo{
			Format:      it.Format,
			Confidence:  it.Confidence,
			Description: it.Description,
			ValueKind:   it.Value.Kind().String(),
		})
	}
	if len(interps) == 0 {
		return result
	}

	best := interps[0]
	for _, c := range traverse.Traverse(s.interp.Registry(), best) {
		display := c.Display
		if display == "" {
			display = c.Value.String()
		}
		result.Representations = append(result.Representations, RepresentationInfo{
			TargetFormat: c.TargetFormat,
			Display:      display,
			Path:         c.Path,
			Lossy:        c.Lossy,
		})
	}
	if s.host != nil {
		result.Annotations = s.host.Annotate(best)
	}
	return result
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	infos := s.interp.Registry().Infos()
	respondTotal(w, http.StatusOK, infos, len(infos))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.Input == "" || req.Format == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "input and format are required")
		return
	}

	diag, err := s.interp.Validate(req.Input, req.Format)
	if errors.Is(err, errors.ErrNotFound) {
		respondError(w, http.StatusNotFound, "UNKNOWN_FORMAT", err.Error())
		return
	}
	result := ValidateResult{
		Input:      req.Input,
		Format:     req.Format,
		Valid:      diag == "",
		Diagnostic: diag,
	}
	if !result.Valid {
		// The body still carries the diagnostic; the status lets
		// scripted callers branch without parsing it.
		writeResponse(w, http.StatusUnprocessableEntity, APIResponse{
			Success: true,
			Data:    result,
			Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
		})
		return
	}
	respond(w, http.StatusOK, result)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}
	if s.rates == nil {
		respondError(w, http.StatusServiceUnavailable, "RATES_UNAVAILABLE", "currency rates are not configured")
		return
	}

	snap := s.rates.Snapshot()
	if len(snap.Rates) == 0 {
		respondError(w, http.StatusServiceUnavailable, "RATES_UNAVAILABLE", "no rates loaded yet")
		return
	}
	respondTotal(w, http.StatusOK, snap, len(snap.Rates))
}

func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxInputBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respond(w http.ResponseWriter, status int, data any) {
	writeResponse(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondTotal(w http.ResponseWriter, status int, data any, total int) {
	writeResponse(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeResponse(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeResponse(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
