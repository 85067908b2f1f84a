// Package handler is the thin HTTP layer over the student service. It
// normalizes the loosely typed inbound flags and translates service errors;
// business logic stays in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"unemigw/internal/student/models"
)

// Service resolves a document number into the response envelope.
type Service interface {
	GetStudentData(ctx context.Context, req models.StudentDataRequest) (models.Result, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register wires the student routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/student/data", h.handleData)
	r.Post("/student/public", h.handlePublic)
	r.Post("/student/private", h.handlePrivate)
	r.Post("/student/reset", h.handleReset)
}

// FlexBool accepts JSON booleans as well as the string and numeric spellings
// legacy callers send ("true", "1", 1). Anything else is false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		*b = FlexBool(val)
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		*b = s == "true" || s == "1"
	case float64:
		*b = val == 1
	default:
		*b = false
	}
	return nil
}

// dataRequest is the full legacy body with explicit visibility flags.
type dataRequest struct {
	Documento     string   `json:"documento"`
	Password      *string  `json:"password"`
	Public        FlexBool `json:"public"`
	Private       FlexBool `json:"private"`
	ResetPassword FlexBool `json:"reset_password"`
}

// documentRequest is the body of the mode-specific endpoints.
type documentRequest struct {
	Documento string  `json:"documento"`
	Password  *string `json:"password"`
}

// handleData is the legacy endpoint; callers pick the mode themselves.
func (h *Handler) handleData(w http.ResponseWriter, r *http.Request) {
	var req dataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_input")
		return
	}
	h.resolve(w, r, models.StudentDataRequest{
		Documento:     strings.TrimSpace(req.Documento),
		Password:      req.Password,
		Public:        bool(req.Public),
		Private:       bool(req.Private),
		ResetPassword: bool(req.ResetPassword),
	})
}

// handlePublic answers from the search systems alone; no login happens.
func (h *Handler) handlePublic(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	h.logger.Info("public data request", "documento", req.Documento)
	h.resolve(w, r, models.StudentDataRequest{
		Documento: req.Documento,
		Password:  req.Password,
		Public:    true,
	})
}

// handlePrivate runs the authenticated flow; public data is implied.
func (h *Handler) handlePrivate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	h.logger.Info("private data request", "documento", req.Documento)
	h.resolve(w, r, models.StudentDataRequest{
		Documento: req.Documento,
		Password:  req.Password,
		Public:    true,
		Private:   true,
	})
}

// handleReset is the private flow with the credential-repair path enabled.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	h.logger.Info("reset password request", "documento", req.Documento)
	h.resolve(w, r, models.StudentDataRequest{
		Documento:     req.Documento,
		Password:      req.Password,
		Public:        true,
		Private:       true,
		ResetPassword: true,
	})
}

func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (documentRequest, bool) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_input")
		return documentRequest{}, false
	}
	req.Documento = strings.TrimSpace(req.Documento)
	return req, true
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, req models.StudentDataRequest) {
	if req.Documento == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_input")
		return
	}

	result, err := h.service.GetStudentData(r.Context(), req)
	if err != nil {
		h.logger.Error("student resolution failed", "documento", req.Documento, "error", err)
		h.writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
