package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jobfit/internal/analysis"
	"jobfit/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) CoverLetter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		JobText           string   `json:"job_text"`
		ProfileID         string   `json:"profile_id"`
		Instructions      []string `json:"instructions"`
		AdditionalContext string   `json:"additional_context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	letter, err := h.service.CoverLetter(ctx, req.JobText, req.ProfileID, req.Instructions, req.AdditionalContext)
	if err != nil {
		h.writeDraftError(ctx, w, "cover letter", err)
		return
	}
	h.writeData(ctx, w, letter)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		JobText string `json:"job_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	text, err := h.service.Summary(ctx, req.JobText)
	if err != nil {
		h.writeDraftError(ctx, w, "summary", err)
		return
	}
	h.writeData(ctx, w, map[string]string{"text": text})
}

func (h *Handler) Critique(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		JobText     string `json:"job_text"`
		CoverLetter string `json:"cover_letter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	critique, err := h.service.Critique(ctx, req.JobText, req.CoverLetter)
	if err != nil {
		h.writeDraftError(ctx, w, "critique", err)
		return
	}
	h.writeData(ctx, w, critique)
}

func (h *Handler) TailorBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		JobText      string   `json:"job_text"`
		ProfileID    string   `json:"profile_id"`
		BlockID      string   `json:"block_id"`
		Instructions []string `json:"instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	bullets, err := h.service.TailorBlock(ctx, req.JobText, req.ProfileID, req.BlockID, req.Instructions)
	if err != nil {
		h.writeDraftError(ctx, w, "tailored block", err)
		return
	}
	h.writeData(ctx, w, map[string][]string{"bullets": bullets})
}

// writeDraftError maps operation failures onto the response envelope:
// input problems are 400, missing profiles and blocks 404, quota classes
// 429, everything else the class-specific upstream status with the
// user-facing message.
func (h *Handler) writeDraftError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrJobTextRequired), errors.Is(err, ErrLetterRequired):
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, sql.ErrNoRows):
		h.writeError(ctx, w, "NOT_FOUND", "Profile not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrBlockNotFound):
		h.writeError(ctx, w, "NOT_FOUND", "Experience block not found", http.StatusNotFound)
		return
	}

	slog.ErrorContext(ctx, "draft generation failed", "operation", op, "class", analysis.Classify(err), "error", err)

	switch analysis.Classify(err) {
	case analysis.ClassRateLimited, analysis.ClassDailyQuota:
		h.writeError(ctx, w, "QUOTA_EXCEEDED", analysis.UserMessage(err), http.StatusTooManyRequests)
	case analysis.ClassAuth:
		h.writeError(ctx, w, "AUTH_ERROR", analysis.UserMessage(err), http.StatusBadGateway)
	case analysis.ClassMalformedResponse:
		h.writeError(ctx, w, "UPSTREAM_ERROR", analysis.UserMessage(err), http.StatusBadGateway)
	default:
		h.writeError(ctx, w, "INTERNAL_ERROR", analysis.UserMessage(err), http.StatusInternalServerError)
	}
}

func (h *Handler) writeData(ctx context.Context, w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": data}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
