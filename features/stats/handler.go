package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"jobfit/features/usage"

	"jobfit/internal/middleware"
)

type JobCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type UsageReader interface {
	Stats(ctx context.Context, id usage.Identity) (*usage.Stats, error)
}

type Handler struct {
	jobs  JobCounter
	usage UsageReader
}

func NewHandler(jobs JobCounter, usageReader UsageReader) *Handler {
	return &Handler{jobs: jobs, usage: usageReader}
}

type StatsResponse struct {
	Jobs  map[string]int `json:"jobs"`
	Usage *usage.Stats   `json:"usage"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	identity := usage.Identity{
		ID:   r.Header.Get("X-Identity-ID"),
		Tier: r.Header.Get("X-Identity-Tier"),
	}
	if identity.ID == "" {
		identity.ID = "anonymous"
	}
	if identity.Tier == "" {
		identity.Tier = usage.TierFree
	}

	jobCounts, err := h.jobs.CountByStatus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count jobs", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count jobs", http.StatusInternalServerError)
		return
	}

	usageStats, err := h.usage.Stats(ctx, identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load usage stats", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to load usage stats", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Jobs:  jobCounts,
		Usage: usageStats,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
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
