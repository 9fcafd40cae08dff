// Package handler contains the chi HTTP handlers of the admin API: a health
// check and read-only views of recruitments.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/lucybot/internal/model"
	"github.com/Shivanand-hulikatti/lucybot/internal/repository"
)

// Recruitments is the read side of the lifecycle service.
type Recruitments interface {
	Get(ctx context.Context, id string) (*model.Instance, error)
	List(ctx context.Context, status model.Status) ([]*model.Instance, error)
}

// RecruitmentHandler holds the HTTP handlers for recruitments.
type RecruitmentHandler struct {
	svc Recruitments
}

// NewRecruitmentHandler constructs a RecruitmentHandler.
func NewRecruitmentHandler(svc Recruitments) *RecruitmentHandler {
	return &RecruitmentHandler{svc: svc}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RecruitmentView is an instance plus its derived lifecycle state.
type RecruitmentView struct {
	*model.Instance
	Occupancy int    `json:"occupancy"`
	Capacity  int    `json:"capacity"`
	State     string `json:"state"`
}

func newView(in *model.Instance) RecruitmentView {
	state := "open"
	switch {
	case in.Cancelled():
		state = "cancelled"
	case in.IsFull():
		state = "full"
	}
	return RecruitmentView{Instance: in, Occupancy: in.Occupancy(), Capacity: in.MaxCapacity(), State: state}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListRecruitments handles GET /recruitments?status=open|cancelled
// Returns recruitments newest first.
func (h *RecruitmentHandler) ListRecruitments(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	switch status {
	case "", model.StatusOpen, model.StatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "status must be open or cancelled")
		return
	}

	list, err := h.svc.List(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list recruitments")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	views := make([]RecruitmentView, 0, len(list))
	for _, in := range list {
		views = append(views, newView(in))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetRecruitment handles GET /recruitments/{id}
func (h *RecruitmentHandler) GetRecruitment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	in, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "recruitment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get recruitment")
		return
	}

	writeJSON(w, http.StatusOK, newView(in))
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
