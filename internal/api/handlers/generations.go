package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/auth"
	"github.com/voxcart/voxcart/internal/generation"
	"github.com/voxcart/voxcart/internal/quota"
	"github.com/voxcart/voxcart/internal/settings"
)

type GenerationsHandler struct {
	jobs     *generation.Service
	quota    *quota.Accountant
	settings *settings.Service
}

func NewGenerationsHandler(jobs *generation.Service, qa *quota.Accountant, st *settings.Service) *GenerationsHandler {
	return &GenerationsHandler{jobs: jobs, quota: qa, settings: st}
}

func (h *GenerationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req generation.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ProductText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_text is required"})
		return
	}

	snap, err := h.settings.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "settings unavailable"})
		return
	}

	remaining, err := h.quota.Remaining(r.Context(), id.UserID, snap)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "quota check failed"})
		return
	}
	if remaining == 0 {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "daily generation limit reached"})
		return
	}

	job, err := h.jobs.Create(r.Context(), id.UserID, req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not start generation"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"job": job})
}

func (h *GenerationsHandler) List(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	jobs, err := h.jobs.List(r.Context(), id.UserID, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list generations"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"generations": jobs, "count": len(jobs)})
}

func (h *GenerationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid generation id"})
		return
	}

	job, err := h.jobs.Get(r.Context(), id.UserID, jobID)
	if err != nil {
		if errors.Is(err, generation.ErrJobNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "generation not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load generation"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

// Quota reports the caller's remaining daily allowance.
func (h *GenerationsHandler) Quota(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	snap, err := h.settings.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "settings unavailable"})
		return
	}

	remaining, err := h.quota.Remaining(r.Context(), id.UserID, snap)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "quota check failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"remaining": remaining,
		"unlimited": remaining == quota.Unlimited,
		"plan":      id.Plan,
	})
}
