package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/adminrole"
	"github.com/voxcart/voxcart/internal/audit"
	"github.com/voxcart/voxcart/internal/entitlement"
	"github.com/voxcart/voxcart/internal/models"
	"github.com/voxcart/voxcart/internal/profile"
	"github.com/voxcart/voxcart/internal/settings"
)

// AdminHandler is the admin dashboard surface: user listing, plan changes,
// role toggles, app settings, audit trail. Mounted behind RequireAdmin.
type AdminHandler struct {
	profiles *profile.Service
	admins   *adminrole.Resolver
	settings *settings.Service
	auditSvc *audit.Service
}

func NewAdminHandler(profiles *profile.Service, admins *adminrole.Resolver, st *settings.Service, auditSvc *audit.Service) *AdminHandler {
	return &AdminHandler{profiles: profiles, admins: admins, settings: st, auditSvc: auditSvc}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.profiles.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list users"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

func (h *AdminHandler) UpdateUserPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if _, err := entitlement.ParsePlan(req.Plan); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.profiles.UpdatePlan(r.Context(), userID, req.Plan); err != nil {
		if errors.Is(err, entitlement.ErrProfileMissing) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user profile not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not update plan"})
		return
	}

	h.logAction(r, "user.plan.update", "user", &userID, map[string]interface{}{"plan": req.Plan})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "plan": req.Plan})
}

func (h *AdminHandler) AssignAdminRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	if err := h.admins.Assign(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not assign role"})
		return
	}

	h.logAction(r, "user.role.assign", "user", &userID, map[string]interface{}{"role": adminrole.RoleAdmin})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) RemoveAdminRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	if err := h.admins.Remove(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not remove role"})
		return
	}

	h.logAction(r, "user.role.remove", "user", &userID, map[string]interface{}{"role": adminrole.RoleAdmin})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list admins"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"admins": admins, "count": len(admins)})
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.settings.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "settings unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"settings": snap})
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var snap models.AppSettings
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updated, err := h.settings.Update(r.Context(), snap)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not update settings"})
		return
	}

	h.logAction(r, "settings.update", "app_settings", nil, map[string]interface{}{
		"unlimited_generations_for_all": updated.UnlimitedGenerationsForAll,
		"hide_pricing_features":         updated.HidePricingFeatures,
	})
	writeJSON(w, http.StatusOK, map[string]any{"settings": updated})
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := audit.Query{
		Action: r.URL.Query().Get("action"),
	}

	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			q.StartDate = &t
		}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			q.EndDate = &t
		}
	}

	logs, err := h.auditSvc.GetAuditLogs(r.Context(), q)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load audit logs"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"audit_logs": logs, "count": len(logs)})
}

func (h *AdminHandler) logAction(r *http.Request, action, resourceType string, resourceID *uuid.UUID, details map[string]interface{}) {
	err := h.auditSvc.Log(r.Context(), audit.LogEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    r.RemoteAddr,
	})
	if err != nil {
		// Audit failure must not fail the admin action it describes.
		slog.Warn("audit log write failed", "action", action, "error", err)
	}
}
