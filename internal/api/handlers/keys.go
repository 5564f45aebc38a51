package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/auth"
	"github.com/voxcart/voxcart/internal/credential"
)

// KeysHandler manages a user's API credentials. Plan gating happens in the
// router via RequireCapability.
type KeysHandler struct {
	creds credential.Store
}

func NewKeysHandler(creds credential.Store) *KeysHandler {
	return &KeysHandler{creds: creds}
}

func (h *KeysHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	cred, plaintext, err := h.creds.Create(r.Context(), id.UserID, req.Name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create key"})
		return
	}

	// The plaintext key is returned exactly once.
	writeJSON(w, http.StatusCreated, map[string]any{
		"credential": cred,
		"api_key":    plaintext,
	})
}

func (h *KeysHandler) List(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	creds, err := h.creds.List(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list keys"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"keys": creds, "count": len(creds)})
}

func (h *KeysHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	credID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid key id"})
		return
	}

	if err := h.creds.Delete(r.Context(), id.UserID, credID); err != nil {
		if errors.Is(err, credential.ErrCredentialNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "key not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not delete key"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
