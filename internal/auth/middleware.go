package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/adminrole"
	"github.com/voxcart/voxcart/internal/entitlement"
	"github.com/voxcart/voxcart/internal/profile"
)

type Claims struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// JWTMiddleware authenticates dashboard sessions. On every request it
// mirrors the identity locally, lazily creates the profile, and runs the
// admin role decision; an allow-list hit schedules the fire-and-forget
// role reconciliation.
type JWTMiddleware struct {
	secret   []byte
	profiles *profile.Service
	plans    PlanResolver
	admins   *adminrole.Resolver
}

func NewJWTMiddleware(secret string, profiles *profile.Service, plans PlanResolver, admins *adminrole.Resolver) *JWTMiddleware {
	return &JWTMiddleware{
		secret:   []byte(secret),
		profiles: profiles,
		plans:    plans,
		admins:   admins,
	}
}

func (m *JWTMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := ExtractBearer(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}

		userID, err := uuid.Parse(claims.Sub)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid user ID in token")
			return
		}

		ctx := r.Context()

		if err := m.profiles.EnsureUser(ctx, userID, claims.Email, claims.FullName); err != nil {
			writeError(w, http.StatusInternalServerError, "identity unavailable")
			return
		}
		if _, err := m.profiles.GetOrCreate(ctx, userID); err != nil {
			writeError(w, http.StatusInternalServerError, "profile unavailable")
			return
		}

		plan, err := m.plans.ResolvePlan(ctx, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "plan resolution failed")
			return
		}

		isAdmin, err := m.admins.IsAdmin(ctx, userID, claims.Email)
		if err != nil {
			// Role lookup trouble must not lock out a regular session.
			isAdmin = false
		}
		if isAdmin && m.admins.IsAdminEmail(claims.Email) {
			m.admins.ReconcileAsync(userID)
		}

		ctx = WithIdentity(ctx, &Identity{
			UserID:  userID,
			Email:   claims.Email,
			Plan:    plan,
			IsAdmin: isAdmin,
		})
		ctx = context.WithValue(ctx, claimsKey, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates the admin surface. It runs after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFromContext(r.Context())
		if id == nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !id.IsAdmin {
			writeError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability gates an endpoint on a plan capability, e.g. API key
// management for premium plans.
func RequireCapability(cap entitlement.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err := entitlement.CheckCapability(id.Plan, cap); err != nil {
				writeError(w, http.StatusForbidden, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const claimsKey ctxKey = "claims"

func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

// ExtractBearer pulls the token out of the Authorization header. A missing
// header and a malformed one look identical to callers.
func ExtractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
