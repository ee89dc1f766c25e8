package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/middleware"
)

const (
	refreshCookieName = "praxis_refresh"
	refreshCookiePath = "/api/v1/auth"
	refreshCookieAge  = 7 * 24 * time.Hour
)

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(refreshCookieAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handlers) loginHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	res, refreshToken, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		// Do not leak whether the account exists or is disabled.
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	setRefreshCookie(w, refreshToken)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) refreshHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}
	res, refreshToken, err := h.Auth.Refresh(r.Context(), cookie.Value)
	if err != nil {
		clearRefreshCookie(w)
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	setRefreshCookie(w, refreshToken)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) logoutHandler(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	// Revoke the access token that authorized this request so it cannot
	// be replayed for the rest of its lifetime.
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if claims, err := h.Auth.ValidateAccessToken(r.Context(), raw); err == nil {
		expiry := time.Now().Add(refreshCookieAge)
		if claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
		if err := h.Auth.Logout(r.Context(), u.ID, claims.ID, expiry); err != nil {
			writeInternalError(w, err)
			return
		}
	}
	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	req, ok := readJSON[user.ChangePasswordRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	if err := h.Auth.ChangePassword(r.Context(), u.ID, req); err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// API keys
// ---------------------------------------------------------------------------

func (h *Handlers) createAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	req, ok := readJSON[user.CreateAPIKeyRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	res, err := h.Auth.CreateAPIKey(r.Context(), u.ID, req)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handlers) listAPIKeysHandler(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	keys, err := h.Auth.ListAPIKeys(r.Context(), u.ID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if keys == nil {
		keys = []user.APIKey{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *Handlers) deleteAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.Auth.DeleteAPIKey(r.Context(), urlParam(r, "id"), u.ID); err != nil {
		writeDomainError(w, err, "api key not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// User administration
// ---------------------------------------------------------------------------

func (h *Handlers) createUserHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.CreateRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	u, err := h.Auth.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}
