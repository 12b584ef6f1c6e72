package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-auth-service/internal/middleware"
	"go-auth-service/internal/model"
	"go-auth-service/internal/service"
	"go-auth-service/pkg/apierror"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var params model.RegisterParams
	if err := decodeParams(r, &params); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.service.Register(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeEnvelope(w, http.StatusCreated, "User registered successfully", created)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var params model.LoginParams
	if err := decodeParams(r, &params); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	setRefreshCookie(w, result.RefreshToken, result.RefreshTTL)
	writeEnvelope(w, http.StatusOK, "Token generated successfully", []model.SessionData{result.Session})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		writeError(w, model.ErrNoRefreshToken)
		return
	}

	result, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		// An expired token's session slot was already cleared; drop the
		// cookie too so the client stops retrying with it.
		if errors.Is(err, model.ErrRefreshExpired) {
			clearRefreshCookie(w)
		}
		writeError(w, err)
		return
	}

	setRefreshCookie(w, result.RefreshToken, result.RefreshTTL)
	writeEnvelope(w, http.StatusOK, "Token generated successfully", []model.SessionData{result.Session})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var params model.ProfileParams
	if err := decodeParams(r, &params); err != nil {
		writeError(w, err)
		return
	}

	users, err := h.service.Profile(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeEnvelope(w, http.StatusOK, "User profile fetched successfully", users)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	// Client-side cleanup first: the cookie goes away no matter what the
	// cache says. Calling logout twice is harmless.
	clearRefreshCookie(w)

	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		h.service.Logout(r.Context(), claims.UserID)
	}

	writeEnvelope(w, http.StatusOK, "Logged out successfully", []any{})
}

// paramsEnvelope is the request body shape: input wrapped in "params".
type paramsEnvelope struct {
	Params json.RawMessage `json:"params"`
}

func decodeParams(r *http.Request, dst any) error {
	var body paramsEnvelope
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return apierror.BadRequest("invalid JSON body")
	}

	if emptyParams(body.Params) {
		return model.ErrParamsRequired
	}

	if err := json.Unmarshal(body.Params, dst); err != nil {
		return apierror.BadRequest("invalid params")
	}

	return nil
}

func emptyParams(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null" || trimmed == "{}"
}

func setRefreshCookie(w http.ResponseWriter, tokenValue string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    tokenValue,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
