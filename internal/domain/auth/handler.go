package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hallday/hallday-api/internal/middleware"
	"github.com/hallday/hallday-api/internal/pkg/response"
	"github.com/hallday/hallday-api/internal/pkg/validator"
)

// Handler handles admin auth HTTP requests
type Handler struct {
	service      *Service
	secureCookie bool
}

// NewHandler creates auth handler. secureCookie should be true behind TLS.
func NewHandler(service *Service, secureCookie bool) *Handler {
	return &Handler{service: service, secureCookie: secureCookie}
}

// SignIn handles POST /admin/signin
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	result, err := h.service.SignIn(r.Context(), req.ID, req.Password)
	if err != nil {
		if err == ErrInvalidCredentials {
			response.Unauthorized(w, "Invalid login id or password")
			return
		}
		response.InternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, map[string]interface{}{
		"user":       AdminResponseFromEntity(result.Admin),
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	})
}

// Logout handles POST /admin/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	jti := middleware.GetTokenID(r.Context())
	if err := h.service.SignOut(r.Context(), jti); err != nil {
		response.InternalError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	response.OK(w, map[string]string{"message": "signed out"})
}

// Me handles GET /admin/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetAdminID(r.Context())

	admin, err := h.service.Me(r.Context(), adminID)
	if err != nil {
		if err == ErrAdminNotFound {
			response.Unauthorized(w, "Session admin no longer exists")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"user": AdminResponseFromEntity(admin)})
}
