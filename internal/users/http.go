package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/nmesfin/mesob/internal/apperror"
	"github.com/nmesfin/mesob/internal/auth"
	"github.com/nmesfin/mesob/internal/httpx"
	"github.com/nmesfin/mesob/internal/validation"
)

// Handler exposes the account endpoints. Register and login are public
// and sit behind the rate limiter; the rest require a token.
type Handler struct {
	service  *Service
	validate *validatorv10.Validate
}

func NewHandler(service *Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

// RegisterPublic binds the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/api/register", h.register)
	r.Post("/api/login", h.login)
}

// RegisterProtected binds the token-guarded routes.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/api/users/me", h.me)
	r.Get("/api/users", h.list)
	r.Put("/api/users/{id}", h.updateProfile)
	r.Delete("/api/users/delete/{id}", h.deleteUser)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if err := validation.BindAndValidate(r, &input, h.validate); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := validation.BindAndValidate(r, &input, h.validate); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), input)
	if err != nil {
		// Bad credentials read as 401 on this route, not 403.
		if apperror.IsAuthorization(err) {
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	user, err := h.service.Get(r.Context(), ident.UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	accounts, err := h.service.List(r.Context(), ident)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accounts)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	var input UpdateProfileInput
	if err := validation.BindAndValidate(r, &input, h.validate); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), ident, chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	if err := h.service.Delete(r.Context(), ident, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
