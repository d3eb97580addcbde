package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/nmesfin/mesob/internal/auth"
	"github.com/nmesfin/mesob/internal/httpx"
	"github.com/nmesfin/mesob/internal/validation"
)

// Handler exposes the menu endpoints. Listing is public; writes require
// an authenticated admin and are registered separately.
type Handler struct {
	service  *Service
	validate *validatorv10.Validate
}

func NewHandler(service *Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

// RegisterPublic binds the unauthenticated read route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/api/products", h.listMenu)
}

// RegisterProtected binds the admin write routes.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/api/products", h.createProduct)
	r.Put("/api/products/{id}", h.updateProduct)
	r.Delete("/api/products/{id}", h.deleteProduct)
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListMenu(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	var input ProductInput
	if err := validation.BindAndValidate(r, &input, h.validate); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), ident, input)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	var input ProductInput
	if err := validation.BindAndValidate(r, &input, h.validate); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), ident, chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	if err := h.service.DeleteProduct(r.Context(), ident, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}
