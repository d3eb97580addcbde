package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/nmesfin/mesob/internal/auth"
	"github.com/nmesfin/mesob/internal/httpx"
	"github.com/nmesfin/mesob/internal/orders/app"
	"github.com/nmesfin/mesob/internal/orders/domain"
	"github.com/nmesfin/mesob/internal/validation"
)

// Handler exposes HTTP endpoints for order operations. All routes require
// an authenticated identity in the request context.
type Handler struct {
	service  *app.Service
	validate *validatorv10.Validate
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

// Register binds the order routes onto the provided router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/orders", h.placeOrder)
	r.Get("/api/orders", h.listOrders)
	r.Put("/api/orders/status", h.updateStatus)
	r.Delete("/api/orders/{id}", h.cancelOrder)
	r.Get("/api/admin/stats", h.getStats)
}

type lineItemPayload struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type placeOrderPayload struct {
	Items           []lineItemPayload `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string            `json:"delivery_address" validate:"required"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	var payload placeOrderPayload
	if err := validation.BindAndValidate(r, &payload, h.validate); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	items := make([]domain.LineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, domain.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.service.PlaceOrder(r.Context(), ident, app.PlaceOrderInput{
		Items:           items,
		DeliveryAddress: payload.DeliveryAddress,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"order": order})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	orders, err := h.service.ListOrders(r.Context(), ident)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type updateStatusPayload struct {
	OrderID string `json:"order_id" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	var payload updateStatusPayload
	if err := validation.BindAndValidate(r, &payload, h.validate); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), ident, payload.OrderID, payload.Status)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	deletedID, err := h.service.CancelOrder(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Order cancelled",
		"order_id": deletedID,
	})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "no token, authorization denied")
		return
	}

	stats, err := h.service.GetStats(r.Context(), ident)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}
