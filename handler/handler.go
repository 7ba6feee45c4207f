package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront-orders/model"
	"storefront-orders/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// IdentityFunc extracts the caller from a request. Authentication happens
// upstream; handlers only read the result.
type IdentityFunc func(r *http.Request) model.Identity

// HeaderIdentity reads the identity an auth proxy forwards in headers.
func HeaderIdentity(r *http.Request) model.Identity {
	return model.Identity{
		Email: r.Header.Get("X-User-Email"),
		Name:  r.Header.Get("X-User-Name"),
		Role:  r.Header.Get("X-User-Role"),
	}
}

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc      service.ServiceInterface
	identity IdentityFunc
	logger   *slog.Logger
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface, identity IdentityFunc, logger *slog.Logger) *Handler {
	if identity == nil {
		identity = HeaderIdentity
	}
	return &Handler{svc: s, identity: identity, logger: logger}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(RequestLogger(h.logger))

	// Products
	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products/list", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	r.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PUT")
	r.HandleFunc("/products/{id}/restock", h.RestockProduct).Methods("POST")
	r.HandleFunc("/products/{id}", h.DiscontinueProduct).Methods("DELETE")

	// Cart
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/update", h.UpdateCart).Methods("POST")
	r.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/cart/list", h.ListCart).Methods("GET")

	// Checkout
	r.HandleFunc("/checkout/order", h.Checkout).Methods("POST")

	// Orders
	r.HandleFunc("/orders", h.ListOrders).Methods("GET")
	r.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
	r.HandleFunc("/orders/{id}/confirm", h.ConfirmOrder).Methods("POST")
	r.HandleFunc("/orders/{id}/refund", h.RefundOrder).Methods("POST")
	r.HandleFunc("/orders/{id}", h.DeleteOrder).Methods("DELETE")
}

// --- request / response shapes ---
type productReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// productUpdateReq leaves absent fields nil so the stored values survive.
type productUpdateReq struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock"`
	CurrentStock *int             `json:"current_stock"`
}

type restockReq struct {
	Quantity int `json:"quantity"`
}

type cartReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity,omitempty"` // optional for remove
}

type cartResp struct {
	SessionID string           `json:"session_id"`
	Items     []model.CartLine `json:"items"`
	Total     decimal.Decimal  `json:"total"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInsufficientStock), errors.Is(err, model.ErrStateConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErr(w, code, "internal error")
		return
	}
	writeErr(w, code, err.Error())
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, &model.ValidationError{Field: "id", Reason: "must be a UUID"}
	}
	return id, nil
}

func parseProductID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &model.ValidationError{Field: "product_id", Reason: "must be a UUID"}
	}
	return id, nil
}

// sessionID identifies the caller's cart. Defaults to the caller's email.
func (h *Handler) sessionID(r *http.Request) string {
	if s := r.Header.Get("X-Session-ID"); s != "" {
		return s
	}
	return h.identity(r).Email
}
