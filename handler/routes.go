package handler

import (
	"encoding/json"
	"net/http"

	"storefront-orders/model"
)

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), h.identity(r), model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListProducts handles GET /products/list
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListProducts(r.Context())
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProduct handles PUT /products/{id}
// Fields left out of the body keep their stored values.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	var req productUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), h.identity(r), id, model.ProductUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		CurrentStock: req.CurrentStock,
	})
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RestockProduct handles POST /products/{id}/restock
// body: { "quantity": 5 }
func (h *Handler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	var req restockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	current, err := h.svc.RestockProduct(r.Context(), h.identity(r), id, req.Quantity)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"current_stock": current})
}

// DiscontinueProduct handles DELETE /products/{id}
func (h *Handler) DiscontinueProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	if err := h.svc.DiscontinueProduct(r.Context(), h.identity(r), id); err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddToCart handles POST /cart/add
// body: { "product_id": "...", "quantity": 2 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	productID, err := parseProductID(req.ProductID)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	if err := h.svc.AddToCart(r.Context(), h.sessionID(r), productID, req.Quantity); err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// UpdateCart handles POST /cart/update
// body: { "product_id": "...", "quantity": 3 }
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	productID, err := parseProductID(req.ProductID)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	if err := h.svc.UpdateCartQuantity(r.Context(), h.sessionID(r), productID, req.Quantity); err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RemoveFromCart handles POST /cart/remove
// body: { "product_id": "..." }
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	productID, err := parseProductID(req.ProductID)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	if err := h.svc.RemoveFromCart(r.Context(), h.sessionID(r), productID); err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// ListCart handles GET /cart/list
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	session := h.sessionID(r)
	items, total, err := h.svc.GetCart(r.Context(), session)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResp{SessionID: session, Items: items, Total: total})
}

// Checkout handles POST /checkout/order
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Checkout(r.Context(), h.identity(r), h.sessionID(r))
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, orders)
}

// ListOrders handles GET /orders?status=...
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := model.OrderStatus(r.URL.Query().Get("status"))
	orders, err := h.svc.ListOrders(r.Context(), h.identity(r), status)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	o, err := h.svc.GetOrder(r.Context(), h.identity(r), id)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ConfirmOrder handles POST /orders/{id}/confirm
func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	o, err := h.svc.ConfirmOrder(r.Context(), h.identity(r), id)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// RefundOrder handles POST /orders/{id}/refund
func (h *Handler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	o, err := h.svc.RefundOrder(r.Context(), h.identity(r), id)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// DeleteOrder handles DELETE /orders/{id}
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	if err := h.svc.DeleteOrder(r.Context(), h.identity(r), id); err != nil {
		h.writeServiceErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
