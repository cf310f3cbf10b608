package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/orgalife/storefront/internal/domain/order"
)

// orderResponse is the JSON shape for orders, matching the field names the
// storefront clients expect.
type orderResponse struct {
	ID              string              `json:"id"`
	CustomerName    string              `json:"customerName"`
	CustomerPhone   string              `json:"customerPhone"`
	CustomerAddress string              `json:"customerAddress"`
	Items           []orderItemResponse `json:"items"`
	DiscountCode    *string             `json:"discountCode"`
	Subtotal        int64               `json:"subtotal"`
	Discount        int64               `json:"discount"`
	Total           int64               `json:"total"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type orderItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
}

func (h *Handler) orderToResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Price:       it.Price,
			Image:       h.imageURL(it.Image),
			Category:    it.Category,
			Description: it.Description,
			Quantity:    it.Quantity,
		}
	}

	var code *string
	if o.DiscountCode != "" {
		code = &o.DiscountCode
	}

	return orderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Items:           items,
		DiscountCode:    code,
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		Total:           o.Total,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
	}
}

// ListOrders returns all orders, most recent first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = h.orderToResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrder returns a single order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orderToResponse(o))
}

// PlaceOrder runs the full order pipeline and returns the persisted order.
// The server recomputes pricing; client-sent totals are never trusted.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := decodeSubmission(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Create(ctx, sub)
	if err != nil {
		h.metrics.ordersRejected.Add(ctx, 1)
		h.mapOrderError(w, r, err)
		return
	}

	h.metrics.ordersPlaced.Add(ctx, 1)
	writeJSON(w, http.StatusOK, h.orderToResponse(o))
}

// UpdateOrderStatus applies an admin status transition, enforcing the
// Pending-to-terminal state machine.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status, err := order.ParseStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.SetStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orderToResponse(o))
}

// mapOrderError converts domain errors from the order pipeline to HTTP
// responses.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *order.ValidationError
		dErr *order.InvalidDiscountError
		tErr *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, "items required")
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &dErr):
		writeError(w, http.StatusUnprocessableEntity, "invalid discount code")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.As(err, &tErr):
		writeError(w, http.StatusConflict, tErr.Error())
	default:
		internalError(w, r, err)
	}
}
