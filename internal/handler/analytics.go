package handler

import "net/http"

// RecordClick records a product view. Always responds 204; failures are
// logged inside the analytics service.
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	h.analytics.RecordView(r.Context(), r.PathValue("id"))
	h.metrics.productViews.Add(r.Context(), 1)
	w.WriteHeader(http.StatusNoContent)
}

// Analytics returns the overall order, customer, and click summary.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	s, err := h.analytics.Summary(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalOrders":        s.TotalOrders,
		"totalCustomers":     s.TotalCustomers,
		"returningCustomers": s.ReturningCustomers,
		"productClicks":      s.ProductClicks,
	})
}

// Retention returns the customer retention breakdown.
func (h *Handler) Retention(w http.ResponseWriter, r *http.Request) {
	ret, err := h.analytics.Retention(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalCustomers":     ret.TotalCustomers,
		"newCustomers":       ret.NewCustomers,
		"returningCustomers": ret.ReturningCustomers,
	})
}

// Sales returns revenue and per-status order counts.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	s, err := h.analytics.Sales(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalRevenue":    s.TotalRevenue,
		"pendingOrders":   s.PendingOrders,
		"confirmedOrders": s.ConfirmedOrders,
		"cancelledOrders": s.CancelledOrders,
	})
}
