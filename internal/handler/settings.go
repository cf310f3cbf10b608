package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/orgalife/storefront/internal/domain/discount"
	"github.com/orgalife/storefront/internal/domain/settings"
)

type discountResponse struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
}

type settingsResponse struct {
	WhatsappNumber   string             `json:"whatsappNumber"`
	TelegramBotToken string             `json:"telegramBotToken"`
	TelegramChatID   string             `json:"telegramChatId"`
	DiscountCodes    []discountResponse `json:"discountCodes"`
}

// GetSettings returns the settings document joined with the discount
// registry. The admin password hash is never exposed.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.settings.Get(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	codes, err := h.discounts.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := settingsResponse{
		WhatsappNumber:   st.WhatsappNumber,
		TelegramBotToken: st.TelegramBotToken,
		TelegramChatID:   st.TelegramChatID,
		DiscountCodes:    make([]discountResponse, len(codes)),
	}
	for i, d := range codes {
		resp.DiscountCodes[i] = discountResponse{Code: d.Code, Percent: d.Percent}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateSettings partially updates the settings document. A non-empty
// adminPassword is hashed before storage; the plaintext is discarded.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WhatsappNumber   *string `json:"whatsappNumber"`
		TelegramBotToken *string `json:"telegramBotToken"`
		TelegramChatID   *string `json:"telegramChatId"`
		AdminPassword    *string `json:"adminPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd := settings.Update{
		WhatsappNumber:   body.WhatsappNumber,
		TelegramBotToken: body.TelegramBotToken,
		TelegramChatID:   body.TelegramChatID,
	}
	if body.AdminPassword != nil && *body.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			internalError(w, r, errors.Wrap(err, "hash admin password"))
			return
		}
		s := string(hash)
		upd.AdminPasswordHash = &s
	}

	if _, err := h.settings.Update(r.Context(), upd); err != nil {
		internalError(w, r, err)
		return
	}
	h.GetSettings(w, r)
}

// AddDiscount registers a new discount code. The percent must be an integer
// between 1 and 100; duplicates clash case-insensitively.
func (h *Handler) AddDiscount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code    string      `json:"code"`
		Percent json.Number `json:"percent"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	percent, err := body.Percent.Int64()
	if err != nil {
		writeError(w, http.StatusBadRequest, "percent must be an integer")
		return
	}

	d := discount.Discount{Code: body.Code, Percent: int(percent)}
	if err := d.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.discounts.Add(r.Context(), d); err != nil {
		var dup *discount.DuplicateError
		if errors.As(err, &dup) {
			writeError(w, http.StatusBadRequest, "code exists")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discountResponse{Code: d.Code, Percent: d.Percent})
}

// RemoveDiscount deletes a discount code, matching case-insensitively.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	if err := h.discounts.Remove(r.Context(), r.PathValue("code")); err != nil {
		if errors.Is(err, discount.ErrNotFound) {
			writeError(w, http.StatusNotFound, "discount code not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Login verifies the admin password against the stored bcrypt hash.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	st, err := h.settings.Get(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(st.AdminPasswordHash), []byte(body.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
