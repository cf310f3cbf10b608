package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/orgalife/storefront/internal/domain/analytics"
	"github.com/orgalife/storefront/internal/domain/discount"
	"github.com/orgalife/storefront/internal/domain/order"
	"github.com/orgalife/storefront/internal/domain/product"
	"github.com/orgalife/storefront/internal/domain/settings"
)

// --- In-memory fakes ---

type memProducts struct {
	byID map[string]product.Product
}

func (m *memProducts) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *memProducts) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Create(_ context.Context, p *product.Product) error {
	m.byID[p.ID] = *p
	return nil
}

func (m *memProducts) Update(_ context.Context, id string, upd product.Update) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	m.byID[id] = p
	return &p, nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memRegistry struct {
	codes []discount.Discount
}

func (m *memRegistry) List(_ context.Context) ([]discount.Discount, error) {
	return m.codes, nil
}

func (m *memRegistry) FindByCode(_ context.Context, code string) (*discount.Discount, error) {
	for _, d := range m.codes {
		if strings.EqualFold(d.Code, code) {
			return &d, nil
		}
	}
	return nil, discount.ErrNotFound
}

func (m *memRegistry) Add(_ context.Context, d discount.Discount) error {
	for _, existing := range m.codes {
		if strings.EqualFold(existing.Code, d.Code) {
			return &discount.DuplicateError{Code: d.Code}
		}
	}
	m.codes = append(m.codes, d)
	return nil
}

func (m *memRegistry) Remove(_ context.Context, code string) error {
	for i, d := range m.codes {
		if strings.EqualFold(d.Code, code) {
			m.codes = append(m.codes[:i], m.codes[i+1:]...)
			return nil
		}
	}
	return discount.ErrNotFound
}

type memOrders struct {
	orders []order.Order
}

func (m *memOrders) Create(_ context.Context, o *order.Order) error {
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i], nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *memOrders) List(_ context.Context) ([]order.Order, error) {
	return m.orders, nil
}

func (m *memOrders) Transition(_ context.Context, id string, to order.Status) (*order.Order, error) {
	for i := range m.orders {
		if m.orders[i].ID != id {
			continue
		}
		if !order.CanTransition(m.orders[i].Status, to) {
			return nil, &order.InvalidTransitionError{ID: id, From: m.orders[i].Status, To: to}
		}
		m.orders[i].Status = to
		return &m.orders[i], nil
	}
	return nil, order.ErrNotFound
}

type memSettings struct {
	doc settings.Settings
}

func (m *memSettings) Get(_ context.Context) (*settings.Settings, error) {
	doc := m.doc
	return &doc, nil
}

func (m *memSettings) Update(_ context.Context, upd settings.Update) (*settings.Settings, error) {
	if upd.WhatsappNumber != nil {
		m.doc.WhatsappNumber = *upd.WhatsappNumber
	}
	if upd.TelegramBotToken != nil {
		m.doc.TelegramBotToken = *upd.TelegramBotToken
	}
	if upd.TelegramChatID != nil {
		m.doc.TelegramChatID = *upd.TelegramChatID
	}
	if upd.AdminPasswordHash != nil {
		m.doc.AdminPasswordHash = *upd.AdminPasswordHash
	}
	doc := m.doc
	return &doc, nil
}

type memClicks struct {
	counts map[string]int64
}

func (m *memClicks) Increment(_ context.Context, productID string) error {
	m.counts[productID]++
	return nil
}

func (m *memClicks) Totals(_ context.Context) (map[string]int64, error) {
	return m.counts, nil
}

type noopNotifier struct{}

func (noopNotifier) Enqueue(_ order.Order) {}

// --- Harness ---

type fixture struct {
	mux      *http.ServeMux
	products *memProducts
	orders   *memOrders
	registry *memRegistry
	settings *memSettings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := &memProducts{byID: map[string]product.Product{
		"p1": {ID: "p1", Name: "Honey", Price: 120, CreatedAt: time.Now()},
	}}
	registry := &memRegistry{codes: []discount.Discount{{Code: "SAVE10", Percent: 10}}}
	orders := &memOrders{}
	st := &memSettings{}
	clicks := &memClicks{counts: map[string]int64{}}

	orderSvc := order.NewService(products, registry, orders, noopNotifier{})
	analyticsSvc := analytics.NewService(clicks, orders, zap.NewNop())

	h, err := New(
		Config{UploadDir: t.TempDir()},
		products,
		orderSvc,
		registry,
		st,
		analyticsSvc,
		noop.NewMeterProvider(),
	)
	require.NoError(t, err)

	return &fixture{
		mux:      h.Routes(),
		products: products,
		orders:   orders,
		registry: registry,
		settings: st,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/orders", `{
		"customerName": "Rahim",
		"customerPhone": "01712345678",
		"customerAddress": "Dhaka",
		"items": [
			{"id": "p1", "quantity": 2},
			{"id": "gone", "name": "Old Ghee", "price": 250, "quantity": 1}
		],
		"discountCode": "SAVE10"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(490), resp.Subtotal)
	assert.Equal(t, int64(49), resp.Discount)
	assert.Equal(t, int64(441), resp.Total)
	assert.Equal(t, "Pending", resp.Status)
	require.NotNil(t, resp.DiscountCode)
	assert.Equal(t, "SAVE10", *resp.DiscountCode)
	require.Len(t, f.orders.orders, 1)
}

func TestPlaceOrder_MissingFields(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/orders", `{"items": [{"id": "p1"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "customerName")
}

func TestPlaceOrder_InvalidDiscountCode(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/orders", `{
		"customerName": "Rahim",
		"customerPhone": "01712345678",
		"customerAddress": "Dhaka",
		"items": [{"id": "p1"}],
		"discountCode": "BOGUS"
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, f.orders.orders)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	f.orders.orders = []order.Order{{ID: "o1", Status: order.StatusPending}}

	rec := f.do(t, http.MethodPatch, "/api/orders/o1", `{"status": "Confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Terminal now: a second transition conflicts.
	rec = f.do(t, http.MethodPatch, "/api/orders/o1", `{"status": "Cancelled"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/orders/missing", `{"status": "Confirmed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	f := newFixture(t)
	f.orders.orders = []order.Order{{ID: "o1", Status: order.StatusPending}}

	rec := f.do(t, http.MethodPatch, "/api/orders/o1", `{"status": "Shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []productResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Honey", resp[0].Name)
}

func TestAddDiscount_Duplicate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/settings/discounts", `{"code": "save10", "percent": 15}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "code exists")
}

func TestAddDiscount_InvalidPercent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/settings/discounts", `{"code": "NEW", "percent": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/settings/discounts", `{"code": "NEW", "percent": 10.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveDiscount(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodDelete, "/api/settings/discounts/SAVE10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/settings/discounts/SAVE10", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSettings_OmitsPasswordHash(t *testing.T) {
	f := newFixture(t)
	f.settings.doc.AdminPasswordHash = "secret-hash"
	f.settings.doc.WhatsappNumber = "01700000000"

	rec := f.do(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	assert.Contains(t, rec.Body.String(), "01700000000")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	f.settings.doc.AdminPasswordHash = string(hash)

	rec := f.do(t, http.MethodPost, "/api/login", `{"password": "hunter2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/login", `{"password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false}`, rec.Body.String())
}

func TestCreateProduct_StrictNumericFields(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Ghee"))
	require.NoError(t, mw.WriteField("price", "not-a-number"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	// Malformed price is a rejection, not a zero-priced product.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price")
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Ghee"))
	require.NoError(t, mw.WriteField("price", "550"))
	require.NoError(t, mw.WriteField("stock", "25"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp productResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ghee", resp.Name)
	assert.Equal(t, int64(550), resp.Price)
	assert.Equal(t, 25, resp.Stock)
	assert.NotEmpty(t, resp.ID)
}

func TestUpdateSettings_HashesAdminPassword(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/settings", `{"adminPassword": "new-secret", "whatsappNumber": "01700000000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Plaintext is never stored; the stored hash verifies the password.
	assert.NotEqual(t, "new-secret", f.settings.doc.AdminPasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(f.settings.doc.AdminPasswordHash), []byte("new-secret")))
	assert.Equal(t, "01700000000", f.settings.doc.WhatsappNumber)
}

func TestRecordClick(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/click/p1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	f.orders.orders = []order.Order{
		{ID: "o1", CustomerPhone: "111", Total: 100, Status: order.StatusConfirmed},
		{ID: "o2", CustomerPhone: "111", Total: 200, Status: order.StatusPending},
		{ID: "o3", CustomerPhone: "222", Total: 300, Status: order.StatusCancelled},
	}

	rec := f.do(t, http.MethodGet, "/api/analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		TotalOrders        int `json:"totalOrders"`
		TotalCustomers     int `json:"totalCustomers"`
		ReturningCustomers int `json:"returningCustomers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalOrders)
	assert.Equal(t, 2, summary.TotalCustomers)
	assert.Equal(t, 1, summary.ReturningCustomers)

	rec = f.do(t, http.MethodGet, "/api/analytics/sales", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sales struct {
		TotalRevenue    int64 `json:"totalRevenue"`
		PendingOrders   int   `json:"pendingOrders"`
		ConfirmedOrders int   `json:"confirmedOrders"`
		CancelledOrders int   `json:"cancelledOrders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sales))
	// Cancelled orders are excluded from revenue.
	assert.Equal(t, int64(300), sales.TotalRevenue)
	assert.Equal(t, 1, sales.PendingOrders)
	assert.Equal(t, 1, sales.ConfirmedOrders)
	assert.Equal(t, 1, sales.CancelledOrders)
}
