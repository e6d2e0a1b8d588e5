package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/optica/internal/cache"
	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/server/handlers"
	"github.com/mamadbah2/optica/internal/service/catalog"
	"github.com/mamadbah2/optica/internal/service/dashboard"
	"github.com/mamadbah2/optica/internal/service/payments"
	"github.com/mamadbah2/optica/internal/service/wizard"
	"github.com/mamadbah2/optica/internal/testutil"
	"github.com/mamadbah2/optica/pkg/clients/backend"
)

func newEngine(t *testing.T, fake *testutil.FakeBackend) http.Handler {
	t.Helper()
	cat := catalog.New(fake, cache.New(time.Minute), catalog.Paging{DefaultSize: 10, MaxSize: 50}, nil)
	paymentSvc := payments.NewService(fake, cat, nil)

	return New(Handlers{
		Clients:       handlers.NewResourceHandler(cat.Clients, "Client", nil),
		Products:      handlers.NewResourceHandler(cat.Products, "Product", nil),
		Brands:        handlers.NewResourceHandler(cat.Brands, "Brand", nil),
		Services:      handlers.NewResourceHandler(cat.Services, "Service", nil),
		Prescriptions: handlers.NewPrescriptionHandler(cat.Prescriptions, nil),
		Sales:         handlers.NewSalesHandler(handlers.NewResourceHandler(cat.Sales, "Sale", nil), paymentSvc, nil),
		Wizard:        handlers.NewWizardHandler(wizard.NewService(wizard.NewMemoryStore(), cat, nil, nil), nil),
		Dashboard:     handlers.NewDashboardHandler(dashboard.NewService(fake, paymentSvc, 3, time.UTC, nil), nil),
	}, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type toastBody struct {
	Toast handlers.Toast `json:"toast"`
}

func TestHealthz(t *testing.T) {
	w := do(t, newEngine(t, testutil.NewFakeBackend()), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestClientScreens(t *testing.T) {
	fake := testutil.NewFakeBackend().
		On(http.MethodGet, "clients", models.Page[models.Client]{Content: []models.Client{{ID: 1, Name: "Ana"}}, Size: 5, TotalPages: 1, TotalElements: 1}).
		On(http.MethodPost, "clients", models.Client{ID: 2, Name: "Bruno"}).
		Fail(http.MethodGet, "clients/9", &backend.APIError{Sentinel: backend.ErrNotFound, Status: 404, Message: "Client not found"})
	engine := newEngine(t, fake)

	w := do(t, engine, http.MethodGet, "/api/clients?page=0&size=5&search=an", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.Page[models.Client]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Content, 1)
	assert.Equal(t, "an", fake.Calls()[0].Query.Get("search"))

	w = do(t, engine, http.MethodGet, "/api/clients?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, engine, http.MethodPost, "/api/clients", models.Client{Name: "Bruno"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Client created")

	w = do(t, engine, http.MethodPost, "/api/clients", models.Client{Name: ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var tb toastBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tb))
	assert.Equal(t, "error", tb.Toast.Level)
	require.Len(t, tb.Toast.Fields, 1)
	assert.Equal(t, "name", tb.Toast.Fields[0].Field)

	w = do(t, engine, http.MethodGet, "/api/clients/9", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tb))
	assert.Equal(t, "Client not found", tb.Toast.Message)

	w = do(t, engine, http.MethodGet, "/api/clients/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuote(t *testing.T) {
	engine := newEngine(t, testutil.NewFakeBackend())

	w := do(t, engine, http.MethodPost, "/api/sales/quote", map[string]any{
		"items":    []models.SaleItem{{UnitPrice: 100, Quantity: 2, Category: models.CategoryLens}},
		"discount": "R$ 250,00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"subtotal": 200, "discount": 250, "total": 0, "requiresProtocol": true,
		"formatted": {"subtotal": "R$ 200,00", "discount": "R$ 250,00", "total": "R$ 0,00"}
	}`, w.Body.String())

	w = do(t, engine, http.MethodPost, "/api/sales/quote", map[string]any{
		"services":        []models.SaleService{{Price: 80, Quantity: 1}},
		"discountPercent": 10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":72`)

	w = do(t, engine, http.MethodPost, "/api/sales/quote", map[string]any{"discountPercent": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, engine, http.MethodPost, "/api/sales/quote", map[string]any{
		"items":           []models.SaleItem{{UnitPrice: 100, Quantity: -3}},
		"discountPercent": 10,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var tb toastBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tb))
	require.Len(t, tb.Toast.Fields, 1)
	assert.Equal(t, "items[0].quantity", tb.Toast.Fields[0].Field)
	assert.NotContains(t, w.Body.String(), "subtotal")

	w = do(t, engine, http.MethodPost, "/api/sales/quote", map[string]any{
		"services": []models.SaleService{{Price: -80, Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardOverHTTP(t *testing.T) {
	fake := testutil.NewFakeBackend().
		On(http.MethodGet, "clients/7", models.Client{ID: 7, Name: "Ana"}).
		On(http.MethodGet, "products/1", models.Product{ID: 1, Name: "Case", Category: models.CategoryAccessory, SalePrice: 25, StockQuantity: 1, Active: true}).
		On(http.MethodPost, "sales", models.Sale{ID: 50, ClientID: 7, Total: 15})
	engine := newEngine(t, fake)

	w := do(t, engine, http.MethodPost, "/api/sale-drafts", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var view wizard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	base := "/api/sale-drafts/" + view.Draft.ID

	w = do(t, engine, http.MethodPost, base+"/items", map[string]any{"productId": 1, "quantity": 1})
	assert.Equal(t, http.StatusConflict, w.Code, "items before client")

	require.Equal(t, http.StatusOK, do(t, engine, http.MethodPut, base+"/client", map[string]any{"clientId": 7}).Code)

	w = do(t, engine, http.MethodPost, base+"/items", map[string]any{"productId": 1, "quantity": 2})
	assert.Equal(t, http.StatusConflict, w.Code, "stock exceeded")

	require.Equal(t, http.StatusOK, do(t, engine, http.MethodPost, base+"/items", map[string]any{"productId": 1, "quantity": 1}).Code)

	w = do(t, engine, http.MethodPut, base+"/discount", map[string]any{"amount": "10,00"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 15.0, view.Quote.Total)

	require.Equal(t, http.StatusOK, do(t, engine, http.MethodPost, base+"/next", nil).Code)

	w = do(t, engine, http.MethodPost, base+"/submit", map[string]any{"paymentMethod": "PIX"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Sale created")

	w = do(t, engine, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentsAndDashboard(t *testing.T) {
	fake := testutil.NewFakeBackend().
		On(http.MethodGet, "sales/5", models.Sale{ID: 5, Total: 100, Status: models.SaleStatusPending}).
		On(http.MethodGet, "sales/5/payments", models.Page[models.Payment]{TotalPages: 1}).
		On(http.MethodPost, "sales/5/payments", models.Payment{ID: 1, SaleID: 5, Amount: 40}).
		On(http.MethodGet, "sales", models.Page[models.Sale]{Content: []models.Sale{{ID: 5, Total: 100, Status: models.SaleStatusPending}}, TotalPages: 1}).
		On(http.MethodGet, "products", models.Page[models.Product]{TotalPages: 1})
	engine := newEngine(t, fake)

	w := do(t, engine, http.MethodPost, "/api/sales/5/payments", map[string]any{"amount": "R$ 40,00", "method": "CASH"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, engine, http.MethodPost, "/api/sales/5/payments", map[string]any{"amount": "R$ 400,00", "method": "CASH"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, engine, http.MethodGet, "/api/sales/5/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":100`)

	w = do(t, engine, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary models.DashboardSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 100.0, summary.PendingBalance)
}

func TestPrescriptionFormAcceptsMasks(t *testing.T) {
	fake := testutil.NewFakeBackend().
		On(http.MethodPost, "prescriptions", models.Prescription{ID: 3, ClientID: 7})
	engine := newEngine(t, fake)

	w := do(t, engine, http.MethodPost, "/api/prescriptions", map[string]any{
		"clientId": 7,
		"rightEye": map[string]any{"sphere": "+1,25", "cylinder": "-0,50", "axis": "90°", "dnp": "31,5"},
		"leftEye":  map[string]any{"sphere": -0.75, "addition": "2,00", "axis": 180},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	posted := fake.Calls()[0].Body.(models.Prescription)
	assert.Equal(t, models.EyePrescription{Sphere: 1.25, Cylinder: -0.5, Axis: 90, Dnp: 31.5}, posted.RightEye)
	assert.Equal(t, models.EyePrescription{Sphere: -0.75, Addition: 2, Axis: 180}, posted.LeftEye)

	for _, eye := range []map[string]any{
		{"sphere": "+1,30"},
		{"axis": "181"},
		{"dnp": "abc"},
	} {
		w = do(t, engine, http.MethodPost, "/api/prescriptions", map[string]any{"clientId": 7, "rightEye": eye})
		assert.Equal(t, http.StatusBadRequest, w.Code, eye)
	}
	assert.Equal(t, 1, fake.Count(http.MethodPost, "prescriptions"))
}

func TestWizardProtocolAndQuantityMasks(t *testing.T) {
	fake := testutil.NewFakeBackend().
		On(http.MethodGet, "clients/7", models.Client{ID: 7, Name: "Ana"}).
		On(http.MethodGet, "products/2", models.Product{ID: 2, Name: "Single vision", Category: models.CategoryLens, SalePrice: 150, StockQuantity: 10, Active: true})
	engine := newEngine(t, fake)

	w := do(t, engine, http.MethodPost, "/api/sale-drafts", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var view wizard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	base := "/api/sale-drafts/" + view.Draft.ID

	require.Equal(t, http.StatusOK, do(t, engine, http.MethodPut, base+"/client", map[string]any{"clientId": 7}).Code)

	w = do(t, engine, http.MethodPost, base+"/items", map[string]any{"productId": 2, "quantity": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, engine, http.MethodPost, base+"/items", map[string]any{"productId": 2, "quantity": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Draft.Items[0].Quantity)

	require.Equal(t, http.StatusOK, do(t, engine, http.MethodPost, base+"/next", nil).Code)

	w = do(t, engine, http.MethodPut, base+"/protocol", map[string]any{
		"bookNumber":   "1",
		"pageNumber":   "2",
		"serviceOrder": "OS-3",
		"prescription": map[string]any{
			"rightEye": map[string]any{"sphere": "-1,25", "axis": "45°"},
			"leftEye":  map[string]any{"sphere": "-1,00"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotNil(t, view.Draft.Protocol)
	assert.Equal(t, -1.25, view.Draft.Protocol.Prescription.RightEye.Sphere)
	assert.Equal(t, 45, view.Draft.Protocol.Prescription.RightEye.Axis)
}
