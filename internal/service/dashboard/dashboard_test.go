package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/testutil"
)

type stubBalances map[int64]float64

func (s stubBalances) Summary(_ context.Context, saleID int64) (models.SaleBalance, error) {
	b, ok := s[saleID]
	if !ok {
		return models.SaleBalance{}, errors.New("unknown sale")
	}
	return models.SaleBalance{SaleID: saleID, Balance: b}, nil
}

func fixture(t *testing.T) (*testutil.FakeBackend, *time.Location) {
	t.Helper()
	loc := time.FixedZone("BRT", -3*3600)
	at := func(day, hour int) time.Time { return time.Date(2026, 3, day, hour, 0, 0, 0, loc) }

	sales := []models.Sale{
		{ID: 1, Total: 100, Status: models.SaleStatusPaid, CreatedAt: at(10, 9), Items: []models.SaleItem{{ProductID: 1, ProductName: "Aviator", UnitPrice: 100, Quantity: 1}}},
		{ID: 2, Total: 300, Status: models.SaleStatusPending, CreatedAt: at(10, 23), Items: []models.SaleItem{{ProductID: 2, ProductName: "Lens", UnitPrice: 75, Quantity: 4}}},
		{ID: 3, Total: 50, Status: models.SaleStatusPaid, CreatedAt: at(2, 12), Items: []models.SaleItem{{ProductID: 1, ProductName: "Aviator", UnitPrice: 50, Quantity: 1}}},
		{ID: 4, Total: 999, Status: models.SaleStatusCancelled, CreatedAt: at(10, 10)},
		{ID: 5, Total: 80, Status: models.SaleStatusPending, CreatedAt: time.Date(2026, 2, 27, 10, 0, 0, 0, loc)},
		{ID: 6, Total: 40, Status: models.SaleStatusPaid, CreatedAt: at(11, 10)},
	}
	products := []models.Product{
		{ID: 1, Name: "Aviator", StockQuantity: 2, Active: true},
		{ID: 2, Name: "Lens", StockQuantity: 0, Active: true},
		{ID: 3, Name: "Case", StockQuantity: 50, Active: true},
		{ID: 4, Name: "Old", StockQuantity: 0, Active: false},
	}

	fake := testutil.NewFakeBackend().
		On(http.MethodGet, "sales", models.Page[models.Sale]{Content: sales, TotalPages: 1}).
		On(http.MethodGet, "products", models.Page[models.Product]{Content: products, TotalPages: 1})
	return fake, loc
}

func TestSummaryFor(t *testing.T) {
	fake, loc := fixture(t)
	svc := NewService(fake, stubBalances{2: 120, 5: 80}, 3, loc, nil)

	summary, err := svc.SummaryFor(context.Background(), time.Date(2026, 3, 10, 15, 0, 0, 0, loc))
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", summary.Date)
	assert.Equal(t, 2, summary.SalesToday)
	assert.Equal(t, 400.0, summary.RevenueToday)
	assert.Equal(t, 450.0, summary.RevenueMonth)
	assert.Equal(t, 150.0, summary.AverageTicket)
	assert.Equal(t, 200.0, summary.PendingBalance)

	require.Len(t, summary.LowStock, 2)
	assert.Equal(t, "Lens", summary.LowStock[0].Name)
	assert.Equal(t, "Aviator", summary.LowStock[1].Name)

	require.Len(t, summary.TopProducts, 2)
	assert.Equal(t, int64(2), summary.TopProducts[0].ProductID)
	assert.Equal(t, 4, summary.TopProducts[0].Quantity)
	assert.Equal(t, 2, summary.TopProducts[1].Quantity)
	assert.Equal(t, 150.0, summary.TopProducts[1].Revenue)
}

func TestSummaryWithoutBalanceSource(t *testing.T) {
	fake, loc := fixture(t)
	svc := NewService(fake, nil, 3, loc, nil)

	summary, err := svc.SummaryFor(context.Background(), time.Date(2026, 3, 10, 15, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 380.0, summary.PendingBalance)
}

func TestSummaryPropagatesBalanceErrors(t *testing.T) {
	fake, loc := fixture(t)
	svc := NewService(fake, stubBalances{}, 3, loc, nil)

	_, err := svc.SummaryFor(context.Background(), time.Date(2026, 3, 10, 15, 0, 0, 0, loc))
	assert.Error(t, err)
}

func TestSalesOn(t *testing.T) {
	fake, loc := fixture(t)
	svc := NewService(fake, nil, 3, loc, nil)

	sales, err := svc.SalesOn(context.Background(), time.Date(2026, 3, 10, 1, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, int64(1), sales[0].ID)
	assert.Equal(t, int64(2), sales[1].ID)
}

func TestTopProductsLimit(t *testing.T) {
	var sales []models.Sale
	for i := int64(1); i <= 7; i++ {
		sales = append(sales, models.Sale{Items: []models.SaleItem{{ProductID: i, Quantity: int(i)}}})
	}
	top := TopProducts(sales, 5)
	require.Len(t, top, 5)
	assert.Equal(t, int64(7), top[0].ProductID)
}
