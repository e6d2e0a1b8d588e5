package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/catalog"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/pkg/clients/backend"
)

const (
	dateLayout     = "2006-01-02"
	fetchPageSize  = 100
	topProductsMax = 5
	balanceWorkers = 4
)

// BalanceSource reports how much of a sale has been paid.
type BalanceSource interface {
	Summary(ctx context.Context, saleID int64) (models.SaleBalance, error)
}

// Service computes the dashboard widgets.
type Service struct {
	client   backend.Client
	balances BalanceSource
	lowStock int
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the dashboard service. Days are cut in location.
func NewService(client backend.Client, balances BalanceSource, lowStockThreshold int, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		client:   client,
		balances: balances,
		lowStock: lowStockThreshold,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary builds the widgets for the current day.
func (s *Service) Summary(ctx context.Context) (models.DashboardSummary, error) {
	return s.SummaryFor(ctx, s.now())
}

// SummaryFor builds the widgets for the day containing ref.
func (s *Service) SummaryFor(ctx context.Context, ref time.Time) (models.DashboardSummary, error) {
	ref = ref.In(s.location)
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, s.location)
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, s.location)

	allSales, err := backend.ListAll[models.Sale](ctx, s.client, catalog.ResourceSales, fetchPageSize)
	if err != nil {
		return models.DashboardSummary{}, fmt.Errorf("load sales: %w", err)
	}
	products, err := backend.ListAll[models.Product](ctx, s.client, catalog.ResourceProducts, fetchPageSize)
	if err != nil {
		return models.DashboardSummary{}, fmt.Errorf("load products: %w", err)
	}

	summary := models.DashboardSummary{
		Date:        dayStart.Format(dateLayout),
		LowStock:    LowStock(products, s.lowStock),
		GeneratedAt: s.now().UTC(),
	}

	var monthSales []models.Sale
	var pending []models.Sale
	for _, sale := range allSales {
		if sale.Status == models.SaleStatusCancelled {
			continue
		}
		if sale.Status == models.SaleStatusPending {
			pending = append(pending, sale)
		}

		created := sale.CreatedAt.In(s.location)
		if created.Before(monthStart) || !created.Before(dayStart.AddDate(0, 0, 1)) {
			continue
		}
		monthSales = append(monthSales, sale)
		summary.RevenueMonth += sale.Total

		if !created.Before(dayStart) {
			summary.SalesToday++
			summary.RevenueToday += sale.Total
		}
	}

	summary.RevenueToday = masks.RoundCents(summary.RevenueToday)
	summary.RevenueMonth = masks.RoundCents(summary.RevenueMonth)
	if len(monthSales) > 0 {
		summary.AverageTicket = masks.RoundCents(summary.RevenueMonth / float64(len(monthSales)))
	}
	summary.TopProducts = TopProducts(monthSales, topProductsMax)

	balance, err := s.pendingBalance(ctx, pending)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	summary.PendingBalance = balance

	s.logger.Debug("dashboard computed",
		zap.String("date", summary.Date),
		zap.Int("sales_today", summary.SalesToday),
		zap.Int("pending_sales", len(pending)))
	return summary, nil
}

// SalesOn returns the non cancelled sales created on the day containing ref.
func (s *Service) SalesOn(ctx context.Context, ref time.Time) ([]models.Sale, error) {
	ref = ref.In(s.location)
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	allSales, err := backend.ListAll[models.Sale](ctx, s.client, catalog.ResourceSales, fetchPageSize)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	var out []models.Sale
	for _, sale := range allSales {
		created := sale.CreatedAt.In(s.location)
		if sale.Status == models.SaleStatusCancelled || created.Before(dayStart) || !created.Before(dayEnd) {
			continue
		}
		out = append(out, sale)
	}
	return out, nil
}

// Location returns the timezone days are cut in.
func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) pendingBalance(ctx context.Context, pending []models.Sale) (float64, error) {
	if s.balances == nil || len(pending) == 0 {
		var sum float64
		for _, sale := range pending {
			sum += sale.Total
		}
		return masks.RoundCents(sum), nil
	}

	var (
		mu  sync.Mutex
		sum float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(balanceWorkers)
	for _, sale := range pending {
		sale := sale
		g.Go(func() error {
			b, err := s.balances.Summary(gctx, sale.ID)
			if err != nil {
				return fmt.Errorf("balance of sale %d: %w", sale.ID, err)
			}
			mu.Lock()
			sum += b.Balance
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return masks.RoundCents(sum), nil
}

// LowStock lists active products at or below threshold, lowest stock first.
func LowStock(products []models.Product, threshold int) []models.LowStockProduct {
	out := []models.LowStockProduct{}
	for _, p := range products {
		if !p.Active || p.StockQuantity > threshold {
			continue
		}
		out = append(out, models.LowStockProduct{ProductID: p.ID, Name: p.Name, StockQuantity: p.StockQuantity})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity < out[j].StockQuantity
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopProducts ranks products by quantity sold across sales, keeping at most limit rows.
func TopProducts(sales []models.Sale, limit int) []models.TopProduct {
	byID := map[int64]*models.TopProduct{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			tp, ok := byID[item.ProductID]
			if !ok {
				tp = &models.TopProduct{ProductID: item.ProductID, Name: item.ProductName}
				byID[item.ProductID] = tp
			}
			tp.Quantity += item.Quantity
			tp.Revenue += item.UnitPrice * float64(item.Quantity)
		}
	}

	out := make([]models.TopProduct, 0, len(byID))
	for _, tp := range byID {
		tp.Revenue = masks.RoundCents(tp.Revenue)
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
