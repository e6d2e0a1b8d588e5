package payments

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/catalog"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/internal/service/sales"
	"github.com/mamadbah2/optica/pkg/clients/backend"
)

// maxInstallments caps credit card installments.
const maxInstallments = 12

// Service registers payments against sales and reports balances.
type Service struct {
	client  backend.Client
	catalog *catalog.Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the payments service.
func NewService(client backend.Client, cat *catalog.Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, catalog: cat, logger: logger, now: time.Now}
}

func paymentsPath(saleID int64) string {
	return fmt.Sprintf("%s/%d/payments", catalog.ResourceSales, saleID)
}

// List returns every payment of a sale.
func (s *Service) List(ctx context.Context, saleID int64) ([]models.Payment, error) {
	payments, err := backend.ListAll[models.Payment](ctx, s.client, paymentsPath(saleID), 100)
	if err != nil {
		return nil, fmt.Errorf("list payments of sale %d: %w", saleID, err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

// Summary computes total, paid amount and balance of a sale.
func (s *Service) Summary(ctx context.Context, saleID int64) (models.SaleBalance, error) {
	sale, err := s.catalog.Sales.Get(ctx, saleID)
	if err != nil {
		return models.SaleBalance{}, err
	}
	payments, err := s.List(ctx, saleID)
	if err != nil {
		return models.SaleBalance{}, err
	}
	return summarize(sale, payments), nil
}

// Register validates and records a payment against the outstanding balance.
func (s *Service) Register(ctx context.Context, saleID int64, payment models.Payment) (models.Payment, error) {
	payment.SaleID = saleID
	payment.Amount = masks.RoundCents(payment.Amount)
	if payment.Installments == 0 {
		payment.Installments = 1
	}

	if err := validate(payment); err != nil {
		return models.Payment{}, err
	}

	summary, err := s.Summary(ctx, saleID)
	if err != nil {
		return models.Payment{}, err
	}
	if summary.Status == models.SaleStatusCancelled {
		return models.Payment{}, models.ValidationErrors{{Field: "saleId", Message: "sale is cancelled"}}
	}
	if payment.Amount > summary.Balance {
		return models.Payment{}, models.ValidationErrors{{
			Field:   "amount",
			Message: fmt.Sprintf("exceeds outstanding balance of %s", masks.FormatMoney(summary.Balance)),
		}}
	}

	if payment.PaidAt.IsZero() {
		payment.PaidAt = s.now().UTC()
	}

	created, err := backend.Create(ctx, s.client, paymentsPath(saleID), payment)
	if err != nil {
		return models.Payment{}, fmt.Errorf("register payment for sale %d: %w", saleID, err)
	}
	s.catalog.Sales.Invalidate()

	s.logger.Info("payment registered",
		zap.Int64("sale_id", saleID),
		zap.Float64("amount", payment.Amount),
		zap.String("method", string(payment.Method)))
	return created, nil
}

func validate(p models.Payment) error {
	var errs models.ValidationErrors
	if p.Amount <= 0 {
		errs.Add("amount", "must be positive")
	}
	if !p.Method.Valid() {
		errs.Add("method", "is invalid")
	}
	switch {
	case p.Installments < 1:
		errs.Add("installments", "must be at least 1")
	case p.Installments > 1 && p.Method != models.PaymentCreditCard:
		errs.Add("installments", "only credit card payments may be split")
	case p.Installments > maxInstallments:
		errs.Add("installments", fmt.Sprintf("must not exceed %d", maxInstallments))
	}
	return errs.Err()
}

func summarize(sale models.Sale, payments []models.Payment) models.SaleBalance {
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	balance := sales.Balance(sale.Total, payments)
	status := sales.StatusFor(balance)
	if sale.Status == models.SaleStatusCancelled {
		status = models.SaleStatusCancelled
	}
	return models.SaleBalance{
		SaleID:  sale.ID,
		Total:   sale.Total,
		Paid:    masks.RoundCents(paid),
		Balance: balance,
		Status:  status,
	}
}
