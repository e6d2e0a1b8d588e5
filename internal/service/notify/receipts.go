package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
	client "github.com/mamadbah2/optica/pkg/clients/whatsapp"
)

const (
	defaultCountryCode = "55"
	sendTimeout        = 10 * time.Second
)

// Receipts sends sale receipts to clients over WhatsApp. Failures are logged only.
type Receipts struct {
	client client.Client
	logger *zap.Logger
}

// NewReceipts wires a receipt sender.
func NewReceipts(c client.Client, logger *zap.Logger) *Receipts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Receipts{client: c, logger: logger}
}

// SaleReceipt sends the receipt of sale to phone.
func (r *Receipts) SaleReceipt(ctx context.Context, phone string, sale models.Sale) {
	to := InternationalPhone(phone)
	if to == "" {
		r.logger.Debug("skip receipt without phone", zap.Int64("sale_id", sale.ID))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if _, err := r.client.SendTextMessage(ctx, client.SendTextMessageRequest{To: to, Body: ReceiptText(sale)}); err != nil {
		r.logger.Warn("failed to send sale receipt", zap.Int64("sale_id", sale.ID), zap.Error(err))
		return
	}
	r.logger.Info("sale receipt sent", zap.Int64("sale_id", sale.ID))
}

// InternationalPhone prefixes national numbers (10 or 11 digits) with the country code.
func InternationalPhone(phone string) string {
	digits := masks.DigitsOnly(phone)
	switch len(digits) {
	case 0:
		return ""
	case 10, 11:
		return defaultCountryCode + digits
	default:
		return digits
	}
}

// ReceiptText renders the message body for a sale.
func ReceiptText(sale models.Sale) string {
	var b strings.Builder

	name := sale.ClientName
	if name == "" {
		name = "cliente"
	}
	fmt.Fprintf(&b, "Olá %s, obrigado pela sua compra!\n", name)
	if sale.ID != 0 {
		fmt.Fprintf(&b, "Venda #%d\n", sale.ID)
	}
	for _, item := range sale.Items {
		fmt.Fprintf(&b, "- %dx %s %s\n", item.Quantity, item.ProductName, masks.FormatMoney(item.UnitPrice*float64(item.Quantity)))
	}
	for _, svc := range sale.Services {
		fmt.Fprintf(&b, "- %dx %s %s\n", svc.Quantity, svc.ServiceName, masks.FormatMoney(svc.Price*float64(svc.Quantity)))
	}
	if sale.Discount > 0 {
		fmt.Fprintf(&b, "Desconto: %s\n", masks.FormatMoney(sale.Discount))
	}
	fmt.Fprintf(&b, "Total: %s", masks.FormatMoney(sale.Total))
	if sale.Protocol != nil && sale.Protocol.DeliveryDate != "" {
		fmt.Fprintf(&b, "\nPrevisão de entrega: %s", sale.Protocol.DeliveryDate)
	}
	return b.String()
}
