package sales

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
)

var (
	// ErrInsufficientStock is returned when a line would exceed the product stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInactiveProduct is returned when an inactive product is added to a sale.
	ErrInactiveProduct = errors.New("product is inactive")
)

// Subtotal sums product lines and service lines.
func Subtotal(items []models.SaleItem, services []models.SaleService) float64 {
	var sum float64
	for _, item := range items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	for _, svc := range services {
		sum += svc.Price * float64(svc.Quantity)
	}
	return masks.RoundCents(sum)
}

// Total is the subtotal minus discount, never below zero.
func Total(subtotal, discount float64) float64 {
	total := masks.RoundCents(subtotal - discount)
	if total < 0 {
		return 0
	}
	return total
}

// QuoteFor computes the money view of a sale form.
func QuoteFor(items []models.SaleItem, services []models.SaleService, discount float64) models.Quote {
	subtotal := Subtotal(items, services)
	discount = masks.RoundCents(discount)
	return models.Quote{
		Subtotal:         subtotal,
		Discount:         discount,
		Total:            Total(subtotal, discount),
		RequiresProtocol: RequiresProtocol(items),
	}
}

// DiscountFromPercent converts a percentage of subtotal into an amount.
func DiscountFromPercent(subtotal, percent float64) (float64, error) {
	if percent < 0 || percent > 100 {
		return 0, fmt.Errorf("discount percent %.2f: %w", percent, masks.ErrRange)
	}
	return masks.RoundCents(subtotal * percent / 100), nil
}

// RequiresProtocol reports whether any line is a lens.
func RequiresProtocol(items []models.SaleItem) bool {
	for _, item := range items {
		if item.Category == models.CategoryLens {
			return true
		}
	}
	return false
}

// CheckStock rejects a request for qty units when inCart units of the same product
// are already part of the sale.
func CheckStock(p models.Product, qty, inCart int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Active {
		return fmt.Errorf("%s: %w", p.Name, ErrInactiveProduct)
	}
	if qty+inCart > p.StockQuantity {
		return fmt.Errorf("%s: requested %d, available %d: %w", p.Name, qty+inCart, p.StockQuantity, ErrInsufficientStock)
	}
	return nil
}

// ValidateFrameDetails enforces that frame details are complete on FRAME lines
// and absent on every other line.
func ValidateFrameDetails(item models.SaleItem) error {
	var errs models.ValidationErrors

	if item.Category != models.CategoryFrame {
		if item.FrameDetails != nil {
			errs.Add("frameDetails", "only allowed for frames")
		}
		return errs.Err()
	}

	if item.FrameDetails == nil {
		errs.Add("frameDetails", "is required for frames")
		return errs.Err()
	}
	if strings.TrimSpace(item.FrameDetails.Material) == "" {
		errs.Add("frameDetails.material", "is required")
	}
	if strings.TrimSpace(item.FrameDetails.Reference) == "" {
		errs.Add("frameDetails.reference", "is required")
	}
	if strings.TrimSpace(item.FrameDetails.Color) == "" {
		errs.Add("frameDetails.color", "is required")
	}
	return errs.Err()
}

// ValidateProtocol checks a lab protocol and its prescription eyes.
// The prescription client is filled from the sale, so it is not checked here.
func ValidateProtocol(p models.Protocol) error {
	var errs models.ValidationErrors
	if strings.TrimSpace(p.BookNumber) == "" {
		errs.Add("bookNumber", "is required")
	}
	if strings.TrimSpace(p.PageNumber) == "" {
		errs.Add("pageNumber", "is required")
	}
	if strings.TrimSpace(p.ServiceOrder) == "" {
		errs.Add("serviceOrder", "is required")
	}
	errs.Merge("prescription.rightEye", masks.ValidateEye(p.Prescription.RightEye))
	errs.Merge("prescription.leftEye", masks.ValidateEye(p.Prescription.LeftEye))
	return errs.Err()
}

// ValidateLines checks quantities and prices of product and service lines.
func ValidateLines(items []models.SaleItem, services []models.SaleService) error {
	var errs models.ValidationErrors
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Quantity <= 0 {
			errs.Add(field+".quantity", ErrInvalidQuantity.Error())
		}
		if item.UnitPrice < 0 {
			errs.Add(field+".unitPrice", "must not be negative")
		}
	}
	for i, svc := range services {
		field := fmt.Sprintf("services[%d]", i)
		if svc.Quantity <= 0 {
			errs.Add(field+".quantity", ErrInvalidQuantity.Error())
		}
		if svc.Price < 0 {
			errs.Add(field+".price", "must not be negative")
		}
	}
	return errs.Err()
}

// Validate checks a full sale before submission. The total is not required to
// cover the discount since it clamps at zero.
func Validate(s models.Sale) error {
	var errs models.ValidationErrors

	if s.ClientID <= 0 {
		errs.Add("clientId", "is required")
	}
	if len(s.Items) == 0 && len(s.Services) == 0 {
		errs.Add("items", "at least one product or service is required")
	}
	errs.Merge("", ValidateLines(s.Items, s.Services))
	for i, item := range s.Items {
		errs.Merge(fmt.Sprintf("items[%d]", i), ValidateFrameDetails(item))
	}
	if s.Discount < 0 {
		errs.Add("discount", "must not be negative")
	}

	switch {
	case RequiresProtocol(s.Items) && s.Protocol == nil:
		errs.Add("protocol", "is required when the sale contains lenses")
	case !RequiresProtocol(s.Items) && s.Protocol != nil:
		errs.Add("protocol", "only allowed when the sale contains lenses")
	case s.Protocol != nil:
		errs.Merge("protocol", ValidateProtocol(*s.Protocol))
	}

	if !s.PaymentMethod.Valid() {
		errs.Add("paymentMethod", "is invalid")
	}

	return errs.Err()
}

// FromDraft builds the sale payload posted to the backend.
func FromDraft(d models.SaleDraft, method models.PaymentMethod) models.Sale {
	quote := QuoteFor(d.Items, d.Services, d.Discount)
	sale := models.Sale{
		ClientID:      d.ClientID,
		ClientName:    d.ClientName,
		Items:         d.Items,
		Services:      d.Services,
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Total:         quote.Total,
		PaymentMethod: method,
		Status:        models.SaleStatusPending,
	}
	if d.Protocol != nil {
		protocol := *d.Protocol
		protocol.Prescription.ClientID = d.ClientID
		sale.Protocol = &protocol
	}
	return sale
}

// Balance is what remains to be paid on total.
func Balance(total float64, payments []models.Payment) float64 {
	var paid float64
	for _, p := range payments {
		paid += p.Amount
	}
	balance := masks.RoundCents(total - paid)
	if balance < 0 {
		return 0
	}
	return balance
}

// StatusFor derives the sale status from its balance.
func StatusFor(balance float64) models.SaleStatus {
	if balance <= 0 {
		return models.SaleStatusPaid
	}
	return models.SaleStatusPending
}
