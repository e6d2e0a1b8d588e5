package catalog

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/cache"
	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/pkg/clients/backend"
)

// Backend resource paths.
const (
	ResourceClients       = "clients"
	ResourceProducts      = "products"
	ResourceBrands        = "brands"
	ResourceServices      = "services"
	ResourcePrescriptions = "prescriptions"
	ResourceSales         = "sales"
)

// Catalog groups the resource services behind the console screens.
type Catalog struct {
	Clients       *Resource[models.Client]
	Products      *Resource[models.Product]
	Brands        *Resource[models.Brand]
	Services      *Resource[models.Service]
	Prescriptions *Resource[models.Prescription]
	// Sales are created through the wizard; the resource serves list and detail screens.
	Sales *Resource[models.Sale]
}

// New wires every resource on a shared client and cache.
func New(client backend.Client, c cache.Cache, paging Paging, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		Clients:       NewResource(ResourceClients, client, c, paging, PrepareClient, logger.Named(ResourceClients)),
		Products:      NewResource(ResourceProducts, client, c, paging, PrepareProduct, logger.Named(ResourceProducts)),
		Brands:        NewResource(ResourceBrands, client, c, paging, PrepareBrand, logger.Named(ResourceBrands)),
		Services:      NewResource(ResourceServices, client, c, paging, PrepareService, logger.Named(ResourceServices)),
		Prescriptions: NewResource(ResourcePrescriptions, client, c, paging, PreparePrescription, logger.Named(ResourcePrescriptions)),
		Sales:         NewResource[models.Sale](ResourceSales, client, c, paging, nil, logger.Named(ResourceSales)),
	}
}

// PrepareClient trims fields, unmasks phone and document, and validates.
func PrepareClient(c *models.Client) error {
	var errs models.ValidationErrors

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = masks.DigitsOnly(c.Phone)
	c.Document = masks.DigitsOnly(c.Document)

	if c.Name == "" {
		errs.Add("name", "is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			errs.Add("email", "is invalid")
		}
	}
	if c.Phone != "" && (len(c.Phone) < 10 || len(c.Phone) > 13) {
		errs.Add("phone", "must have between 10 and 13 digits")
	}
	if c.Document != "" && len(c.Document) != 11 && len(c.Document) != 14 {
		errs.Add("document", "must have 11 or 14 digits")
	}

	return errs.Err()
}

// PrepareProduct validates prices, stock and category.
func PrepareProduct(p *models.Product) error {
	var errs models.ValidationErrors

	p.Name = strings.TrimSpace(p.Name)
	p.Reference = strings.TrimSpace(p.Reference)
	p.Category = models.ProductCategory(strings.ToUpper(strings.TrimSpace(string(p.Category))))
	p.SalePrice = masks.RoundCents(p.SalePrice)
	p.CostPrice = masks.RoundCents(p.CostPrice)

	if p.Name == "" {
		errs.Add("name", "is required")
	}
	if !p.Category.Valid() {
		errs.Add("category", "is invalid")
	}
	if p.SalePrice < 0 {
		errs.Add("salePrice", "must not be negative")
	}
	if p.CostPrice < 0 {
		errs.Add("costPrice", "must not be negative")
	}
	if p.StockQuantity < 0 {
		errs.Add("stockQuantity", "must not be negative")
	}

	return errs.Err()
}

// PrepareBrand validates a brand.
func PrepareBrand(b *models.Brand) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return models.ValidationErrors{{Field: "name", Message: "is required"}}
	}
	return nil
}

// PrepareService validates a service.
func PrepareService(s *models.Service) error {
	var errs models.ValidationErrors

	s.Name = strings.TrimSpace(s.Name)
	s.Price = masks.RoundCents(s.Price)

	if s.Name == "" {
		errs.Add("name", "is required")
	}
	if s.Price < 0 {
		errs.Add("price", "must not be negative")
	}
	return errs.Err()
}

// PreparePrescription validates a standalone prescription.
func PreparePrescription(p *models.Prescription) error {
	p.Doctor = strings.TrimSpace(p.Doctor)
	return masks.ValidatePrescription(*p)
}
