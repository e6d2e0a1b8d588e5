// Package wizard drives the multi-step sale creation flow.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/catalog"
	"github.com/mamadbah2/optica/internal/service/sales"
)

// ErrWrongStep is returned when an operation does not belong to the draft's current step.
var ErrWrongStep = errors.New("operation not allowed at the current wizard step")

var stepOrder = []models.WizardStep{models.StepClient, models.StepItems, models.StepProtocol, models.StepReview}

// Notifier sends receipts for submitted sales. Implementations must not block for long.
type Notifier interface {
	SaleReceipt(ctx context.Context, phone string, sale models.Sale)
}

// AddItemRequest adds a product line.
type AddItemRequest struct {
	ProductID    int64                `json:"productId" binding:"required"`
	Quantity     int                  `json:"quantity" binding:"required"`
	FrameDetails *models.FrameDetails `json:"frameDetails"`
}

// AddServiceRequest adds a service line.
type AddServiceRequest struct {
	ServiceID int64 `json:"serviceId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// View is what the wizard screens render.
type View struct {
	Draft models.SaleDraft    `json:"draft"`
	Quote models.Quote        `json:"quote"`
	Steps []models.WizardStep `json:"steps"`
}

// Service implements the wizard operations on top of the catalog.
type Service struct {
	store    DraftStore
	catalog  *catalog.Catalog
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	// locks holds one *sync.Mutex per draft id.
	locks    sync.Map
	receipts sync.WaitGroup
}

// NewService wires a wizard. notifier may be nil.
func NewService(store DraftStore, cat *catalog.Catalog, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		catalog:  cat,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Start opens a new draft at the client step.
func (s *Service) Start(ctx context.Context) (View, error) {
	now := s.now().UTC()
	draft := models.SaleDraft{
		ID:        s.newID(),
		Step:      models.StepClient,
		Items:     []models.SaleItem{},
		Services:  []models.SaleService{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, draft); err != nil {
		return View{}, fmt.Errorf("save draft: %w", err)
	}
	s.logger.Debug("draft started", zap.String("draft_id", draft.ID))
	return viewOf(draft), nil
}

// Get returns the current draft view.
func (s *Service) Get(ctx context.Context, id string) (View, error) {
	draft, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return viewOf(draft), nil
}

// SetClient binds the sale to a backend client and advances to the items step.
func (s *Service) SetClient(ctx context.Context, id string, clientID int64) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if err := requireStep(d, models.StepClient); err != nil {
			return err
		}
		client, err := s.catalog.Clients.Get(ctx, clientID)
		if err != nil {
			return err
		}
		d.ClientID = client.ID
		d.ClientName = client.Name
		d.Phone = client.Phone
		d.Step = models.StepItems
		return nil
	})
}

// AddItem adds or merges a product line after the stock and frame checks.
func (s *Service) AddItem(ctx context.Context, id string, req AddItemRequest) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if err := requireStep(d, models.StepItems); err != nil {
			return err
		}
		product, err := s.catalog.Products.Get(ctx, req.ProductID)
		if err != nil {
			return err
		}

		idx := -1
		inCart := 0
		for i, item := range d.Items {
			if item.ProductID == product.ID {
				idx = i
				inCart = item.Quantity
				break
			}
		}

		if err := sales.CheckStock(product, req.Quantity, inCart); err != nil {
			return err
		}

		item := models.SaleItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Category:     product.Category,
			UnitPrice:    product.SalePrice,
			Quantity:     req.Quantity + inCart,
			FrameDetails: req.FrameDetails,
		}
		if idx >= 0 && item.FrameDetails == nil {
			item.FrameDetails = d.Items[idx].FrameDetails
		}
		if err := sales.ValidateFrameDetails(item); err != nil {
			return err
		}

		if idx >= 0 {
			d.Items[idx] = item
		} else {
			d.Items = append(d.Items, item)
		}
		return nil
	})
}

// RemoveItem drops a product line. The protocol is discarded once no lens remains.
func (s *Service) RemoveItem(ctx context.Context, id string, productID int64) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if err := requireStep(d, models.StepItems); err != nil {
			return err
		}
		kept := d.Items[:0]
		for _, item := range d.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		d.Items = kept
		if !sales.RequiresProtocol(d.Items) {
			d.Protocol = nil
		}
		return nil
	})
}

// AddService adds or merges a service line. Quantity defaults to one.
func (s *Service) AddService(ctx context.Context, id string, req AddServiceRequest) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if err := requireStep(d, models.StepItems); err != nil {
			return err
		}
		qty := req.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return sales.ErrInvalidQuantity
		}
		svc, err := s.catalog.Services.Get(ctx, req.ServiceID)
		if err != nil {
			return err
		}

		for i, line := range d.Services {
			if line.ServiceID == svc.ID {
				d.Services[i].Quantity += qty
				return nil
			}
		}
		d.Services = append(d.Services, models.SaleService{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Price:       svc.Price,
			Quantity:    qty,
		})
		return nil
	})
}

// RemoveService drops a service line.
func (s *Service) RemoveService(ctx context.Context, id string, serviceID int64) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if err := requireStep(d, models.StepItems); err != nil {
			return err
		}
		kept := d.Services[:0]
		for _, line := range d.Services {
			if line.ServiceID != serviceID {
				kept = append(kept, line)
			}
		}
		d.Services = kept
		return nil
	})
}

// SetDiscount stores the discount amount. It may exceed the subtotal; the total clamps at zero.
func (s *Service) SetDiscount(ctx context.Context, id string, amount float64) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if err := requireStep(d, models.StepItems, models.StepReview); err != nil {
			return err
		}
		if amount < 0 {
			return models.ValidationErrors{{Field: "discount", Message: "must not be negative"}}
		}
		d.Discount = amount
		return nil
	})
}

// SetProtocol attaches the lab protocol while on the protocol step.
func (s *Service) SetProtocol(ctx context.Context, id string, protocol models.Protocol) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if err := requireStep(d, models.StepProtocol); err != nil {
			return err
		}
		if err := sales.ValidateProtocol(protocol); err != nil {
			return err
		}
		protocol.Prescription.ClientID = d.ClientID
		d.Protocol = &protocol
		return nil
	})
}

// Next validates the current step and moves forward.
func (s *Service) Next(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		var errs models.ValidationErrors
		switch d.Step {
		case models.StepClient:
			if d.ClientID <= 0 {
				errs.Add("clientId", "select a client first")
			}
		case models.StepItems:
			if len(d.Items) == 0 && len(d.Services) == 0 {
				errs.Add("items", "at least one product or service is required")
			}
			if !sales.RequiresProtocol(d.Items) {
				d.Protocol = nil
			}
		case models.StepProtocol:
			if d.Protocol == nil {
				errs.Add("protocol", "is required when the sale contains lenses")
			}
		case models.StepReview:
			return fmt.Errorf("review is the last step: %w", ErrWrongStep)
		}
		if err := errs.Err(); err != nil {
			return err
		}
		d.Step = nextStep(*d)
		return nil
	})
}

// Back moves to the previous step.
func (s *Service) Back(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, func(d *models.SaleDraft) error {
		if d.Step == models.StepClient {
			return fmt.Errorf("client is the first step: %w", ErrWrongStep)
		}
		d.Step = previousStep(*d)
		return nil
	})
}

// Submit creates the sale in the backend and discards the draft. Concurrent submits
// of one draft are serialized, so only the first one creates a sale.
func (s *Service) Submit(ctx context.Context, id string, method models.PaymentMethod) (models.Sale, error) {
	unlock := s.lock(id)
	defer unlock()

	draft, err := s.load(ctx, id)
	if err != nil {
		return models.Sale{}, err
	}
	if err := requireStep(&draft, models.StepReview); err != nil {
		return models.Sale{}, err
	}

	sale := sales.FromDraft(draft, method)
	if err := sales.Validate(sale); err != nil {
		return models.Sale{}, err
	}

	created, err := s.catalog.Sales.Create(ctx, sale)
	if err != nil {
		return models.Sale{}, err
	}
	s.catalog.Products.Invalidate()

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete submitted draft", zap.String("draft_id", id), zap.Error(err))
	} else {
		s.locks.Delete(id)
	}

	s.logger.Info("sale submitted",
		zap.Int64("sale_id", created.ID),
		zap.Int64("client_id", created.ClientID),
		zap.Float64("total", created.Total))

	if s.notifier != nil && draft.Phone != "" {
		s.receipts.Add(1)
		go func(ctx context.Context) {
			defer s.receipts.Done()
			s.notifier.SaleReceipt(ctx, draft.Phone, created)
		}(context.WithoutCancel(ctx))
	}
	return created, nil
}

// Wait blocks until the receipts started by Submit have finished.
func (s *Service) Wait() {
	s.receipts.Wait()
}

// Cancel discards a draft.
func (s *Service) Cancel(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	s.locks.Delete(id)
	return nil
}

func (s *Service) lock(id string) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) load(ctx context.Context, id string) (models.SaleDraft, error) {
	draft, err := s.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrDraftNotFound) {
			return models.SaleDraft{}, err
		}
		return models.SaleDraft{}, fmt.Errorf("load draft %s: %w", id, err)
	}
	return draft, nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(d *models.SaleDraft) error) (View, error) {
	unlock := s.lock(id)
	defer unlock()

	draft, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := fn(&draft); err != nil {
		return View{}, err
	}
	draft.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, draft); err != nil {
		return View{}, fmt.Errorf("save draft: %w", err)
	}
	return viewOf(draft), nil
}

func requireStep(d *models.SaleDraft, allowed ...models.WizardStep) error {
	for _, step := range allowed {
		if d.Step == step {
			return nil
		}
	}
	return fmt.Errorf("draft is at step %s: %w", d.Step, ErrWrongStep)
}

// Steps lists the steps the draft goes through; PROTOCOL only appears with lenses.
func Steps(d models.SaleDraft) []models.WizardStep {
	steps := make([]models.WizardStep, 0, len(stepOrder))
	for _, step := range stepOrder {
		if step == models.StepProtocol && !sales.RequiresProtocol(d.Items) {
			continue
		}
		steps = append(steps, step)
	}
	return steps
}

func nextStep(d models.SaleDraft) models.WizardStep {
	steps := Steps(d)
	for i, step := range steps {
		if step == d.Step && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return d.Step
}

func previousStep(d models.SaleDraft) models.WizardStep {
	steps := Steps(d)
	for i, step := range steps {
		if step == d.Step && i > 0 {
			return steps[i-1]
		}
	}
	return models.StepItems
}

func viewOf(d models.SaleDraft) View {
	return View{
		Draft: d,
		Quote: sales.QuoteFor(d.Items, d.Services, d.Discount),
		Steps: Steps(d),
	}
}
