package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/internal/service/payments"
	"github.com/mamadbah2/optica/internal/service/sales"
)

// SalesHandler serves the sale list and detail screens, payments and the calculator.
type SalesHandler struct {
	sales    *ResourceHandler[models.Sale]
	payments *payments.Service
	logger   *zap.Logger
}

// NewSalesHandler constructs the handler.
func NewSalesHandler(salesResource *ResourceHandler[models.Sale], paymentSvc *payments.Service, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{sales: salesResource, payments: paymentSvc, logger: logger}
}

// Mount registers the routes on group.
func (h *SalesHandler) Mount(group *gin.RouterGroup) {
	group.GET("", h.sales.List)
	group.POST("/quote", h.Quote)
	group.GET("/:id", h.sales.Get)
	group.GET("/:id/payments", h.ListPayments)
	group.POST("/:id/payments", h.RegisterPayment)
	group.GET("/:id/balance", h.Balance)
}

type quoteRequest struct {
	Items           []models.SaleItem    `json:"items"`
	Services        []models.SaleService `json:"services"`
	Discount        masks.Money          `json:"discount"`
	DiscountPercent *float64             `json:"discountPercent"`
}

type quoteResponse struct {
	models.Quote
	Formatted map[string]string `json:"formatted"`
}

// Quote computes subtotal, discount and total for an ad-hoc sale form.
func (h *SalesHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}

	if err := sales.ValidateLines(req.Items, req.Services); err != nil {
		respondError(c, h.logger, err)
		return
	}

	discount := float64(req.Discount)
	if req.DiscountPercent != nil {
		d, err := sales.DiscountFromPercent(sales.Subtotal(req.Items, req.Services), *req.DiscountPercent)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		discount = d
	}

	quote := sales.QuoteFor(req.Items, req.Services, discount)
	c.JSON(http.StatusOK, quoteResponse{
		Quote: quote,
		Formatted: map[string]string{
			"subtotal": masks.FormatMoney(quote.Subtotal),
			"discount": masks.FormatMoney(quote.Discount),
			"total":    masks.FormatMoney(quote.Total),
		},
	})
}

// ListPayments serves the payments tab of a sale.
func (h *SalesHandler) ListPayments(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	list, err := h.payments.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type paymentRequest struct {
	Amount       masks.Money          `json:"amount"`
	Method       models.PaymentMethod `json:"method" binding:"required"`
	Installments int                  `json:"installments"`
	PaidAt       time.Time            `json:"paidAt"`
}

// RegisterPayment records a payment against the sale.
func (h *SalesHandler) RegisterPayment(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}

	created, err := h.payments.Register(c.Request.Context(), id, models.Payment{
		Amount:       float64(req.Amount),
		Method:       req.Method,
		Installments: req.Installments,
		PaidAt:       req.PaidAt,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created, "toast": successToast("Payment registered")})
}

// Balance serves the balance widget of a sale.
func (h *SalesHandler) Balance(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	summary, err := h.payments.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
