package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/internal/service/wizard"
)

// WizardHandler serves the sale creation wizard.
type WizardHandler struct {
	svc    *wizard.Service
	logger *zap.Logger
}

// NewWizardHandler constructs the handler.
func NewWizardHandler(svc *wizard.Service, logger *zap.Logger) *WizardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WizardHandler{svc: svc, logger: logger}
}

// Mount registers the routes on group.
func (h *WizardHandler) Mount(group *gin.RouterGroup) {
	group.POST("", h.Start)
	group.GET("/:id", h.Get)
	group.DELETE("/:id", h.Cancel)
	group.PUT("/:id/client", h.SetClient)
	group.POST("/:id/items", h.AddItem)
	group.DELETE("/:id/items/:productId", h.RemoveItem)
	group.POST("/:id/services", h.AddService)
	group.DELETE("/:id/services/:serviceId", h.RemoveService)
	group.PUT("/:id/discount", h.SetDiscount)
	group.PUT("/:id/protocol", h.SetProtocol)
	group.POST("/:id/next", h.Next)
	group.POST("/:id/back", h.Back)
	group.POST("/:id/submit", h.Submit)
}

func (h *WizardHandler) reply(c *gin.Context, status int, view wizard.View, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, view)
}

// Start opens a draft.
func (h *WizardHandler) Start(c *gin.Context) {
	view, err := h.svc.Start(c.Request.Context())
	h.reply(c, http.StatusCreated, view, err)
}

// Get returns a draft.
func (h *WizardHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	h.reply(c, http.StatusOK, view, err)
}

// Cancel discards a draft.
func (h *WizardHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"toast": successToast("Sale discarded")})
}

type clientRequest struct {
	ClientID int64 `json:"clientId" binding:"required"`
}

// SetClient selects the client.
func (h *WizardHandler) SetClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "clientId is required", err)
		return
	}
	view, err := h.svc.SetClient(c.Request.Context(), c.Param("id"), req.ClientID)
	h.reply(c, http.StatusOK, view, err)
}

// AddItem adds a product line.
func (h *WizardHandler) AddItem(c *gin.Context) {
	var req itemForm
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "productId and a positive quantity are required", err)
		return
	}
	view, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), req.request())
	h.reply(c, http.StatusOK, view, err)
}

// RemoveItem drops a product line.
func (h *WizardHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseID(c, h.logger, "productId")
	if !ok {
		return
	}
	view, err := h.svc.RemoveItem(c.Request.Context(), c.Param("id"), productID)
	h.reply(c, http.StatusOK, view, err)
}

// AddService adds a service line.
func (h *WizardHandler) AddService(c *gin.Context) {
	var req serviceForm
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "serviceId is required", err)
		return
	}
	view, err := h.svc.AddService(c.Request.Context(), c.Param("id"), req.request())
	h.reply(c, http.StatusOK, view, err)
}

// RemoveService drops a service line.
func (h *WizardHandler) RemoveService(c *gin.Context) {
	serviceID, ok := parseID(c, h.logger, "serviceId")
	if !ok {
		return
	}
	view, err := h.svc.RemoveService(c.Request.Context(), c.Param("id"), serviceID)
	h.reply(c, http.StatusOK, view, err)
}

type discountRequest struct {
	Amount masks.Money `json:"amount"`
}

// SetDiscount accepts a masked amount such as "R$ 10,00".
func (h *WizardHandler) SetDiscount(c *gin.Context) {
	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid discount", err)
		return
	}
	view, err := h.svc.SetDiscount(c.Request.Context(), c.Param("id"), float64(req.Amount))
	h.reply(c, http.StatusOK, view, err)
}

// SetProtocol attaches the lab protocol.
func (h *WizardHandler) SetProtocol(c *gin.Context) {
	var req protocolForm
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid protocol", err)
		return
	}
	view, err := h.svc.SetProtocol(c.Request.Context(), c.Param("id"), req.model())
	h.reply(c, http.StatusOK, view, err)
}

// Next advances the wizard.
func (h *WizardHandler) Next(c *gin.Context) {
	view, err := h.svc.Next(c.Request.Context(), c.Param("id"))
	h.reply(c, http.StatusOK, view, err)
}

// Back returns to the previous step.
func (h *WizardHandler) Back(c *gin.Context) {
	view, err := h.svc.Back(c.Request.Context(), c.Param("id"))
	h.reply(c, http.StatusOK, view, err)
}

type submitRequest struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// Submit creates the sale.
func (h *WizardHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "paymentMethod is required", err)
		return
	}
	sale, err := h.svc.Submit(c.Request.Context(), c.Param("id"), req.PaymentMethod)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": sale, "toast": successToast("Sale created")})
}
