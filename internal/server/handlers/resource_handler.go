package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/catalog"
)

// ResourceHandler serves the CRUD screens of one catalog entity.
type ResourceHandler[T any] struct {
	svc    *catalog.Resource[T]
	label  string
	logger *zap.Logger
	// decode reads the request body; nil binds T directly.
	decode func(c *gin.Context) (T, error)
}

// NewResourceHandler constructs the handler. label is used in toasts ("Client created").
func NewResourceHandler[T any](svc *catalog.Resource[T], label string, logger *zap.Logger) *ResourceHandler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceHandler[T]{svc: svc, label: label, logger: logger}
}

// NewPrescriptionHandler serves prescriptions, reading eye values from masked form input.
func NewPrescriptionHandler(svc *catalog.Resource[models.Prescription], logger *zap.Logger) *ResourceHandler[models.Prescription] {
	h := NewResourceHandler(svc, "Prescription", logger)
	h.decode = func(c *gin.Context) (models.Prescription, error) {
		var form prescriptionForm
		if err := c.ShouldBindJSON(&form); err != nil {
			return models.Prescription{}, err
		}
		return form.model(), nil
	}
	return h
}

func (h *ResourceHandler[T]) bind(c *gin.Context) (T, bool) {
	var (
		body T
		err  error
	)
	if h.decode != nil {
		body, err = h.decode(c)
	} else {
		err = c.ShouldBindJSON(&body)
	}
	if err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return body, false
	}
	return body, true
}

// Mount registers the routes on group.
func (h *ResourceHandler[T]) Mount(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// List serves GET with page, size and search.
func (h *ResourceHandler[T]) List(c *gin.Context) {
	q, ok := bindListQuery(c, h.logger)
	if !ok {
		return
	}
	page, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get serves the detail screen.
func (h *ResourceHandler[T]) Get(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Create handles the create form.
func (h *ResourceHandler[T]) Create(c *gin.Context) {
	body, ok := h.bind(c)
	if !ok {
		return
	}
	out, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": out, "toast": successToast(h.label + " created")})
}

// Update handles the edit form.
func (h *ResourceHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	body, ok := h.bind(c)
	if !ok {
		return
	}
	out, err := h.svc.Update(c.Request.Context(), id, body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "toast": successToast(h.label + " updated")})
}

// Delete handles the delete confirmation.
func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"toast": successToast(h.label + " deleted")})
}
