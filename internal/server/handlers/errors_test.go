package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/internal/service/sales"
	"github.com/mamadbah2/optica/internal/service/wizard"
	"github.com/mamadbah2/optica/pkg/clients/backend"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"draft missing", models.ErrDraftNotFound, http.StatusNotFound},
		{"backend 404", &backend.APIError{Sentinel: backend.ErrNotFound, Status: 404}, http.StatusNotFound},
		{"backend 422", &backend.APIError{Sentinel: backend.ErrValidation, Status: 422}, http.StatusBadRequest},
		{"mask", fmt.Errorf("discount: %w", masks.ErrRange), http.StatusBadRequest},
		{"wrong step", fmt.Errorf("at CLIENT: %w", wizard.ErrWrongStep), http.StatusConflict},
		{"stock", sales.ErrInsufficientStock, http.StatusConflict},
		{"timeout", &backend.APIError{Sentinel: backend.ErrTimeout}, http.StatusGatewayTimeout},
		{"unavailable", &backend.APIError{Sentinel: backend.ErrUnavailable}, http.StatusServiceUnavailable},
		{"upstream", &backend.APIError{Sentinel: backend.ErrUpstream, Status: 500}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, toast := classify(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, "error", toast.Level)
			assert.NotEmpty(t, toast.Message)
		})
	}
}

func TestClassifyValidationFields(t *testing.T) {
	var errs models.ValidationErrors
	errs.Add("discount", "must not be negative")

	status, toast := classify(fmt.Errorf("save: %w", errs.Err()))
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, toast.Fields, 1)
	assert.Equal(t, "discount", toast.Fields[0].Field)
}

func TestClassifyHidesInternalErrors(t *testing.T) {
	_, toast := classify(errors.New("dial tcp 10.0.0.1: secret detail"))
	assert.Equal(t, "unexpected error", toast.Message)
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := parseID(c, zap.NewNop(), "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, want := range map[string]int{
		"/items/12": http.StatusOK,
		"/items/0":  http.StatusBadRequest,
		"/items/ab": http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
