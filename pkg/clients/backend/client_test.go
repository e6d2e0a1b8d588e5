package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/optica/internal/config"
	"github.com/mamadbah2/optica/internal/domain/models"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, message string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"message":   message,
		"data":      data,
		"timestamp": time.Now().UTC(),
		"path":      "/test",
	}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Token: "secret", Timeout: 2 * time.Second}, nil)
}

func TestListSendsPaginationAndSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("size"))
		assert.Equal(t, "ana", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		writeEnvelope(t, w, http.StatusOK, "ok", models.Page[models.Client]{
			Content:       []models.Client{{ID: 1, Name: "Ana"}},
			Page:          2,
			Size:          5,
			TotalElements: 11,
			TotalPages:    3,
		})
	})

	page, err := List[models.Client](context.Background(), client, "clients", models.ListQuery{Page: 2, Size: 5, Search: "  ana "})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Ana", page.Content[0].Name)
	assert.Equal(t, int64(11), page.TotalElements)
	assert.False(t, page.HasNext())
}

func TestListOmitsEmptySearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["search"]
		assert.False(t, ok)
		writeEnvelope(t, w, http.StatusOK, "ok", models.Page[models.Brand]{})
	})

	_, err := List[models.Brand](context.Background(), client, "brands", models.ListQuery{Size: 10})
	require.NoError(t, err)
}

func TestListAllWalksPages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "0":
			writeEnvelope(t, w, http.StatusOK, "", models.Page[models.Brand]{Content: []models.Brand{{ID: 1}, {ID: 2}}, Page: 0, TotalPages: 2})
		case "1":
			writeEnvelope(t, w, http.StatusOK, "", models.Page[models.Brand]{Content: []models.Brand{{ID: 3}}, Page: 1, TotalPages: 2})
		default:
			t.Fatalf("unexpected page %s", page)
		}
	})

	all, err := ListAll[models.Brand](context.Background(), client, "brands", 2)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateAndUpdate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var brand models.Brand
		require.NoError(t, json.NewDecoder(r.Body).Decode(&brand))
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/brands", r.URL.Path)
			brand.ID = 9
			writeEnvelope(t, w, http.StatusCreated, "created", brand)
		case http.MethodPut:
			assert.Equal(t, "/brands/9", r.URL.Path)
			writeEnvelope(t, w, http.StatusOK, "updated", brand)
		}
	})

	created, err := Create(context.Background(), client, "brands", models.Brand{Name: "Ray-Ban"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)

	created.Name = "Oakley"
	updated, err := Update(context.Background(), client, "brands", created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, "Oakley", updated.Name)
}

func TestDeleteNoContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/products/4", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, Delete(context.Background(), client, "products", 4))
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadGateway, ErrUpstream},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(t, w, tc.status, "backend said no", nil)
			})

			_, err := Get[models.Client](context.Background(), client, "clients", 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, "backend said no", apiErr.UserMessage())
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	_, err := Get[models.Client](context.Background(), client, "clients", 1)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func slowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
			writeEnvelope(t, w, http.StatusOK, "", models.Client{ID: 1})
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientTimeout(t *testing.T) {
	srv := slowServer(t, time.Second)

	client := NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	_, err := Get[models.Client](context.Background(), client, "clients", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "GET /clients/1", apiErr.Operation)
}

func TestContextDeadline(t *testing.T) {
	srv := slowServer(t, time.Second)

	client := NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Get[models.Client](ctx, client, "clients", 1)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestMalformedData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, http.StatusOK, "", "not an object")
	})

	_, err := Get[models.Client](context.Background(), client, "clients", 1)
	assert.ErrorIs(t, err, ErrBadResponse)
}
