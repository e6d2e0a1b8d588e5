package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/config"
	"github.com/mamadbah2/optica/internal/domain/models"
)

// Client is the transport used by the console services.
type Client interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// APIClient is a resty-backed implementation of Client that unwraps response envelopes.
type APIClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds a backend client from configuration.
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{httpClient: restyClient, logger: logger}
}

// Do performs the request and decodes envelope data into out (which may be nil).
func (c *APIClient) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := fmt.Sprintf("%s /%s", method, strings.TrimPrefix(path, "/"))

	result := new(models.Envelope[json.RawMessage])
	failure := new(models.Envelope[json.RawMessage])

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(failure)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, "/"+strings.TrimPrefix(path, "/"))
	if err != nil {
		c.logger.Warn("backend request failed", zap.String("op", op), zap.Error(err))
		return transportError(op, err)
	}

	c.logger.Debug("backend request completed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode() >= http.StatusBadRequest {
		return &APIError{
			Sentinel:  sentinelForStatus(resp.StatusCode()),
			Operation: op,
			Status:    resp.StatusCode(),
			Message:   failure.Message,
			Path:      failure.Path,
		}
	}

	if out == nil || resp.StatusCode() == http.StatusNoContent || len(result.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(result.Data, out); err != nil {
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Status: resp.StatusCode(), Err: err}
	}
	return nil
}

// List fetches one page of a resource.
func List[T any](ctx context.Context, c Client, resource string, q models.ListQuery) (models.Page[T], error) {
	var page models.Page[T]

	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		values.Set("size", strconv.Itoa(q.Size))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		values.Set("search", search)
	}

	if err := c.Do(ctx, http.MethodGet, resource, values, nil, &page); err != nil {
		return page, err
	}
	return page, nil
}

// ListAll walks every page of a resource with the given page size.
func ListAll[T any](ctx context.Context, c Client, resource string, size int) ([]T, error) {
	var all []T
	q := models.ListQuery{Size: size}
	for {
		page, err := List[T](ctx, c, resource, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Content...)
		if !page.HasNext() || len(page.Content) == 0 {
			return all, nil
		}
		q.Page++
	}
}

// Get fetches one resource by id.
func Get[T any](ctx context.Context, c Client, resource string, id int64) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodGet, itemPath(resource, id), nil, nil, &out)
	return out, err
}

// Create posts body to the resource collection and returns the created entity.
func Create[T any](ctx context.Context, c Client, resource string, body T) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPost, resource, nil, body, &out)
	return out, err
}

// Update replaces the resource with the given id.
func Update[T any](ctx context.Context, c Client, resource string, id int64, body T) (T, error) {
	var out T
	err := c.Do(ctx, http.MethodPut, itemPath(resource, id), nil, body, &out)
	return out, err
}

// Delete removes the resource with the given id.
func Delete(ctx context.Context, c Client, resource string, id int64) error {
	return c.Do(ctx, http.MethodDelete, itemPath(resource, id), nil, nil, nil)
}

func itemPath(resource string, id int64) string {
	return fmt.Sprintf("%s/%d", strings.TrimSuffix(resource, "/"), id)
}
