package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/cache"
	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/pkg/clients/backend"
)

// Paging bounds list screen page sizes.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// Normalize clamps q into the accepted range.
func (p Paging) Normalize(q models.ListQuery) models.ListQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	switch {
	case q.Size <= 0:
		q.Size = p.DefaultSize
	case p.MaxSize > 0 && q.Size > p.MaxSize:
		q.Size = p.MaxSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Resource serves the list/detail/create/update/delete screens of one entity.
type Resource[T any] struct {
	name    string
	client  backend.Client
	cache   cache.Cache
	paging  Paging
	prepare func(*T) error
	logger  *zap.Logger
}

// NewResource wires a resource service. prepare normalizes and validates
// payloads before they are written and may be nil.
func NewResource[T any](name string, client backend.Client, c cache.Cache, paging Paging, prepare func(*T) error, logger *zap.Logger) *Resource[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.New(0)
	}
	return &Resource[T]{
		name:    name,
		client:  client,
		cache:   c,
		paging:  paging,
		prepare: prepare,
		logger:  logger,
	}
}

// Name returns the backend resource path.
func (r *Resource[T]) Name() string {
	return r.name
}

// List returns one page, served from cache when fresh.
func (r *Resource[T]) List(ctx context.Context, q models.ListQuery) (models.Page[T], error) {
	q = r.paging.Normalize(q)
	key := fmt.Sprintf("%s|%d|%d|%s", r.name, q.Page, q.Size, q.Search)

	if cached, ok := r.cache.Get(key); ok {
		if page, ok := cached.(models.Page[T]); ok {
			return page, nil
		}
	}

	page, err := backend.List[T](ctx, r.client, r.name, q)
	if err != nil {
		return page, fmt.Errorf("list %s: %w", r.name, err)
	}
	if page.Content == nil {
		page.Content = []T{}
	}

	r.cache.Set(key, page)
	return page, nil
}

// Get returns one entity by id.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	out, err := backend.Get[T](ctx, r.client, r.name, id)
	if err != nil {
		return out, fmt.Errorf("get %s %d: %w", r.name, id, err)
	}
	return out, nil
}

// Create validates and posts a new entity.
func (r *Resource[T]) Create(ctx context.Context, body T) (T, error) {
	if err := r.runPrepare(&body); err != nil {
		return body, err
	}

	out, err := backend.Create(ctx, r.client, r.name, body)
	if err != nil {
		return out, fmt.Errorf("create %s: %w", r.name, err)
	}

	r.Invalidate()
	r.logger.Info("entity created", zap.String("resource", r.name))
	return out, nil
}

// Update validates and replaces an entity.
func (r *Resource[T]) Update(ctx context.Context, id int64, body T) (T, error) {
	if err := r.runPrepare(&body); err != nil {
		return body, err
	}

	out, err := backend.Update(ctx, r.client, r.name, id, body)
	if err != nil {
		return out, fmt.Errorf("update %s %d: %w", r.name, id, err)
	}

	r.Invalidate()
	r.logger.Info("entity updated", zap.String("resource", r.name), zap.Int64("id", id))
	return out, nil
}

// Delete removes an entity.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if err := backend.Delete(ctx, r.client, r.name, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", r.name, id, err)
	}

	r.Invalidate()
	r.logger.Info("entity deleted", zap.String("resource", r.name), zap.Int64("id", id))
	return nil
}

// Invalidate drops every cached page of the resource.
func (r *Resource[T]) Invalidate() {
	r.cache.InvalidatePrefix(r.name + "|")
}

func (r *Resource[T]) runPrepare(body *T) error {
	if r.prepare == nil {
		return nil
	}
	if err := r.prepare(body); err != nil {
		return fmt.Errorf("validate %s: %w", r.name, err)
	}
	return nil
}
