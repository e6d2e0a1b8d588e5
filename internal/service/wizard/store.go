package wizard

import (
	"context"
	"sync"

	"github.com/mamadbah2/optica/internal/domain/models"
)

// DraftStore persists in-progress sales between wizard requests.
type DraftStore interface {
	Save(ctx context.Context, draft models.SaleDraft) error
	Load(ctx context.Context, id string) (models.SaleDraft, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps drafts in process memory. Used when MongoDB is not configured.
type MemoryStore struct {
	drafts map[string]models.SaleDraft
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]models.SaleDraft),
	}
}

// Save stores a copy of the draft.
func (s *MemoryStore) Save(_ context.Context, draft models.SaleDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = cloneDraft(draft)
	return nil
}

// Load retrieves a draft.
func (s *MemoryStore) Load(_ context.Context, id string) (models.SaleDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, exists := s.drafts[id]
	if !exists {
		return models.SaleDraft{}, models.ErrDraftNotFound
	}
	return cloneDraft(draft), nil
}

// Delete removes a draft. Unknown ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

func cloneDraft(d models.SaleDraft) models.SaleDraft {
	items := make([]models.SaleItem, len(d.Items))
	for i, item := range d.Items {
		if item.FrameDetails != nil {
			frame := *item.FrameDetails
			item.FrameDetails = &frame
		}
		items[i] = item
	}
	d.Items = items
	d.Services = append([]models.SaleService{}, d.Services...)
	if d.Protocol != nil {
		protocol := *d.Protocol
		d.Protocol = &protocol
	}
	return d
}
