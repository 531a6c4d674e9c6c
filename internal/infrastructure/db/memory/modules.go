package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// ModuleRepository keeps the catalog in insertion order.
type ModuleRepository struct {
	mu      sync.RWMutex
	modules []domain.Module
	seq     int
}

func NewModuleRepository() *ModuleRepository {
	return &ModuleRepository{}
}

func cloneModule(m domain.Module) domain.Module {
	m.Topics = append([]string(nil), m.Topics...)
	return m
}

func (r *ModuleRepository) Create(_ context.Context, m *domain.Module) (*domain.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.modules {
		if existing.Slug == m.Slug {
			return nil, domain.ErrModuleExists
		}
	}

	r.seq++
	stored := cloneModule(*m)
	stored.ID = "m" + strconv.Itoa(r.seq)
	r.modules = append(r.modules, stored)

	out := cloneModule(stored)
	return &out, nil
}

func (r *ModuleRepository) ListPublished(_ context.Context) ([]domain.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Module, 0, len(r.modules))
	for i := len(r.modules) - 1; i >= 0; i-- {
		if r.modules[i].Published {
			out = append(out, cloneModule(r.modules[i]))
		}
	}
	// Insertion order already breaks ties between equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
