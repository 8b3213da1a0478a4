package appointments

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository used by unit tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	seq   int
	store map[string]*Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: map[string]*Appointment{}}
}

func (m *MemoryRepository) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		m.seq++
		a.ID = fmt.Sprintf("appt_%d", m.seq)
	}
	a.CreatedAt = time.Now().UTC()
	cp := *a
	m.store[a.ID] = &cp
	return a, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Appointment
	for _, a := range m.store {
		if a.UserID == ownerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortByDate(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) ListByStatus(ctx context.Context, status string) ([]*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Appointment
	for _, a := range m.store {
		if a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *MemoryRepository) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.store[id]; ok {
		a.Status = status
	}
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

func sortByDate(list []*Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Time < list[j].Time
	})
}
