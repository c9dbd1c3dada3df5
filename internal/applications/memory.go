package applications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jobportal/jobportal-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used by unit tests. Like the
// Mongo implementation it enforces the (job, applicant) uniqueness at insert.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*models.Application
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*models.Application)}
}

func (m *MemoryRepository) Insert(ctx context.Context, a *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.store {
		if e.Job == a.Job && e.Applicant == a.Applicant {
			return ErrAlreadyApplied
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = models.StatusApplied
	}
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *MemoryRepository) FindByApplicant(ctx context.Context, applicant primitive.ObjectID) ([]models.Application, error) {
	return m.find(func(a *models.Application) bool { return a.Applicant == applicant }), nil
}

func (m *MemoryRepository) FindByJob(ctx context.Context, job primitive.ObjectID) ([]models.Application, error) {
	return m.find(func(a *models.Application) bool { return a.Job == job }), nil
}

func (m *MemoryRepository) find(match func(*models.Application) bool) []models.Application {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Application{}
	for _, a := range m.store {
		if match(a) {
			out = append(out, *a)
		}
	}
	// newest first
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out
}

func (m *MemoryRepository) Exists(ctx context.Context, job, applicant primitive.ObjectID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if a.Job == job && a.Applicant == applicant {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, note *string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Status = status
	if note != nil {
		a.Note = *note
	}
	cp := *a
	return &cp, nil
}
