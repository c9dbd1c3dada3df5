package jobs

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jobportal/jobportal-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository used by unit tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]*models.Job
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[primitive.ObjectID]*models.Job)}
}

func (m *MemoryRepository) Insert(ctx context.Context, j *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	cp := *j
	m.store[j.ID] = &cp
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.store[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) ListActive(ctx context.Context, f Filter, now time.Time) ([]models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Job{}
	for _, j := range m.store {
		if j.Deadline.Before(now) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(f.Search)) {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(f.Location)) {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (m *MemoryRepository) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		j.Title = *upd.Title
	}
	if upd.Description != nil {
		j.Description = *upd.Description
	}
	if upd.Skills != nil {
		j.Skills = *upd.Skills
	}
	if upd.Location != nil {
		j.Location = *upd.Location
	}
	if upd.JobType != nil {
		j.JobType = *upd.JobType
	}
	if upd.WorkMode != nil {
		j.WorkMode = *upd.WorkMode
	}
	if upd.Salary != nil {
		j.Salary = *upd.Salary
	}
	if upd.Company != nil {
		j.Company = *upd.Company
	}
	if upd.Logo != nil {
		j.Logo = *upd.Logo
	}
	if upd.Openings != nil {
		j.Openings = *upd.Openings
	}
	if upd.Deadline != nil {
		j.Deadline = *upd.Deadline
	}
	cp := *j
	return &cp, nil
}

func (m *MemoryRepository) FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[primitive.ObjectID]models.JobRef, len(ids))
	for _, id := range ids {
		if j, ok := m.store[id]; ok {
			out[id] = j.Ref()
		}
	}
	return out, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
