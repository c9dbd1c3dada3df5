package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jobportal/jobportal-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotOwner     = errors.New("job belongs to another admin")
)

// UserDirectory resolves creator references for populated responses.
type UserDirectory interface {
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error)
}

// View is a job with its creator populated. Creator is null when the
// creating user was deleted.
type View struct {
	models.Job
	Creator *models.UserRef `json:"createdBy"`
}

// Service encapsulates job-posting business logic
type Service struct {
	repo  Repository
	users UserDirectory
	// adminsEditAny allows any admin to update/delete any posting; when
	// false only the creator may.
	adminsEditAny bool
}

func NewService(r Repository, users UserDirectory, adminsEditAny bool) *Service {
	return &Service{repo: r, users: users, adminsEditAny: adminsEditAny}
}

func validJobType(t string) bool {
	for _, v := range models.JobTypes {
		if v == t {
			return true
		}
	}
	return false
}

func validWorkMode(m string) bool {
	for _, v := range models.WorkModes {
		if v == m {
			return true
		}
	}
	return false
}

// Create validates and persists a posting owned by the given admin.
func (s *Service) Create(ctx context.Context, creator *models.User, j *models.Job) (*models.Job, error) {
	switch {
	case j.Title == "":
		return nil, fmt.Errorf("%w: Please add a job title", ErrInvalidInput)
	case j.Description == "":
		return nil, fmt.Errorf("%w: Please add a job description", ErrInvalidInput)
	case len(j.Skills) == 0:
		return nil, fmt.Errorf("%w: Please add required skills", ErrInvalidInput)
	case j.Location == "":
		return nil, fmt.Errorf("%w: Please add a location", ErrInvalidInput)
	case j.Company == "":
		return nil, fmt.Errorf("%w: Please add a company name", ErrInvalidInput)
	case j.Deadline.IsZero():
		return nil, fmt.Errorf("%w: Please add an application deadline", ErrInvalidInput)
	}
	if !validJobType(j.JobType) {
		return nil, fmt.Errorf("%w: Please select job type", ErrInvalidInput)
	}
	if j.WorkMode != "" && !validWorkMode(j.WorkMode) {
		return nil, fmt.Errorf("%w: unknown work mode %q", ErrInvalidInput, j.WorkMode)
	}

	j.CreatedBy = creator.ID
	if err := s.repo.Insert(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// List returns active postings (deadline not passed) matching the filter,
// with creator identity populated. No pagination: the full result set.
func (s *Service) List(ctx context.Context, f Filter) ([]View, error) {
	list, err := s.repo.ListActive(ctx, f, time.Now())
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, j := range list {
		ids = append(ids, j.CreatedBy)
	}
	refs, err := s.users.FindRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(list))
	for _, j := range list {
		out = append(out, withCreator(j, refs))
	}
	return out, nil
}

// Get returns a single posting with creator populated. The detail view is
// not deadline-filtered.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	j, err := s.repo.Get(ctx, oid)
	if err != nil {
		return nil, err
	}
	refs, err := s.users.FindRefs(ctx, []primitive.ObjectID{j.CreatedBy})
	if err != nil {
		return nil, err
	}
	v := withCreator(*j, refs)
	return &v, nil
}

// Update applies a partial update, honoring the admin-edit policy.
func (s *Service) Update(ctx context.Context, actor *models.User, id string, upd Update) (*models.Job, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if upd.JobType != nil && !validJobType(*upd.JobType) {
		return nil, fmt.Errorf("%w: Please select job type", ErrInvalidInput)
	}
	if upd.WorkMode != nil && *upd.WorkMode != "" && !validWorkMode(*upd.WorkMode) {
		return nil, fmt.Errorf("%w: unknown work mode %q", ErrInvalidInput, *upd.WorkMode)
	}
	if !s.adminsEditAny {
		existing, err := s.repo.Get(ctx, oid)
		if err != nil {
			return nil, err
		}
		if existing.CreatedBy != actor.ID {
			return nil, ErrNotOwner
		}
	}
	return s.repo.Update(ctx, oid, upd)
}

// Delete removes a posting, honoring the admin-edit policy.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if !s.adminsEditAny {
		existing, err := s.repo.Get(ctx, oid)
		if err != nil {
			return err
		}
		if existing.CreatedBy != actor.ID {
			return ErrNotOwner
		}
	}
	return s.repo.Delete(ctx, oid)
}

// Raw returns the bare posting without joins (internal callers).
func (s *Service) Raw(ctx context.Context, id string) (*models.Job, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, oid)
}

func withCreator(j models.Job, refs map[primitive.ObjectID]models.UserRef) View {
	v := View{Job: j}
	if ref, ok := refs[j.CreatedBy]; ok {
		v.Creator = &ref
	}
	return v
}
