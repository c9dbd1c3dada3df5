package applications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jobportal/jobportal-api/internal/jobs"
	"github.com/jobportal/jobportal-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrJobNotFound    = errors.New("job not found")
	ErrDeadlinePassed = errors.New("job application deadline has passed")
)

// JobDirectory is the subset of the job store the application service needs.
type JobDirectory interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.JobRef, error)
}

// UserDirectory resolves applicant references for populated responses.
type UserDirectory interface {
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error)
}

// WithJob is an application with its job joined in. Job is null when the
// posting was deleted.
type WithJob struct {
	models.Application
	Job *models.JobRef `json:"job"`
}

// WithApplicant is an application with its applicant joined in.
type WithApplicant struct {
	models.Application
	Applicant *models.UserRef `json:"applicant"`
}

// StatusUpdate is the result of an admin status change, carrying the joined
// records the notification path needs.
type StatusUpdate struct {
	Application *models.Application
	Applicant   *models.UserRef
	JobTitle    string
}

// Service encapsulates application business logic
type Service struct {
	repo     Repository
	jobStore JobDirectory
	users    UserDirectory
}

func NewService(r Repository, jobStore JobDirectory, users UserDirectory) *Service {
	return &Service{repo: r, jobStore: jobStore, users: users}
}

// Apply submits an application. Precondition order: job exists, deadline not
// passed, no prior application for (job, applicant). The last check is the
// insert itself: the store's unique constraint closes the concurrent
// duplicate-submission race.
func (s *Service) Apply(ctx context.Context, jobID string, applicant *models.User, resume string) (*models.Application, error) {
	if resume == "" {
		return nil, fmt.Errorf("%w: Please provide a resume URL", ErrInvalidInput)
	}
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return nil, ErrJobNotFound
	}
	job, err := s.jobStore.Get(ctx, oid)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if job.Deadline.Before(time.Now()) {
		return nil, ErrDeadlinePassed
	}

	a := &models.Application{
		Job:       job.ID,
		Applicant: applicant.ID,
		Resume:    resume,
		Status:    models.StatusApplied,
		AppliedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListMine returns the applicant's applications, newest first, with the
// linked job joined in.
func (s *Service) ListMine(ctx context.Context, applicant primitive.ObjectID) ([]WithJob, error) {
	list, err := s.repo.FindByApplicant(ctx, applicant)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.Job)
	}
	refs, err := s.jobStore.FindRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]WithJob, 0, len(list))
	for _, a := range list {
		w := WithJob{Application: a}
		if ref, ok := refs[a.Job]; ok {
			w.Job = &ref
		}
		out = append(out, w)
	}
	return out, nil
}

// ListForJob returns all applications for a posting, newest first, with the
// applicant joined in.
func (s *Service) ListForJob(ctx context.Context, jobID string) ([]WithApplicant, error) {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return nil, ErrJobNotFound
	}
	list, err := s.repo.FindByJob(ctx, oid)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.Applicant)
	}
	refs, err := s.users.FindRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]WithApplicant, 0, len(list))
	for _, a := range list {
		w := WithApplicant{Application: a}
		if ref, ok := refs[a.Applicant]; ok {
			w.Applicant = &ref
		}
		out = append(out, w)
	}
	return out, nil
}

// HasApplied reports whether an application exists for (job, applicant).
func (s *Service) HasApplied(ctx context.Context, jobID string, applicant primitive.ObjectID) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return false, nil
	}
	return s.repo.Exists(ctx, oid, applicant)
}

// UpdateStatus sets a new status (validated against the enum, not a
// transition graph) and optional note, returning the joined records the
// caller needs for notification.
func (s *Service) UpdateStatus(ctx context.Context, id, status string, note *string) (*StatusUpdate, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	a, err := s.repo.UpdateStatus(ctx, oid, status, note)
	if err != nil {
		return nil, err
	}

	upd := &StatusUpdate{Application: a}
	if refs, err := s.users.FindRefs(ctx, []primitive.ObjectID{a.Applicant}); err == nil {
		if ref, ok := refs[a.Applicant]; ok {
			upd.Applicant = &ref
		}
	}
	if refs, err := s.jobStore.FindRefs(ctx, []primitive.ObjectID{a.Job}); err == nil {
		if ref, ok := refs[a.Job]; ok {
			upd.JobTitle = ref.Title
		}
	}
	return upd, nil
}
