package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobportal/jobportal-api/internal/models"
	"github.com/jobportal/jobportal-api/internal/users"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newFixture(t *testing.T, adminsEditAny bool) (*Service, *users.Service, *models.User) {
	t.Helper()
	urepo := users.NewMemoryRepository()
	usvc := users.NewService(urepo)
	admin, err := usvc.Register(context.Background(), "Admin", "admin@example.com", "secret1", models.RoleAdmin)
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	return NewService(NewMemoryRepository(), usvc, adminsEditAny), usvc, admin
}

func validJob(deadline time.Time) *models.Job {
	return &models.Job{
		Title:       "Backend Engineer",
		Description: "Build APIs",
		Skills:      []string{"Go"},
		Location:    "Berlin",
		JobType:     "Full-time",
		WorkMode:    "remote",
		Company:     "Acme",
		Deadline:    deadline,
	}
}

func TestCreate_SetsCreatorAndTimestamps(t *testing.T) {
	svc, _, admin := newFixture(t, true)
	ctx := context.Background()

	j, err := svc.Create(ctx, admin, validJob(time.Now().Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if j.CreatedBy != admin.ID {
		t.Fatalf("creator not set: %+v", j)
	}
	if j.ID.IsZero() || j.CreatedAt.IsZero() {
		t.Fatalf("id/createdAt not set: %+v", j)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, admin := newFixture(t, true)
	ctx := context.Background()
	deadline := time.Now().Add(24 * time.Hour)

	mutations := []func(*models.Job){
		func(j *models.Job) { j.Title = "" },
		func(j *models.Job) { j.Description = "" },
		func(j *models.Job) { j.Skills = nil },
		func(j *models.Job) { j.Location = "" },
		func(j *models.Job) { j.Company = "" },
		func(j *models.Job) { j.Deadline = time.Time{} },
		func(j *models.Job) { j.JobType = "Gig" },
		func(j *models.Job) { j.WorkMode = "moon" },
	}
	for i, mutate := range mutations {
		j := validJob(deadline)
		mutate(j)
		if _, err := svc.Create(ctx, admin, j); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestList_ExcludesPastDeadline(t *testing.T) {
	svc, _, admin := newFixture(t, true)
	ctx := context.Background()

	open, err := svc.Create(ctx, admin, validJob(time.Now().Add(24*time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	expired := validJob(time.Now().Add(-24 * time.Hour))
	expired.Title = "Expired Role"
	exp, err := svc.Create(ctx, admin, expired)
	if err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != open.ID {
		t.Fatalf("expected only the open job, got %+v", list)
	}

	// detail view is not deadline-filtered
	got, err := svc.Get(ctx, exp.ID.Hex())
	if err != nil {
		t.Fatalf("expected expired job to be fetchable by id: %v", err)
	}
	if got.ID != exp.ID {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestList_CaseInsensitiveSearch(t *testing.T) {
	svc, _, admin := newFixture(t, true)
	ctx := context.Background()
	deadline := time.Now().Add(24 * time.Hour)

	for _, title := range []string{"Engineer", "engineering manager", "Sales Lead"} {
		j := validJob(deadline)
		j.Title = title
		if _, err := svc.Create(ctx, admin, j); err != nil {
			t.Fatal(err)
		}
	}

	list, err := svc.List(ctx, Filter{Search: "eng"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 matches for 'eng', got %d", len(list))
	}
	for _, v := range list {
		if v.Title == "Sales Lead" {
			t.Fatalf("sales job should not match: %+v", list)
		}
	}
}

func TestList_PopulatesCreator(t *testing.T) {
	svc, _, admin := newFixture(t, true)
	ctx := context.Background()

	if _, err := svc.Create(ctx, admin, validJob(time.Now().Add(24*time.Hour))); err != nil {
		t.Fatal(err)
	}
	list, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Creator == nil {
		t.Fatalf("expected populated creator, got %+v", list)
	}
	if list[0].Creator.Name != "Admin" || list[0].Creator.Email != "admin@example.com" {
		t.Fatalf("unexpected creator: %+v", list[0].Creator)
	}
}

func TestGet_DeletedCreatorResolvesToNull(t *testing.T) {
	// the creator reference may dangle; the join resolves to nil, not an error
	repo := NewMemoryRepository()
	usvc := users.NewService(users.NewMemoryRepository())
	svc := NewService(repo, usvc, true)
	ctx := context.Background()

	j := validJob(time.Now().Add(24 * time.Hour))
	j.CreatedBy = primitive.NewObjectID() // no such user
	if err := repo.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(ctx, j.ID.Hex())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Creator != nil {
		t.Fatalf("expected nil creator for dangling reference, got %+v", got.Creator)
	}
}

func TestUpdate_OwnershipPolicy(t *testing.T) {
	svc, usvc, admin := newFixture(t, false)
	ctx := context.Background()

	other, err := usvc.Register(ctx, "Other Admin", "other@example.com", "secret1", models.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	j, err := svc.Create(ctx, admin, validJob(time.Now().Add(24*time.Hour)))
	if err != nil {
		t.Fatal(err)
	}

	title := "Renamed"
	if _, err := svc.Update(ctx, other, j.ID.Hex(), Update{Title: &title}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign admin, got %v", err)
	}
	if err := svc.Delete(ctx, other, j.ID.Hex()); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}

	upd, err := svc.Update(ctx, admin, j.ID.Hex(), Update{Title: &title})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if upd.Title != "Renamed" {
		t.Fatalf("title not updated: %+v", upd)
	}
}

func TestUpdate_AnyAdminWhenPolicyAllows(t *testing.T) {
	svc, usvc, admin := newFixture(t, true)
	ctx := context.Background()

	other, err := usvc.Register(ctx, "Other Admin", "other@example.com", "secret1", models.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	j, err := svc.Create(ctx, admin, validJob(time.Now().Add(24*time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	title := "Edited By Other"
	if _, err := svc.Update(ctx, other, j.ID.Hex(), Update{Title: &title}); err != nil {
		t.Fatalf("expected any admin to edit, got %v", err)
	}
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	svc, _, admin := newFixture(t, true)
	ctx := context.Background()
	missing := primitive.NewObjectID().Hex()

	title := "x"
	if _, err := svc.Update(ctx, admin, missing, Update{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, admin, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}
