package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jobportal/jobportal-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLen = 6

// Service encapsulates user-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Register creates a new user account. Role defaults to "user"; only values
// from the role enum are accepted.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Name: name, Email: email, Password: string(hash), Role: role}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID resolves a subject id (hex) to a user. Returns (nil, nil) when the
// id is malformed or no longer matches a record.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.repo.GetByID(ctx, oid)
}

// UpdateDetails applies owner-mutable profile fields and returns the updated record.
func (s *Service) UpdateDetails(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	return s.repo.UpdateProfile(ctx, id, upd)
}

// UpsertFromGoogle logs in (or creates) a user from verified Google claims.
// Matching order: googleId, then email (linking the googleId to the existing
// account), then a fresh account with role "user" and a random password.
func (s *Service) UpsertFromGoogle(ctx context.Context, sub, email, name string) (*models.User, error) {
	if sub == "" || email == "" {
		return nil, fmt.Errorf("%w: google claims missing sub or email", ErrInvalidInput)
	}

	if u, err := s.repo.GetByGoogleID(ctx, sub); err != nil {
		return nil, err
	} else if u != nil {
		return u, nil
	}

	if u, err := s.repo.GetByEmail(ctx, strings.ToLower(email)); err != nil {
		return nil, err
	} else if u != nil {
		if err := s.repo.SetGoogleID(ctx, u.ID, sub); err != nil {
			return nil, err
		}
		u.GoogleID = sub
		return u, nil
	}

	// the schema requires a password; generate one the user never sees
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:     name,
		Email:    strings.ToLower(email),
		Password: string(hash),
		Role:     models.RoleUser,
		GoogleID: sub,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// BroadcastRecipients returns the emails that receive a new-job notification:
// every user with role "user" plus the posting admin.
func (s *Service) BroadcastRecipients(ctx context.Context, creator *models.User) ([]string, error) {
	emails, err := s.repo.EmailsByRole(ctx, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if creator != nil && creator.Email != "" {
		emails = append(emails, creator.Email)
	}
	return emails, nil
}

// FindRefs exposes public user refs for join/populate on read paths.
func (s *Service) FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	return s.repo.FindRefs(ctx, ids)
}
