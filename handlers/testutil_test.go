package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobportal/jobportal-api/internal/applications"
	"github.com/jobportal/jobportal-api/internal/config"
	"github.com/jobportal/jobportal-api/internal/jobs"
	"github.com/jobportal/jobportal-api/internal/models"
	"github.com/jobportal/jobportal-api/internal/notify"
	"github.com/jobportal/jobportal-api/internal/oidc"
	"github.com/jobportal/jobportal-api/internal/tokens"
	"github.com/jobportal/jobportal-api/internal/users"
	"github.com/jobportal/jobportal-api/pkg/middleware"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recordingMailer collects every delivered message.
type recordingMailer struct {
	ch chan notify.Message
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{ch: make(chan notify.Message, 32)}
}

func (m *recordingMailer) Send(ctx context.Context, msg notify.Message) error {
	m.ch <- msg
	return nil
}

// wait returns the next delivered message or fails the test after a timeout.
func (m *recordingMailer) wait(t *testing.T) notify.Message {
	t.Helper()
	select {
	case msg := <-m.ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("expected a mail delivery")
		return notify.Message{}
	}
}

func (m *recordingMailer) none(t *testing.T) {
	t.Helper()
	select {
	case msg := <-m.ch:
		t.Fatalf("unexpected mail delivery: %q", msg.Subject)
	case <-time.After(50 * time.Millisecond):
	}
}

type testEnv struct {
	router     *gin.Engine
	cfg        *config.Config
	userRepo   *users.MemoryRepository
	jobRepo    *jobs.MemoryRepository
	appRepo    *applications.MemoryRepository
	usersSvc   *users.Service
	mailer     *recordingMailer
	dispatcher *notify.Dispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenTTL = time.Hour
	cfg.SMTP.From = "noreply@example.com"
	cfg.FrontendURL = "https://jobs.example.com"
	cfg.AdminEmail = "root@example.com"
	cfg.Jobs.AdminsEditAny = true

	userRepo := users.NewMemoryRepository()
	jobRepo := jobs.NewMemoryRepository()
	appRepo := applications.NewMemoryRepository()

	usersSvc := users.NewService(userRepo)
	jobsSvc := jobs.NewService(jobRepo, userRepo, cfg.Jobs.AdminsEditAny)
	appsSvc := applications.NewService(appRepo, jobRepo, userRepo)

	mailer := newRecordingMailer()
	dispatcher := notify.NewDispatcher(mailer, 32, time.Second)
	t.Cleanup(dispatcher.Close)

	protect := middleware.Protect(tokens.NewVerifier(cfg.JWT.Secret), usersSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	userOnly := middleware.RequireRoles(models.RoleUser)

	r := gin.New()
	api := r.Group("/api")
	NewAuthHandler(cfg, usersSvc, oidc.NewInsecureVerifier()).Register(api, protect)
	NewJobsHandler(cfg, jobsSvc, usersSvc, dispatcher).Register(api, protect, adminOnly)
	NewApplicationsHandler(appsSvc, dispatcher).Register(api, protect, userOnly, adminOnly)
	NewUploadsHandler(nil).Register(api, protect, adminOnly)
	RegisterSwagger(r)

	return &testEnv{
		router:     r,
		cfg:        cfg,
		userRepo:   userRepo,
		jobRepo:    jobRepo,
		appRepo:    appRepo,
		usersSvc:   usersSvc,
		mailer:     mailer,
		dispatcher: dispatcher,
	}
}

// do issues a JSON request, optionally authenticated with a bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signup registers an account through the API and returns its token.
func (e *testEnv) signup(t *testing.T, name, email, role string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "sekrit1", "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// addJob inserts a posting directly into the store.
func (e *testEnv) addJob(t *testing.T, title string, deadline time.Time, creator *models.User) *models.Job {
	t.Helper()
	j := &models.Job{
		Title:       title,
		Description: "desc",
		Skills:      []string{"Go"},
		Location:    "Remote",
		JobType:     "Full-time",
		Company:     "Acme",
		Deadline:    deadline,
	}
	if creator != nil {
		j.CreatedBy = creator.ID
	}
	require.NoError(t, e.jobRepo.Insert(context.Background(), j))
	return j
}
