package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobportal/jobportal-api/internal/config"
	"github.com/jobportal/jobportal-api/internal/jobs"
	"github.com/jobportal/jobportal-api/internal/models"
	"github.com/jobportal/jobportal-api/internal/notify"
	"github.com/jobportal/jobportal-api/internal/users"
	"github.com/jobportal/jobportal-api/pkg/logger"
	"github.com/jobportal/jobportal-api/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobsHandler holds dependencies for the job-posting endpoints.
type JobsHandler struct {
	cfg        *config.Config
	jobsSvc    *jobs.Service
	usersSvc   *users.Service
	dispatcher *notify.Dispatcher // nil when mail is not configured
}

func NewJobsHandler(cfg *config.Config, j *jobs.Service, u *users.Service, d *notify.Dispatcher) *JobsHandler {
	return &JobsHandler{cfg: cfg, jobsSvc: j, usersSvc: u, dispatcher: d}
}

// Register routes under /jobs. Listing and detail are public; mutations are
// admin-only; feedback needs any session.
func (h *JobsHandler) Register(rg *gin.RouterGroup, protect, adminOnly gin.HandlerFunc) {
	g := rg.Group("/jobs")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", protect, adminOnly, h.Create)
	g.PUT("/:id", protect, adminOnly, h.Update)
	g.DELETE("/:id", protect, adminOnly, h.Delete)
	g.POST("/:id/feedback", protect, h.Feedback)
}

func (h *JobsHandler) enqueue(kind string, msg notify.Message) {
	if h.dispatcher == nil {
		logger.Debugf("mail disabled, skipping %s notification", kind)
		return
	}
	h.dispatcher.Enqueue(kind, msg)
}

// List returns active postings (deadline not passed), optionally narrowed by
// case-insensitive title and location substrings.
func (h *JobsHandler) List(c *gin.Context) {
	f := jobs.Filter{
		Search:   c.Query("search"),
		Location: c.Query("location"),
	}
	list, err := h.jobsSvc.List(c.Request.Context(), f)
	if err != nil {
		logger.Errorf("jobs list: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "jobs": list})
}

// Get returns one posting with its creator populated. Expired postings are
// still visible here.
func (h *JobsHandler) Get(c *gin.Context) {
	v, err := h.jobsSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			fail(c, http.StatusNotFound, "Job not found")
			return
		}
		logger.Errorf("jobs get: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": v})
}

type jobRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Skills      models.SkillList `json:"skills"`
	Location    string           `json:"location"`
	JobType     string           `json:"jobType"`
	WorkMode    string           `json:"workMode"`
	Salary      string           `json:"salary"`
	Company     string           `json:"company"`
	Logo        string           `json:"logo"`
	Openings    int              `json:"openings"`
	Deadline    time.Time        `json:"deadline"`
}

// Create persists a posting and broadcasts it to every job seeker plus the
// creator. The broadcast is fire-and-forget; its outcome never changes the
// response.
func (h *JobsHandler) Create(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	actor := middleware.CurrentUser(c)
	job := &models.Job{
		Title:       req.Title,
		Description: req.Description,
		Skills:      []string(req.Skills),
		Location:    req.Location,
		JobType:     req.JobType,
		WorkMode:    req.WorkMode,
		Salary:      req.Salary,
		Company:     req.Company,
		Logo:        req.Logo,
		Openings:    req.Openings,
		Deadline:    req.Deadline,
	}
	created, err := h.jobsSvc.Create(c.Request.Context(), actor, job)
	if err != nil {
		if errors.Is(err, jobs.ErrInvalidInput) {
			fail(c, http.StatusBadRequest, reason(err))
			return
		}
		logger.Errorf("jobs create: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if bcc, err := h.usersSvc.BroadcastRecipients(c.Request.Context(), actor); err != nil {
		logger.Errorf("jobs create: broadcast recipients: %v", err)
	} else if len(bcc) > 0 {
		h.enqueue("job-posted", notify.JobPosted(h.cfg.FrontendURL, h.cfg.SMTP.From, created, bcc))
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "job": created})
}

type jobUpdateRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Skills      *models.SkillList `json:"skills"`
	Location    *string           `json:"location"`
	JobType     *string           `json:"jobType"`
	WorkMode    *string           `json:"workMode"`
	Salary      *string           `json:"salary"`
	Company     *string           `json:"company"`
	Logo        *string           `json:"logo"`
	Openings    *int              `json:"openings"`
	Deadline    *time.Time        `json:"deadline"`
}

// Update applies a partial update to a posting.
func (h *JobsHandler) Update(c *gin.Context) {
	var req jobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	upd := jobs.Update{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		JobType:     req.JobType,
		WorkMode:    req.WorkMode,
		Salary:      req.Salary,
		Company:     req.Company,
		Logo:        req.Logo,
		Openings:    req.Openings,
		Deadline:    req.Deadline,
	}
	if req.Skills != nil {
		s := []string(*req.Skills)
		upd.Skills = &s
	}
	updated, err := h.jobsSvc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), upd)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			fail(c, http.StatusNotFound, "Job not found")
		case errors.Is(err, jobs.ErrNotOwner):
			fail(c, http.StatusForbidden, "Not authorized to modify this job")
		case errors.Is(err, jobs.ErrInvalidInput):
			fail(c, http.StatusBadRequest, reason(err))
		default:
			logger.Errorf("jobs update: %v", err)
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": updated})
}

// Delete removes a posting.
func (h *JobsHandler) Delete(c *gin.Context) {
	err := h.jobsSvc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			fail(c, http.StatusNotFound, "Job not found")
		case errors.Is(err, jobs.ErrNotOwner):
			fail(c, http.StatusForbidden, "Not authorized to modify this job")
		default:
			logger.Errorf("jobs delete: %v", err)
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job removed"})
}

type feedbackRequest struct {
	Reason string `json:"reason"`
}

// Feedback forwards a "not interested" reason to the posting's creator,
// falling back to the configured admin address when the creator is gone.
func (h *JobsHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	job, err := h.jobsSvc.Raw(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			fail(c, http.StatusNotFound, "Job not found")
			return
		}
		logger.Errorf("feedback: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	to := h.cfg.AdminEmail
	if refs, err := h.usersSvc.FindRefs(c.Request.Context(), []primitive.ObjectID{job.CreatedBy}); err == nil {
		if ref, ok := refs[job.CreatedBy]; ok && ref.Email != "" {
			to = ref.Email
		}
	}
	if to != "" {
		h.enqueue("feedback", notify.Feedback(to, req.Reason))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback submitted"})
}
