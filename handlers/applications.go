package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jobportal/jobportal-api/internal/applications"
	"github.com/jobportal/jobportal-api/internal/notify"
	"github.com/jobportal/jobportal-api/pkg/logger"
	"github.com/jobportal/jobportal-api/pkg/middleware"
)

// ApplicationsHandler holds dependencies for the application endpoints.
type ApplicationsHandler struct {
	svc        *applications.Service
	dispatcher *notify.Dispatcher // nil when mail is not configured
}

func NewApplicationsHandler(s *applications.Service, d *notify.Dispatcher) *ApplicationsHandler {
	return &ApplicationsHandler{svc: s, dispatcher: d}
}

// Register routes under /applications. All require a session; submitting is
// for job seekers, reviewing is for admins.
func (h *ApplicationsHandler) Register(rg *gin.RouterGroup, protect, userOnly, adminOnly gin.HandlerFunc) {
	g := rg.Group("/applications", protect)
	g.POST("/:jobId", userOnly, h.Apply)
	g.GET("/my", h.My)
	g.GET("/job/:jobId", adminOnly, h.ForJob)
	g.GET("/check/:jobId", h.Check)
	g.PUT("/:id/status", adminOnly, h.UpdateStatus)
}

type applyRequest struct {
	Resume string `json:"resume"`
}

// Apply submits an application for a posting.
func (h *ApplicationsHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.svc.Apply(c.Request.Context(), c.Param("jobId"), middleware.CurrentUser(c), req.Resume)
	if err != nil {
		switch {
		case errors.Is(err, applications.ErrJobNotFound):
			fail(c, http.StatusNotFound, "Job not found")
		case errors.Is(err, applications.ErrDeadlinePassed):
			fail(c, http.StatusBadRequest, "Job application deadline has passed")
		case errors.Is(err, applications.ErrAlreadyApplied):
			fail(c, http.StatusBadRequest, "You have already applied for this job")
		case errors.Is(err, applications.ErrInvalidInput):
			fail(c, http.StatusBadRequest, reason(err))
		default:
			logger.Errorf("apply: %v", err)
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "application": a})
}

// My lists the principal's applications with their jobs joined in.
func (h *ApplicationsHandler) My(c *gin.Context) {
	list, err := h.svc.ListMine(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		logger.Errorf("my applications: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": list})
}

// ForJob lists a posting's applications with their applicants joined in.
func (h *ApplicationsHandler) ForJob(c *gin.Context) {
	list, err := h.svc.ListForJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		if errors.Is(err, applications.ErrJobNotFound) {
			fail(c, http.StatusNotFound, "Job not found")
			return
		}
		logger.Errorf("job applications: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": list})
}

// Check reports whether the principal already applied to a posting.
func (h *ApplicationsHandler) Check(c *gin.Context) {
	has, err := h.svc.HasApplied(c.Request.Context(), c.Param("jobId"), middleware.CurrentUser(c).ID)
	if err != nil {
		logger.Errorf("application check: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hasApplied": has})
}

type statusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note"`
}

// UpdateStatus sets a new review status and notifies the applicant. The
// notification is fire-and-forget; its outcome never changes the response.
func (h *ApplicationsHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	upd, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, applications.ErrNotFound):
			fail(c, http.StatusNotFound, "Application not found")
		case errors.Is(err, applications.ErrInvalidInput):
			fail(c, http.StatusBadRequest, reason(err))
		default:
			logger.Errorf("application status: %v", err)
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if upd.Applicant != nil && upd.Applicant.Email != "" && h.dispatcher != nil {
		h.dispatcher.Enqueue("status-changed",
			notify.StatusChanged(upd.Applicant, upd.Application.Status, upd.JobTitle))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "application": upd.Application})
}
