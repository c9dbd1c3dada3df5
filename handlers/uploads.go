package handlers

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jobportal/jobportal-api/internal/storage"
	"github.com/jobportal/jobportal-api/pkg/logger"
)

const maxUploadBytes = 5 << 20

// UploadsHandler stores resumes and company logos in object storage.
type UploadsHandler struct {
	store *storage.MinIOStorage // nil when object storage is not configured
}

func NewUploadsHandler(s *storage.MinIOStorage) *UploadsHandler {
	return &UploadsHandler{store: s}
}

// Register routes under /uploads. Resumes need a session, logos are admin-only.
func (h *UploadsHandler) Register(rg *gin.RouterGroup, protect, adminOnly gin.HandlerFunc) {
	g := rg.Group("/uploads", protect)
	g.POST("/resume", h.Resume)
	g.POST("/logo", adminOnly, h.Logo)
}

func (h *UploadsHandler) Resume(c *gin.Context) {
	h.upload(c, "resumes", storage.ResumeContentTypes)
}

func (h *UploadsHandler) Logo(c *gin.Context) {
	h.upload(c, "logos", storage.LogoContentTypes)
}

func (h *UploadsHandler) upload(c *gin.Context, prefix string, allowed map[string]bool) {
	if h.store == nil {
		fail(c, http.StatusServiceUnavailable, "File uploads are not configured")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "Please provide a file")
		return
	}
	if fh.Size > maxUploadBytes {
		fail(c, http.StatusBadRequest, "File too large")
		return
	}
	ct := fh.Header.Get("Content-Type")
	if !allowed[ct] {
		fail(c, http.StatusBadRequest, "Unsupported file type")
		return
	}
	f, err := fh.Open()
	if err != nil {
		logger.Errorf("upload open: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	key := prefix + "/" + uuid.NewString() + path.Ext(fh.Filename)
	url, err := h.store.Upload(c.Request.Context(), key, f, fh.Size, ct)
	if err != nil {
		logger.Errorf("upload store: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "key": key, "url": url})
}
