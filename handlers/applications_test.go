package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestApplyFlow(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.signup(t, "Seeker", "seeker@example.com", "")
	job := e.addJob(t, "Backend Engineer", time.Now().Add(24*time.Hour), nil)

	w := e.do(t, http.MethodPost, "/api/applications/"+job.ID.Hex(), seeker, gin.H{"resume": "https://cdn.example.com/cv.pdf"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode(t, w)["application"].(map[string]interface{})
	require.Equal(t, "applied", app["status"])

	// applying twice is rejected, the first record stays
	w = e.do(t, http.MethodPost, "/api/applications/"+job.ID.Hex(), seeker, gin.H{"resume": "https://cdn.example.com/cv2.pdf"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "You have already applied for this job", decode(t, w)["message"])

	w = e.do(t, http.MethodGet, "/api/applications/check/"+job.ID.Hex(), seeker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["hasApplied"])
}

func TestApplyGuards(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.signup(t, "Seeker", "seeker@example.com", "")
	admin := e.signup(t, "Boss", "boss@example.com", "admin")
	expired := e.addJob(t, "Stale Role", time.Now().Add(-time.Hour), nil)

	w := e.do(t, http.MethodPost, "/api/applications/"+expired.ID.Hex(), seeker, gin.H{"resume": "cv.pdf"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Job application deadline has passed", decode(t, w)["message"])

	w = e.do(t, http.MethodPost, "/api/applications/64b5fc999999999999999999", seeker, gin.H{"resume": "cv.pdf"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Job not found", decode(t, w)["message"])

	// admins browse, they don't apply
	fresh := e.addJob(t, "Fresh Role", time.Now().Add(24*time.Hour), nil)
	w = e.do(t, http.MethodPost, "/api/applications/"+fresh.ID.Hex(), admin, gin.H{"resume": "cv.pdf"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestMyApplications(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.signup(t, "Seeker", "seeker@example.com", "")
	job := e.addJob(t, "Backend Engineer", time.Now().Add(24*time.Hour), nil)

	w := e.do(t, http.MethodPost, "/api/applications/"+job.ID.Hex(), seeker, gin.H{"resume": "cv.pdf"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/applications/my", seeker, nil)
	require.Equal(t, http.StatusOK, w.Code)
	apps := decode(t, w)["applications"].([]interface{})
	require.Len(t, apps, 1)
	joined := apps[0].(map[string]interface{})["job"].(map[string]interface{})
	require.Equal(t, "Backend Engineer", joined["title"])
	require.Equal(t, "Remote", joined["location"])
}

func TestJobApplicationsForAdmin(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.signup(t, "Seeker", "seeker@example.com", "")
	admin := e.signup(t, "Boss", "boss@example.com", "admin")
	job := e.addJob(t, "Backend Engineer", time.Now().Add(24*time.Hour), nil)

	w := e.do(t, http.MethodPost, "/api/applications/"+job.ID.Hex(), seeker, gin.H{"resume": "cv.pdf"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/applications/job/"+job.ID.Hex(), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	apps := decode(t, w)["applications"].([]interface{})
	require.Len(t, apps, 1)
	applicant := apps[0].(map[string]interface{})["applicant"].(map[string]interface{})
	require.Equal(t, "seeker@example.com", applicant["email"])

	// listing is admin-only
	w = e.do(t, http.MethodGet, "/api/applications/job/"+job.ID.Hex(), seeker, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateApplicationStatus(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.signup(t, "Seeker", "seeker@example.com", "")
	admin := e.signup(t, "Boss", "boss@example.com", "admin")
	job := e.addJob(t, "Backend Engineer", time.Now().Add(24*time.Hour), nil)

	w := e.do(t, http.MethodPost, "/api/applications/"+job.ID.Hex(), seeker, gin.H{"resume": "cv.pdf"})
	require.Equal(t, http.StatusCreated, w.Code)
	appID := decode(t, w)["application"].(map[string]interface{})["id"].(string)

	w = e.do(t, http.MethodPut, "/api/applications/"+appID+"/status", admin, gin.H{"status": "shortlisted", "note": "good fit"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	app := decode(t, w)["application"].(map[string]interface{})
	require.Equal(t, "shortlisted", app["status"])
	require.Equal(t, "good fit", app["note"])

	// exactly one applicant notification, response already sent above
	msg := e.mailer.wait(t)
	require.Equal(t, []string{"seeker@example.com"}, msg.To)
	require.Contains(t, msg.Subject, "Backend Engineer")
	require.Contains(t, msg.HTML, "SHORTLISTED")
	e.mailer.none(t)
}

func TestUpdateApplicationStatusErrors(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.signup(t, "Seeker", "seeker@example.com", "")
	admin := e.signup(t, "Boss", "boss@example.com", "admin")
	job := e.addJob(t, "Backend Engineer", time.Now().Add(24*time.Hour), nil)

	w := e.do(t, http.MethodPost, "/api/applications/"+job.ID.Hex(), seeker, gin.H{"resume": "cv.pdf"})
	require.Equal(t, http.StatusCreated, w.Code)
	appID := decode(t, w)["application"].(map[string]interface{})["id"].(string)

	w = e.do(t, http.MethodPut, "/api/applications/"+appID+"/status", admin, gin.H{"status": "promoted"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/api/applications/64b5fc999999999999999999/status", admin, gin.H{"status": "hired"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Application not found", decode(t, w)["message"])
	e.mailer.none(t)
}

func TestUploadsUnconfigured(t *testing.T) {
	e := newTestEnv(t)
	seeker := e.signup(t, "Seeker", "seeker@example.com", "")

	w := e.do(t, http.MethodPost, "/api/uploads/resume", seeker, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "File uploads are not configured", decode(t, w)["message"])
}
