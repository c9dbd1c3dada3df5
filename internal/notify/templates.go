package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/jobportal/jobportal-api/internal/models"
)

// JobPosted builds the broadcast announcement for a new posting. Recipients
// go on Bcc so they cannot see each other; the From account is the visible
// To address.
func JobPosted(frontendURL, from string, job *models.Job, bcc []string) Message {
	desc := job.Description
	if len(desc) > 100 {
		desc = desc[:100]
	}
	var b strings.Builder
	b.WriteString("<h1>New Job Opportunity!</h1>")
	b.WriteString("<p>A new job matching your interests has been posted.</p>")
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(job.Title))
	fmt.Fprintf(&b, "<p><strong>Company:</strong> %s</p>", html.EscapeString(job.Company))
	fmt.Fprintf(&b, "<p><strong>Salary:</strong> %s</p>", html.EscapeString(job.Salary))
	fmt.Fprintf(&b, "<p>%s...</p>", html.EscapeString(desc))
	fmt.Fprintf(&b,
		`<a href="%s/jobs/%s" style="padding: 10px 20px; background: #4F46E5; color: white; text-decoration: none; border-radius: 5px;">View Job</a>`,
		frontendURL, job.ID.Hex())
	return Message{
		To:      []string{from},
		Bcc:     bcc,
		Subject: fmt.Sprintf("New Job Alert: %s at %s", job.Title, job.Company),
		HTML:    b.String(),
	}
}

// StatusChanged builds the applicant-facing status update mail.
func StatusChanged(applicant *models.UserRef, status, jobTitle string) Message {
	color := "orange"
	switch status {
	case models.StatusHired:
		color = "green"
	case models.StatusRejected:
		color = "red"
	}
	var b strings.Builder
	b.WriteString("<h1>Application Status Update</h1>")
	fmt.Fprintf(&b, "<p>Hello %s,</p>", html.EscapeString(applicant.Name))
	fmt.Fprintf(&b, "<p>Your application for the position of <strong>%s</strong> has been updated.</p>",
		html.EscapeString(jobTitle))
	fmt.Fprintf(&b, `<p><strong>New Status:</strong> <span style="color: %s">%s</span></p>`,
		color, strings.ToUpper(status))
	return Message{
		To:      []string{applicant.Email},
		Subject: fmt.Sprintf("Application Update: %s", jobTitle),
		HTML:    b.String(),
	}
}

// Feedback forwards a user's "not interested" reason to the posting's owner.
func Feedback(ownerEmail, reason string) Message {
	return Message{
		To:      []string{ownerEmail},
		Subject: "New User Feedback",
		HTML:    fmt.Sprintf("Reason: %s", html.EscapeString(reason)),
	}
}
