package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application statuses. Any status from this set may follow any other; the
// API validates membership only, not an ordering.
const (
	StatusApplied     = "applied"
	StatusShortlisted = "shortlisted"
	StatusInterview   = "interview"
	StatusHired       = "hired"
	StatusRejected    = "rejected"
)

// ValidStatus reports whether s is one of the known application statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusShortlisted, StatusInterview, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Application links one applicant to one job. The (job, applicant) pair is
// unique, enforced by a compound index at the store level.
type Application struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Job       primitive.ObjectID `bson:"job" json:"-"`
	Applicant primitive.ObjectID `bson:"applicant" json:"-"`
	Resume    string             `bson:"resume" json:"resume"`
	Status    string             `bson:"status" json:"status"`
	Note      string             `bson:"note" json:"note"`
	AppliedAt time.Time          `bson:"appliedAt" json:"appliedAt"`
}
