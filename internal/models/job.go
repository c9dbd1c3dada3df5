package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job types accepted by the API.
var JobTypes = []string{"Full-time", "Part-time", "Contract", "Internship"}

// Work modes accepted by the API.
var WorkModes = []string{"onsite", "remote", "hybrid"}

// SkillList accepts either a JSON array of strings or a single
// comma-delimited string ("Go, Rust , Python" -> ["Go","Rust","Python"]).
// Clients historically sent both shapes; normalization happens here at the
// boundary so domain code only ever sees the split form.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*s = arr
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = SplitSkills(raw)
	return nil
}

// SplitSkills splits a comma-delimited skill string and trims each segment.
// Empty segments are dropped.
func SplitSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Job is a posting created by an admin. CreatedBy is a reference to the
// owning user; list/get responses attach the populated creator separately.
type Job struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Skills      []string           `bson:"skills" json:"skills"`
	Location    string             `bson:"location" json:"location"`
	JobType     string             `bson:"jobType" json:"jobType"`
	WorkMode    string             `bson:"workMode,omitempty" json:"workMode,omitempty"`
	Salary      string             `bson:"salary,omitempty" json:"salary,omitempty"`
	Company     string             `bson:"company" json:"company"`
	Logo        string             `bson:"logo,omitempty" json:"logo,omitempty"`
	Openings    int                `bson:"openings,omitempty" json:"openings,omitempty"`
	Deadline    time.Time          `bson:"deadline" json:"deadline"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"-"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// JobRef is the subset of a job joined into application listings.
type JobRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Location string             `bson:"location" json:"location"`
	Deadline time.Time          `bson:"deadline" json:"deadline"`
}

// Ref returns the joined-response view of the job.
func (j *Job) Ref() JobRef {
	return JobRef{ID: j.ID, Title: j.Title, Location: j.Location, Deadline: j.Deadline}
}
