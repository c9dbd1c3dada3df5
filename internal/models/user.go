package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user (job seeker or admin).
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	GoogleID  string             `bson:"googleId,omitempty" json:"googleId,omitempty"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Bio       string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Skills    []string           `bson:"skills,omitempty" json:"skills,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserRef is the public subset of a user attached to populated responses
// (job creator, applicant).
type UserRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Ref returns the populated-response view of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
