// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents students, admins, moderators, and the super admin.
//
// Students log in with username, email, or matric number; Department and
// Level are their default browsing scope. For moderators, Department and
// Level are the upload scope they are locked to.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"fullName"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped

	Username   string `bson:"username" json:"username"`
	UsernameCI string `bson:"username_ci" json:"-"`
	Email      string `bson:"email,omitempty" json:"email,omitempty"`
	EmailCI    string `bson:"email_ci,omitempty" json:"-"`

	MatricNumber   string `bson:"matric_number,omitempty" json:"matricNumber,omitempty"`
	MatricNumberCI string `bson:"matric_number_ci,omitempty" json:"-"`

	Department string `bson:"department,omitempty" json:"department,omitempty"`
	Level      string `bson:"level,omitempty" json:"level,omitempty"`

	Role   string `bson:"role" json:"role"` // student | admin | moderator | super_admin
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
