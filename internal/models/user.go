package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Metadata struct {
	CreatedAt int `json:"createdAt" bson:"createdAt"`
	UpdatedAt int `json:"updatedAt" bson:"updatedAt"`
}

// User is any authenticated actor: a student, or a delegate
// (counselor/parent) acting on a student's behalf.
type User struct {
	ID              bson.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email           string        `json:"email" bson:"email"`
	Name            string        `json:"name,omitempty" bson:"name,omitempty"`
	Role            UserRole      `json:"role" bson:"role"`
	ActiveStudentID string        `json:"activeStudentId,omitempty" bson:"activeStudentId,omitempty"`
	GraduationYear  int           `json:"graduationYear,omitempty" bson:"graduationYear,omitempty"`
	Metadata        Metadata      `json:"metadata" bson:"metadata"`
}

// UpgradeRole moves a user to a delegate role. Only student accounts may be
// upgraded; a counselor cannot become a parent or vice versa, and no role
// is ever downgraded.
func (u *User) UpgradeRole(target UserRole) error {
	if u.Role == target {
		return nil
	}
	if u.Role != RoleStudent || !target.IsDelegate() {
		return fmt.Errorf("cannot change role from %s to %s", u.Role, target)
	}
	u.Role = target
	// A delegate no longer defaults to their own data.
	if u.ActiveStudentID == u.ID.Hex() {
		u.ActiveStudentID = ""
	}
	return nil
}
