package models

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleCounselor UserRole = "counselor"
	RoleParent    UserRole = "parent"
)

// IsDelegate reports whether the role may act on behalf of a student.
func (r UserRole) IsDelegate() bool {
	return r == RoleCounselor || r == RoleParent
}

type Relationship string

const (
	RelationshipCounselor Relationship = "counselor"
	RelationshipParent    Relationship = "parent"
)

func (r Relationship) Valid() bool {
	return r == RelationshipCounselor || r == RelationshipParent
}

// Role returns the user role implied by the relationship.
func (r Relationship) Role() UserRole {
	if r == RelationshipParent {
		return RoleParent
	}
	return RoleCounselor
}

type LinkStatus string

const (
	LinkStatusPending LinkStatus = "pending"
	LinkStatusActive  LinkStatus = "active"
	LinkStatusRevoked LinkStatus = "revoked"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

type CollegeStatus string

const (
	CollegeStatusResearching CollegeStatus = "researching"
	CollegeStatusApplying    CollegeStatus = "applying"
	CollegeStatusApplied     CollegeStatus = "applied"
	CollegeStatusAccepted    CollegeStatus = "accepted"
	CollegeStatusWaitlisted  CollegeStatus = "waitlisted"
	CollegeStatusRejected    CollegeStatus = "rejected"
)

type EssayStatus string

const (
	EssayStatusDraft     EssayStatus = "draft"
	EssayStatusReviewing EssayStatus = "reviewing"
	EssayStatusFinal     EssayStatus = "final"
)
