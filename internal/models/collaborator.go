package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Capability keys delegable through a collaborator link. Each maps to the
// bson field of the same name in CollaboratorPermissions.
const (
	PermissionViewTasks            = "viewTasks"
	PermissionManageTasks          = "manageTasks"
	PermissionViewEssays           = "viewEssays"
	PermissionEditEssays           = "editEssays"
	PermissionViewCalendar         = "viewCalendar"
	PermissionManageCalendar       = "manageCalendar"
	PermissionViewFinancial        = "viewFinancial"
	PermissionApproveAiSuggestions = "approveAiSuggestions"
)

// CollaboratorPermissions is the closed set of capabilities a student can
// delegate. Fixed shape: a stored document always carries all eight keys.
type CollaboratorPermissions struct {
	ViewTasks            bool `json:"viewTasks" bson:"viewTasks"`
	ManageTasks          bool `json:"manageTasks" bson:"manageTasks"`
	ViewEssays           bool `json:"viewEssays" bson:"viewEssays"`
	EditEssays           bool `json:"editEssays" bson:"editEssays"`
	ViewCalendar         bool `json:"viewCalendar" bson:"viewCalendar"`
	ManageCalendar       bool `json:"manageCalendar" bson:"manageCalendar"`
	ViewFinancial        bool `json:"viewFinancial" bson:"viewFinancial"`
	ApproveAiSuggestions bool `json:"approveAiSuggestions" bson:"approveAiSuggestions"`
}

// Has reports whether the named capability is granted. Unknown keys are
// never granted.
func (p CollaboratorPermissions) Has(key string) bool {
	switch key {
	case PermissionViewTasks:
		return p.ViewTasks
	case PermissionManageTasks:
		return p.ManageTasks
	case PermissionViewEssays:
		return p.ViewEssays
	case PermissionEditEssays:
		return p.EditEssays
	case PermissionViewCalendar:
		return p.ViewCalendar
	case PermissionManageCalendar:
		return p.ManageCalendar
	case PermissionViewFinancial:
		return p.ViewFinancial
	case PermissionApproveAiSuggestions:
		return p.ApproveAiSuggestions
	default:
		return false
	}
}

// DefaultPermissions returns the built-in bundle for a relationship:
// counselors get everything, parents are view-only.
func DefaultPermissions(rel Relationship) CollaboratorPermissions {
	if rel == RelationshipParent {
		return CollaboratorPermissions{
			ViewTasks:     true,
			ViewEssays:    true,
			ViewCalendar:  true,
			ViewFinancial: true,
		}
	}
	return CollaboratorPermissions{
		ViewTasks:            true,
		ManageTasks:          true,
		ViewEssays:           true,
		EditEssays:           true,
		ViewCalendar:         true,
		ManageCalendar:       true,
		ViewFinancial:        true,
		ApproveAiSuggestions: true,
	}
}

// CollaboratorPermissionsDTO is the wire form of a permissions payload.
// Pointer fields distinguish "omitted" from "false"; unknown keys are
// dropped by JSON decoding.
type CollaboratorPermissionsDTO struct {
	ViewTasks            *bool `json:"viewTasks"`
	ManageTasks          *bool `json:"manageTasks"`
	ViewEssays           *bool `json:"viewEssays"`
	EditEssays           *bool `json:"editEssays"`
	ViewCalendar         *bool `json:"viewCalendar"`
	ManageCalendar       *bool `json:"manageCalendar"`
	ViewFinancial        *bool `json:"viewFinancial"`
	ApproveAiSuggestions *bool `json:"approveAiSuggestions"`
}

// SanitizePermissions builds a complete permission set from a possibly
// partial client payload: omitted keys take the relationship's default,
// provided keys are used as-is. Total function, never fails.
func SanitizePermissions(dto *CollaboratorPermissionsDTO, rel Relationship) CollaboratorPermissions {
	perms := DefaultPermissions(rel)
	if dto == nil {
		return perms
	}
	if dto.ViewTasks != nil {
		perms.ViewTasks = *dto.ViewTasks
	}
	if dto.ManageTasks != nil {
		perms.ManageTasks = *dto.ManageTasks
	}
	if dto.ViewEssays != nil {
		perms.ViewEssays = *dto.ViewEssays
	}
	if dto.EditEssays != nil {
		perms.EditEssays = *dto.EditEssays
	}
	if dto.ViewCalendar != nil {
		perms.ViewCalendar = *dto.ViewCalendar
	}
	if dto.ManageCalendar != nil {
		perms.ManageCalendar = *dto.ManageCalendar
	}
	if dto.ViewFinancial != nil {
		perms.ViewFinancial = *dto.ViewFinancial
	}
	if dto.ApproveAiSuggestions != nil {
		perms.ApproveAiSuggestions = *dto.ApproveAiSuggestions
	}
	return perms
}

// CollaboratorLink is a directed delegation from a student to a counselor
// or parent. At most one link exists per (studentId, collaboratorId) pair;
// revocation flips status instead of deleting the record.
type CollaboratorLink struct {
	ID             bson.ObjectID           `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID      string                  `json:"studentId" bson:"studentId"`
	CollaboratorID string                  `json:"collaboratorId" bson:"collaboratorId"`
	Relationship   Relationship            `json:"relationship" bson:"relationship"`
	Status         LinkStatus              `json:"status" bson:"status"`
	Permissions    CollaboratorPermissions `json:"permissions" bson:"permissions"`
	CreatedBy      string                  `json:"createdBy" bson:"createdBy"`
	Note           string                  `json:"note,omitempty" bson:"note,omitempty"`
	AcceptedAt     int                     `json:"acceptedAt,omitempty" bson:"acceptedAt,omitempty"`
	LastSeenAt     int                     `json:"lastSeenAt,omitempty" bson:"lastSeenAt,omitempty"`
	Metadata       Metadata                `json:"metadata" bson:"metadata"`
}

// IsParty reports whether the user is one of the two sides of the link.
func (l *CollaboratorLink) IsParty(userID string) bool {
	return l.StudentID == userID || l.CollaboratorID == userID
}
