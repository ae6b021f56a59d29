package models

import (
	"testing"
)

func boolPtr(v bool) *bool {
	return &v
}

func TestDefaultPermissionsCounselor(t *testing.T) {
	perms := DefaultPermissions(RelationshipCounselor)

	for _, key := range []string{
		PermissionViewTasks, PermissionManageTasks,
		PermissionViewEssays, PermissionEditEssays,
		PermissionViewCalendar, PermissionManageCalendar,
		PermissionViewFinancial, PermissionApproveAiSuggestions,
	} {
		if !perms.Has(key) {
			t.Errorf("Counselor default should grant %s", key)
		}
	}
}

func TestDefaultPermissionsParentViewOnly(t *testing.T) {
	perms := DefaultPermissions(RelationshipParent)

	granted := []string{PermissionViewTasks, PermissionViewEssays, PermissionViewCalendar, PermissionViewFinancial}
	denied := []string{PermissionManageTasks, PermissionEditEssays, PermissionManageCalendar, PermissionApproveAiSuggestions}

	for _, key := range granted {
		if !perms.Has(key) {
			t.Errorf("Parent default should grant %s", key)
		}
	}
	for _, key := range denied {
		if perms.Has(key) {
			t.Errorf("Parent default should not grant %s", key)
		}
	}
}

func TestHasUnknownKey(t *testing.T) {
	perms := DefaultPermissions(RelationshipCounselor)
	if perms.Has("deleteAccount") {
		t.Error("Unknown capability keys must never be granted")
	}
	if perms.Has("") {
		t.Error("Empty capability key must never be granted")
	}
}

func TestSanitizePermissionsNilPayload(t *testing.T) {
	perms := SanitizePermissions(nil, RelationshipParent)
	if perms != DefaultPermissions(RelationshipParent) {
		t.Errorf("Nil payload should produce the relationship default, got %+v", perms)
	}
}

func TestSanitizePermissionsOmittedKeysTakeDefaults(t *testing.T) {
	// Only manageTasks provided; everything else falls back to parent
	// defaults.
	perms := SanitizePermissions(&CollaboratorPermissionsDTO{
		ManageTasks: boolPtr(true),
	}, RelationshipParent)

	if !perms.ManageTasks {
		t.Error("Provided manageTasks=true should be kept")
	}
	if !perms.ViewTasks {
		t.Error("Omitted viewTasks should take the parent default true")
	}
	if perms.EditEssays {
		t.Error("Omitted editEssays should take the parent default false")
	}
}

func TestSanitizePermissionsExplicitFalseWins(t *testing.T) {
	perms := SanitizePermissions(&CollaboratorPermissionsDTO{
		ViewFinancial: boolPtr(false),
	}, RelationshipParent)

	if perms.ViewFinancial {
		t.Error("Explicit false must override the default true")
	}
}

func TestSanitizePermissionsIdempotent(t *testing.T) {
	dto := &CollaboratorPermissionsDTO{
		ViewTasks:   boolPtr(true),
		ManageTasks: boolPtr(false),
		EditEssays:  boolPtr(true),
	}

	first := SanitizePermissions(dto, RelationshipCounselor)
	roundTrip := &CollaboratorPermissionsDTO{
		ViewTasks:            boolPtr(first.ViewTasks),
		ManageTasks:          boolPtr(first.ManageTasks),
		ViewEssays:           boolPtr(first.ViewEssays),
		EditEssays:           boolPtr(first.EditEssays),
		ViewCalendar:         boolPtr(first.ViewCalendar),
		ManageCalendar:       boolPtr(first.ManageCalendar),
		ViewFinancial:        boolPtr(first.ViewFinancial),
		ApproveAiSuggestions: boolPtr(first.ApproveAiSuggestions),
	}
	second := SanitizePermissions(roundTrip, RelationshipCounselor)

	if first != second {
		t.Errorf("Sanitizing a sanitized set must change nothing: %+v vs %+v", first, second)
	}
}

func TestIsParty(t *testing.T) {
	link := &CollaboratorLink{StudentID: "student-1", CollaboratorID: "counselor-1"}

	if !link.IsParty("student-1") || !link.IsParty("counselor-1") {
		t.Error("Both sides of the link are parties")
	}
	if link.IsParty("stranger") {
		t.Error("Third parties are not parties to the link")
	}
}
