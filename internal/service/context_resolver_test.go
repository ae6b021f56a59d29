package service

import (
	"collegetrack-service/internal/models"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type fakeUserStore struct {
	users    map[string]*models.User
	setCalls []string
	setErr   error
	findErr  error
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) SetActiveStudent(ctx context.Context, userID, studentID string) error {
	f.setCalls = append(f.setCalls, userID+"->"+studentID)
	if f.setErr != nil {
		return f.setErr
	}
	if user, ok := f.users[userID]; ok {
		user.ActiveStudentID = studentID
	}
	return nil
}

type fakeLinkStore struct {
	links []*models.CollaboratorLink
}

func (f *fakeLinkStore) FindActiveByPair(ctx context.Context, studentID, collaboratorID string) (*models.CollaboratorLink, error) {
	for _, link := range f.links {
		if link.StudentID == studentID && link.CollaboratorID == collaboratorID && link.Status == models.LinkStatusActive {
			copied := *link
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeLinkStore) FindMostRecentActive(ctx context.Context, collaboratorID, requiredPermission string) (*models.CollaboratorLink, error) {
	var candidates []*models.CollaboratorLink
	for _, link := range f.links {
		if link.CollaboratorID != collaboratorID || link.Status != models.LinkStatusActive {
			continue
		}
		if requiredPermission != "" && !link.Permissions.Has(requiredPermission) {
			continue
		}
		candidates = append(candidates, link)
	}
	if len(candidates) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].LastSeenAt != candidates[j].LastSeenAt {
			return candidates[i].LastSeenAt > candidates[j].LastSeenAt
		}
		if candidates[i].Metadata.UpdatedAt != candidates[j].Metadata.UpdatedAt {
			return candidates[i].Metadata.UpdatedAt > candidates[j].Metadata.UpdatedAt
		}
		return candidates[i].Metadata.CreatedAt > candidates[j].Metadata.CreatedAt
	})
	copied := *candidates[0]
	return &copied, nil
}

func newTestUser(id string, role models.UserRole, activeStudentID string) *models.User {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		panic(err)
	}
	return &models.User{
		ID:              oid,
		Email:           id + "@example.com",
		Role:            role,
		ActiveStudentID: activeStudentID,
	}
}

func newTestLink(studentID, collaboratorID string, status models.LinkStatus, perms models.CollaboratorPermissions, lastSeenAt int) *models.CollaboratorLink {
	return &models.CollaboratorLink{
		ID:             bson.NewObjectID(),
		StudentID:      studentID,
		CollaboratorID: collaboratorID,
		Relationship:   models.RelationshipCounselor,
		Status:         status,
		Permissions:    perms,
		LastSeenAt:     lastSeenAt,
	}
}

func testID(n int) string {
	return fmt.Sprintf("%024x", n)
}

func expectAuthError(t *testing.T, err error, statusCode int, message string) {
	t.Helper()
	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthorizationError, got %v", err)
	}
	if authErr.StatusCode != statusCode {
		t.Errorf("Expected status %d, got %d", statusCode, authErr.StatusCode)
	}
	if authErr.Message != message {
		t.Errorf("Expected message %q, got %q", message, authErr.Message)
	}
}

func TestResolveUnknownActor(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.User{}}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	_, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: testID(1)})
	expectAuthError(t, err, 401, "User not found")
}

func TestResolveStudentSelfDefault(t *testing.T) {
	studentID := testID(1)
	users := &fakeUserStore{users: map[string]*models.User{
		studentID: newTestUser(studentID, models.RoleStudent, ""),
	}}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: studentID})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.TargetUserID != studentID {
		t.Errorf("Expected target %s, got %s", studentID, ctx.TargetUserID)
	}
	if ctx.Link != nil {
		t.Error("Self-access should not carry a link")
	}
	// The empty active context must be healed and persisted.
	if got := users.users[studentID].ActiveStudentID; got != studentID {
		t.Errorf("Expected self-healed activeStudentId %s, got %s", studentID, got)
	}
	if len(users.setCalls) != 1 {
		t.Errorf("Expected one persist call, got %d", len(users.setCalls))
	}
}

func TestResolveStudentSelfHealPersistFailureIgnored(t *testing.T) {
	studentID := testID(1)
	users := &fakeUserStore{
		users:  map[string]*models.User{studentID: newTestUser(studentID, models.RoleStudent, "")},
		setErr: errors.New("write refused"),
	}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: studentID})
	if err != nil {
		t.Fatalf("Resolve should succeed despite persist failure: %v", err)
	}
	if ctx.TargetUserID != studentID {
		t.Errorf("Expected target %s, got %s", studentID, ctx.TargetUserID)
	}
}

func TestResolveStudentCannotActOnOtherUser(t *testing.T) {
	studentID := testID(1)
	otherID := testID(2)
	users := &fakeUserStore{users: map[string]*models.User{
		studentID: newTestUser(studentID, models.RoleStudent, studentID),
	}}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	_, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID: studentID,
		StudentID:   otherID,
	})
	expectAuthError(t, err, 403, "Not allowed to act on behalf of another user")
}

func TestResolveExplicitSelfBypassesLinkCheck(t *testing.T) {
	studentID := testID(1)
	users := &fakeUserStore{users: map[string]*models.User{
		studentID: newTestUser(studentID, models.RoleStudent, studentID),
	}}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID:        studentID,
		StudentID:          studentID,
		RequiredPermission: models.PermissionManageTasks,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.Link != nil {
		t.Error("Self-access should skip the permission check entirely")
	}
}

func TestResolveDelegateWithoutLinks(t *testing.T) {
	counselorID := testID(3)
	users := &fakeUserStore{users: map[string]*models.User{
		counselorID: newTestUser(counselorID, models.RoleCounselor, ""),
	}}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	_, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: counselorID})
	expectAuthError(t, err, 400, "No shared students available yet. Ask a student to invite you as a collaborator.")
}

func TestResolveDelegateAutoSelectsSingleLink(t *testing.T) {
	studentID := testID(1)
	counselorID := testID(3)
	users := &fakeUserStore{users: map[string]*models.User{
		counselorID: newTestUser(counselorID, models.RoleCounselor, ""),
	}}
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(studentID, counselorID, models.LinkStatusActive, models.DefaultPermissions(models.RelationshipCounselor), 100),
	}}
	resolver := NewContextResolver(users, links)

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: counselorID})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.TargetUserID != studentID {
		t.Errorf("Expected auto-selected target %s, got %s", studentID, ctx.TargetUserID)
	}
	if ctx.Link == nil {
		t.Fatal("Delegated access must carry the governing link")
	}
	// Auto-select adopts the student as the stored context.
	if got := users.users[counselorID].ActiveStudentID; got != studentID {
		t.Errorf("Expected persisted activeStudentId %s, got %s", studentID, got)
	}
}

func TestResolveDelegateAutoSelectPrefersMostRecentlySeen(t *testing.T) {
	studentA := testID(1)
	studentB := testID(2)
	counselorID := testID(3)
	users := &fakeUserStore{users: map[string]*models.User{
		counselorID: newTestUser(counselorID, models.RoleCounselor, ""),
	}}
	perms := models.DefaultPermissions(models.RelationshipCounselor)
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(studentA, counselorID, models.LinkStatusActive, perms, 100),
		newTestLink(studentB, counselorID, models.LinkStatusActive, perms, 200),
	}}
	resolver := NewContextResolver(users, links)

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: counselorID})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.TargetUserID != studentB {
		t.Errorf("Expected most recently seen student %s, got %s", studentB, ctx.TargetUserID)
	}
}

func TestResolveDelegateExplicitStudent(t *testing.T) {
	studentID := testID(1)
	counselorID := testID(3)
	users := &fakeUserStore{users: map[string]*models.User{
		counselorID: newTestUser(counselorID, models.RoleCounselor, ""),
	}}
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(studentID, counselorID, models.LinkStatusActive, models.DefaultPermissions(models.RelationshipCounselor), 0),
	}}
	resolver := NewContextResolver(users, links)

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID: counselorID,
		StudentID:   studentID,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.TargetUserID != studentID {
		t.Errorf("Expected target %s, got %s", studentID, ctx.TargetUserID)
	}
}

func TestResolveDelegateRevokedLinkNoFallback(t *testing.T) {
	studentID := testID(1)
	counselorID := testID(3)
	users := &fakeUserStore{users: map[string]*models.User{
		counselorID: newTestUser(counselorID, models.RoleCounselor, ""),
	}}
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(studentID, counselorID, models.LinkStatusRevoked, models.DefaultPermissions(models.RelationshipCounselor), 100),
	}}
	resolver := NewContextResolver(users, links)

	_, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID: counselorID,
		StudentID:   studentID,
	})
	expectAuthError(t, err, 403, "Collaboration link not found")
}

func TestResolveDelegateStaleContextFallsBack(t *testing.T) {
	revokedStudent := testID(1)
	activeStudent := testID(2)
	counselorID := testID(3)
	users := &fakeUserStore{users: map[string]*models.User{
		counselorID: newTestUser(counselorID, models.RoleCounselor, revokedStudent),
	}}
	perms := models.DefaultPermissions(models.RelationshipCounselor)
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(revokedStudent, counselorID, models.LinkStatusRevoked, perms, 200),
		newTestLink(activeStudent, counselorID, models.LinkStatusActive, perms, 100),
	}}
	resolver := NewContextResolver(users, links)

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: counselorID})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.TargetUserID != activeStudent {
		t.Errorf("Expected fallback to %s, got %s", activeStudent, ctx.TargetUserID)
	}
	if got := users.users[counselorID].ActiveStudentID; got != activeStudent {
		t.Errorf("Expected repaired activeStudentId %s, got %s", activeStudent, got)
	}
}

func TestResolveMissingPermission(t *testing.T) {
	studentID := testID(1)
	parentID := testID(4)
	users := &fakeUserStore{users: map[string]*models.User{
		parentID: newTestUser(parentID, models.RoleParent, ""),
	}}
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(studentID, parentID, models.LinkStatusActive, models.DefaultPermissions(models.RelationshipParent), 0),
	}}
	resolver := NewContextResolver(users, links)

	// Parent defaults are view-only; manageTasks is not granted.
	_, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID:        parentID,
		StudentID:          studentID,
		RequiredPermission: models.PermissionManageTasks,
	})
	expectAuthError(t, err, 403, "Missing required permission")
}

func TestResolveDeniedRequestMutatesNothing(t *testing.T) {
	studentID := testID(1)
	parentID := testID(4)
	users := &fakeUserStore{users: map[string]*models.User{
		parentID: newTestUser(parentID, models.RoleParent, ""),
	}}
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(studentID, parentID, models.LinkStatusActive, models.DefaultPermissions(models.RelationshipParent), 0),
	}}
	resolver := NewContextResolver(users, links)

	_, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID:        parentID,
		StudentID:          studentID,
		RequiredPermission: models.PermissionManageTasks,
	})
	if err == nil {
		t.Fatal("Expected a permission error")
	}
	if len(users.setCalls) != 0 {
		t.Errorf("Denied resolution must not persist context, saw %v", users.setCalls)
	}
}

func TestResolveAutoSelectFiltersByPermission(t *testing.T) {
	viewOnlyStudent := testID(1)
	fullStudent := testID(2)
	counselorID := testID(3)
	users := &fakeUserStore{users: map[string]*models.User{
		counselorID: newTestUser(counselorID, models.RoleCounselor, ""),
	}}
	viewOnly := models.DefaultPermissions(models.RelationshipParent)
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(viewOnlyStudent, counselorID, models.LinkStatusActive, viewOnly, 200),
		newTestLink(fullStudent, counselorID, models.LinkStatusActive, models.DefaultPermissions(models.RelationshipCounselor), 100),
	}}
	resolver := NewContextResolver(users, links)

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID:        counselorID,
		RequiredPermission: models.PermissionManageTasks,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.TargetUserID != fullStudent {
		t.Errorf("Auto-select should skip links without the permission, got %s", ctx.TargetUserID)
	}
}

func TestResolveAutoSelectPersistFailureIgnored(t *testing.T) {
	studentID := testID(1)
	counselorID := testID(3)
	users := &fakeUserStore{
		users:  map[string]*models.User{counselorID: newTestUser(counselorID, models.RoleCounselor, "")},
		setErr: errors.New("write refused"),
	}
	links := &fakeLinkStore{links: []*models.CollaboratorLink{
		newTestLink(studentID, counselorID, models.LinkStatusActive, models.DefaultPermissions(models.RelationshipCounselor), 0),
	}}
	resolver := NewContextResolver(users, links)

	ctx, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: counselorID})
	if err != nil {
		t.Fatalf("Resolve should succeed despite persist failure: %v", err)
	}
	if ctx.TargetUserID != studentID {
		t.Errorf("Expected target %s, got %s", studentID, ctx.TargetUserID)
	}
}

func TestResolveNoSelfFallback(t *testing.T) {
	studentID := testID(1)
	users := &fakeUserStore{users: map[string]*models.User{
		studentID: newTestUser(studentID, models.RoleStudent, ""),
	}}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	// With the self-default suppressed, a student resolves through their
	// stored context, which self-heals to themselves anyway.
	ctx, err := resolver.Resolve(context.Background(), ResolveParams{
		ActorUserID:    studentID,
		NoSelfFallback: true,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ctx.TargetUserID != studentID {
		t.Errorf("Expected stored context %s, got %s", studentID, ctx.TargetUserID)
	}
}

func TestResolveStorageErrorPassesThrough(t *testing.T) {
	users := &fakeUserStore{findErr: errors.New("connection reset")}
	resolver := NewContextResolver(users, &fakeLinkStore{})

	_, err := resolver.Resolve(context.Background(), ResolveParams{ActorUserID: testID(1)})
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		t.Fatalf("Storage failures must not become authorization errors, got %v", err)
	}
	if err == nil {
		t.Fatal("Expected an error")
	}
}
