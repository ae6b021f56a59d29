package service

import (
	"collegetrack-service/internal/models"
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AuthorizationError is the only error kind the resolver produces. Handlers
// translate StatusCode and Message verbatim onto the wire; anything else
// bubbling out of the resolver is a storage failure and becomes a 500.
type AuthorizationError struct {
	StatusCode int
	Message    string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func newAuthError(statusCode int, message string) *AuthorizationError {
	return &AuthorizationError{StatusCode: statusCode, Message: message}
}

// UserStore is the slice of the actor directory the resolver needs.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetActiveStudent(ctx context.Context, userID, studentID string) error
}

// LinkStore is the slice of the collaborator link store the resolver needs.
// FindMostRecentActive orders by lastSeenAt desc, then updatedAt desc, then
// createdAt desc, optionally filtered to links granting requiredPermission.
type LinkStore interface {
	FindActiveByPair(ctx context.Context, studentID, collaboratorID string) (*models.CollaboratorLink, error)
	FindMostRecentActive(ctx context.Context, collaboratorID, requiredPermission string) (*models.CollaboratorLink, error)
}

// ResolveParams names the inputs of a resolution. The zero value of
// NoSelfFallback keeps the default behavior: a student actor with no
// explicit request resolves to themselves.
type ResolveParams struct {
	ActorUserID        string
	StudentID          string
	RequiredPermission string
	NoSelfFallback     bool
}

// StudentContext is a successful resolution: the student whose data the
// actor may touch, and the governing link when the actor is a delegate.
// Link is nil exactly when the actor is acting on their own data.
type StudentContext struct {
	TargetUserID string
	Viewer       *models.User
	Link         *models.CollaboratorLink
}

// ContextResolver decides which student's data an actor may read or write.
// Every domain handler calls Resolve before touching domain collections.
type ContextResolver struct {
	users UserStore
	links LinkStore
}

func NewContextResolver(users UserStore, links LinkStore) *ContextResolver {
	return &ContextResolver{
		users: users,
		links: links,
	}
}

// Resolve applies the target-selection policies in strict priority order:
// explicit request, student self-default, stored active context, then
// auto-select of the delegate's most recently touched link. The persisted
// activeStudentId is only a hint; authorization is always re-derived from
// the link's current status and permissions.
func (r *ContextResolver) Resolve(ctx context.Context, params ResolveParams) (*StudentContext, error) {
	actor, err := r.users.FindByID(ctx, params.ActorUserID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, newAuthError(401, "User not found")
		}
		return nil, err
	}

	// First-time students have no active context yet; point them at
	// themselves.
	if actor.Role == models.RoleStudent && actor.ActiveStudentID == "" {
		actor.ActiveStudentID = actor.ID.Hex()
		if err := r.users.SetActiveStudent(ctx, actor.ID.Hex(), actor.ActiveStudentID); err != nil {
			log.Printf("Warning: failed to persist self context for user %s: %v", actor.ID.Hex(), err)
		}
	}

	var candidate string
	switch {
	case params.StudentID != "":
		candidate = params.StudentID
	case actor.Role == models.RoleStudent && !params.NoSelfFallback:
		candidate = actor.ID.Hex()
	default:
		candidate = actor.ActiveStudentID
	}

	if candidate == "" {
		if !actor.Role.IsDelegate() {
			return nil, newAuthError(400, "Select a student to continue")
		}

		link, err := r.autoSelect(ctx, actor, params.RequiredPermission)
		if err != nil {
			return nil, err
		}
		if link == nil {
			return nil, newAuthError(400, "No shared students available yet. Ask a student to invite you as a collaborator.")
		}
		return &StudentContext{TargetUserID: link.StudentID, Viewer: actor, Link: link}, nil
	}

	// Self-access needs no link and no permission check.
	if candidate == actor.ID.Hex() {
		return &StudentContext{TargetUserID: candidate, Viewer: actor}, nil
	}

	if !actor.Role.IsDelegate() {
		return nil, newAuthError(403, "Not allowed to act on behalf of another user")
	}

	link, err := r.links.FindActiveByPair(ctx, candidate, actor.ID.Hex())
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, err
	}
	if link == nil || err == mongo.ErrNoDocuments {
		// The stored or requested student is no longer shared with this
		// delegate; fall back to whichever link is freshest.
		link, err = r.autoSelect(ctx, actor, params.RequiredPermission)
		if err != nil {
			return nil, err
		}
		if link == nil {
			return nil, newAuthError(403, "Collaboration link not found")
		}
		candidate = link.StudentID
	}

	if params.RequiredPermission != "" && !link.Permissions.Has(params.RequiredPermission) {
		return nil, newAuthError(403, "Missing required permission")
	}

	return &StudentContext{TargetUserID: candidate, Viewer: actor, Link: link}, nil
}

// autoSelect picks the delegate's most recently touched active link, adopts
// its student as the actor's context, and persists the choice. Returns
// (nil, nil) when the delegate has no qualifying link. A failed persist is
// logged and ignored: the hint is UX state, not the source of authority.
func (r *ContextResolver) autoSelect(ctx context.Context, actor *models.User, requiredPermission string) (*models.CollaboratorLink, error) {
	link, err := r.links.FindMostRecentActive(ctx, actor.ID.Hex(), requiredPermission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	if err := r.users.SetActiveStudent(ctx, actor.ID.Hex(), link.StudentID); err != nil {
		log.Printf("Warning: failed to persist active student for user %s: %v", actor.ID.Hex(), err)
	}
	actor.ActiveStudentID = link.StudentID

	return link, nil
}
