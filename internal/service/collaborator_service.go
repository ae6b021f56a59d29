package service

import (
	"collegetrack-service/internal/event"
	"collegetrack-service/internal/models"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// CollaboratorUserStore covers the actor directory operations the link
// lifecycle needs: locating invitees and creating or upgrading them.
type CollaboratorUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	New(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

type CollaboratorLinkStore interface {
	FindByID(ctx context.Context, id string) (*models.CollaboratorLink, error)
	Upsert(ctx context.Context, link *models.CollaboratorLink) (*models.CollaboratorLink, error)
	Update(ctx context.Context, link *models.CollaboratorLink) (*models.CollaboratorLink, error)
	TouchLastSeen(ctx context.Context, linkID string) error
	ListByStudent(ctx context.Context, studentID string) ([]*models.CollaboratorLink, error)
	ListActiveByCollaborator(ctx context.Context, collaboratorID string) ([]*models.CollaboratorLink, error)
}

// CollaboratorService owns the link lifecycle: invite, permission edits,
// revocation. Links are never deleted; revocation is a status change.
type CollaboratorService struct {
	users     CollaboratorUserStore
	links     CollaboratorLinkStore
	publisher event.Publisher
}

func NewCollaboratorService(users CollaboratorUserStore, links CollaboratorLinkStore, publisher event.Publisher) *CollaboratorService {
	return &CollaboratorService{
		users:     users,
		links:     links,
		publisher: publisher,
	}
}

// Invite shares a student's workspace with a counselor or parent by email.
// Unknown emails get an actor created on the spot; a student account being
// invited as a delegate is upgraded in place. The pair's link is upserted,
// so re-inviting updates rather than duplicates.
//
// Invited links go straight to active: there is no acceptance handshake,
// the invited address holds delegated access immediately.
func (s *CollaboratorService) Invite(ctx context.Context, studentID string, req *models.InviteCollaboratorRequest) (*models.CollaboratorLink, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("collaborator email is required")
	}
	if !req.Relationship.Valid() {
		return nil, fmt.Errorf("invalid relationship %q", req.Relationship)
	}

	targetRole := req.Relationship.Role()

	collaborator, err := s.users.FindByEmail(ctx, email)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to look up collaborator: %w", err)
	}

	if collaborator == nil || err == mongo.ErrNoDocuments {
		collaborator, err = s.users.New(ctx, &models.User{
			Email: email,
			Name:  req.Name,
			Role:  targetRole,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create collaborator account: %w", err)
		}
	} else {
		if collaborator.ID.Hex() == studentID {
			return nil, fmt.Errorf("cannot invite yourself as a collaborator")
		}
		if collaborator.Role != targetRole {
			if err := collaborator.UpgradeRole(targetRole); err != nil {
				return nil, err
			}
			if collaborator, err = s.users.Update(ctx, collaborator); err != nil {
				return nil, fmt.Errorf("failed to upgrade collaborator role: %w", err)
			}
		}
	}

	link := &models.CollaboratorLink{
		StudentID:      studentID,
		CollaboratorID: collaborator.ID.Hex(),
		Relationship:   req.Relationship,
		Status:         models.LinkStatusActive,
		Permissions:    models.SanitizePermissions(req.Permissions, req.Relationship),
		CreatedBy:      studentID,
		Note:           req.Note,
		AcceptedAt:     int(time.Now().Unix()),
	}

	saved, err := s.links.Upsert(ctx, link)
	if err != nil {
		return nil, err
	}

	s.publish(models.EventTypeCollaboratorInvited, saved, studentID)
	return saved, nil
}

// UpdateLink applies partial edits under the ownership rules: the student
// side owns permissions and note; either side may revoke or reactivate.
func (s *CollaboratorService) UpdateLink(ctx context.Context, linkID, actorID string, req *models.UpdateCollaboratorRequest) (*models.CollaboratorLink, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if !link.IsParty(actorID) {
		return nil, newAuthError(403, "Not a party to this collaboration link")
	}

	if req.Permissions != nil || req.Note != nil {
		if actorID != link.StudentID {
			return nil, newAuthError(403, "Only the student may edit permissions or notes")
		}
		if req.Permissions != nil {
			link.Permissions = models.SanitizePermissions(req.Permissions, link.Relationship)
		}
		if req.Note != nil {
			link.Note = *req.Note
		}
	}

	revoked := false
	if req.Status != nil {
		switch *req.Status {
		case models.LinkStatusRevoked:
			revoked = link.Status != models.LinkStatusRevoked
			link.Status = models.LinkStatusRevoked
		case models.LinkStatusActive:
			if link.AcceptedAt == 0 {
				link.AcceptedAt = int(time.Now().Unix())
			}
			link.Status = models.LinkStatusActive
		default:
			return nil, fmt.Errorf("unsupported status transition to %q", *req.Status)
		}
	}

	if actorID == link.CollaboratorID {
		link.LastSeenAt = int(time.Now().Unix())
	}

	saved, err := s.links.Update(ctx, link)
	if err != nil {
		return nil, err
	}

	if revoked {
		s.publish(models.EventTypeCollaboratorRevoked, saved, actorID)
	} else {
		s.publish(models.EventTypeCollaboratorUpdated, saved, actorID)
	}
	return saved, nil
}

// Revoke flips the link to revoked, preserving the record for history.
// Revoking an already revoked link succeeds and changes nothing.
func (s *CollaboratorService) Revoke(ctx context.Context, linkID, actorID string) (*models.CollaboratorLink, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if !link.IsParty(actorID) {
		return nil, newAuthError(403, "Not a party to this collaboration link")
	}

	if link.Status == models.LinkStatusRevoked {
		return link, nil
	}

	link.Status = models.LinkStatusRevoked
	saved, err := s.links.Update(ctx, link)
	if err != nil {
		return nil, err
	}

	s.publish(models.EventTypeCollaboratorRevoked, saved, actorID)
	return saved, nil
}

// Touch records that the collaborator interacted with the link. Callers
// fire it after a delegated read; failures only cost auto-select freshness.
func (s *CollaboratorService) Touch(ctx context.Context, linkID string) {
	if err := s.links.TouchLastSeen(ctx, linkID); err != nil {
		log.Printf("Warning: failed to touch collaborator link %s: %v", linkID, err)
	}
}

// ListForStudent returns the student's links joined with each
// collaborator's user record.
func (s *CollaboratorService) ListForStudent(ctx context.Context, studentID string) ([]*models.CollaboratorLinkView, error) {
	links, err := s.links.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.joinUsers(ctx, links, func(l *models.CollaboratorLink) string { return l.CollaboratorID }), nil
}

// ListForCollaborator returns the delegate's active links joined with each
// student's user record, most recently used first. Revoked links stay out of
// the delegate's student picker; the student's own listing keeps them.
func (s *CollaboratorService) ListForCollaborator(ctx context.Context, collaboratorID string) ([]*models.CollaboratorLinkView, error) {
	links, err := s.links.ListActiveByCollaborator(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	return s.joinUsers(ctx, links, func(l *models.CollaboratorLink) string { return l.StudentID }), nil
}

func (s *CollaboratorService) joinUsers(ctx context.Context, links []*models.CollaboratorLink, counterpart func(*models.CollaboratorLink) string) []*models.CollaboratorLinkView {
	views := make([]*models.CollaboratorLinkView, 0, len(links))
	for _, link := range links {
		view := &models.CollaboratorLinkView{Link: link}
		user, err := s.users.FindByID(ctx, counterpart(link))
		if err != nil {
			log.Printf("Warning: failed to load user %s for link %s: %v", counterpart(link), link.ID.Hex(), err)
		} else {
			view.User = user
		}
		views = append(views, view)
	}
	return views
}

func (s *CollaboratorService) publish(eventType models.EventType, link *models.CollaboratorLink, actorID string) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishCollaborationEvent(&models.CollaborationEvent{
		EventType: eventType,
		StudentID: link.StudentID,
		ActorID:   actorID,
		LinkID:    link.ID.Hex(),
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
