package service

import (
	"collegetrack-service/internal/models"
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// UserService manages actor records and the explicit context switch.
type UserService struct {
	users    CollaboratorUserStore
	resolver *ContextResolver
}

func NewUserService(users CollaboratorUserStore, resolver *ContextResolver) *UserService {
	return &UserService{
		users:    users,
		resolver: resolver,
	}
}

// EnsureUser returns the actor for an email, creating it on first sign-in.
func (s *UserService) EnsureUser(ctx context.Context, email, name string, role models.UserRole) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.users.New(ctx, &models.User{
		Email: email,
		Name:  name,
		Role:  role,
	})
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies partial edits to the actor's own record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.GraduationYear != nil {
		user.GraduationYear = *req.GraduationYear
	}

	return s.users.Update(ctx, user)
}

// SwitchContext makes studentID the actor's active student. The choice is
// validated through the resolver first, so a delegate can only switch to a
// student they hold an active link with.
func (s *UserService) SwitchContext(ctx context.Context, actorID, studentID string) (*StudentContext, error) {
	if studentID == "" {
		return nil, newAuthError(400, "Select a student to continue")
	}

	studentCtx, err := s.resolver.Resolve(ctx, ResolveParams{
		ActorUserID: actorID,
		StudentID:   studentID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.resolver.users.SetActiveStudent(ctx, actorID, studentCtx.TargetUserID); err != nil {
		return nil, fmt.Errorf("failed to persist context switch: %w", err)
	}
	studentCtx.Viewer.ActiveStudentID = studentCtx.TargetUserID

	return studentCtx, nil
}
