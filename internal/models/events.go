package models

import (
	"time"
)

type EventType string

const (
	EventTypeUserCreated         EventType = "user.created"
	EventTypeCollaboratorInvited EventType = "collaborator.invited"
	EventTypeCollaboratorUpdated EventType = "collaborator.updated"
	EventTypeCollaboratorRevoked EventType = "collaborator.revoked"
	EventTypeTaskDue             EventType = "task.due"
	EventTypeCritiqueReady       EventType = "essay.critique.ready"
)

// CollaborationEvent is published on the topic exchange for notification
// fan-out. StudentID scopes the event; ActorID is who triggered it.
type CollaborationEvent struct {
	EventType EventType      `json:"eventType"`
	StudentID string         `json:"studentId"`
	ActorID   string         `json:"actorId,omitempty"`
	LinkID    string         `json:"linkId,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// UserRegisteredEvent is consumed from the auth service; first sign-in
// creates the actor record.
type UserRegisteredEvent struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
}
