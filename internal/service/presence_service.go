package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceService tracks who is currently looking at a student's workspace.
// Each viewer heartbeat writes a short-lived key; viewers disappear from the
// list when their key expires.
type PresenceService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPresenceService(client *redis.Client, ttl time.Duration) *PresenceService {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &PresenceService{
		client: client,
		ttl:    ttl,
	}
}

func presenceKey(studentID, userID string) string {
	return fmt.Sprintf("presence:%s:%s", studentID, userID)
}

// Heartbeat records that userID is viewing studentID's workspace right now.
func (s *PresenceService) Heartbeat(ctx context.Context, studentID, userID, name string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, presenceKey(studentID, userID), name, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record presence: %w", err)
	}
	return nil
}

// Viewer is one live viewer of a workspace.
type Viewer struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
}

// ActiveViewers lists everyone with an unexpired heartbeat for the student.
func (s *PresenceService) ActiveViewers(ctx context.Context, studentID string) ([]Viewer, error) {
	if s.client == nil {
		return []Viewer{}, nil
	}

	pattern := fmt.Sprintf("presence:%s:*", studentID)
	viewers := make([]Viewer, 0)

	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID := key[strings.LastIndex(key, ":")+1:]

		name, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read presence key %s: %w", key, err)
		}

		viewers = append(viewers, Viewer{UserID: userID, Name: name})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan presence keys: %w", err)
	}

	return viewers, nil
}

// Leave drops the viewer's heartbeat immediately.
func (s *PresenceService) Leave(ctx context.Context, studentID, userID string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, presenceKey(studentID, userID)).Err()
}
