// Package events publishes domain events to a message bus.
package events

import (
	"context"
	"time"
)

const (
	SubjectUserRegistered = "user.registered"
	SubjectUserDeleted    = "user.deleted"
	SubjectUserFollowed   = "user.followed"
	SubjectUserUnfollowed = "user.unfollowed"
	SubjectPostCreated    = "post.created"
	SubjectPostDeleted    = "post.deleted"
	SubjectPostLiked      = "post.liked"
)

// Event is the JSON payload published on every subject.
type Event struct {
	Subject  string    `json:"subject"`
	ActorID  string    `json:"actorId"`
	TargetID string    `json:"targetId,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close()                               {}
