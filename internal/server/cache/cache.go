// Package cache keeps read-through copies of user profiles.
package cache

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

// ProfileCache stores public user profiles by id. Cached users never carry
// the password hash.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.User, bool, error)
	Set(ctx context.Context, user *models.User) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// Nop is used when no cache backend is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.User, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, *models.User) error                 { return nil }
func (Nop) Invalidate(context.Context, ...string) error             { return nil }
