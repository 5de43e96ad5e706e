package posts

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// ListByUsers returns posts authored by any of userIDs, newest first.
	ListByUsers(ctx context.Context, userIDs []string) ([]*models.Post, error)
	Update(ctx context.Context, id string, upd models.PostUpdate) error
	Delete(ctx context.Context, id string) error
	// DeleteByUser removes every post authored by userID and returns their ids.
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
	SetLike(ctx context.Context, postID, userID string, liked bool) error
}
