package comments

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByPost returns the comments of postID, oldest first.
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByPosts(ctx context.Context, postIDs []string) error
}
