package users

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

// Repository persists user accounts and their follow/bookmark relations.
//
// Relation writes use set semantics: adding an existing member or removing an
// absent one is a no-op.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	// ListExcluding returns up to limit users in store order whose ids are not
	// in exclude.
	ListExcluding(ctx context.Context, exclude []string, limit int) ([]*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) error
	Delete(ctx context.Context, id string) error

	// SetFollow adds (follow=true) or removes followeeID from followerID's
	// followings and followerID from followeeID's followers.
	SetFollow(ctx context.Context, followerID, followeeID string, follow bool) error
	SetBookmark(ctx context.Context, userID, postID string, bookmarked bool) error
	// PurgeUser pulls id from every user's followings and followers.
	PurgeUser(ctx context.Context, id string) error
	// PurgeBookmark pulls postID from every user's bookmarks and returns the
	// ids of the users that had it.
	PurgeBookmark(ctx context.Context, postID string) ([]string, error)
}
