package users

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InMemoryRepository keeps users in insertion order and enforces the same
// uniqueness rules as the Mongo indexes. Returned users are copies.
type InMemoryRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*models.User)}
}

func clone(u *models.User) *models.User {
	c := *u
	c.Followings = slices.Clone(u.Followings)
	c.Followers = slices.Clone(u.Followers)
	c.BookmarkedPosts = slices.Clone(u.BookmarkedPosts)
	return &c
}

// conflict must be called with mu held.
func (r *InMemoryRepository) conflict(selfID, email, username string) error {
	for id, u := range r.byID {
		if id == selfID {
			continue
		}
		if email != "" && u.Email == email {
			return common.ErrEmailTaken
		}
		if username != "" && u.Username == username {
			return common.ErrUsernameTaken
		}
	}
	return nil
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conflict("", user.Email, user.Username); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := clone(user)
	u.ID = primitive.NewObjectID().Hex()
	u.Followings = []string{}
	u.Followers = []string{}
	u.BookmarkedPosts = []string{}
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[u.ID] = u
	r.order = append(r.order, u.ID)

	return clone(u), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.byID[id]; u.Email == email {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.ListExcluding(ctx, nil, 0)
}

// ListExcluding treats limit <= 0 as unlimited.
func (r *InMemoryRepository) ListExcluding(ctx context.Context, exclude []string, limit int) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0)
	for _, id := range r.order {
		if slices.Contains(exclude, id) {
			continue
		}
		result = append(result, clone(r.byID[id]))
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id string, upd models.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}

	var email, username string
	if upd.Email != nil {
		email = *upd.Email
	}
	if upd.Username != nil {
		username = *upd.Username
	}
	if err := r.conflict(id, email, username); err != nil {
		return err
	}

	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.ProfileImg != nil {
		u.ProfileImg = *upd.ProfileImg
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

func addToSet(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

func pull(list []string, v string) []string {
	return slices.DeleteFunc(list, func(s string) bool { return s == v })
}

func apply(list []string, v string, on bool) []string {
	if on {
		return addToSet(list, v)
	}
	return pull(list, v)
}

func (r *InMemoryRepository) SetFollow(ctx context.Context, followerID, followeeID string, follow bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	follower, ok := r.byID[followerID]
	if !ok {
		return common.ErrorNotFound
	}
	followee, ok := r.byID[followeeID]
	if !ok {
		return common.ErrorNotFound
	}

	follower.Followings = apply(follower.Followings, followeeID, follow)
	followee.Followers = apply(followee.Followers, followerID, follow)
	return nil
}

func (r *InMemoryRepository) SetBookmark(ctx context.Context, userID, postID string, bookmarked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.BookmarkedPosts = apply(u.BookmarkedPosts, postID, bookmarked)
	return nil
}

func (r *InMemoryRepository) PurgeUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		u.Followings = pull(u.Followings, id)
		u.Followers = pull(u.Followers, id)
	}
	return nil
}

func (r *InMemoryRepository) PurgeBookmark(ctx context.Context, postID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected []string
	for _, id := range r.order {
		u := r.byID[id]
		if slices.Contains(u.BookmarkedPosts, postID) {
			u.BookmarkedPosts = pull(u.BookmarkedPosts, postID)
			affected = append(affected, id)
		}
	}
	return affected, nil
}
