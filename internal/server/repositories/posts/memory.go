package posts

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	posts []*models.Post
	now   func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: func() time.Time { return time.Now().UTC() }}
}

func clone(p *models.Post) *models.Post {
	c := *p
	c.Likes = slices.Clone(p.Likes)
	return &c
}

// index must be called with mu held.
func (r *InMemoryRepository) index(id string) int {
	return slices.IndexFunc(r.posts, func(p *models.Post) bool { return p.ID == id })
}

func (r *InMemoryRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := clone(post)
	p.ID = primitive.NewObjectID().Hex()
	p.Likes = []string{}
	p.CreatedAt = r.now()
	p.UpdatedAt = p.CreatedAt
	r.posts = append(r.posts, p)

	return clone(p), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(id)
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	return clone(r.posts[i]), nil
}

func (r *InMemoryRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Post, 0)
	// newest first: walk insertion order backwards
	for i := len(r.posts) - 1; i >= 0; i-- {
		if slices.Contains(userIDs, r.posts[i].UserID) {
			result = append(result, clone(r.posts[i]))
		}
	}
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id string, upd models.PostUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	p := r.posts[i]
	if upd.Photo != nil {
		p.Photo = *upd.Photo
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	p.UpdatedAt = r.now()
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return common.ErrorNotFound
	}
	r.posts = slices.Delete(r.posts, i, i+1)
	return nil
}

func (r *InMemoryRepository) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := []string{}
	r.posts = slices.DeleteFunc(r.posts, func(p *models.Post) bool {
		if p.UserID == userID {
			ids = append(ids, p.ID)
			return true
		}
		return false
	})
	return ids, nil
}

func (r *InMemoryRepository) SetLike(ctx context.Context, postID, userID string, liked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(postID)
	if i < 0 {
		return common.ErrorNotFound
	}
	p := r.posts[i]
	has := slices.Contains(p.Likes, userID)
	switch {
	case liked && !has:
		p.Likes = append(p.Likes, userID)
	case !liked && has:
		p.Likes = slices.DeleteFunc(p.Likes, func(s string) bool { return s == userID })
	}
	return nil
}
