package comments

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
	mu       sync.RWMutex
	comments []*models.Comment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := *c
	n.ID = primitive.NewObjectID().Hex()
	n.CreatedAt = time.Now().UTC()
	r.comments = append(r.comments, &n)

	out := n
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.comments {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Comment, 0)
	for _, c := range r.comments {
		if c.PostID == postID {
			out := *c
			result = append(result, &out)
		}
	}
	return result, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.comments, func(c *models.Comment) bool { return c.ID == id })
	if i < 0 {
		return common.ErrorNotFound
	}
	r.comments = slices.Delete(r.comments, i, i+1)
	return nil
}

func (r *InMemoryRepository) DeleteByPosts(ctx context.Context, postIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comments = slices.DeleteFunc(r.comments, func(c *models.Comment) bool {
		return slices.Contains(postIDs, c.PostID)
	})
	return nil
}
