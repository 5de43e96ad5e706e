package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/comments"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/users"
)

// InMemoryRepositoryManager backs every repository with process memory. Used
// by tests and when the server runs without a database.
type InMemoryRepositoryManager struct {
	users    *users.InMemoryRepository
	posts    *posts.InMemoryRepository
	comments *comments.InMemoryRepository
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Posts() posts.Repository {
	return m.posts
}

func (m *InMemoryRepositoryManager) Comments() comments.Repository {
	return m.comments
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewInMemoryRepository(),
		posts:    posts.NewInMemoryRepository(),
		comments: comments.NewInMemoryRepository(),
	}
}
