package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/comments"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Users() users.Repository
	Posts() posts.Repository
	Comments() comments.Repository
}
