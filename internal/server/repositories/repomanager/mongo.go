// Package repomanager provides RepositoryManager implementations for MongoDB
// and for in-process memory, wiring together repository constructors and
// index setup.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/comments"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/posts"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepositoryManager vends MongoDB-backed repositories sharing one
// database handle.
type MongoRepositoryManager struct {
	db       *mongo.Database
	users    *users.MongoRepository
	posts    *posts.MongoRepository
	comments *comments.MongoRepository
}

func (m *MongoRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MongoRepositoryManager) Posts() posts.Repository {
	return m.posts
}

func (m *MongoRepositoryManager) Comments() comments.Repository {
	return m.comments
}

// createIndexes is a seam for testing index creation.
var createIndexes = func(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

// RunMigrations ensures every collection has the indexes the repositories
// rely on, including the unique email/username constraints.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	sets := []struct {
		collection string
		indexes    []mongo.IndexModel
	}{
		{users.CollectionName, users.Indexes()},
		{posts.CollectionName, posts.Indexes()},
		{comments.CollectionName, comments.Indexes()},
	}

	for _, s := range sets {
		if err := createIndexes(ctx, m.db.Collection(s.collection), s.indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", s.collection, err)
		}
	}
	return nil
}

func NewMongoRepositoryManager(db *mongo.Database) RepositoryManager {
	return &MongoRepositoryManager{
		db:       db,
		users:    users.NewMongoRepository(db),
		posts:    posts.NewMongoRepository(db),
		comments: comments.NewMongoRepository(db),
	}
}
