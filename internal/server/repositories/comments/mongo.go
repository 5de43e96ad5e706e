package comments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "comments"

type commentDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	PostID      string             `bson:"postId"`
	UserID      string             `bson:"user"`
	CommentText string             `bson:"commentText"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func mapToEntity(d *commentDoc) *models.Comment {
	return &models.Comment{
		ID:          d.ID.Hex(),
		PostID:      d.PostID,
		UserID:      d.UserID,
		CommentText: d.CommentText,
		CreatedAt:   d.CreatedAt,
	}
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}, Options: options.Index().SetName("postId_1_createdAt_1")},
	}
}

func (r *MongoRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	doc := &commentDoc{
		ID:          primitive.NewObjectID(),
		PostID:      c.PostID,
		UserID:      c.UserID,
		CommentText: c.CommentText,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return mapToEntity(doc), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	var doc commentDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return mapToEntity(&doc), nil
}

func (r *MongoRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.Comment, 0, len(docs))
	for i := range docs {
		result = append(result, mapToEntity(&docs[i]))
	}
	return result, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.DeletedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteByPosts(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	if _, err := r.coll.DeleteMany(ctx, bson.M{"postId": bson.M{"$in": postIDs}}); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
