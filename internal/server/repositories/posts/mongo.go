package posts

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

const CollectionName = "posts"

type postDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      string             `bson:"user"`
	Photo       string             `bson:"photo"`
	Description string             `bson:"description"`
	Location    string             `bson:"location"`
	Likes       []string           `bson:"likes"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func mapToEntity(d *postDoc) *models.Post {
	likes := d.Likes
	if likes == nil {
		likes = []string{}
	}
	return &models.Post{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Photo:       d.Photo,
		Description: d.Description,
		Location:    d.Location,
		Likes:       likes,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
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
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("user_1_createdAt_-1")},
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrorNotFound
	}
	return oid, nil
}

func (r *MongoRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	now := time.Now().UTC()
	doc := &postDoc{
		ID:          primitive.NewObjectID(),
		UserID:      post.UserID,
		Photo:       post.Photo,
		Description: post.Description,
		Location:    post.Location,
		Likes:       []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return mapToEntity(doc), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc postDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return mapToEntity(&doc), nil
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]*models.Post, []primitive.ObjectID, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.Post, 0, len(docs))
	ids := make([]primitive.ObjectID, 0, len(docs))
	for i := range docs {
		result = append(result, mapToEntity(&docs[i]))
		ids = append(ids, docs[i].ID)
	}
	return result, ids, nil
}

func (r *MongoRepository) ListByUsers(ctx context.Context, userIDs []string) ([]*models.Post, error) {
	if len(userIDs) == 0 {
		return []*models.Post{}, nil
	}
	posts, _, err := r.find(ctx, bson.M{"user": bson.M{"$in": userIDs}})
	return posts, err
}

func (r *MongoRepository) Update(ctx context.Context, id string, upd models.PostUpdate) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Photo != nil {
		set["photo"] = *upd.Photo
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
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

func (r *MongoRepository) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	posts, oids, err := r.find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	if len(oids) == 0 {
		return []string{}, nil
	}

	if _, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}}); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r *MongoRepository) SetLike(ctx context.Context, postID, userID string, liked bool) error {
	oid, err := objectID(postID)
	if err != nil {
		return err
	}

	op := "$pull"
	if liked {
		op = "$addToSet"
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{op: bson.M{"likes": userID}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}
