package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "users"

const (
	emailIndex    = "email_1"
	usernameIndex = "username_1"
)

type userDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	Username        string             `bson:"username,omitempty"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"`
	ProfileImg      string             `bson:"profileImg"`
	Bio             string             `bson:"bio"`
	Followings      []string           `bson:"followings"`
	Followers       []string           `bson:"followers"`
	BookmarkedPosts []string           `bson:"bookmarkedPosts"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func mapToEntity(d *userDoc) *models.User {
	return &models.User{
		ID:              d.ID.Hex(),
		Username:        d.Username,
		Email:           d.Email,
		Password:        d.Password,
		ProfileImg:      d.ProfileImg,
		Bio:             d.Bio,
		Followings:      nonNil(d.Followings),
		Followers:       nonNil(d.Followers),
		BookmarkedPosts: nonNil(d.BookmarkedPosts),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// Indexes lists the indexes the users collection relies on.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName(usernameIndex)},
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, common.ErrorNotFound
	}
	return oid, nil
}

// mapWriteError translates duplicate key violations into the conflict
// sentinel of the violated index. The index is matched by name so key values
// in the message cannot be mistaken for it.
func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "index: "+emailIndex+" "):
			return common.ErrEmailTaken
		case strings.Contains(msg, "index: "+usernameIndex+" "):
			return common.ErrUsernameTaken
		}
		return common.ErrorAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	doc := &userDoc{
		ID:              primitive.NewObjectID(),
		Username:        user.Username,
		Email:           user.Email,
		Password:        user.Password,
		ProfileImg:      user.ProfileImg,
		Bio:             user.Bio,
		Followings:      []string{},
		Followers:       []string{},
		BookmarkedPosts: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapWriteError(err)
	}

	return mapToEntity(doc), nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return mapToEntity(&doc), nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*models.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.User, 0, len(docs))
	for i := range docs {
		result = append(result, mapToEntity(&docs[i]))
	}
	return result, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *MongoRepository) ListExcluding(ctx context.Context, exclude []string, limit int) ([]*models.User, error) {
	oids := make([]primitive.ObjectID, 0, len(exclude))
	for _, id := range exclude {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))
	return r.find(ctx, bson.M{"_id": bson.M{"$nin": oids}}, opts)
}

func (r *MongoRepository) Update(ctx context.Context, id string, upd models.UserUpdate) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	update := bson.M{"$set": set}
	// an empty username is removed so the sparse index skips the document
	if upd.Username != nil {
		if *upd.Username == "" {
			update["$unset"] = bson.M{"username": ""}
		} else {
			set["username"] = *upd.Username
		}
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Password != nil {
		set["password"] = *upd.Password
	}
	if upd.ProfileImg != nil {
		set["profileImg"] = *upd.ProfileImg
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return mapWriteError(err)
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

func setOp(on bool) string {
	if on {
		return "$addToSet"
	}
	return "$pull"
}

func (r *MongoRepository) updateSet(ctx context.Context, id, field, value string, on bool) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	update := bson.M{
		setOp(on): bson.M{field: value},
		"$set":    bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// SetFollow writes the follower side first. If the followee side fails, the
// follower write is reverted so the relation is not left one-sided; a failed
// revert is reported alongside the original error.
func (r *MongoRepository) SetFollow(ctx context.Context, followerID, followeeID string, follow bool) error {
	if err := r.updateSet(ctx, followerID, "followings", followeeID, follow); err != nil {
		return err
	}
	if err := r.updateSet(ctx, followeeID, "followers", followerID, follow); err != nil {
		if rerr := r.updateSet(ctx, followerID, "followings", followeeID, !follow); rerr != nil {
			return errors.Join(err, fmt.Errorf("revert followings: %w", rerr))
		}
		return err
	}
	return nil
}

func (r *MongoRepository) SetBookmark(ctx context.Context, userID, postID string, bookmarked bool) error {
	return r.updateSet(ctx, userID, "bookmarkedPosts", postID, bookmarked)
}

func (r *MongoRepository) PurgeUser(ctx context.Context, id string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"$or": bson.A{bson.M{"followings": id}, bson.M{"followers": id}}},
		bson.M{"$pull": bson.M{"followings": id, "followers": id}},
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// PurgeBookmark reads the holders first so their cached profiles can be
// dropped. A user bookmarking the post between the two calls is not reported.
func (r *MongoRepository) PurgeBookmark(ctx context.Context, postID string) ([]string, error) {
	filter := bson.M{"bookmarkedPosts": postID}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	var holders []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err = cur.All(ctx, &holders)
	_ = cur.Close(ctx)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(holders) == 0 {
		return nil, nil
	}

	if _, err := r.coll.UpdateMany(ctx, filter, bson.M{"$pull": bson.M{"bookmarkedPosts": postID}}); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	ids := make([]string, 0, len(holders))
	for _, h := range holders {
		ids = append(ids, h.ID.Hex())
	}
	return ids, nil
}
