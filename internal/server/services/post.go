package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/cache"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophsocial/internal/syncx"
)

type PostInput struct {
	Photo       string `json:"photo"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type UpdatePostInput struct {
	Photo       *string `json:"photo"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

type PostService struct {
	repomanager repomanager.RepositoryManager
	cache       cache.ProfileCache
	events      events.Publisher
	log         logging.Logger
	locks       *syncx.KeyedMutex
}

func NewPostService(m repomanager.RepositoryManager, c cache.ProfileCache, p events.Publisher, log logging.Logger) *PostService {
	return &PostService{
		repomanager: m,
		cache:       c,
		events:      p,
		log:         log.With("module", "posts"),
		locks:       syncx.NewKeyedMutex(),
	}
}

func (s *PostService) Create(ctx context.Context, userID string, in PostInput) (*models.Post, error) {
	if blank(in.Photo) && blank(in.Description) {
		return nil, common.ErrEmptyPost
	}

	p, err := s.repomanager.Posts().Create(ctx, &models.Post{
		UserID:      userID,
		Photo:       in.Photo,
		Description: in.Description,
		Location:    in.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	publish(ctx, s.events, s.log, events.SubjectPostCreated, userID, p.ID)
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.repomanager.Posts().GetByID(ctx, id)
}

// ListByUser returns the posts of an existing user, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	if _, err := s.repomanager.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Posts().ListByUsers(ctx, []string{userID})
}

// Timeline merges the caller's posts with those of everyone they follow,
// newest first.
func (s *PostService) Timeline(ctx context.Context, userID string) ([]*models.Post, error) {
	me, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	authors := append([]string{me.ID}, me.Followings...)
	return s.repomanager.Posts().ListByUsers(ctx, authors)
}

// owned loads postID and checks that actorID wrote it.
func (s *PostService) owned(ctx context.Context, actorID, postID string) (*models.Post, error) {
	p, err := s.repomanager.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.UserID != actorID {
		return nil, common.ErrorForbidden
	}
	return p, nil
}

func (s *PostService) Update(ctx context.Context, actorID, postID string, in UpdatePostInput) (*models.Post, error) {
	p, err := s.owned(ctx, actorID, postID)
	if err != nil {
		return nil, err
	}

	upd := models.PostUpdate{Photo: in.Photo, Description: in.Description, Location: in.Location}
	if upd.Empty() {
		return p, nil
	}

	photo, desc := p.Photo, p.Description
	if upd.Photo != nil {
		photo = *upd.Photo
	}
	if upd.Description != nil {
		desc = *upd.Description
	}
	if blank(photo) && blank(desc) {
		return nil, common.ErrEmptyPost
	}

	if err := s.repomanager.Posts().Update(ctx, postID, upd); err != nil {
		return nil, err
	}
	return s.repomanager.Posts().GetByID(ctx, postID)
}

// Delete removes the post, its comments and every bookmark pointing at it.
func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	if _, err := s.owned(ctx, actorID, postID); err != nil {
		return err
	}

	if err := s.repomanager.Posts().Delete(ctx, postID); err != nil {
		return err
	}
	if err := s.repomanager.Comments().DeleteByPosts(ctx, []string{postID}); err != nil {
		return fmt.Errorf("error deleting comments: %w", err)
	}
	holders, err := s.repomanager.Users().PurgeBookmark(ctx, postID)
	if err != nil {
		return fmt.Errorf("error cleaning bookmarks: %w", err)
	}
	invalidateProfiles(ctx, s.cache, s.log, holders...)

	publish(ctx, s.events, s.log, events.SubjectPostDeleted, actorID, postID)
	return nil
}

// ToggleLike flips whether userID likes postID and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	unlock := s.locks.Lock("like:" + postID + ":" + userID)
	defer unlock()

	repo := s.repomanager.Posts()

	p, err := repo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}

	liked := !p.LikedBy(userID)
	if err := repo.SetLike(ctx, postID, userID, liked); err != nil {
		return false, err
	}

	if liked {
		publish(ctx, s.events, s.log, events.SubjectPostLiked, userID, postID)
	}
	return liked, nil
}
