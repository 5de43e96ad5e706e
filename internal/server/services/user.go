package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/cache"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophsocial/internal/syncx"
	"golang.org/x/sync/errgroup"
)

const friendsFetchConcurrency = 8

// UpdateUserInput is a partial profile update. Nil fields stay unchanged.
type UpdateUserInput struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	ProfileImg *string `json:"profileImg"`
	Bio        *string `json:"bio"`
}

// UserService manages profiles and the follow and bookmark relations.
//
// Toggles hold a per-key lock while reading the current state and writing the
// target state, so concurrent toggles on the same pair are applied one at a
// time. The guarantee holds within one process.
type UserService struct {
	repomanager repomanager.RepositoryManager
	cache       cache.ProfileCache
	events      events.Publisher
	log         logging.Logger
	locks       *syncx.KeyedMutex
}

func NewUserService(m repomanager.RepositoryManager, c cache.ProfileCache, p events.Publisher, log logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		cache:       c,
		events:      p,
		log:         log.With("module", "users"),
		locks:       syncx.NewKeyedMutex(),
	}
}

// Get returns a user, consulting the profile cache first. Cache failures are
// logged and fall through to the repository.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn(ctx, "profile cache read failed", "user_id", id, "error", err)
	}
	if ok {
		return u, nil
	}

	u, err = s.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, u); err != nil {
		s.log.Warn(ctx, "profile cache write failed", "user_id", id, "error", err)
	}
	return u, nil
}

func (s *UserService) invalidate(ctx context.Context, ids ...string) {
	invalidateProfiles(ctx, s.cache, s.log, ids...)
}

func (s *UserService) List(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		result = append(result, u.Summary())
	}
	return result, nil
}

// Suggested returns up to common.SuggestedUsersLimit users the caller neither
// is nor follows, in store order.
func (s *UserService) Suggested(ctx context.Context, userID string) ([]*models.User, error) {
	repo := s.repomanager.Users()

	me, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	exclude := append([]string{me.ID}, me.Followings...)
	return repo.ListExcluding(ctx, exclude, common.SuggestedUsersLimit)
}

// Friends returns the users the caller follows, in followings order. Ids that
// no longer resolve are skipped.
func (s *UserService) Friends(ctx context.Context, userID string) ([]*models.User, error) {
	repo := s.repomanager.Users()

	me, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := make([]*models.User, len(me.Followings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(friendsFetchConcurrency)

	for i, id := range me.Followings {
		g.Go(func() error {
			u, err := repo.GetByID(gctx, id)
			if err != nil {
				if errors.Is(err, common.ErrorNotFound) {
					return nil
				}
				return err
			}
			found[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*models.User, 0, len(found))
	for _, u := range found {
		if u != nil {
			result = append(result, u)
		}
	}
	return result, nil
}

// Update applies a partial update to targetID. Only the account owner may
// update it.
func (s *UserService) Update(ctx context.Context, actorID, targetID string, in UpdateUserInput) error {
	if actorID != targetID {
		return common.ErrorForbidden
	}

	upd := models.UserUpdate{
		Username:   in.Username,
		ProfileImg: in.ProfileImg,
		Bio:        in.Bio,
	}

	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return err
		}
		upd.Email = in.Email
	}

	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return err
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}
		upd.Password = &hash
	}

	if upd.Empty() {
		// nothing to change, but the account must still exist
		_, err := s.repomanager.Users().GetByID(ctx, targetID)
		return err
	}

	if err := s.repomanager.Users().Update(ctx, targetID, upd); err != nil {
		return err
	}

	s.invalidate(ctx, targetID)
	return nil
}

// Delete removes the account and everything hanging off it: the id is pulled
// from other users' relations and the user's posts (with their comments and
// bookmarks) are removed.
func (s *UserService) Delete(ctx context.Context, actorID, targetID string) error {
	if actorID != targetID {
		return common.ErrorForbidden
	}

	usersRepo := s.repomanager.Users()

	u, err := usersRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if err := usersRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	if err := usersRepo.PurgeUser(ctx, targetID); err != nil {
		return fmt.Errorf("error cleaning relations: %w", err)
	}

	postIDs, err := s.repomanager.Posts().DeleteByUser(ctx, targetID)
	if err != nil {
		return fmt.Errorf("error deleting posts: %w", err)
	}
	if err := s.repomanager.Comments().DeleteByPosts(ctx, postIDs); err != nil {
		return fmt.Errorf("error deleting comments: %w", err)
	}

	affected := append([]string{targetID}, u.Followings...)
	affected = append(affected, u.Followers...)
	for _, id := range postIDs {
		holders, err := usersRepo.PurgeBookmark(ctx, id)
		if err != nil {
			s.invalidate(ctx, affected...)
			return fmt.Errorf("error cleaning bookmarks: %w", err)
		}
		affected = append(affected, holders...)
	}

	s.invalidate(ctx, affected...)

	s.log.Info(ctx, "user deleted", "user_id", targetID, "posts", len(postIDs))
	publish(ctx, s.events, s.log, events.SubjectUserDeleted, targetID, "")
	return nil
}

// ToggleFollow flips whether actorID follows targetID and reports the new
// state.
func (s *UserService) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, common.ErrSelfFollow
	}

	unlock := s.locks.Lock(syncx.PairKey("follow", actorID, targetID))
	defer unlock()

	repo := s.repomanager.Users()

	if _, err := repo.GetByID(ctx, targetID); err != nil {
		return false, err
	}
	me, err := repo.GetByID(ctx, actorID)
	if err != nil {
		return false, err
	}

	following := !me.IsFollowing(targetID)
	if err := repo.SetFollow(ctx, actorID, targetID, following); err != nil {
		return false, err
	}

	s.invalidate(ctx, actorID, targetID)

	subject := events.SubjectUserUnfollowed
	if following {
		subject = events.SubjectUserFollowed
	}
	publish(ctx, s.events, s.log, subject, actorID, targetID)

	return following, nil
}

// ToggleBookmark flips whether postID is in userID's bookmarks and reports the
// new state.
func (s *UserService) ToggleBookmark(ctx context.Context, userID, postID string) (bool, error) {
	unlock := s.locks.Lock("bookmark:" + userID + ":" + postID)
	defer unlock()

	if _, err := s.repomanager.Posts().GetByID(ctx, postID); err != nil {
		return false, err
	}

	repo := s.repomanager.Users()
	me, err := repo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	bookmarked := !me.HasBookmarked(postID)
	if err := repo.SetBookmark(ctx, userID, postID, bookmarked); err != nil {
		return false, err
	}

	s.invalidate(ctx, userID)
	return bookmarked, nil
}
