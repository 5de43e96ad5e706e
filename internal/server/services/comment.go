package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

type CommentInput struct {
	PostID      string `json:"postId"`
	CommentText string `json:"commentText"`
}

type CommentService struct {
	repomanager repomanager.RepositoryManager
}

func NewCommentService(m repomanager.RepositoryManager) *CommentService {
	return &CommentService{repomanager: m}
}

func (s *CommentService) Create(ctx context.Context, userID string, in CommentInput) (*models.Comment, error) {
	if blank(in.CommentText) {
		return nil, common.ErrEmptyComment
	}
	if _, err := s.repomanager.Posts().GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	c, err := s.repomanager.Comments().Create(ctx, &models.Comment{
		PostID:      in.PostID,
		UserID:      userID,
		CommentText: in.CommentText,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}
	return c, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	if _, err := s.repomanager.Posts().GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.repomanager.Comments().ListByPost(ctx, postID)
}

// Delete removes a comment. The comment's author and the post's author may
// delete it.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	c, err := s.repomanager.Comments().GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if c.UserID != actorID {
		p, err := s.repomanager.Posts().GetByID(ctx, c.PostID)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrorForbidden
		case err != nil:
			return err
		case p.UserID != actorID:
			return common.ErrorForbidden
		}
	}

	return s.repomanager.Comments().Delete(ctx, commentID)
}
