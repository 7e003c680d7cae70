package feed

import (
	"context"

	"campusnet/backend/internal/constants"
	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store"
	apperrors "campusnet/backend/pkg/errors"
)

// Comments is the comment store. The parent post's counter changes in the
// same store write as each insert and delete.
type Comments struct {
	repo store.CommentRepository
	settings
}

// NewComments creates a comment store over repo
func NewComments(repo store.CommentRepository, opts ...Option) *Comments {
	return &Comments{repo: repo, settings: newSettings(opts)}
}

// Create adds a comment by authorID to postID
func (c *Comments) Create(ctx context.Context, postID, authorID, content string) (*social.Comment, error) {
	content, err := social.NormalizeContent("comment", content, constants.MaxCommentLength)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	comment := &social.Comment{
		ID:        c.ids.New(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost returns a post's comments oldest first
func (c *Comments) ListByPost(ctx context.Context, postID string) ([]*social.Comment, error) {
	return c.repo.ListComments(ctx, postID)
}

// ToggleLike flips userID's like on the comment
func (c *Comments) ToggleLike(ctx context.Context, commentID, userID string) (social.LikeState, error) {
	return c.repo.ToggleCommentLike(ctx, commentID, userID)
}

// Delete removes a comment written by callerID
func (c *Comments) Delete(ctx context.Context, commentID, callerID string) error {
	comment, err := c.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != callerID {
		return apperrors.NewNotOwner("comment", callerID)
	}
	return c.repo.DeleteComment(ctx, commentID)
}
