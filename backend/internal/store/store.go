// Package store defines the persistence primitives every backend implements.
//
// Relation sets are only ever changed through ApplySetOps, which applies a batch
// of idempotent set-union / set-difference operations atomically. Comment
// insert/delete and the parent post's comment counter change in the same write.
package store

import (
	"context"
	"time"

	"campusnet/backend/internal/social"
)

// UserRepository owns user records and their relation sets
type UserRepository interface {
	// CreateUser stores a new user. Conflict(EmailTaken) if the email is in use.
	CreateUser(ctx context.Context, user *social.User) error
	// GetUser loads a user with all four relation sets. NotFound(UserNotFound) if absent.
	GetUser(ctx context.Context, id string) (*social.User, error)
	// UpdateProfile applies a partial profile change and returns the updated user
	UpdateProfile(ctx context.Context, id string, update social.ProfileUpdate, at time.Time) (*social.User, error)
	// FindUsers returns users matching criteria, newest first, never including excludeID
	FindUsers(ctx context.Context, excludeID string, criteria social.SearchCriteria) ([]*social.User, error)
	// ApplySetOps applies all operations or none. Adds referencing an unknown
	// owner or member fail with NotFound(UserNotFound).
	ApplySetOps(ctx context.Context, ops []social.SetOp) error
}

// PostRepository owns posts and post likes
type PostRepository interface {
	// CreatePost stores a post with zero comments. NotFound(UserNotFound) for an unknown author.
	CreatePost(ctx context.Context, post *social.Post) error
	GetPost(ctx context.Context, id string) (*social.Post, error)
	// ListPosts returns posts newest first; authorID "" lists everyone, limit <= 0 is unbounded
	ListPosts(ctx context.Context, authorID string, limit int) ([]*social.Post, error)
	UpdatePostContent(ctx context.Context, id, content string, at time.Time) (*social.Post, error)
	// DeletePost removes the post and all of its comments, returning how many comments went with it
	DeletePost(ctx context.Context, id string) (int, error)
	TogglePostLike(ctx context.Context, postID, userID string) (social.LikeState, error)
}

// CommentRepository owns comments and keeps Post.CommentCount in step
type CommentRepository interface {
	// CreateComment stores the comment and increments the parent's counter in one write
	CreateComment(ctx context.Context, comment *social.Comment) error
	GetComment(ctx context.Context, id string) (*social.Comment, error)
	// ListComments returns a post's comments oldest first. NotFound(PostNotFound) if the post is absent.
	ListComments(ctx context.Context, postID string) ([]*social.Comment, error)
	// DeleteComment removes the comment and decrements the parent's counter in one write
	DeleteComment(ctx context.Context, id string) error
	ToggleCommentLike(ctx context.Context, commentID, userID string) (social.LikeState, error)
}

// Auditor reports broken graph and counter invariants
type Auditor interface {
	Audit(ctx context.Context) ([]social.Violation, error)
}

// Store is a complete backend
type Store interface {
	UserRepository
	PostRepository
	CommentRepository
	Auditor
	Close(ctx context.Context) error
}
