// Package feed owns posts and comments: authorship rules, content limits,
// like toggles and the comment counter kept on each post.
package feed

import (
	"context"

	"campusnet/backend/internal/constants"
	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store"
	apperrors "campusnet/backend/pkg/errors"
)

// Option customizes Posts and Comments
type Option func(*settings)

type settings struct {
	clock social.Clock
	ids   social.IDGenerator
}

// WithClock overrides the time source
func WithClock(c social.Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithIDGenerator overrides record ID generation
func WithIDGenerator(g social.IDGenerator) Option {
	return func(s *settings) { s.ids = g }
}

func newSettings(opts []Option) settings {
	s := settings{clock: social.SystemClock{}, ids: social.UUIDGenerator{}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Posts is the post store
type Posts struct {
	repo store.PostRepository
	settings
}

// NewPosts creates a post store over repo
func NewPosts(repo store.PostRepository, opts ...Option) *Posts {
	return &Posts{repo: repo, settings: newSettings(opts)}
}

// Create publishes a post by authorID
func (p *Posts) Create(ctx context.Context, authorID, content string) (*social.Post, error) {
	content, err := social.NormalizeContent("post", content, constants.MaxPostLength)
	if err != nil {
		return nil, err
	}

	now := p.clock.Now()
	post := &social.Post{
		ID:        p.ids.New(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get returns a post or NotFound(PostNotFound)
func (p *Posts) Get(ctx context.Context, postID string) (*social.Post, error) {
	return p.repo.GetPost(ctx, postID)
}

// ListFeed returns the newest posts across all authors
func (p *Posts) ListFeed(ctx context.Context, limit int) ([]*social.Post, error) {
	return p.repo.ListPosts(ctx, "", FeedLimit(limit))
}

// ListByAuthor returns authorID's posts newest first; limit <= 0 returns all of them
func (p *Posts) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*social.Post, error) {
	if limit > constants.MaxFeedLimit {
		limit = constants.MaxFeedLimit
	}
	return p.repo.ListPosts(ctx, authorID, limit)
}

// ToggleLike flips userID's like on the post
func (p *Posts) ToggleLike(ctx context.Context, postID, userID string) (social.LikeState, error) {
	return p.repo.TogglePostLike(ctx, postID, userID)
}

// Update replaces the content of a post owned by callerID
func (p *Posts) Update(ctx context.Context, postID, callerID, content string) (*social.Post, error) {
	content, err := social.NormalizeContent("post", content, constants.MaxPostLength)
	if err != nil {
		return nil, err
	}
	if _, err := p.owned(ctx, postID, callerID); err != nil {
		return nil, err
	}
	return p.repo.UpdatePostContent(ctx, postID, content, p.clock.Now())
}

// Delete removes a post owned by callerID together with its comments
func (p *Posts) Delete(ctx context.Context, postID, callerID string) error {
	if _, err := p.owned(ctx, postID, callerID); err != nil {
		return err
	}
	_, err := p.repo.DeletePost(ctx, postID)
	return err
}

func (p *Posts) owned(ctx context.Context, postID, callerID string) (*social.Post, error) {
	post, err := p.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, apperrors.NewNotOwner("post", callerID)
	}
	return post, nil
}

// FeedLimit applies the default and maximum page size
func FeedLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultFeedLimit
	}
	if limit > constants.MaxFeedLimit {
		return constants.MaxFeedLimit
	}
	return limit
}
