package query

import (
	"context"

	"campusnet/backend/internal/social"
)

// PostReader is the read side of the post store
type PostReader interface {
	Get(ctx context.Context, postID string) (*social.Post, error)
	ListFeed(ctx context.Context, limit int) ([]*social.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*social.Post, error)
}

// CommentReader is the read side of the comment store
type CommentReader interface {
	ListByPost(ctx context.Context, postID string) ([]*social.Comment, error)
}

// Feed builds post and comment views
type Feed struct {
	users    UserReader
	posts    PostReader
	comments CommentReader
}

// NewFeed creates a feed query
func NewFeed(users UserReader, posts PostReader, comments CommentReader) *Feed {
	return &Feed{users: users, posts: posts, comments: comments}
}

// Latest returns the newest posts across all authors
func (f *Feed) Latest(ctx context.Context, viewerID string, limit int) ([]PostView, error) {
	posts, err := f.posts.ListFeed(ctx, limit)
	if err != nil {
		return nil, err
	}
	return f.postViews(ctx, posts, viewerID)
}

// ByAuthor returns authorID's posts; limit <= 0 returns all of them
func (f *Feed) ByAuthor(ctx context.Context, viewerID, authorID string, limit int) ([]PostView, error) {
	author, err := f.users.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}
	posts, err := f.posts.ListByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, err
	}

	summary := summarize(author)
	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = postView(p, summary, viewerID)
	}
	return views, nil
}

// Post returns a single post view
func (f *Feed) Post(ctx context.Context, viewerID, postID string) (*PostView, error) {
	post, err := f.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	views, err := f.postViews(ctx, []*social.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Comments returns a post's comments oldest first
func (f *Feed) Comments(ctx context.Context, viewerID, postID string) ([]CommentView, error) {
	comments, err := f.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	authors, err := loadAuthors(ctx, f.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = commentView(c, authorOrStub(authors, c.AuthorID), viewerID)
	}
	return views, nil
}

// Comment decorates a single comment with its author
func (f *Feed) Comment(ctx context.Context, viewerID string, c *social.Comment) (*CommentView, error) {
	authors, err := loadAuthors(ctx, f.users, []string{c.AuthorID})
	if err != nil {
		return nil, err
	}
	view := commentView(c, authorOrStub(authors, c.AuthorID), viewerID)
	return &view, nil
}

func (f *Feed) postViews(ctx context.Context, posts []*social.Post, viewerID string) ([]PostView, error) {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.AuthorID
	}
	authors, err := loadAuthors(ctx, f.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = postView(p, authorOrStub(authors, p.AuthorID), viewerID)
	}
	return views, nil
}

func authorOrStub(authors map[string]AuthorSummary, id string) AuthorSummary {
	if a, ok := authors[id]; ok {
		return a
	}
	return AuthorSummary{ID: id}
}
