package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

// ============================================================================
// Post Operations
// ============================================================================

const postProjection = `
	p {.*} AS post,
	a.id AS author_id,
	[(l:User)-[:LIKES]->(p) | l.id] AS likes
`

// CreatePost attaches a new post to its author
func (r *Repository) CreatePost(ctx context.Context, post *social.Post) error {
	_, err := r.write(ctx, "create post", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			OPTIONAL MATCH (a:User {id: $author})
			FOREACH (_ IN CASE WHEN a IS NULL THEN [] ELSE [1] END |
				CREATE (a)-[:AUTHORED]->(:Post {
					id: $id,
					content: $content,
					comment_count: 0,
					created_at: datetime($createdAt),
					updated_at: datetime($updatedAt)
				})
			)
			RETURN a IS NOT NULL AS author_found
		`, map[string]any{
			"author":    post.AuthorID,
			"id":        post.ID,
			"content":   post.Content,
			"createdAt": formatTime(post.CreatedAt),
			"updatedAt": formatTime(post.UpdatedAt),
		})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		if !getBoolFromRecord(record, "author_found") {
			return nil, apperrors.NewUserNotFound(post.AuthorID)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Post created", zap.String("post_id", post.ID), zap.String("author_id", post.AuthorID))
	return nil
}

// GetPost loads a post with its likes
func (r *Repository) GetPost(ctx context.Context, id string) (*social.Post, error) {
	res, err := r.read(ctx, "get post", func(tx neo4j.ManagedTransaction) (any, error) {
		return fetchPost(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*social.Post), nil
}

func fetchPost(ctx context.Context, tx neo4j.ManagedTransaction, id string) (*social.Post, error) {
	result, err := tx.Run(ctx, `
		MATCH (a:User)-[:AUTHORED]->(p:Post {id: $id})
		RETURN `+postProjection,
		map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if result.Next(ctx) {
		return postFromRecord(result.Record()), nil
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return nil, apperrors.NewPostNotFound(id)
}

// ListPosts returns posts newest first, optionally for one author
func (r *Repository) ListPosts(ctx context.Context, authorID string, limit int) ([]*social.Post, error) {
	query := `
		MATCH (a:User)-[:AUTHORED]->(p:Post)
		WHERE $author = '' OR a.id = $author
		RETURN ` + postProjection + `
		ORDER BY p.created_at DESC, p.id DESC
	`
	params := map[string]any{"author": authorID}
	if limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = int64(limit)
	}

	res, err := r.read(ctx, "list posts", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		posts := make([]*social.Post, 0)
		for result.Next(ctx) {
			posts = append(posts, postFromRecord(result.Record()))
		}
		return posts, result.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.([]*social.Post), nil
}

// UpdatePostContent replaces a post's content
func (r *Repository) UpdatePostContent(ctx context.Context, id, content string, at time.Time) (*social.Post, error) {
	res, err := r.write(ctx, "update post", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (a:User)-[:AUTHORED]->(p:Post {id: $id})
			SET p.content = $content,
			    p.updated_at = datetime($at)
			RETURN `+postProjection,
			map[string]any{"id": id, "content": content, "at": formatTime(at)})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return postFromRecord(result.Record()), nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewPostNotFound(id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*social.Post), nil
}

// DeletePost removes the post and its comments in one transaction
func (r *Repository) DeletePost(ctx context.Context, id string) (int, error) {
	res, err := r.write(ctx, "delete post", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (p:Post {id: $id})
			OPTIONAL MATCH (c:Comment)-[:ON_POST]->(p)
			WITH p, collect(c) AS comments
			FOREACH (c IN comments | DETACH DELETE c)
			DETACH DELETE p
			RETURN size(comments) AS removed
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return getIntFromRecord(result.Record(), "removed"), nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewPostNotFound(id)
	})
	if err != nil {
		return 0, err
	}

	removed := res.(int)
	r.logger.Info("Post deleted", zap.String("post_id", id), zap.Int("comments_removed", removed))
	return removed, nil
}

// TogglePostLike flips userID's like on a post
func (r *Repository) TogglePostLike(ctx context.Context, postID, userID string) (social.LikeState, error) {
	return r.toggleLike(ctx, "Post", postID, userID)
}

// toggleLike locks the target node before reading the like so concurrent
// toggles by the same user serialize. label is always a fixed literal.
func (r *Repository) toggleLike(ctx context.Context, label, targetID, userID string) (social.LikeState, error) {
	res, err := r.write(ctx, "toggle like", func(tx neo4j.ManagedTransaction) (any, error) {
		params := map[string]any{"target": targetID, "user": userID}

		result, err := tx.Run(ctx, fmt.Sprintf(`
			OPTIONAL MATCH (t:%s {id: $target})
			OPTIONAL MATCH (u:User {id: $user})
			RETURN t IS NOT NULL AS target_found, u IS NOT NULL AS user_found
		`, label), params)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		if !getBoolFromRecord(record, "target_found") {
			if label == "Comment" {
				return nil, apperrors.NewCommentNotFound(targetID)
			}
			return nil, apperrors.NewPostNotFound(targetID)
		}
		if !getBoolFromRecord(record, "user_found") {
			return nil, apperrors.NewUserNotFound(userID)
		}

		result, err = tx.Run(ctx, fmt.Sprintf(`
			MATCH (t:%s {id: $target}), (u:User {id: $user})
			SET t.like_seq = coalesce(t.like_seq, 0) + 1
			WITH t, u
			OPTIONAL MATCH (u)-[l:LIKES]->(t)
			WITH t, u, l, l IS NULL AS liking
			FOREACH (_ IN CASE WHEN liking THEN [1] ELSE [] END | MERGE (u)-[:LIKES]->(t))
			DELETE l
			RETURN liking
		`, label), params)
		if err != nil {
			return nil, err
		}
		record, err = result.Single(ctx)
		if err != nil {
			return nil, err
		}
		if getBoolFromRecord(record, "liking") {
			return social.Liked, nil
		}
		return social.Unliked, nil
	})
	if err != nil {
		return "", err
	}
	return res.(social.LikeState), nil
}

func postFromRecord(record *neo4j.Record) *social.Post {
	props := getMapFromRecord(record, "post")
	return &social.Post{
		ID:           getStringFromMap(props, "id", ""),
		AuthorID:     getStringFromRecord(record, "author_id"),
		Content:      getStringFromMap(props, "content", ""),
		Likes:        social.NewIDSet(getStringSliceFromRecord(record, "likes")...),
		CommentCount: getIntFromMap(props, "comment_count", 0),
		CreatedAt:    getTimeFromMap(props, "created_at"),
		UpdatedAt:    getTimeFromMap(props, "updated_at"),
	}
}
