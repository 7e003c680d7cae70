package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

// ============================================================================
// Comment Operations
// ============================================================================

const commentProjection = `
	c {.*} AS comment,
	a.id AS author_id,
	p.id AS post_id,
	[(l:User)-[:LIKES]->(c) | l.id] AS likes
`

// CreateComment stores a comment and bumps the parent's comment_count in the same transaction
func (r *Repository) CreateComment(ctx context.Context, comment *social.Comment) error {
	_, err := r.write(ctx, "create comment", func(tx neo4j.ManagedTransaction) (any, error) {
		params := map[string]any{
			"id":        comment.ID,
			"post":      comment.PostID,
			"author":    comment.AuthorID,
			"content":   comment.Content,
			"createdAt": formatTime(comment.CreatedAt),
			"updatedAt": formatTime(comment.UpdatedAt),
		}

		result, err := tx.Run(ctx, `
			OPTIONAL MATCH (p:Post {id: $post})
			OPTIONAL MATCH (a:User {id: $author})
			RETURN p IS NOT NULL AS post_found, a IS NOT NULL AS author_found
		`, params)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		if !getBoolFromRecord(record, "post_found") {
			return nil, apperrors.NewPostNotFound(comment.PostID)
		}
		if !getBoolFromRecord(record, "author_found") {
			return nil, apperrors.NewUserNotFound(comment.AuthorID)
		}

		_, err = tx.Run(ctx, `
			MATCH (p:Post {id: $post}), (a:User {id: $author})
			CREATE (a)-[:WROTE]->(:Comment {
				id: $id,
				content: $content,
				created_at: datetime($createdAt),
				updated_at: datetime($updatedAt)
			})-[:ON_POST]->(p)
			SET p.comment_count = coalesce(p.comment_count, 0) + 1
		`, params)
		return nil, err
	})
	if err != nil {
		return err
	}

	r.logger.Info("Comment created", zap.String("comment_id", comment.ID), zap.String("post_id", comment.PostID))
	return nil
}

// GetComment loads a comment with its likes
func (r *Repository) GetComment(ctx context.Context, id string) (*social.Comment, error) {
	res, err := r.read(ctx, "get comment", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (a:User)-[:WROTE]->(c:Comment {id: $id})-[:ON_POST]->(p:Post)
			RETURN `+commentProjection,
			map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return commentFromRecord(result.Record()), nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewCommentNotFound(id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*social.Comment), nil
}

// ListComments returns a post's comments oldest first
func (r *Repository) ListComments(ctx context.Context, postID string) ([]*social.Comment, error) {
	res, err := r.read(ctx, "list comments", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (p:Post {id: $post})
			OPTIONAL MATCH (a:User)-[:WROTE]->(c:Comment)-[:ON_POST]->(p)
			WITH p, a, c
			ORDER BY c.created_at ASC, c.id ASC
			RETURN p.id AS found, collect(CASE WHEN c IS NULL THEN NULL ELSE {
				comment: c {.*},
				author_id: a.id,
				likes: [(l:User)-[:LIKES]->(c) | l.id]
			} END) AS comments
		`, map[string]any{"post": postID})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			if err := result.Err(); err != nil {
				return nil, err
			}
			return nil, apperrors.NewPostNotFound(postID)
		}

		raw, _ := result.Record().Get("comments")
		items, _ := raw.([]any)
		comments := make([]*social.Comment, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			props, _ := m["comment"].(map[string]any)
			comments = append(comments, &social.Comment{
				ID:        getStringFromMap(props, "id", ""),
				PostID:    postID,
				AuthorID:  getStringFromMap(m, "author_id", ""),
				Content:   getStringFromMap(props, "content", ""),
				Likes:     social.NewIDSet(toStringSlice(m["likes"])...),
				CreatedAt: getTimeFromMap(props, "created_at"),
				UpdatedAt: getTimeFromMap(props, "updated_at"),
			})
		}
		return comments, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]*social.Comment), nil
}

// DeleteComment removes a comment and decrements the parent's comment_count in the same transaction
func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	_, err := r.write(ctx, "delete comment", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (c:Comment {id: $id})-[:ON_POST]->(p:Post)
			DETACH DELETE c
			WITH p
			SET p.comment_count = p.comment_count - 1
			RETURN p.id AS post_id
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return nil, nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewCommentNotFound(id)
	})
	if err != nil {
		return err
	}

	r.logger.Info("Comment deleted", zap.String("comment_id", id))
	return nil
}

// ToggleCommentLike flips userID's like on a comment
func (r *Repository) ToggleCommentLike(ctx context.Context, commentID, userID string) (social.LikeState, error) {
	return r.toggleLike(ctx, "Comment", commentID, userID)
}

func commentFromRecord(record *neo4j.Record) *social.Comment {
	props := getMapFromRecord(record, "comment")
	return &social.Comment{
		ID:        getStringFromMap(props, "id", ""),
		PostID:    getStringFromRecord(record, "post_id"),
		AuthorID:  getStringFromRecord(record, "author_id"),
		Content:   getStringFromMap(props, "content", ""),
		Likes:     social.NewIDSet(getStringSliceFromRecord(record, "likes")...),
		CreatedAt: getTimeFromMap(props, "created_at"),
		UpdatedAt: getTimeFromMap(props, "updated_at"),
	}
}
