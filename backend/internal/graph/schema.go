package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ============================================================================
// Schema Management
// ============================================================================

// SchemaStatements are applied by EnsureSchema; all are idempotent
var SchemaStatements = []string{
	"CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE",
	"CREATE CONSTRAINT post_id IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE",
	"CREATE CONSTRAINT comment_id IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE",
	"CREATE INDEX user_created_at IF NOT EXISTS FOR (u:User) ON (u.created_at)",
	"CREATE INDEX user_course IF NOT EXISTS FOR (u:User) ON (u.course)",
	"CREATE INDEX post_created_at IF NOT EXISTS FOR (p:Post) ON (p.created_at)",
	"CREATE INDEX comment_created_at IF NOT EXISTS FOR (c:Comment) ON (c.created_at)",
}

// EnsureSchema creates constraints and indexes.
// Schema changes cannot share a transaction with each other, so each runs on its own.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range SchemaStatements {
		if _, err := r.write(ctx, "ensure schema", func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			_, err = result.Consume(ctx)
			return nil, err
		}); err != nil {
			return err
		}
	}

	r.logger.Info("Schema ensured", zap.Int("statements", len(SchemaStatements)))
	return nil
}

// Reset deletes every user, post and comment
func (r *Repository) Reset(ctx context.Context) error {
	res, err := r.write(ctx, "reset", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (n)
			WHERE n:User OR n:Post OR n:Comment
			DETACH DELETE n
			RETURN count(n) AS deleted
		`, nil)
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getIntFromRecord(record, "deleted"), nil
	})
	if err != nil {
		return err
	}

	r.logger.Warn("Graph reset", zap.Int("nodes_deleted", res.(int)))
	return nil
}
