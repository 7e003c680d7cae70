package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"campusnet/backend/internal/social"
)

// ============================================================================
// Consistency Audit
// ============================================================================

type auditCheck struct {
	kind   string
	query  string
	decode func(record *neo4j.Record) social.Violation
}

var auditChecks = []auditCheck{
	{
		kind: social.ViolationAsymmetricConnection,
		query: `
			MATCH (a:User)-[:CONNECTED_TO]->(b:User)
			WHERE a <> b AND NOT (b)-[:CONNECTED_TO]->(a)
			RETURN a.id AS subject, b.id AS other
		`,
	},
	{
		kind: social.ViolationSelfEdge,
		query: `
			MATCH (u:User)-[r]->(u)
			WHERE type(r) IN $types
			RETURN u.id AS subject, type(r) AS rel
		`,
		decode: func(record *neo4j.Record) social.Violation {
			return social.Violation{
				Kind:    social.ViolationSelfEdge,
				Subject: getStringFromRecord(record, "subject"),
				Detail:  string(setForRelType(getStringFromRecord(record, "rel"))),
			}
		},
	},
	{
		kind: social.ViolationRequestWhileConnected,
		query: `
			MATCH (u:User)-[:REQUESTED_BY]->(o:User)
			WHERE (u)-[:CONNECTED_TO]->(o)
			RETURN u.id AS subject, o.id AS other
		`,
	},
	{
		kind: social.ViolationCommentCountDrift,
		query: `
			MATCH (p:Post)
			OPTIONAL MATCH (c:Comment)-[:ON_POST]->(p)
			WITH p, count(c) AS actual
			WHERE coalesce(p.comment_count, 0) <> actual
			RETURN p.id AS subject, coalesce(p.comment_count, 0) AS stored, actual
		`,
		decode: func(record *neo4j.Record) social.Violation {
			return social.CommentCountDrift(
				getStringFromRecord(record, "subject"),
				getIntFromRecord(record, "stored"),
				getIntFromRecord(record, "actual"),
			)
		},
	},
}

// Audit runs every consistency check in one read transaction
func (r *Repository) Audit(ctx context.Context) ([]social.Violation, error) {
	types := make([]string, 0, len(relTypes))
	for _, rel := range relTypes {
		types = append(types, rel)
	}

	res, err := r.read(ctx, "audit", func(tx neo4j.ManagedTransaction) (any, error) {
		violations := make([]social.Violation, 0)
		for _, check := range auditChecks {
			result, err := tx.Run(ctx, check.query, map[string]any{"types": types})
			if err != nil {
				return nil, err
			}
			for result.Next(ctx) {
				violations = append(violations, check.violation(result.Record()))
			}
			if err := result.Err(); err != nil {
				return nil, err
			}
		}
		return violations, nil
	})
	if err != nil {
		return nil, err
	}

	violations := res.([]social.Violation)
	social.SortViolations(violations)
	if len(violations) > 0 {
		r.logger.Warn("Audit found violations", zap.Int("count", len(violations)))
	}
	return violations, nil
}

func (c auditCheck) violation(record *neo4j.Record) social.Violation {
	if c.decode != nil {
		return c.decode(record)
	}
	return social.Violation{
		Kind:    c.kind,
		Subject: getStringFromRecord(record, "subject"),
		Other:   getStringFromRecord(record, "other"),
	}
}
