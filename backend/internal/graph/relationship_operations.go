package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

// ============================================================================
// Relation Set Operations
// ============================================================================

// relTypes maps each relation set to the relationship type owner-[:TYPE]->member.
// Relationship types cannot be parameters, so queries interpolate only these values.
var relTypes = map[social.RelationSet]string{
	social.SetConnections:        "CONNECTED_TO",
	social.SetConnectionRequests: "REQUESTED_BY",
	social.SetFollowers:          "FOLLOWED_BY",
	social.SetFollowing:          "FOLLOWS",
}

func relTypeFor(set social.RelationSet) (string, error) {
	rel, ok := relTypes[set]
	if !ok {
		return "", apperrors.NewInvalidInput("unknown relation set: " + string(set))
	}
	return rel, nil
}

// setForRelType is the inverse of relTypes
func setForRelType(rel string) social.RelationSet {
	for set, t := range relTypes {
		if t == rel {
			return set
		}
	}
	return social.RelationSet(rel)
}

func addMemberQuery(rel string) string {
	return fmt.Sprintf(`
		OPTIONAL MATCH (o:User {id: $owner})
		OPTIONAL MATCH (m:User {id: $member})
		FOREACH (_ IN CASE WHEN o IS NOT NULL AND m IS NOT NULL THEN [1] ELSE [] END |
			SET o.set_seq = coalesce(o.set_seq, 0) + 1
			MERGE (o)-[:%s]->(m)
		)
		RETURN o IS NOT NULL AS owner_found, m IS NOT NULL AS member_found
	`, rel)
}

func removeMemberQuery(rel string) string {
	return fmt.Sprintf(`
		OPTIONAL MATCH (:User {id: $owner})-[r:%s]->(:User {id: $member})
		DELETE r
	`, rel)
}

// ApplySetOps applies every operation in one write transaction
func (r *Repository) ApplySetOps(ctx context.Context, ops []social.SetOp) error {
	if len(ops) == 0 {
		return nil
	}
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return err
		}
	}

	_, err := r.write(ctx, "apply set ops", func(tx neo4j.ManagedTransaction) (any, error) {
		for _, op := range ops {
			rel, err := relTypeFor(op.Set)
			if err != nil {
				return nil, err
			}
			params := map[string]any{"owner": op.Owner, "member": op.Member}

			if op.Action == social.SetRemove {
				if _, err := tx.Run(ctx, removeMemberQuery(rel), params); err != nil {
					return nil, err
				}
				continue
			}

			result, err := tx.Run(ctx, addMemberQuery(rel), params)
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, err
			}
			if !getBoolFromRecord(record, "owner_found") {
				return nil, apperrors.NewUserNotFound(op.Owner)
			}
			if !getBoolFromRecord(record, "member_found") {
				return nil, apperrors.NewUserNotFound(op.Member)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Relation sets updated", zap.Int("ops", len(ops)))
	return nil
}
