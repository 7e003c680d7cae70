package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

func newTestRepository(maxFailures uint32) *Repository {
	opts := Options{BreakerMaxFailures: maxFailures, BreakerTimeout: time.Minute}
	return &Repository{breaker: newBreaker(opts, zap.NewNop()), logger: zap.NewNop()}
}

func TestGuard_PassesDomainErrorsThrough(t *testing.T) {
	r := newTestRepository(1)

	for i := 0; i < 3; i++ {
		_, err := r.guard("get user", func() (any, error) {
			return nil, apperrors.NewUserNotFound("u1")
		})
		assert.True(t, apperrors.IsReason(err, apperrors.ReasonUserNotFound))
	}

	// Domain errors never trip the breaker.
	res, err := r.guard("get user", func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
}

func TestGuard_DriverErrorsOpenBreaker(t *testing.T) {
	r := newTestRepository(2)
	driverErr := errors.New("connection refused")
	calls := 0
	failing := func() (any, error) {
		calls++
		return nil, driverErr
	}

	for i := 0; i < 2; i++ {
		_, err := r.guard("list posts", failing)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnavailable))
		assert.ErrorIs(t, err, driverErr)
	}

	_, err := r.guard("list posts", failing)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnavailable))
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, 2, calls, "an open breaker must not reach the database")
}

func TestIsStoreFailure(t *testing.T) {
	assert.False(t, isStoreFailure(apperrors.NewPostNotFound("p")))
	assert.False(t, isStoreFailure(apperrors.NewEmailTaken("a@b.c")))
	assert.False(t, isStoreFailure(context.Canceled))
	assert.True(t, isStoreFailure(errors.New("boom")))
	assert.True(t, isStoreFailure(apperrors.NewStoreUnavailable("op", errors.New("boom"))))
}

func TestIsConstraintViolation(t *testing.T) {
	err := &neo4j.Neo4jError{Code: "Neo.ClientError.Schema.ConstraintValidationFailed", Msg: "already exists"}
	assert.True(t, isConstraintViolation(apperrors.NewStoreUnavailable("create user", err)))
	assert.False(t, isConstraintViolation(errors.New("other")))
}

func TestRelTypes(t *testing.T) {
	for _, set := range social.RelationSets {
		rel, err := relTypeFor(set)
		require.NoError(t, err)
		assert.Equal(t, set, setForRelType(rel))
	}

	_, err := relTypeFor(social.RelationSet("blocked"))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	assert.Contains(t, addMemberQuery("FOLLOWS"), "MERGE (o)-[:FOLLOWS]->(m)")
	assert.Contains(t, removeMemberQuery("REQUESTED_BY"), "[r:REQUESTED_BY]")
}

func TestUserFromRecord(t *testing.T) {
	created := time.Date(2025, 9, 1, 9, 0, 0, 0, time.FixedZone("Offset", 3600))
	record := &neo4j.Record{
		Keys: []string{"user", "connections", "connection_requests", "followers", "following"},
		Values: []any{
			map[string]any{
				"id":              "u1",
				"email":           "ada@campus.test",
				"full_name":       "Ada",
				"skills":          []any{"go", "cypher"},
				"graduation_year": int64(2026),
				"created_at":      created,
			},
			[]any{"u2"},
			[]any{"u3", "u3"},
			[]any{},
			nil,
		},
	}

	u := userFromRecord(record)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "Ada", u.FullName)
	assert.Equal(t, []string{"go", "cypher"}, u.Skills)
	require.NotNil(t, u.GraduationYear)
	assert.Equal(t, 2026, *u.GraduationYear)
	assert.True(t, u.Connections.Contains("u2"))
	assert.Equal(t, 1, u.ConnectionRequests.Len())
	assert.Equal(t, 0, u.Following.Len())
	assert.True(t, created.Equal(u.CreatedAt))
	assert.Equal(t, time.UTC, u.CreatedAt.Location())
}

func TestPostFromRecord(t *testing.T) {
	record := &neo4j.Record{
		Keys: []string{"post", "author_id", "likes"},
		Values: []any{
			map[string]any{"id": "p1", "content": "hello", "comment_count": int64(3)},
			"u1",
			[]any{"u2", "u3"},
		},
	}

	p := postFromRecord(record)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "u1", p.AuthorID)
	assert.Equal(t, 3, p.CommentCount)
	assert.Equal(t, 2, p.Likes.Len())
}

func TestProfileProps(t *testing.T) {
	props := profileProps(social.Profile{FullName: "Ada"})
	assert.Equal(t, []string{}, props["skills"])
	assert.NotContains(t, props, "graduation_year")

	year := 2027
	name := "Grace"
	upd := updateProps(social.ProfileUpdate{FullName: &name, GraduationYear: &year})
	assert.Equal(t, map[string]any{"full_name": "Grace", "graduation_year": int64(2027)}, upd)
}
