package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/backend/internal/app"
	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store/memory"
	apperrors "campusnet/backend/pkg/errors"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := app.NewServices(memory.New())

	report, err := seed(ctx, svc, seedOptions{Users: 4, PostsPerUser: 2})
	require.NoError(t, err)
	assert.Equal(t, seedReport{Users: 4, Connections: 2, Pending: 2, Posts: 8, Comments: 8}, report)

	violations, err := svc.Store.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)

	posts, err := svc.Feed.Latest(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, posts, 8)
	for _, p := range posts {
		assert.Equal(t, 1, p.CommentCount)
		assert.Equal(t, 1, p.LikesCount)
	}

	_, err = seed(ctx, svc, seedOptions{Users: 4})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonEmailTaken))
}

func TestSeed_TwoUsersRingCloses(t *testing.T) {
	ctx := context.Background()
	svc := app.NewServices(memory.New())

	report, err := seed(ctx, svc, seedOptions{Users: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Connections)
	assert.Equal(t, 0, report.Pending)
}

func TestSeed_NeedsTwoUsers(t *testing.T) {
	_, err := seed(context.Background(), app.NewServices(memory.New()), seedOptions{Users: 1})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
}

func TestFormatViolation(t *testing.T) {
	assert.Equal(t, "asymmetric_connection    a -> b",
		formatViolation(social.Violation{Kind: social.ViolationAsymmetricConnection, Subject: "a", Other: "b"}))
	assert.Equal(t, "comment_count_drift      p (stored 2, actual 1)",
		formatViolation(social.CommentCountDrift("p", 2, 1)))
}

func TestResetRequiresForce(t *testing.T) {
	resetCmd.SetArgs(nil)
	err := resetCmd.RunE(resetCmd, nil)
	assert.EqualError(t, err, "refusing to delete data without --force")
}
