package directory

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store/memory"
	"campusnet/backend/internal/testutil"
	apperrors "campusnet/backend/pkg/errors"
)

func newDirectory(t *testing.T) (*Directory, *testutil.StubClock) {
	t.Helper()
	clock := testutil.FixedClock()
	return New(memory.New(), WithClock(clock), WithIDGenerator(testutil.NewPrefixedIDGenerator("user"))), clock
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	d, clock := newDirectory(t)

	u, err := d.Register(ctx, social.NewUser{FullName: "Ada Lovelace", Email: " Ada@Campus.Test ", Course: "CS"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "ada@campus.test", u.Email)
	assert.Equal(t, "CS", u.Course)
	assert.True(t, clock.Now().Equal(u.CreatedAt))
	assert.Equal(t, 0, u.Connections.Len())

	_, err = d.Register(ctx, social.NewUser{FullName: "Impostor", Email: "ADA@campus.test"})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonEmailTaken))
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeConflict))

	_, err = d.Register(ctx, social.NewUser{FullName: "", Email: "nobody"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	d, _ := newDirectory(t)

	_, err := d.Get(ctx, "")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonUserNotFound))

	_, err = d.Get(ctx, "missing")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	d, clock := newDirectory(t)
	a, err := d.Register(ctx, social.NewUser{FullName: "Ada", Email: "ada@campus.test"})
	require.NoError(t, err)
	b, err := d.Register(ctx, social.NewUser{FullName: "Bob", Email: "bob@campus.test"})
	require.NoError(t, err)
	require.NoError(t, d.AddToSet(ctx, a.ID, social.SetFollowers, b.ID))

	headline := "Engine whisperer"
	_, err = d.Update(ctx, b.ID, a.ID, social.ProfileUpdate{Headline: &headline})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeForbidden))

	clock.Advance(time.Hour)
	updated, err := d.Update(ctx, a.ID, a.ID, social.ProfileUpdate{Headline: &headline})
	require.NoError(t, err)
	assert.Equal(t, "Engine whisperer", updated.Headline)
	assert.Equal(t, "Ada", updated.FullName)
	assert.True(t, clock.Now().Equal(updated.UpdatedAt))
	assert.True(t, updated.Followers.Contains(b.ID), "profile update must not touch relation sets")

	long := strings.Repeat("x", 161)
	_, err = d.Update(ctx, a.ID, a.ID, social.ProfileUpdate{Headline: &long})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	pic := "ada.png"
	_, err = d.Update(ctx, a.ID, a.ID, social.ProfileUpdate{ProfilePic: &pic})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	same, err := d.Update(ctx, a.ID, a.ID, social.ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Engine whisperer", same.Headline)
}

func TestFindByCriteria(t *testing.T) {
	ctx := context.Background()
	d, clock := newDirectory(t)

	var requester string
	for i := 0; i < 55; i++ {
		u, err := d.Register(ctx, social.NewUser{FullName: fmt.Sprintf("Student %d", i), Email: fmt.Sprintf("s%d@campus.test", i)})
		require.NoError(t, err)
		if i == 0 {
			requester = u.ID
		}
		clock.Advance(time.Second)
	}

	found, err := d.FindByCriteria(ctx, requester, social.SearchCriteria{Query: "student"})
	require.NoError(t, err)
	assert.Len(t, found, 50)
	assert.Equal(t, "Student 54", found[0].FullName)
	for _, u := range found {
		assert.NotEqual(t, requester, u.ID)
	}

	_, err = d.FindByCriteria(ctx, requester, social.SearchCriteria{Query: strings.Repeat("q", 101)})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
}

func TestSetMutators(t *testing.T) {
	ctx := context.Background()
	d, _ := newDirectory(t)
	a, err := d.Register(ctx, social.NewUser{FullName: "Ada", Email: "ada@campus.test"})
	require.NoError(t, err)
	b, err := d.Register(ctx, social.NewUser{FullName: "Bob", Email: "bob@campus.test"})
	require.NoError(t, err)

	require.NoError(t, d.AddToSet(ctx, a.ID, social.SetFollowing, b.ID))
	require.NoError(t, d.AddToSet(ctx, a.ID, social.SetFollowing, b.ID))
	got, err := d.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got.Following.IDs())

	require.NoError(t, d.RemoveFromSet(ctx, a.ID, social.SetFollowing, b.ID))
	require.NoError(t, d.RemoveFromSet(ctx, a.ID, social.SetFollowing, b.ID))
	got, err = d.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Following.Len())

	err = d.AddToSet(ctx, a.ID, social.SetConnections, a.ID)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonSelfRequest))

	err = d.AddToSet(ctx, a.ID, social.SetConnections, "ghost")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	err = d.Apply(ctx,
		social.Add(a.ID, social.SetConnections, b.ID),
		social.Add(b.ID, social.SetConnections, a.ID),
	)
	require.NoError(t, err)
	got, err = d.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Connections.Contains(a.ID))
}
