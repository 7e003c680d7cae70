package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/backend/internal/constants"
	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store/memory"
	"campusnet/backend/internal/testutil"
	apperrors "campusnet/backend/pkg/errors"
)

type fixture struct {
	store    *memory.Store
	clock    *testutil.StubClock
	posts    *Posts
	comments *Comments
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()
	s := memory.New()
	clock := testutil.FixedClock()
	for _, id := range users {
		testutil.SeedUser(t, s, id, clock.Now())
	}
	return &fixture{
		store:    s,
		clock:    clock,
		posts:    NewPosts(s, WithClock(clock), WithIDGenerator(testutil.NewPrefixedIDGenerator("post"))),
		comments: NewComments(s, WithClock(clock), WithIDGenerator(testutil.NewPrefixedIDGenerator("comment"))),
	}
}

func (f *fixture) commentCount(t *testing.T, postID string) int {
	t.Helper()
	p, err := f.posts.Get(context.Background(), postID)
	require.NoError(t, err)
	return p.CommentCount
}

func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	violations, err := f.store.Audit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestPostCommentLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v", "w")

	post, err := f.posts.Create(ctx, "u", "hi")
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, 0, f.commentCount(t, post.ID))

	comment, err := f.comments.Create(ctx, post.ID, "v", "hello back")
	require.NoError(t, err)
	assert.Equal(t, 1, f.commentCount(t, post.ID))

	err = f.comments.Delete(ctx, comment.ID, "w")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeForbidden))
	assert.Equal(t, 1, f.commentCount(t, post.ID))

	require.NoError(t, f.comments.Delete(ctx, comment.ID, "v"))
	assert.Equal(t, 0, f.commentCount(t, post.ID))

	err = f.comments.Delete(ctx, comment.ID, "v")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonCommentNotFound))
	assert.Equal(t, 0, f.commentCount(t, post.ID))
	f.assertConsistent(t)
}

func TestPosts_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u")

	post, err := f.posts.Create(ctx, "u", "  padded  ")
	require.NoError(t, err)
	assert.Equal(t, "padded", post.Content)

	_, err = f.posts.Create(ctx, "u", "   ")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonEmptyContent))

	_, err = f.posts.Create(ctx, "u", strings.Repeat("a", constants.MaxPostLength+1))
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonContentTooLong))

	_, err = f.posts.Create(ctx, "u", strings.Repeat("a", constants.MaxPostLength))
	assert.NoError(t, err)

	_, err = f.posts.Create(ctx, "ghost", "hi")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestPosts_Listing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v")

	for i := 0; i < 25; i++ {
		author := "u"
		if i%2 == 1 {
			author = "v"
		}
		_, err := f.posts.Create(ctx, author, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	feed, err := f.posts.ListFeed(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, feed, constants.DefaultFeedLimit)
	assert.Equal(t, "post 24", feed[0].Content)

	small, err := f.posts.ListFeed(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, small, 3)

	all, err := f.posts.ListByAuthor(ctx, "v", 0)
	require.NoError(t, err)
	assert.Len(t, all, 12)
	assert.Equal(t, "post 23", all[0].Content)
	assert.Equal(t, "post 1", all[11].Content)

	assert.Equal(t, constants.DefaultFeedLimit, FeedLimit(-1))
	assert.Equal(t, constants.MaxFeedLimit, FeedLimit(1000))
	assert.Equal(t, 7, FeedLimit(7))
}

func TestPosts_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v")

	post, err := f.posts.Create(ctx, "u", "draft")
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, post.ID, "v", "first")
	require.NoError(t, err)
	second, err := f.comments.Create(ctx, post.ID, "u", "second")
	require.NoError(t, err)

	_, err = f.posts.Update(ctx, post.ID, "v", "hijacked")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonNotOwner))

	f.clock.Advance(time.Hour)
	updated, err := f.posts.Update(ctx, post.ID, "u", "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	assert.True(t, f.clock.Now().Equal(updated.UpdatedAt))
	assert.Equal(t, 2, updated.CommentCount)

	_, err = f.posts.Update(ctx, post.ID, "u", "")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonEmptyContent))

	_, err = f.posts.Update(ctx, "missing", "u", "x")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))

	err = f.posts.Delete(ctx, post.ID, "v")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeForbidden))

	require.NoError(t, f.posts.Delete(ctx, post.ID, "u"))
	_, err = f.posts.Get(ctx, post.ID)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))
	err = f.comments.Delete(ctx, second.ID, "u")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonCommentNotFound))
	f.assertConsistent(t)
}

func TestPosts_ToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v")
	post, err := f.posts.Create(ctx, "u", "hi")
	require.NoError(t, err)

	state, err := f.posts.ToggleLike(ctx, post.ID, "v")
	require.NoError(t, err)
	assert.Equal(t, social.Liked, state)
	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, got.Likes.IDs())

	state, err = f.posts.ToggleLike(ctx, post.ID, "v")
	require.NoError(t, err)
	assert.Equal(t, social.Unliked, state)
	got, err = f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, got.Likes.Contains("v"))

	_, err = f.posts.ToggleLike(ctx, "missing", "v")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestPosts_ToggleLikeRepeatedNeverDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v")
	post, err := f.posts.Create(ctx, "u", "hi")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.posts.ToggleLike(ctx, post.ID, "v")
		require.NoError(t, err)
	}
	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes.Len())
}

func TestComments_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v")
	post, err := f.posts.Create(ctx, "u", "hi")
	require.NoError(t, err)

	_, err = f.comments.Create(ctx, post.ID, "v", " ")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonEmptyContent))

	_, err = f.comments.Create(ctx, post.ID, "v", strings.Repeat("c", constants.MaxCommentLength+1))
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonContentTooLong))

	_, err = f.comments.Create(ctx, "missing", "v", "x")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))

	_, err = f.comments.Create(ctx, post.ID, "ghost", "x")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonUserNotFound))

	assert.Equal(t, 0, f.commentCount(t, post.ID))
}

func TestComments_ListAndLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v")
	post, err := f.posts.Create(ctx, "u", "hi")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.comments.Create(ctx, post.ID, "v", fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}

	list, err := f.comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c0", list[0].Content)
	assert.Equal(t, "c2", list[2].Content)

	state, err := f.comments.ToggleLike(ctx, list[1].ID, "u")
	require.NoError(t, err)
	assert.Equal(t, social.Liked, state)

	_, err = f.comments.ListByPost(ctx, "missing")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))
}

func TestComments_ConcurrentCreateDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "u", "v")
	post, err := f.posts.Create(ctx, "u", "hi")
	require.NoError(t, err)

	const n = 20
	created := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := f.comments.Create(ctx, post.ID, "v", "x")
			if assert.NoError(t, err) {
				created <- c.ID
			}
		}()
	}
	wg.Wait()
	close(created)

	var deleted int
	for id := range created {
		if deleted%2 == 0 {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				assert.NoError(t, f.comments.Delete(ctx, id, "v"))
			}(id)
		}
		deleted++
	}
	wg.Wait()

	assert.Equal(t, n/2, f.commentCount(t, post.ID))
	f.assertConsistent(t)
}
