// Package storetest is a behavioural test suite shared by every store backend.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store"
	"campusnet/backend/internal/testutil"
	apperrors "campusnet/backend/pkg/errors"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against stores produced by newStore
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("FindUsers", func(t *testing.T) { testFindUsers(t, newStore(t)) })
	t.Run("SetOps", func(t *testing.T) { testSetOps(t, newStore(t)) })
	t.Run("SetOpsAtomic", func(t *testing.T) { testSetOpsAtomic(t, newStore(t)) })
	t.Run("Posts", func(t *testing.T) { testPosts(t, newStore(t)) })
	t.Run("PostLikes", func(t *testing.T) { testPostLikes(t, newStore(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, newStore(t)) })
	t.Run("DeletePostCascades", func(t *testing.T) { testDeletePostCascades(t, newStore(t)) })
	t.Run("ConcurrentLikes", func(t *testing.T) { testConcurrentLikes(t, newStore(t)) })
	t.Run("ConcurrentComments", func(t *testing.T) { testConcurrentComments(t, newStore(t)) })
}

var epoch = time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)

func assertClean(t *testing.T, s store.Store) {
	t.Helper()
	violations, err := s.Audit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	year := 2026
	u := &social.User{
		ID:    "u1",
		Email: "Ada@Campus.Test",
		Profile: social.Profile{
			FullName:       "Ada Lovelace",
			Skills:         []string{"math", "engines"},
			Course:         "CS",
			GraduationYear: &year,
		},
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada@campus.test", got.Email)
	assert.Equal(t, "Ada Lovelace", got.FullName)
	assert.Equal(t, []string{"math", "engines"}, got.Skills)
	require.NotNil(t, got.GraduationYear)
	assert.Equal(t, 2026, *got.GraduationYear)
	assert.True(t, epoch.Equal(got.CreatedAt))
	assert.Equal(t, 0, got.Connections.Len())

	err = s.CreateUser(ctx, &social.User{ID: "u2", Email: "ADA@campus.test", CreatedAt: epoch, UpdatedAt: epoch})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonEmailTaken))

	_, err = s.GetUser(ctx, "missing")
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	headline := "Analyst"
	later := epoch.Add(time.Hour)
	updated, err := s.UpdateProfile(ctx, "u1", social.ProfileUpdate{Headline: &headline}, later)
	require.NoError(t, err)
	assert.Equal(t, "Analyst", updated.Headline)
	assert.Equal(t, "Ada Lovelace", updated.FullName)
	assert.True(t, later.Equal(updated.UpdatedAt))

	_, err = s.UpdateProfile(ctx, "missing", social.ProfileUpdate{Headline: &headline}, later)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func testFindUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	y25, y26 := 2025, 2026
	seed := []social.User{
		{ID: "a", Email: "ada@campus.test", Profile: social.Profile{FullName: "Ada Lovelace", Course: "CS", GraduationYear: &y25, Location: "London"}},
		{ID: "b", Email: "bob@campus.test", Profile: social.Profile{FullName: "Bob Byte", Course: "CS", GraduationYear: &y26, Location: "Leeds"}},
		{ID: "c", Email: "cara@lovelace.org", Profile: social.Profile{FullName: "Cara Code", Course: "Maths", GraduationYear: &y26, Location: "north london"}},
		{ID: "d", Email: "dan@campus.test", Profile: social.Profile{FullName: "Dan Data"}},
	}
	for i := range seed {
		u := seed[i]
		u.CreatedAt = epoch.Add(time.Duration(i) * time.Minute)
		u.UpdatedAt = u.CreatedAt
		require.NoError(t, s.CreateUser(ctx, &u))
	}

	ids := func(users []*social.User) []string {
		out := make([]string, len(users))
		for i, u := range users {
			out[i] = u.ID
		}
		return out
	}

	all, err := s.FindUsers(ctx, "d", social.SearchCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))

	byName, err := s.FindUsers(ctx, "", social.SearchCriteria{Query: "LOVELACE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(byName))

	byCourse, err := s.FindUsers(ctx, "", social.SearchCriteria{Course: "CS", Year: &y26})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(byCourse))

	byLocation, err := s.FindUsers(ctx, "", social.SearchCriteria{Location: "London"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(byLocation))

	limited, err := s.FindUsers(ctx, "", social.SearchCriteria{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids(limited))

	none, err := s.FindUsers(ctx, "", social.SearchCriteria{Query: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSetOps(t *testing.T, s store.Store) {
	ctx := context.Background()
	testutil.SeedUser(t, s, "a", epoch)
	testutil.SeedUser(t, s, "b", epoch)

	add := social.Add("a", social.SetFollowers, "b")
	require.NoError(t, s.ApplySetOps(ctx, []social.SetOp{add}))
	require.NoError(t, s.ApplySetOps(ctx, []social.SetOp{add}))

	a, err := s.GetUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.Followers.IDs())
	assert.Equal(t, 0, a.Following.Len())

	b, err := s.GetUser(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Followers.Len())

	remove := social.Remove("a", social.SetFollowers, "b")
	require.NoError(t, s.ApplySetOps(ctx, []social.SetOp{remove}))
	require.NoError(t, s.ApplySetOps(ctx, []social.SetOp{remove}))
	require.NoError(t, s.ApplySetOps(ctx, []social.SetOp{social.Remove("a", social.SetConnections, "ghost")}))

	a, err = s.GetUser(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Followers.Len())

	err = s.ApplySetOps(ctx, []social.SetOp{social.Add("a", social.SetConnections, "a")})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonSelfRequest))

	err = s.ApplySetOps(ctx, []social.SetOp{social.Add("a", social.SetConnections, "ghost")})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	err = s.ApplySetOps(ctx, []social.SetOp{social.Add("ghost", social.SetConnections, "a")})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	require.NoError(t, s.ApplySetOps(ctx, nil))
	assertClean(t, s)
}

func testSetOpsAtomic(t *testing.T, s store.Store) {
	ctx := context.Background()
	testutil.SeedUser(t, s, "a", epoch)
	testutil.SeedUser(t, s, "b", epoch)

	err := s.ApplySetOps(ctx, []social.SetOp{
		social.Add("a", social.SetConnections, "b"),
		social.Add("b", social.SetConnections, "a"),
		social.Add("b", social.SetFollowing, "ghost"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	a, err := s.GetUser(ctx, "a")
	require.NoError(t, err)
	b, err := s.GetUser(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Connections.Len())
	assert.Equal(t, 0, b.Connections.Len())

	require.NoError(t, s.ApplySetOps(ctx, []social.SetOp{
		social.Add("a", social.SetConnections, "b"),
		social.Add("b", social.SetConnections, "a"),
	}))
	a, err = s.GetUser(ctx, "a")
	require.NoError(t, err)
	assert.True(t, a.Connections.Contains("b"))
	assertClean(t, s)
}

func testPosts(t *testing.T, s store.Store) {
	ctx := context.Background()
	testutil.SeedUser(t, s, "a", epoch)
	testutil.SeedUser(t, s, "b", epoch)

	err := s.CreatePost(ctx, &social.Post{ID: "p0", AuthorID: "ghost", Content: "x", CreatedAt: epoch, UpdatedAt: epoch})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	for i, author := range []string{"a", "b", "a"} {
		at := epoch.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreatePost(ctx, &social.Post{
			ID:        fmt.Sprintf("p%d", i+1),
			AuthorID:  author,
			Content:   fmt.Sprintf("post %d", i+1),
			CreatedAt: at,
			UpdatedAt: at,
		}))
	}

	got, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.AuthorID)
	assert.Equal(t, "post 1", got.Content)
	assert.Equal(t, 0, got.CommentCount)
	assert.Equal(t, 0, got.Likes.Len())

	_, err = s.GetPost(ctx, "missing")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))

	feed, err := s.ListPosts(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "p3", feed[0].ID)
	assert.Equal(t, "p1", feed[2].ID)

	page, err := s.ListPosts(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	mine, err := s.ListPosts(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "p3", mine[0].ID)
	assert.Equal(t, "p1", mine[1].ID)

	later := epoch.Add(time.Hour)
	updated, err := s.UpdatePostContent(ctx, "p1", "edited", later)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.True(t, later.Equal(updated.UpdatedAt))

	_, err = s.UpdatePostContent(ctx, "missing", "edited", later)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))

	_, err = s.DeletePost(ctx, "missing")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))
}

func testPostLikes(t *testing.T, s store.Store) {
	ctx := context.Background()
	testutil.SeedUser(t, s, "a", epoch)
	testutil.SeedUser(t, s, "b", epoch)
	require.NoError(t, s.CreatePost(ctx, &social.Post{ID: "p1", AuthorID: "a", Content: "hi", CreatedAt: epoch, UpdatedAt: epoch}))

	state, err := s.TogglePostLike(ctx, "p1", "b")
	require.NoError(t, err)
	assert.Equal(t, social.Liked, state)

	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Likes.Contains("b"))

	state, err = s.TogglePostLike(ctx, "p1", "b")
	require.NoError(t, err)
	assert.Equal(t, social.Unliked, state)

	p, err = s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Likes.Len())

	_, err = s.TogglePostLike(ctx, "missing", "b")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))
}

func testComments(t *testing.T, s store.Store) {
	ctx := context.Background()
	testutil.SeedUser(t, s, "a", epoch)
	testutil.SeedUser(t, s, "b", epoch)
	require.NoError(t, s.CreatePost(ctx, &social.Post{ID: "p1", AuthorID: "a", Content: "hi", CreatedAt: epoch, UpdatedAt: epoch}))

	err := s.CreateComment(ctx, &social.Comment{ID: "c0", PostID: "missing", AuthorID: "b", Content: "x", CreatedAt: epoch, UpdatedAt: epoch})
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))

	err = s.CreateComment(ctx, &social.Comment{ID: "c0", PostID: "p1", AuthorID: "ghost", Content: "x", CreatedAt: epoch, UpdatedAt: epoch})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))

	for i, author := range []string{"b", "a", "b"} {
		at := epoch.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateComment(ctx, &social.Comment{
			ID:        fmt.Sprintf("c%d", i+1),
			PostID:    "p1",
			AuthorID:  author,
			Content:   fmt.Sprintf("comment %d", i+1),
			CreatedAt: at,
			UpdatedAt: at,
		}))
	}

	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.CommentCount)

	list, err := s.ListComments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c1", list[0].ID)
	assert.Equal(t, "c3", list[2].ID)
	assert.Equal(t, "p1", list[0].PostID)

	_, err = s.ListComments(ctx, "missing")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))

	c, err := s.GetComment(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "a", c.AuthorID)

	state, err := s.ToggleCommentLike(ctx, "c2", "b")
	require.NoError(t, err)
	assert.Equal(t, social.Liked, state)
	c, err = s.GetComment(ctx, "c2")
	require.NoError(t, err)
	assert.True(t, c.Likes.Contains("b"))

	_, err = s.ToggleCommentLike(ctx, "missing", "b")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonCommentNotFound))

	require.NoError(t, s.DeleteComment(ctx, "c2"))
	p, err = s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.CommentCount)

	err = s.DeleteComment(ctx, "c2")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonCommentNotFound))

	_, err = s.GetComment(ctx, "c2")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonCommentNotFound))

	assertClean(t, s)
}

func testDeletePostCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	testutil.SeedUser(t, s, "a", epoch)
	require.NoError(t, s.CreatePost(ctx, &social.Post{ID: "p1", AuthorID: "a", Content: "one", CreatedAt: epoch, UpdatedAt: epoch}))
	require.NoError(t, s.CreatePost(ctx, &social.Post{ID: "p2", AuthorID: "a", Content: "two", CreatedAt: epoch, UpdatedAt: epoch}))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateComment(ctx, &social.Comment{ID: fmt.Sprintf("c%d", i), PostID: "p1", AuthorID: "a", Content: "x", CreatedAt: epoch, UpdatedAt: epoch}))
	}
	require.NoError(t, s.CreateComment(ctx, &social.Comment{ID: "keep", PostID: "p2", AuthorID: "a", Content: "x", CreatedAt: epoch, UpdatedAt: epoch}))

	removed, err := s.DeletePost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	_, err = s.GetPost(ctx, "p1")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))
	_, err = s.GetComment(ctx, "c0")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonCommentNotFound))

	kept, err := s.ListComments(ctx, "p2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	assertClean(t, s)
}

func testConcurrentLikes(t *testing.T, s store.Store) {
	ctx := context.Background()
	const likers = 8
	testutil.SeedUser(t, s, "author", epoch)
	for i := 0; i < likers; i++ {
		testutil.SeedUser(t, s, fmt.Sprintf("liker%d", i), epoch)
	}
	require.NoError(t, s.CreatePost(ctx, &social.Post{ID: "p1", AuthorID: "author", Content: "hi", CreatedAt: epoch, UpdatedAt: epoch}))

	var wg sync.WaitGroup
	errs := make(chan error, likers)
	for i := 0; i < likers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.TogglePostLike(ctx, "p1", fmt.Sprintf("liker%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, likers, p.Likes.Len())
}

func testConcurrentComments(t *testing.T, s store.Store) {
	ctx := context.Background()
	const writers = 8
	testutil.SeedUser(t, s, "a", epoch)
	require.NoError(t, s.CreatePost(ctx, &social.Post{ID: "p1", AuthorID: "a", Content: "hi", CreatedAt: epoch, UpdatedAt: epoch}))

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.CreateComment(ctx, &social.Comment{
				ID:        fmt.Sprintf("c%d", i),
				PostID:    "p1",
				AuthorID:  "a",
				Content:   "x",
				CreatedAt: epoch,
				UpdatedAt: epoch,
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	p, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, writers, p.CommentCount)
	assertClean(t, s)
}
