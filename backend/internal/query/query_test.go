package query

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/backend/internal/connections"
	"campusnet/backend/internal/directory"
	"campusnet/backend/internal/feed"
	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store/memory"
	"campusnet/backend/internal/testutil"
	apperrors "campusnet/backend/pkg/errors"
)

type fixture struct {
	dir      *directory.Directory
	graph    *connections.Graph
	posts    *feed.Posts
	comments *feed.Comments
	profiles *Profiles
	feed     *Feed
	clock    *testutil.StubClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.New()
	clock := testutil.FixedClock()
	dir := directory.New(s, directory.WithClock(clock), directory.WithIDGenerator(testutil.NewPrefixedIDGenerator("user")))
	posts := feed.NewPosts(s, feed.WithClock(clock), feed.WithIDGenerator(testutil.NewPrefixedIDGenerator("post")))
	comments := feed.NewComments(s, feed.WithClock(clock), feed.WithIDGenerator(testutil.NewPrefixedIDGenerator("comment")))
	return &fixture{
		dir:      dir,
		graph:    connections.NewGraph(dir),
		posts:    posts,
		comments: comments,
		profiles: NewProfiles(dir),
		feed:     NewFeed(dir, posts, comments),
		clock:    clock,
	}
}

func (f *fixture) register(t *testing.T, name, email string) *social.User {
	t.Helper()
	u, err := f.dir.Register(context.Background(), social.NewUser{FullName: name, Email: email, ProfilePic: "https://img.test/" + name})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return u
}

func TestGetProfile_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.register(t, "Ada", "ada@campus.test")
	b := f.register(t, "Bob", "bob@campus.test")
	c := f.register(t, "Cy", "cy@campus.test")

	_, err := f.graph.SendRequest(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = f.graph.SendRequest(ctx, c.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, f.graph.Accept(ctx, a.ID, c.ID))

	owner, err := f.profiles.GetProfile(ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, owner.IsOwner)
	require.NotNil(t, owner.OwnerDetails)
	assert.Equal(t, "ada@campus.test", owner.Email)
	assert.Equal(t, []string{b.ID}, owner.ConnectionRequests)
	assert.Equal(t, 1, owner.ConnectionRequestsCount)
	assert.Equal(t, []string{c.ID}, owner.Connections)
	assert.Empty(t, owner.Status)
	assert.Equal(t, 1, owner.ConnectionsCount)
	assert.Equal(t, 2, owner.FollowersCount)

	other, err := f.profiles.GetProfile(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, other.IsOwner)
	assert.Nil(t, other.OwnerDetails)
	assert.Equal(t, social.StatusRequestSent, other.Status)
	assert.Equal(t, 1, other.ConnectionsCount)

	raw, err := json.Marshal(other)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "email")
	assert.NotContains(t, string(raw), "connectionRequests")
	assert.Contains(t, string(raw), `"status":"request_sent"`)

	anon, err := f.profiles.GetProfile(ctx, a.ID, "")
	require.NoError(t, err)
	assert.Empty(t, anon.Status)
	assert.Nil(t, anon.OwnerDetails)
	raw, err = json.Marshal(anon)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "status")

	raw, err = json.Marshal(owner)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"followers":[`)
	assert.Contains(t, string(raw), `"following":["`+c.ID+`"]`)

	_, err = f.profiles.GetProfile(ctx, "missing", a.ID)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonUserNotFound))
}

func TestSearch_CarriesStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.register(t, "Ada", "ada@campus.test")
	b := f.register(t, "Bob", "bob@campus.test")
	c := f.register(t, "Cy", "cy@campus.test")

	_, err := f.graph.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	cards, err := f.profiles.Search(ctx, a.ID, social.SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, c.ID, cards[0].ID)
	assert.Equal(t, social.StatusNone, cards[0].Status)
	assert.Equal(t, b.ID, cards[1].ID)
	assert.Equal(t, social.StatusRequestSent, cards[1].Status)

	_, err = f.profiles.Search(ctx, "missing", social.SearchCriteria{})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
}

func TestPendingRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.register(t, "Ada", "ada@campus.test")
	b := f.register(t, "Bob", "bob@campus.test")
	c := f.register(t, "Cy", "cy@campus.test")

	for _, sender := range []*social.User{b, c} {
		_, err := f.graph.SendRequest(ctx, sender.ID, a.ID)
		require.NoError(t, err)
	}

	pending, err := f.profiles.PendingRequests(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	names := []string{pending[0].FullName, pending[1].FullName}
	assert.ElementsMatch(t, []string{"Bob", "Cy"}, names)

	none, err := f.profiles.PendingRequests(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFeed_Views(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.register(t, "Ada", "ada@campus.test")
	b := f.register(t, "Bob", "bob@campus.test")

	first, err := f.posts.Create(ctx, a.ID, "first")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.posts.Create(ctx, b.ID, "second")
	require.NoError(t, err)

	_, err = f.posts.ToggleLike(ctx, first.ID, b.ID)
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, first.ID, b.ID, "nice")
	require.NoError(t, err)

	latest, err := f.feed.Latest(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, second.ID, latest[0].ID)
	assert.Equal(t, "Bob", latest[0].Author.FullName)
	assert.Equal(t, first.ID, latest[1].ID)
	assert.Equal(t, "Ada", latest[1].Author.FullName)
	assert.Equal(t, "https://img.test/Ada", latest[1].Author.ProfilePic)
	assert.Equal(t, 1, latest[1].LikesCount)
	assert.True(t, latest[1].LikedByViewer)
	assert.Equal(t, 1, latest[1].CommentCount)

	asAda, err := f.feed.Latest(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.False(t, asAda[1].LikedByViewer)

	byAuthor, err := f.feed.ByAuthor(ctx, "", a.ID, 0)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, first.ID, byAuthor[0].ID)
	assert.False(t, byAuthor[0].LikedByViewer)

	_, err = f.feed.ByAuthor(ctx, "", "missing", 0)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonUserNotFound))

	single, err := f.feed.Post(ctx, b.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", single.Content)

	comments, err := f.feed.Comments(ctx, a.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Bob", comments[0].Author.FullName)
	assert.Equal(t, first.ID, comments[0].PostID)

	one, err := f.feed.Comment(ctx, b.ID, &social.Comment{ID: "c", PostID: first.ID, AuthorID: b.ID, Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", one.Author.FullName)
	assert.False(t, one.LikedByViewer)

	_, err = f.feed.Comments(ctx, a.ID, "missing")
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonPostNotFound))
}

type flakyUsers struct {
	UserReader
	err error
}

func (u flakyUsers) Get(ctx context.Context, id string) (*social.User, error) {
	return nil, u.err
}

func TestLoadAuthors_PropagatesStoreFailure(t *testing.T) {
	storeErr := apperrors.NewStoreUnavailable("get user", context.DeadlineExceeded)
	_, err := loadAuthors(context.Background(), flakyUsers{err: storeErr}, []string{"a", "b"})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeUnavailable))

	missing := apperrors.NewUserNotFound("a")
	got, err := loadAuthors(context.Background(), flakyUsers{err: missing}, []string{"a", "a"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
