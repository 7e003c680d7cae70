package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store/memory"
	"campusnet/backend/pkg/config"
)

func TestOpenStore_Memory(t *testing.T) {
	s, err := OpenStore(context.Background(), &config.Config{StoreBackend: config.StoreMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, s)
	assert.Nil(t, Health(s))
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreBackend: "sqlite"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewServices_SharesStore(t *testing.T) {
	ctx := context.Background()
	svc := NewServices(memory.New())

	a, err := svc.Directory.Register(ctx, social.NewUser{FullName: "Ada", Email: "ada@campus.test"})
	require.NoError(t, err)
	b, err := svc.Directory.Register(ctx, social.NewUser{FullName: "Bob", Email: "bob@campus.test"})
	require.NoError(t, err)

	_, err = svc.Graph.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	pending, err := svc.Profiles.PendingRequests(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)

	post, err := svc.Posts.Create(ctx, a.ID, "hello")
	require.NoError(t, err)
	_, err = svc.Comments.Create(ctx, post.ID, b.ID, "hi")
	require.NoError(t, err)
	views, err := svc.Feed.Latest(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].CommentCount)

	violations, err := svc.Store.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}
