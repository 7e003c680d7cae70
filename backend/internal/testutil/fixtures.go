package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusnet/backend/internal/social"
)

// UserCreator is the part of a store needed to seed users
type UserCreator interface {
	CreateUser(ctx context.Context, user *social.User) error
}

// SeedUser stores a user with the given ID, deriving name and email from it.
func SeedUser(t *testing.T, s UserCreator, id string, createdAt time.Time) *social.User {
	t.Helper()
	u := &social.User{
		ID:    id,
		Email: id + "@campus.test",
		Profile: social.Profile{
			FullName: "User " + id,
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}
