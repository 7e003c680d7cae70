// Package directory owns user records: signup, lookup, profile updates,
// search and the idempotent relation-set mutators.
package directory

import (
	"context"

	"campusnet/backend/internal/constants"
	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store"
	apperrors "campusnet/backend/pkg/errors"
)

// Directory is the user directory service
type Directory struct {
	users store.UserRepository
	clock social.Clock
	ids   social.IDGenerator
}

// Option customizes a Directory
type Option func(*Directory)

// WithClock overrides the time source
func WithClock(c social.Clock) Option {
	return func(d *Directory) { d.clock = c }
}

// WithIDGenerator overrides user ID generation
func WithIDGenerator(g social.IDGenerator) Option {
	return func(d *Directory) { d.ids = g }
}

// New creates a Directory over users
func New(users store.UserRepository, opts ...Option) *Directory {
	d := &Directory{
		users: users,
		clock: social.SystemClock{},
		ids:   social.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register creates a user from signup input
func (d *Directory) Register(ctx context.Context, in social.NewUser) (*social.User, error) {
	in.Email = social.NormalizeEmail(in.Email)
	if err := social.Validate(in); err != nil {
		return nil, err
	}

	now := d.clock.Now()
	user := &social.User{
		ID:    d.ids.New(),
		Email: in.Email,
		Profile: social.Profile{
			FullName:       in.FullName,
			Headline:       in.Headline,
			Bio:            in.Bio,
			Skills:         in.Skills,
			Location:       in.Location,
			ProfilePic:     in.ProfilePic,
			University:     in.University,
			Course:         in.Course,
			GraduationYear: in.GraduationYear,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return d.users.GetUser(ctx, user.ID)
}

// Get returns the user or NotFound(UserNotFound)
func (d *Directory) Get(ctx context.Context, id string) (*social.User, error) {
	if id == "" {
		return nil, apperrors.NewUserNotFound(id)
	}
	return d.users.GetUser(ctx, id)
}

// Update changes profile fields of id. Only the user may edit their own profile.
func (d *Directory) Update(ctx context.Context, callerID, id string, update social.ProfileUpdate) (*social.User, error) {
	if callerID != id {
		return nil, apperrors.NewNotOwner("profile", callerID)
	}
	if err := social.Validate(update); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return d.Get(ctx, id)
	}
	return d.users.UpdateProfile(ctx, id, update, d.clock.Now())
}

// FindByCriteria searches users, never returning the requester
func (d *Directory) FindByCriteria(ctx context.Context, requesterID string, criteria social.SearchCriteria) ([]*social.User, error) {
	if err := social.Validate(criteria); err != nil {
		return nil, err
	}
	if criteria.Limit <= 0 || criteria.Limit > constants.SearchResultLimit {
		criteria.Limit = constants.SearchResultLimit
	}
	return d.users.FindUsers(ctx, requesterID, criteria)
}

// AddToSet adds member to owner's set; adding a present member is a no-op
func (d *Directory) AddToSet(ctx context.Context, owner string, set social.RelationSet, member string) error {
	return d.Apply(ctx, social.Add(owner, set, member))
}

// RemoveFromSet removes member from owner's set; removing an absent member is a no-op
func (d *Directory) RemoveFromSet(ctx context.Context, owner string, set social.RelationSet, member string) error {
	return d.Apply(ctx, social.Remove(owner, set, member))
}

// Apply performs several set operations as one atomic batch
func (d *Directory) Apply(ctx context.Context, ops ...social.SetOp) error {
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return err
		}
	}
	return d.users.ApplySetOps(ctx, ops)
}
