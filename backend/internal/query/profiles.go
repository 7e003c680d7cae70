// Package query composes read views from the directory and the feed stores.
// Every view is computed per request; nothing is cached.
package query

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"campusnet/backend/internal/constants"
	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

// UserReader is the read side of the user directory
type UserReader interface {
	Get(ctx context.Context, id string) (*social.User, error)
	FindByCriteria(ctx context.Context, requesterID string, criteria social.SearchCriteria) ([]*social.User, error)
}

// Profiles builds profile projections
type Profiles struct {
	users UserReader
}

// NewProfiles creates a profile query over users
func NewProfiles(users UserReader) *Profiles {
	return &Profiles{users: users}
}

// GetProfile projects subjectID for viewerID. An empty viewerID is an anonymous viewer.
func (p *Profiles) GetProfile(ctx context.Context, subjectID, viewerID string) (*ProfileView, error) {
	var (
		subject, viewer *social.User
		viewerErr       error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		subject, err = p.users.Get(egCtx, subjectID)
		return err
	})
	if viewerID != "" && viewerID != subjectID {
		eg.Go(func() error {
			viewer, viewerErr = p.users.Get(egCtx, viewerID)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if viewerErr != nil && !apperrors.IsErrorType(viewerErr, apperrors.ErrorTypeNotFound) {
		return nil, viewerErr
	}

	view := &ProfileView{
		ID:               subject.ID,
		FullName:         subject.FullName,
		Headline:         subject.Headline,
		Bio:              subject.Bio,
		Skills:           nonNil(subject.Skills),
		Location:         subject.Location,
		ProfilePic:       subject.ProfilePic,
		University:       subject.University,
		Course:           subject.Course,
		GraduationYear:   subject.GraduationYear,
		CreatedAt:        subject.CreatedAt,
		ConnectionsCount: subject.Connections.Len(),
		FollowersCount:   subject.Followers.Len(),
		FollowingCount:   subject.Following.Len(),
	}

	switch {
	case viewerID != "" && viewerID == subjectID:
		view.IsOwner = true
		view.OwnerDetails = &OwnerDetails{
			Email:                   subject.Email,
			ConnectionRequests:      subject.ConnectionRequests.IDs(),
			ConnectionRequestsCount: subject.ConnectionRequests.Len(),
			Connections:             subject.Connections.IDs(),
			Followers:               subject.Followers.IDs(),
			Following:               subject.Following.IDs(),
		}
	case viewer != nil:
		view.Status = social.DeriveStatus(viewer, subject)
	}
	return view, nil
}

// Search returns profile cards matching criteria, each with the requester's status
func (p *Profiles) Search(ctx context.Context, requesterID string, criteria social.SearchCriteria) ([]ProfileCard, error) {
	requester, err := p.users.Get(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	found, err := p.users.FindByCriteria(ctx, requesterID, criteria)
	if err != nil {
		return nil, err
	}

	cards := make([]ProfileCard, len(found))
	for i, u := range found {
		cards[i] = card(u, social.DeriveStatus(requester, u))
	}
	return cards, nil
}

// PendingRequests lists the users waiting for viewerID to accept their request
func (p *Profiles) PendingRequests(ctx context.Context, viewerID string) ([]AuthorSummary, error) {
	viewer, err := p.users.Get(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	summaries, err := loadAuthors(ctx, p.users, viewer.ConnectionRequests.IDs())
	if err != nil {
		return nil, err
	}

	out := make([]AuthorSummary, 0, len(summaries))
	for _, id := range viewer.ConnectionRequests.IDs() {
		if s, ok := summaries[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// loadAuthors fetches summaries for ids with bounded parallelism.
// Users that no longer resolve are left out of the result.
func loadAuthors(ctx context.Context, users UserReader, ids []string) (map[string]AuthorSummary, error) {
	var mu sync.Mutex
	out := make(map[string]AuthorSummary, len(ids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(constants.MaxConcurrentLookups)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		id := id
		eg.Go(func() error {
			u, err := users.Get(egCtx, id)
			if err != nil {
				if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			out[id] = summarize(u)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
