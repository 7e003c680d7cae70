// Package connections implements the connection state machine between users:
// requests, acceptance, auto-accept on crossing requests and derived status.
package connections

import (
	"context"
	"sync"

	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

// Directory is the part of the user directory the graph needs
type Directory interface {
	Get(ctx context.Context, id string) (*social.User, error)
	Apply(ctx context.Context, ops ...social.SetOp) error
}

// Graph implements SendRequest, Accept and Status.
// Every call re-reads both records; no relationship state is cached.
type Graph struct {
	dir Directory
}

// NewGraph creates a Graph over dir
func NewGraph(dir Directory) *Graph {
	return &Graph{dir: dir}
}

// SendRequest records senderID's intent to connect with targetID. If targetID has
// already asked senderID, the pending request is accepted instead.
func (g *Graph) SendRequest(ctx context.Context, senderID, targetID string) (social.SendResult, error) {
	if err := checkPair(senderID, targetID); err != nil {
		return "", err
	}

	sender, target, err := g.loadPair(ctx, senderID, targetID, apperrors.NewSenderNotFound, apperrors.NewTargetNotFound)
	if err != nil {
		return "", err
	}

	if sender.Connections.Contains(targetID) || target.Connections.Contains(senderID) {
		return "", apperrors.NewAlreadyConnected(senderID, targetID)
	}
	if target.ConnectionRequests.Contains(senderID) {
		return "", apperrors.NewRequestAlreadyPending(senderID, targetID)
	}

	if sender.ConnectionRequests.Contains(targetID) {
		if err := g.accept(ctx, senderID, targetID); err != nil {
			return "", err
		}
		return social.AutoAccepted, nil
	}

	err = g.dir.Apply(ctx,
		social.Add(targetID, social.SetConnectionRequests, senderID),
		social.Add(senderID, social.SetFollowing, targetID),
		social.Add(targetID, social.SetFollowers, senderID),
	)
	if err != nil {
		return "", err
	}
	return social.RequestSent, nil
}

// Accept turns senderID's pending request to accepterID into a connection
func (g *Graph) Accept(ctx context.Context, accepterID, senderID string) error {
	if err := checkPair(accepterID, senderID); err != nil {
		return err
	}

	accepter, _, accepterErr, senderErr := g.loadBoth(ctx, accepterID, senderID)
	if accepterErr != nil {
		return classify(accepterErr, accepterID, apperrors.NewUserNotFound)
	}
	if !accepter.ConnectionRequests.Contains(senderID) {
		return apperrors.NewRequestNotFound(senderID)
	}
	if senderErr != nil {
		return classify(senderErr, senderID, apperrors.NewSenderNotFound)
	}
	return g.accept(ctx, accepterID, senderID)
}

// accept applies the accepter-side and sender-side updates. Each side is a
// convergent set of idempotent operations; they are committed together.
func (g *Graph) accept(ctx context.Context, accepterID, senderID string) error {
	ops := append(accepterSide(accepterID, senderID), senderSide(accepterID, senderID)...)
	return g.dir.Apply(ctx, ops...)
}

func accepterSide(accepterID, senderID string) []social.SetOp {
	return []social.SetOp{
		social.Remove(accepterID, social.SetConnectionRequests, senderID),
		social.Add(accepterID, social.SetConnections, senderID),
		social.Add(accepterID, social.SetFollowing, senderID),
	}
}

// senderSide also clears a crossing request from the accepter that raced past
// the auto-accept check, so requests never overlap connections.
func senderSide(accepterID, senderID string) []social.SetOp {
	return []social.SetOp{
		social.Add(senderID, social.SetConnections, accepterID),
		social.Add(senderID, social.SetFollowing, accepterID),
		social.Add(senderID, social.SetFollowers, accepterID),
		social.Remove(senderID, social.SetConnectionRequests, accepterID),
	}
}

// Status derives viewerID's relationship to subjectID
func (g *Graph) Status(ctx context.Context, viewerID, subjectID string) (social.Status, error) {
	if viewerID == "" || subjectID == "" {
		return "", apperrors.NewInvalidInput("viewer and subject IDs are required")
	}
	if viewerID == subjectID {
		if _, err := g.dir.Get(ctx, viewerID); err != nil {
			return "", err
		}
		return social.StatusSelf, nil
	}

	viewer, subject, err := g.loadPair(ctx, viewerID, subjectID, apperrors.NewUserNotFound, apperrors.NewUserNotFound)
	if err != nil {
		return "", err
	}
	return social.DeriveStatus(viewer, subject), nil
}

func checkPair(a, b string) error {
	if a == "" || b == "" {
		return apperrors.NewInvalidInput("both user IDs are required")
	}
	if a == b {
		return apperrors.NewSelfRequest()
	}
	return nil
}

type notFoundFunc func(id string) *apperrors.BaseError

// loadPair reads both users concurrently. A missing record is reported with
// the matching constructor; the first ID's error wins when both fail.
func (g *Graph) loadPair(ctx context.Context, firstID, secondID string, firstMissing, secondMissing notFoundFunc) (*social.User, *social.User, error) {
	first, second, firstErr, secondErr := g.loadBoth(ctx, firstID, secondID)
	if firstErr != nil {
		return nil, nil, classify(firstErr, firstID, firstMissing)
	}
	if secondErr != nil {
		return nil, nil, classify(secondErr, secondID, secondMissing)
	}
	return first, second, nil
}

// loadBoth fetches two users in parallel and reports each lookup's error separately
func (g *Graph) loadBoth(ctx context.Context, firstID, secondID string) (first, second *social.User, firstErr, secondErr error) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		first, firstErr = g.dir.Get(ctx, firstID)
	}()
	go func() {
		defer wg.Done()
		second, secondErr = g.dir.Get(ctx, secondID)
	}()
	wg.Wait()
	return first, second, firstErr, secondErr
}

func classify(err error, id string, missing notFoundFunc) error {
	if apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound) {
		return missing(id)
	}
	return err
}
