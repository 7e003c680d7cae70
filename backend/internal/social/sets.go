package social

import (
	"encoding/json"
	"sort"

	apperrors "campusnet/backend/pkg/errors"
)

// RelationSet names one of the four per-user ID sets
type RelationSet string

const (
	// SetConnections holds mutual connections; always symmetric
	SetConnections RelationSet = "connections"
	// SetConnectionRequests holds users who asked to connect with the owner
	SetConnectionRequests RelationSet = "connectionRequests"
	// SetFollowers holds users following the owner
	SetFollowers RelationSet = "followers"
	// SetFollowing holds users the owner follows
	SetFollowing RelationSet = "following"
)

// RelationSets lists every relation set
var RelationSets = []RelationSet{SetConnections, SetConnectionRequests, SetFollowers, SetFollowing}

// Valid reports whether s is a known relation set
func (s RelationSet) Valid() bool {
	switch s {
	case SetConnections, SetConnectionRequests, SetFollowers, SetFollowing:
		return true
	}
	return false
}

// IDSet is a read-only snapshot of a set of IDs.
// The zero value is an empty set.
type IDSet struct {
	ids map[string]struct{}
}

// NewIDSet builds a set from ids, dropping duplicates and empty strings
func NewIDSet(ids ...string) IDSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			m[id] = struct{}{}
		}
	}
	return IDSet{ids: m}
}

// Contains reports membership
func (s IDSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of members
func (s IDSet) Len() int {
	return len(s.ids)
}

// IDs returns the members in sorted order. The slice is a copy.
func (s IDSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// SetAction is the kind of change a SetOp makes
type SetAction string

const (
	// SetAdd is set-union with a single member; adding a present member is a no-op
	SetAdd SetAction = "add"
	// SetRemove is set-difference with a single member; removing an absent member is a no-op
	SetRemove SetAction = "remove"
)

// SetOp is one idempotent change to one user's relation set
type SetOp struct {
	Owner  string
	Set    RelationSet
	Member string
	Action SetAction
}

// Add builds an idempotent add
func Add(owner string, set RelationSet, member string) SetOp {
	return SetOp{Owner: owner, Set: set, Member: member, Action: SetAdd}
}

// Remove builds an idempotent remove
func Remove(owner string, set RelationSet, member string) SetOp {
	return SetOp{Owner: owner, Set: set, Member: member, Action: SetRemove}
}

// Validate rejects malformed operations and self-membership
func (op SetOp) Validate() error {
	if op.Owner == "" || op.Member == "" {
		return apperrors.NewInvalidInput("set operation requires owner and member IDs")
	}
	if !op.Set.Valid() {
		return apperrors.NewInvalidInput("unknown relation set: " + string(op.Set))
	}
	if op.Action != SetAdd && op.Action != SetRemove {
		return apperrors.NewInvalidInput("unknown set action: " + string(op.Action))
	}
	if op.Owner == op.Member {
		return apperrors.NewBaseError(apperrors.ErrorTypeInvalidInput, apperrors.ReasonSelfRequest,
			"a user cannot appear in its own "+string(op.Set), nil)
	}
	return nil
}
