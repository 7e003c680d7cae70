package social

import (
	"fmt"
	"sort"
	"time"
)

// Profile holds the descriptive fields of a user. None of them affect the graph.
type Profile struct {
	FullName       string   `json:"fullName"`
	Headline       string   `json:"headline"`
	Bio            string   `json:"bio"`
	Skills         []string `json:"skills"`
	Location       string   `json:"location"`
	ProfilePic     string   `json:"profilePic"`
	University     string   `json:"university"`
	Course         string   `json:"course"`
	GraduationYear *int     `json:"graduationYear"`
}

// User is a user record together with its four relation sets
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Profile

	Connections        IDSet `json:"-"`
	ConnectionRequests IDSet `json:"-"`
	Followers          IDSet `json:"-"`
	Following          IDSet `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Set returns the named relation set
func (u *User) Set(name RelationSet) IDSet {
	switch name {
	case SetConnections:
		return u.Connections
	case SetConnectionRequests:
		return u.ConnectionRequests
	case SetFollowers:
		return u.Followers
	case SetFollowing:
		return u.Following
	default:
		return IDSet{}
	}
}

// NewUser is the signup input
type NewUser struct {
	FullName       string   `json:"fullName" validate:"required,max=100"`
	Email          string   `json:"email" validate:"required,email,max=254"`
	Headline       string   `json:"headline" validate:"max=160"`
	Bio            string   `json:"bio" validate:"max=2000"`
	Skills         []string `json:"skills" validate:"max=50,dive,max=60"`
	Location       string   `json:"location" validate:"max=120"`
	ProfilePic     string   `json:"profilePic" validate:"omitempty,url"`
	University     string   `json:"university" validate:"max=160"`
	Course         string   `json:"course" validate:"max=160"`
	GraduationYear *int     `json:"graduationYear" validate:"omitempty,min=1900,max=2100"`
}

// ProfileUpdate is a partial profile change; nil fields are left untouched
type ProfileUpdate struct {
	FullName       *string   `json:"fullName" validate:"omitempty,min=1,max=100"`
	Headline       *string   `json:"headline" validate:"omitempty,max=160"`
	Bio            *string   `json:"bio" validate:"omitempty,max=2000"`
	Skills         *[]string `json:"skills" validate:"omitempty,max=50,dive,max=60"`
	Location       *string   `json:"location" validate:"omitempty,max=120"`
	ProfilePic     *string   `json:"profilePic" validate:"omitempty,url"`
	University     *string   `json:"university" validate:"omitempty,max=160"`
	Course         *string   `json:"course" validate:"omitempty,max=160"`
	GraduationYear *int      `json:"graduationYear" validate:"omitempty,min=1900,max=2100"`
}

// IsEmpty reports whether the update changes nothing
func (u ProfileUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Headline == nil && u.Bio == nil && u.Skills == nil &&
		u.Location == nil && u.ProfilePic == nil && u.University == nil && u.Course == nil &&
		u.GraduationYear == nil
}

// Apply copies the set fields of the update onto p
func (u ProfileUpdate) Apply(p *Profile) {
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Headline != nil {
		p.Headline = *u.Headline
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Skills != nil {
		p.Skills = append([]string(nil), (*u.Skills)...)
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.ProfilePic != nil {
		p.ProfilePic = *u.ProfilePic
	}
	if u.University != nil {
		p.University = *u.University
	}
	if u.Course != nil {
		p.Course = *u.Course
	}
	if u.GraduationYear != nil {
		year := *u.GraduationYear
		p.GraduationYear = &year
	}
}

// SearchCriteria filters user search. Empty fields do not filter.
type SearchCriteria struct {
	Query    string `json:"q" validate:"max=100"`
	Course   string `json:"course" validate:"max=160"`
	Year     *int   `json:"year" validate:"omitempty,min=1900,max=2100"`
	Location string `json:"location" validate:"max=120"`
	Limit    int    `json:"-"`
}

// Post is a feed entry
type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author"`
	Content      string    `json:"content"`
	Likes        IDSet     `json:"-"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Comment belongs to exactly one post
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post"`
	AuthorID  string    `json:"author"`
	Content   string    `json:"content"`
	Likes     IDSet     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeState is the outcome of a like toggle
type LikeState string

const (
	Liked   LikeState = "liked"
	Unliked LikeState = "unliked"
)

// SendResult is the outcome of a connection request
type SendResult string

const (
	RequestSent  SendResult = "sent"
	AutoAccepted SendResult = "auto_accepted"
)

// Violation is a broken graph or counter invariant found by an audit
type Violation struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Other   string `json:"other,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Violation kinds
const (
	ViolationAsymmetricConnection  = "asymmetric_connection"
	ViolationSelfEdge              = "self_edge"
	ViolationRequestWhileConnected = "request_while_connected"
	ViolationCommentCountDrift     = "comment_count_drift"
)

// CommentCountDrift reports a post whose stored counter disagrees with its comments
func CommentCountDrift(postID string, stored, actual int) Violation {
	return Violation{
		Kind:    ViolationCommentCountDrift,
		Subject: postID,
		Detail:  fmt.Sprintf("stored %d, actual %d", stored, actual),
	}
}

// SortViolations orders violations by kind, subject, then other
func SortViolations(vs []Violation) {
	sort.Slice(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Other < b.Other
	})
}
