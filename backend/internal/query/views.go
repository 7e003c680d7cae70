package query

import (
	"time"

	"campusnet/backend/internal/social"
)

// AuthorSummary is the compact user shown next to posts, comments and requests
type AuthorSummary struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Headline   string `json:"headline,omitempty"`
	ProfilePic string `json:"profilePic"`
}

// ProfileCard is a search result
type ProfileCard struct {
	ID             string        `json:"id"`
	FullName       string        `json:"fullName"`
	Headline       string        `json:"headline"`
	ProfilePic     string        `json:"profilePic"`
	University     string        `json:"university"`
	Course         string        `json:"course"`
	GraduationYear *int          `json:"graduationYear"`
	Location       string        `json:"location"`
	Status         social.Status `json:"status"`
}

// ProfileView is a profile as seen by a particular viewer
type ProfileView struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Headline       string    `json:"headline"`
	Bio            string    `json:"bio"`
	Skills         []string  `json:"skills"`
	Location       string    `json:"location"`
	ProfilePic     string    `json:"profilePic"`
	University     string    `json:"university"`
	Course         string    `json:"course"`
	GraduationYear *int      `json:"graduationYear"`
	CreatedAt      time.Time `json:"createdAt"`

	ConnectionsCount int `json:"connectionsCount"`
	FollowersCount   int `json:"followersCount"`
	FollowingCount   int `json:"followingCount"`

	// Set only when the viewer owns the profile
	*OwnerDetails

	// Empty for anonymous viewers and for the owner
	Status  social.Status `json:"status,omitempty"`
	IsOwner bool          `json:"isOwner"`
}

// OwnerDetails are the fields only the profile owner may see
type OwnerDetails struct {
	Email                   string   `json:"email"`
	ConnectionRequests      []string `json:"connectionRequests"`
	ConnectionRequestsCount int      `json:"connectionRequestsCount"`
	Connections             []string `json:"connections"`
	Followers               []string `json:"followers"`
	Following               []string `json:"following"`
}

// PostView is a post with its author and viewer-relative like data
type PostView struct {
	ID            string        `json:"id"`
	Content       string        `json:"content"`
	Author        AuthorSummary `json:"author"`
	LikesCount    int           `json:"likesCount"`
	LikedByViewer bool          `json:"likedByViewer"`
	CommentCount  int           `json:"commentCount"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CommentView is a comment with its author and viewer-relative like data
type CommentView struct {
	ID            string        `json:"id"`
	PostID        string        `json:"post"`
	Content       string        `json:"content"`
	Author        AuthorSummary `json:"author"`
	LikesCount    int           `json:"likesCount"`
	LikedByViewer bool          `json:"likedByViewer"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func summarize(u *social.User) AuthorSummary {
	return AuthorSummary{
		ID:         u.ID,
		FullName:   u.FullName,
		Headline:   u.Headline,
		ProfilePic: u.ProfilePic,
	}
}

func card(u *social.User, status social.Status) ProfileCard {
	return ProfileCard{
		ID:             u.ID,
		FullName:       u.FullName,
		Headline:       u.Headline,
		ProfilePic:     u.ProfilePic,
		University:     u.University,
		Course:         u.Course,
		GraduationYear: u.GraduationYear,
		Location:       u.Location,
		Status:         status,
	}
}

func postView(p *social.Post, author AuthorSummary, viewerID string) PostView {
	return PostView{
		ID:            p.ID,
		Content:       p.Content,
		Author:        author,
		LikesCount:    p.Likes.Len(),
		LikedByViewer: viewerID != "" && p.Likes.Contains(viewerID),
		CommentCount:  p.CommentCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func commentView(c *social.Comment, author AuthorSummary, viewerID string) CommentView {
	return CommentView{
		ID:            c.ID,
		PostID:        c.PostID,
		Content:       c.Content,
		Author:        author,
		LikesCount:    c.Likes.Len(),
		LikedByViewer: viewerID != "" && c.Likes.Contains(viewerID),
		CreatedAt:     c.CreatedAt,
	}
}
