package social

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "campusnet/backend/pkg/errors"
)

func TestIDSet(t *testing.T) {
	s := NewIDSet("b", "a", "b", "")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains(""))
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(raw))

	var zero IDSet
	assert.Equal(t, 0, zero.Len())
	assert.False(t, zero.Contains("a"))
	assert.Empty(t, zero.IDs())
}

func TestIDSet_IDsIsACopy(t *testing.T) {
	s := NewIDSet("a")
	ids := s.IDs()
	ids[0] = "mutated"

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("mutated"))
}

func TestSetOp_Validate(t *testing.T) {
	assert.NoError(t, Add("a", SetFollowers, "b").Validate())
	assert.NoError(t, Remove("a", SetConnectionRequests, "b").Validate())

	err := Add("a", SetConnections, "a").Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonSelfRequest))

	assert.Error(t, Add("", SetConnections, "b").Validate())
	assert.Error(t, Add("a", RelationSet("blocked"), "b").Validate())
	assert.Error(t, SetOp{Owner: "a", Set: SetFollowing, Member: "b", Action: "toggle"}.Validate())
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name    string
		viewer  User
		subject User
		want    Status
	}{
		{
			name:    "self",
			viewer:  User{ID: "a"},
			subject: User{ID: "a"},
			want:    StatusSelf,
		},
		{
			name:    "connected beats pending",
			viewer:  User{ID: "a", Connections: NewIDSet("b"), ConnectionRequests: NewIDSet("b")},
			subject: User{ID: "b", Connections: NewIDSet("a")},
			want:    StatusConnected,
		},
		{
			name:    "request sent beats request received",
			viewer:  User{ID: "a", ConnectionRequests: NewIDSet("b")},
			subject: User{ID: "b", ConnectionRequests: NewIDSet("a")},
			want:    StatusRequestSent,
		},
		{
			name:    "request received",
			viewer:  User{ID: "a", ConnectionRequests: NewIDSet("b")},
			subject: User{ID: "b"},
			want:    StatusRequestReceived,
		},
		{
			name:    "following alone is none",
			viewer:  User{ID: "a", Following: NewIDSet("b")},
			subject: User{ID: "b", Followers: NewIDSet("a")},
			want:    StatusNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(&tt.viewer, &tt.subject))
		})
	}
}

func TestNormalizeContent(t *testing.T) {
	got, err := NormalizeContent("post", "  hi  ", 10)
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	_, err = NormalizeContent("post", "   ", 10)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonEmptyContent))

	_, err = NormalizeContent("post", strings.Repeat("é", 11), 10)
	assert.True(t, apperrors.IsReason(err, apperrors.ReasonContentTooLong))

	_, err = NormalizeContent("post", strings.Repeat("é", 10), 10)
	assert.NoError(t, err)
}

func TestValidate_NewUser(t *testing.T) {
	err := Validate(NewUser{FullName: "Ada", Email: "ada@example.com"})
	assert.NoError(t, err)

	err = Validate(NewUser{FullName: "", Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	assert.Contains(t, err.Error(), "fullname is required")
	assert.Contains(t, err.Error(), "email must be a valid email")
}

func TestValidate_ProfilePicMustBeURL(t *testing.T) {
	bad := "not a url"
	good := "https://cdn.campus.test/ada.png"

	err := Validate(NewUser{FullName: "Ada", Email: "ada@example.com", ProfilePic: bad})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	err = Validate(ProfileUpdate{ProfilePic: &bad})
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))

	assert.NoError(t, Validate(ProfileUpdate{ProfilePic: &good}))
	assert.NoError(t, Validate(ProfileUpdate{}))
}

func TestProfileUpdate_Apply(t *testing.T) {
	name := "Grace"
	year := 2027
	skills := []string{"go", "cypher"}
	upd := ProfileUpdate{FullName: &name, GraduationYear: &year, Skills: &skills}

	p := Profile{FullName: "Ada", Headline: "kept"}
	upd.Apply(&p)

	assert.Equal(t, "Grace", p.FullName)
	assert.Equal(t, "kept", p.Headline)
	require.NotNil(t, p.GraduationYear)
	assert.Equal(t, 2027, *p.GraduationYear)
	assert.Equal(t, []string{"go", "cypher"}, p.Skills)

	skills[0] = "mutated"
	assert.Equal(t, "go", p.Skills[0])

	assert.False(t, upd.IsEmpty())
	assert.True(t, ProfileUpdate{}.IsEmpty())
}
