package graph

import (
	"context"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// userProjection returns a user node with its four relation sets
const userProjection = `
	u {.*} AS user,
	[(u)-[:CONNECTED_TO]->(m:User) | m.id] AS connections,
	[(u)-[:REQUESTED_BY]->(m:User) | m.id] AS connection_requests,
	[(u)-[:FOLLOWED_BY]->(m:User) | m.id] AS followers,
	[(u)-[:FOLLOWS]->(m:User) | m.id] AS following
`

// CreateUser stores a new user node
func (r *Repository) CreateUser(ctx context.Context, user *social.User) error {
	if user == nil || user.ID == "" {
		return apperrors.NewInvalidInput("user ID is required")
	}
	email := social.NormalizeEmail(user.Email)

	_, err := r.write(ctx, "create user", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User)
			WHERE u.id = $id OR u.email = $email
			RETURN u.id AS id, u.email AS email
			LIMIT 1
		`, map[string]any{"id": user.ID, "email": email})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			if getStringFromRecord(result.Record(), "email") == email {
				return nil, apperrors.NewEmailTaken(email)
			}
			return nil, apperrors.NewBaseError(apperrors.ErrorTypeConflict, "", "user already exists: "+user.ID, nil)
		}
		if err := result.Err(); err != nil {
			return nil, err
		}

		props := profileProps(user.Profile)
		props["id"] = user.ID
		props["email"] = email

		_, err = tx.Run(ctx, `
			CREATE (u:User)
			SET u = $props,
			    u.created_at = datetime($createdAt),
			    u.updated_at = datetime($updatedAt)
		`, map[string]any{
			"props":     props,
			"createdAt": formatTime(user.CreatedAt),
			"updatedAt": formatTime(user.UpdatedAt),
		})
		return nil, err
	})
	if err != nil {
		if isConstraintViolation(err) {
			return apperrors.NewEmailTaken(email)
		}
		return err
	}

	r.logger.Info("User created", zap.String("user_id", user.ID))
	return nil
}

// GetUser loads a user and its relation sets
func (r *Repository) GetUser(ctx context.Context, id string) (*social.User, error) {
	res, err := r.read(ctx, "get user", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {id: $id})
			RETURN `+userProjection,
			map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return userFromRecord(result.Record()), nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewUserNotFound(id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*social.User), nil
}

// UpdateProfile merges the non-nil update fields into the user node
func (r *Repository) UpdateProfile(ctx context.Context, id string, update social.ProfileUpdate, at time.Time) (*social.User, error) {
	res, err := r.write(ctx, "update profile", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (u:User {id: $id})
			SET u += $props,
			    u.updated_at = datetime($at)
			RETURN `+userProjection,
			map[string]any{
				"id":    id,
				"props": updateProps(update),
				"at":    formatTime(at),
			})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			return userFromRecord(result.Record()), nil
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return nil, apperrors.NewUserNotFound(id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*social.User), nil
}

// FindUsers filters users by name/email, course, year and location
func (r *Repository) FindUsers(ctx context.Context, excludeID string, criteria social.SearchCriteria) ([]*social.User, error) {
	query := `
		MATCH (u:User)
		WHERE u.id <> $exclude
		  AND ($query = '' OR toLower(u.full_name) CONTAINS $query OR u.email CONTAINS $query)
		  AND ($course = '' OR u.course = $course)
		  AND ($year IS NULL OR u.graduation_year = $year)
		  AND ($location = '' OR toLower(coalesce(u.location, '')) CONTAINS $location)
		RETURN ` + userProjection + `
		ORDER BY u.created_at DESC, u.id DESC
	`
	params := map[string]any{
		"exclude":  excludeID,
		"query":    strings.ToLower(strings.TrimSpace(criteria.Query)),
		"course":   criteria.Course,
		"year":     nil,
		"location": strings.ToLower(strings.TrimSpace(criteria.Location)),
	}
	if criteria.Year != nil {
		params["year"] = int64(*criteria.Year)
	}
	if criteria.Limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = int64(criteria.Limit)
	}

	res, err := r.read(ctx, "find users", func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		users := make([]*social.User, 0)
		for result.Next(ctx) {
			users = append(users, userFromRecord(result.Record()))
		}
		return users, result.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.([]*social.User), nil
}

func userFromRecord(record *neo4j.Record) *social.User {
	props := getMapFromRecord(record, "user")
	return &social.User{
		ID:    getStringFromMap(props, "id", ""),
		Email: getStringFromMap(props, "email", ""),
		Profile: social.Profile{
			FullName:       getStringFromMap(props, "full_name", ""),
			Headline:       getStringFromMap(props, "headline", ""),
			Bio:            getStringFromMap(props, "bio", ""),
			Skills:         getStringSliceFromMap(props, "skills"),
			Location:       getStringFromMap(props, "location", ""),
			ProfilePic:     getStringFromMap(props, "profile_pic", ""),
			University:     getStringFromMap(props, "university", ""),
			Course:         getStringFromMap(props, "course", ""),
			GraduationYear: getOptionalIntFromMap(props, "graduation_year"),
		},
		Connections:        social.NewIDSet(getStringSliceFromRecord(record, "connections")...),
		ConnectionRequests: social.NewIDSet(getStringSliceFromRecord(record, "connection_requests")...),
		Followers:          social.NewIDSet(getStringSliceFromRecord(record, "followers")...),
		Following:          social.NewIDSet(getStringSliceFromRecord(record, "following")...),
		CreatedAt:          getTimeFromMap(props, "created_at"),
		UpdatedAt:          getTimeFromMap(props, "updated_at"),
	}
}

func profileProps(p social.Profile) map[string]any {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	props := map[string]any{
		"full_name":   p.FullName,
		"headline":    p.Headline,
		"bio":         p.Bio,
		"skills":      skills,
		"location":    p.Location,
		"profile_pic": p.ProfilePic,
		"university":  p.University,
		"course":      p.Course,
	}
	if p.GraduationYear != nil {
		props["graduation_year"] = int64(*p.GraduationYear)
	}
	return props
}

func updateProps(u social.ProfileUpdate) map[string]any {
	props := map[string]any{}
	if u.FullName != nil {
		props["full_name"] = *u.FullName
	}
	if u.Headline != nil {
		props["headline"] = *u.Headline
	}
	if u.Bio != nil {
		props["bio"] = *u.Bio
	}
	if u.Skills != nil {
		props["skills"] = append([]string{}, (*u.Skills)...)
	}
	if u.Location != nil {
		props["location"] = *u.Location
	}
	if u.ProfilePic != nil {
		props["profile_pic"] = *u.ProfilePic
	}
	if u.University != nil {
		props["university"] = *u.University
	}
	if u.Course != nil {
		props["course"] = *u.Course
	}
	if u.GraduationYear != nil {
		props["graduation_year"] = int64(*u.GraduationYear)
	}
	return props
}
