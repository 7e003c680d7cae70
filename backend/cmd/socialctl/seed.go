package main

import (
	"context"
	"fmt"

	"campusnet/backend/internal/app"
	"campusnet/backend/internal/social"
	apperrors "campusnet/backend/pkg/errors"
)

type seedOptions struct {
	Users        int
	PostsPerUser int
}

type seedReport struct {
	Users       int
	Connections int
	Pending     int
	Posts       int
	Comments    int
}

var (
	seedNames   = []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov", "Donald Knuth", "Margaret Hamilton", "Ken Thompson"}
	seedCourses = []string{"Computer Science", "Mathematics", "Electrical Engineering"}
)

// seed registers opts.Users users. Each user asks the next one to connect and
// every second request is accepted; posts get a comment and a like from the
// next user in the ring.
func seed(ctx context.Context, svc *app.Services, opts seedOptions) (seedReport, error) {
	var report seedReport
	if opts.Users < 2 {
		return report, apperrors.NewInvalidInput("seed needs at least 2 users")
	}

	ids := make([]string, opts.Users)
	for i := range ids {
		name := seedNames[i%len(seedNames)]
		if i >= len(seedNames) {
			name = fmt.Sprintf("%s %d", name, i/len(seedNames)+1)
		}
		year := 2025 + i%4
		user, err := svc.Directory.Register(ctx, social.NewUser{
			FullName:       name,
			Email:          fmt.Sprintf("seed%d@campus.test", i+1),
			Headline:       "Student at Campus University",
			University:     "Campus University",
			Course:         seedCourses[i%len(seedCourses)],
			GraduationYear: &year,
			Skills:         []string{"go", "graphs"},
		})
		if apperrors.IsReason(err, apperrors.ReasonEmailTaken) {
			return report, fmt.Errorf("seed data already present, run reset --force first: %w", err)
		}
		if err != nil {
			return report, fmt.Errorf("registering user %d: %w", i+1, err)
		}
		ids[i] = user.ID
		report.Users++
	}

	for i, sender := range ids {
		target := ids[(i+1)%len(ids)]
		if _, err := svc.Graph.SendRequest(ctx, sender, target); err != nil {
			// the ring closes onto a user that already asked us
			if apperrors.IsErrorType(err, apperrors.ErrorTypeConflict) {
				continue
			}
			return report, fmt.Errorf("sending request: %w", err)
		}
		if i%2 == 0 {
			if err := svc.Graph.Accept(ctx, target, sender); err != nil {
				return report, fmt.Errorf("accepting request: %w", err)
			}
			report.Connections++
		} else {
			report.Pending++
		}
	}

	for i, author := range ids {
		next := ids[(i+1)%len(ids)]
		for n := 0; n < opts.PostsPerUser; n++ {
			post, err := svc.Posts.Create(ctx, author, fmt.Sprintf("Post %d from %s", n+1, seedNames[i%len(seedNames)]))
			if err != nil {
				return report, fmt.Errorf("creating post: %w", err)
			}
			report.Posts++

			if _, err := svc.Comments.Create(ctx, post.ID, next, "Nice one!"); err != nil {
				return report, fmt.Errorf("creating comment: %w", err)
			}
			report.Comments++

			if _, err := svc.Posts.ToggleLike(ctx, post.ID, next); err != nil {
				return report, fmt.Errorf("liking post: %w", err)
			}
		}
	}

	return report, nil
}

func formatViolation(v social.Violation) string {
	out := fmt.Sprintf("%-24s %s", v.Kind, v.Subject)
	if v.Other != "" {
		out += " -> " + v.Other
	}
	if v.Detail != "" {
		out += " (" + v.Detail + ")"
	}
	return out
}
