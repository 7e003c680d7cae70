// Package memory is an in-process store backend. Every operation runs inside one
// critical section, so each batch is atomic and readers only see committed state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"campusnet/backend/internal/social"
	"campusnet/backend/internal/store"
	apperrors "campusnet/backend/pkg/errors"
)

type idSet map[string]struct{}

func (s idSet) snapshot() social.IDSet {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return social.NewIDSet(ids...)
}

type userRecord struct {
	seq       uint64
	id        string
	email     string
	profile   social.Profile
	sets      map[social.RelationSet]idSet
	createdAt time.Time
	updatedAt time.Time
}

type postRecord struct {
	seq          uint64
	id           string
	authorID     string
	content      string
	likes        idSet
	commentCount int
	createdAt    time.Time
	updatedAt    time.Time
}

type commentRecord struct {
	seq       uint64
	id        string
	postID    string
	authorID  string
	content   string
	likes     idSet
	createdAt time.Time
	updatedAt time.Time
}

// Store implements store.Store in memory
type Store struct {
	mu       sync.RWMutex
	seq      uint64
	users    map[string]*userRecord
	emails   map[string]string
	posts    map[string]*postRecord
	comments map[string]*commentRecord
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		users:    make(map[string]*userRecord),
		emails:   make(map[string]string),
		posts:    make(map[string]*postRecord),
		comments: make(map[string]*commentRecord),
	}
}

// live reports a cancelled or expired context as a store failure, matching the graph backend
func live(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewStoreUnavailable(op, err)
	}
	return nil
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// Close is a no-op
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Reset drops every record
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*userRecord)
	s.emails = make(map[string]string)
	s.posts = make(map[string]*postRecord)
	s.comments = make(map[string]*commentRecord)
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *social.User) error {
	if err := live(ctx, "create user"); err != nil {
		return err
	}
	if user == nil || user.ID == "" {
		return apperrors.NewInvalidInput("user ID is required")
	}
	email := social.NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return apperrors.NewBaseError(apperrors.ErrorTypeConflict, "", "user already exists: "+user.ID, nil)
	}
	if _, taken := s.emails[email]; taken {
		return apperrors.NewEmailTaken(email)
	}

	rec := &userRecord{
		seq:       s.nextSeq(),
		id:        user.ID,
		email:     email,
		profile:   copyProfile(user.Profile),
		sets:      make(map[social.RelationSet]idSet, len(social.RelationSets)),
		createdAt: user.CreatedAt,
		updatedAt: user.UpdatedAt,
	}
	for _, name := range social.RelationSets {
		rec.sets[name] = idSet{}
	}
	s.users[user.ID] = rec
	s.emails[email] = user.ID
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*social.User, error) {
	if err := live(ctx, "get user"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewUserNotFound(id)
	}
	return rec.toUser(), nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, update social.ProfileUpdate, at time.Time) (*social.User, error) {
	if err := live(ctx, "update profile"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewUserNotFound(id)
	}
	update.Apply(&rec.profile)
	rec.updatedAt = at
	return rec.toUser(), nil
}

func (s *Store) FindUsers(ctx context.Context, excludeID string, criteria social.SearchCriteria) ([]*social.User, error) {
	if err := live(ctx, "find users"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*userRecord, 0)
	for _, rec := range s.users {
		if rec.id == excludeID || !rec.matches(criteria) {
			continue
		}
		matches = append(matches, rec)
	}
	sort.Slice(matches, func(i, j int) bool {
		return newer(matches[i].createdAt, matches[i].seq, matches[j].createdAt, matches[j].seq)
	})
	if criteria.Limit > 0 && len(matches) > criteria.Limit {
		matches = matches[:criteria.Limit]
	}

	out := make([]*social.User, len(matches))
	for i, rec := range matches {
		out[i] = rec.toUser()
	}
	return out, nil
}

func (s *Store) ApplySetOps(ctx context.Context, ops []social.SetOp) error {
	if err := live(ctx, "apply set ops"); err != nil {
		return err
	}
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		if op.Action != social.SetAdd {
			continue
		}
		if _, ok := s.users[op.Owner]; !ok {
			return apperrors.NewUserNotFound(op.Owner)
		}
		if _, ok := s.users[op.Member]; !ok {
			return apperrors.NewUserNotFound(op.Member)
		}
	}

	for _, op := range ops {
		owner, ok := s.users[op.Owner]
		if !ok {
			continue
		}
		switch op.Action {
		case social.SetAdd:
			owner.sets[op.Set][op.Member] = struct{}{}
		case social.SetRemove:
			delete(owner.sets[op.Set], op.Member)
		}
	}
	return nil
}

// Posts

func (s *Store) CreatePost(ctx context.Context, post *social.Post) error {
	if err := live(ctx, "create post"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.AuthorID]; !ok {
		return apperrors.NewUserNotFound(post.AuthorID)
	}
	s.posts[post.ID] = &postRecord{
		seq:       s.nextSeq(),
		id:        post.ID,
		authorID:  post.AuthorID,
		content:   post.Content,
		likes:     idSet{},
		createdAt: post.CreatedAt,
		updatedAt: post.UpdatedAt,
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*social.Post, error) {
	if err := live(ctx, "get post"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NewPostNotFound(id)
	}
	return rec.toPost(), nil
}

func (s *Store) ListPosts(ctx context.Context, authorID string, limit int) ([]*social.Post, error) {
	if err := live(ctx, "list posts"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*postRecord, 0, len(s.posts))
	for _, rec := range s.posts {
		if authorID != "" && rec.authorID != authorID {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return newer(recs[i].createdAt, recs[i].seq, recs[j].createdAt, recs[j].seq)
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	out := make([]*social.Post, len(recs))
	for i, rec := range recs {
		out[i] = rec.toPost()
	}
	return out, nil
}

func (s *Store) UpdatePostContent(ctx context.Context, id, content string, at time.Time) (*social.Post, error) {
	if err := live(ctx, "update post content"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NewPostNotFound(id)
	}
	rec.content = content
	rec.updatedAt = at
	return rec.toPost(), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) (int, error) {
	if err := live(ctx, "delete post"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return 0, apperrors.NewPostNotFound(id)
	}
	removed := 0
	for cid, c := range s.comments {
		if c.postID == id {
			delete(s.comments, cid)
			removed++
		}
	}
	delete(s.posts, id)
	return removed, nil
}

func (s *Store) TogglePostLike(ctx context.Context, postID, userID string) (social.LikeState, error) {
	if err := live(ctx, "toggle post like"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[postID]
	if !ok {
		return "", apperrors.NewPostNotFound(postID)
	}
	if _, ok := s.users[userID]; !ok {
		return "", apperrors.NewUserNotFound(userID)
	}
	return toggle(rec.likes, userID), nil
}

// Comments

func (s *Store) CreateComment(ctx context.Context, comment *social.Comment) error {
	if err := live(ctx, "create comment"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok {
		return apperrors.NewPostNotFound(comment.PostID)
	}
	if _, ok := s.users[comment.AuthorID]; !ok {
		return apperrors.NewUserNotFound(comment.AuthorID)
	}
	s.comments[comment.ID] = &commentRecord{
		seq:       s.nextSeq(),
		id:        comment.ID,
		postID:    comment.PostID,
		authorID:  comment.AuthorID,
		content:   comment.Content,
		likes:     idSet{},
		createdAt: comment.CreatedAt,
		updatedAt: comment.UpdatedAt,
	}
	post.commentCount++
	return nil
}

func (s *Store) GetComment(ctx context.Context, id string) (*social.Comment, error) {
	if err := live(ctx, "get comment"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.comments[id]
	if !ok {
		return nil, apperrors.NewCommentNotFound(id)
	}
	return rec.toComment(), nil
}

func (s *Store) ListComments(ctx context.Context, postID string) ([]*social.Comment, error) {
	if err := live(ctx, "list comments"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.posts[postID]; !ok {
		return nil, apperrors.NewPostNotFound(postID)
	}
	recs := make([]*commentRecord, 0)
	for _, rec := range s.comments {
		if rec.postID == postID {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return newer(recs[j].createdAt, recs[j].seq, recs[i].createdAt, recs[i].seq)
	})

	out := make([]*social.Comment, len(recs))
	for i, rec := range recs {
		out[i] = rec.toComment()
	}
	return out, nil
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	if err := live(ctx, "delete comment"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[id]
	if !ok {
		return apperrors.NewCommentNotFound(id)
	}
	delete(s.comments, id)
	if post, ok := s.posts[rec.postID]; ok {
		post.commentCount--
	}
	return nil
}

func (s *Store) ToggleCommentLike(ctx context.Context, commentID, userID string) (social.LikeState, error) {
	if err := live(ctx, "toggle comment like"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.comments[commentID]
	if !ok {
		return "", apperrors.NewCommentNotFound(commentID)
	}
	if _, ok := s.users[userID]; !ok {
		return "", apperrors.NewUserNotFound(userID)
	}
	return toggle(rec.likes, userID), nil
}

// Audit

func (s *Store) Audit(ctx context.Context) ([]social.Violation, error) {
	if err := live(ctx, "audit"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	violations := make([]social.Violation, 0)
	for _, u := range s.users {
		for _, name := range social.RelationSets {
			if _, self := u.sets[name][u.id]; self {
				violations = append(violations, social.Violation{
					Kind:    social.ViolationSelfEdge,
					Subject: u.id,
					Detail:  string(name),
				})
			}
		}
		for other := range u.sets[social.SetConnections] {
			if other == u.id {
				continue
			}
			peer, ok := s.users[other]
			if !ok {
				continue
			}
			if _, back := peer.sets[social.SetConnections][u.id]; !back {
				violations = append(violations, social.Violation{
					Kind:    social.ViolationAsymmetricConnection,
					Subject: u.id,
					Other:   other,
				})
			}
		}
		for other := range u.sets[social.SetConnectionRequests] {
			if _, connected := u.sets[social.SetConnections][other]; connected {
				violations = append(violations, social.Violation{
					Kind:    social.ViolationRequestWhileConnected,
					Subject: u.id,
					Other:   other,
				})
			}
		}
	}

	actual := make(map[string]int, len(s.posts))
	for _, c := range s.comments {
		actual[c.postID]++
	}
	for _, p := range s.posts {
		if p.commentCount != actual[p.id] {
			violations = append(violations, social.CommentCountDrift(p.id, p.commentCount, actual[p.id]))
		}
	}

	social.SortViolations(violations)
	return violations, nil
}

// helpers

func (r *userRecord) toUser() *social.User {
	return &social.User{
		ID:                 r.id,
		Email:              r.email,
		Profile:            copyProfile(r.profile),
		Connections:        r.sets[social.SetConnections].snapshot(),
		ConnectionRequests: r.sets[social.SetConnectionRequests].snapshot(),
		Followers:          r.sets[social.SetFollowers].snapshot(),
		Following:          r.sets[social.SetFollowing].snapshot(),
		CreatedAt:          r.createdAt,
		UpdatedAt:          r.updatedAt,
	}
}

func (r *userRecord) matches(c social.SearchCriteria) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		if !strings.Contains(strings.ToLower(r.profile.FullName), q) && !strings.Contains(r.email, q) {
			return false
		}
	}
	if c.Course != "" && r.profile.Course != c.Course {
		return false
	}
	if c.Year != nil && (r.profile.GraduationYear == nil || *r.profile.GraduationYear != *c.Year) {
		return false
	}
	if loc := strings.ToLower(strings.TrimSpace(c.Location)); loc != "" {
		if !strings.Contains(strings.ToLower(r.profile.Location), loc) {
			return false
		}
	}
	return true
}

func (r *postRecord) toPost() *social.Post {
	return &social.Post{
		ID:           r.id,
		AuthorID:     r.authorID,
		Content:      r.content,
		Likes:        r.likes.snapshot(),
		CommentCount: r.commentCount,
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	}
}

func (r *commentRecord) toComment() *social.Comment {
	return &social.Comment{
		ID:        r.id,
		PostID:    r.postID,
		AuthorID:  r.authorID,
		Content:   r.content,
		Likes:     r.likes.snapshot(),
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
}

func copyProfile(p social.Profile) social.Profile {
	out := p
	if p.Skills != nil {
		out.Skills = append([]string(nil), p.Skills...)
	}
	if p.GraduationYear != nil {
		year := *p.GraduationYear
		out.GraduationYear = &year
	}
	return out
}

func toggle(likes idSet, userID string) social.LikeState {
	if _, liked := likes[userID]; liked {
		delete(likes, userID)
		return social.Unliked
	}
	likes[userID] = struct{}{}
	return social.Liked
}

// newer orders by creation time descending, insertion order breaking ties
func newer(at time.Time, seq uint64, otherAt time.Time, otherSeq uint64) bool {
	if !at.Equal(otherAt) {
		return at.After(otherAt)
	}
	return seq > otherSeq
}
