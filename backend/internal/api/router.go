// Package api exposes the social services over HTTP with gin.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campusnet/backend/internal/metrics"
	"campusnet/backend/internal/query"
	"campusnet/backend/internal/social"
)

// UserDirectory is the write side of the user directory used by handlers
type UserDirectory interface {
	Register(ctx context.Context, in social.NewUser) (*social.User, error)
	Update(ctx context.Context, callerID, id string, update social.ProfileUpdate) (*social.User, error)
}

// ConnectionGraph is the connection state machine
type ConnectionGraph interface {
	SendRequest(ctx context.Context, senderID, targetID string) (social.SendResult, error)
	Accept(ctx context.Context, accepterID, senderID string) error
	Status(ctx context.Context, viewerID, subjectID string) (social.Status, error)
}

// PostService mutates posts
type PostService interface {
	Create(ctx context.Context, authorID, content string) (*social.Post, error)
	Update(ctx context.Context, postID, callerID, content string) (*social.Post, error)
	Delete(ctx context.Context, postID, callerID string) error
	ToggleLike(ctx context.Context, postID, userID string) (social.LikeState, error)
}

// CommentService mutates comments
type CommentService interface {
	Create(ctx context.Context, postID, authorID, content string) (*social.Comment, error)
	Delete(ctx context.Context, commentID, callerID string) error
	ToggleLike(ctx context.Context, commentID, userID string) (social.LikeState, error)
}

// ProfileQuery builds profile projections
type ProfileQuery interface {
	GetProfile(ctx context.Context, subjectID, viewerID string) (*query.ProfileView, error)
	Search(ctx context.Context, requesterID string, criteria social.SearchCriteria) ([]query.ProfileCard, error)
	PendingRequests(ctx context.Context, viewerID string) ([]query.AuthorSummary, error)
}

// FeedQuery builds post and comment views
type FeedQuery interface {
	Latest(ctx context.Context, viewerID string, limit int) ([]query.PostView, error)
	ByAuthor(ctx context.Context, viewerID, authorID string, limit int) ([]query.PostView, error)
	Post(ctx context.Context, viewerID, postID string) (*query.PostView, error)
	Comments(ctx context.Context, viewerID, postID string) ([]query.CommentView, error)
	Comment(ctx context.Context, viewerID string, c *social.Comment) (*query.CommentView, error)
}

// TokenVerifier resolves a bearer token to a caller ID
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Deps are the collaborators the router dispatches to
type Deps struct {
	Directory UserDirectory
	Graph     ConnectionGraph
	Posts     PostService
	Comments  CommentService
	Profiles  ProfileQuery
	Feed      FeedQuery
	Verifier  TokenVerifier
	Metrics   *metrics.Collector
	Logger    *zap.Logger

	// Health reports store reachability; nil means always healthy
	Health func(ctx context.Context) error
}

// Options tune the HTTP surface
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
	FeedPageSize   int
}

type handler struct {
	deps Deps
	opts Options
	log  *zap.Logger
}

// NewRouter builds the gin engine with middleware and all routes registered
func NewRouter(deps Deps, opts Options) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{deps: deps, opts: opts, log: log}

	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors())
	router.Use(instrument(deps.Metrics))
	router.Use(newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, log).handler())

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	requireAuth := authenticate(deps.Verifier, true)
	optionalAuth := authenticate(deps.Verifier, false)

	router.POST("/auth/signup", h.signup)

	user := router.Group("/user")
	{
		user.GET("/search", requireAuth, h.searchUsers)
		user.GET("/requests", requireAuth, h.pendingRequests)
		user.POST("/connect/:targetId", requireAuth, h.sendRequest)
		user.POST("/accept/:senderId", requireAuth, h.acceptRequest)
		user.GET("/status/:id", requireAuth, h.connectionStatus)
		user.PUT("/update/:id", requireAuth, h.updateProfile)
		user.GET("/:id", optionalAuth, h.getProfile)
	}

	post := router.Group("/post")
	{
		post.GET("/feed", requireAuth, h.feed)
		post.POST("", requireAuth, h.createPost)
		post.PUT("/like/:postId", requireAuth, h.togglePostLike)
		post.PUT("/:postId", requireAuth, h.updatePost)
		post.DELETE("/:postId", requireAuth, h.deletePost)
		post.GET("/author/:authorId", optionalAuth, h.postsByAuthor)

		post.GET("/comments/:postId", optionalAuth, h.listComments)
		post.POST("/comments/:postId", requireAuth, h.createComment)
		post.DELETE("/comment/:commentId", requireAuth, h.deleteComment)
		post.PUT("/comment/like/:commentId", requireAuth, h.toggleCommentLike)
	}

	return router
}

func (h *handler) health(c *gin.Context) {
	if h.deps.Health != nil {
		if err := h.deps.Health(c.Request.Context()); err != nil {
			h.log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
