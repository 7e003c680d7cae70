package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type contentRequest struct {
	Content string `json:"content"`
}

type pageQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func (h *handler) pageLimit(c *gin.Context) (int, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, "page", badRequest(err))
		return 0, false
	}
	if q.Limit == 0 {
		return h.opts.FeedPageSize, true
	}
	return q.Limit, true
}

func (h *handler) feed(c *gin.Context) {
	limit, ok := h.pageLimit(c)
	if !ok {
		return
	}
	posts, err := h.deps.Feed.Latest(c.Request.Context(), callerID(c), limit)
	if err != nil {
		h.respondError(c, "feed", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handler) postsByAuthor(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, "posts by author", badRequest(err))
		return
	}
	posts, err := h.deps.Feed.ByAuthor(c.Request.Context(), callerID(c), c.Param("authorId"), q.Limit)
	if err != nil {
		h.respondError(c, "posts by author", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handler) createPost(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "create post", badRequest(err))
		return
	}

	ctx := c.Request.Context()
	caller := callerID(c)
	post, err := h.deps.Posts.Create(ctx, caller, req.Content)
	h.deps.Metrics.Content("post_create", outcome(err))
	if err != nil {
		h.respondError(c, "create post", err)
		return
	}

	view, err := h.deps.Feed.Post(ctx, caller, post.ID)
	if err != nil {
		h.respondError(c, "create post", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Post created successfully", "post": view})
}

func (h *handler) updatePost(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "update post", badRequest(err))
		return
	}

	ctx := c.Request.Context()
	caller := callerID(c)
	post, err := h.deps.Posts.Update(ctx, c.Param("postId"), caller, req.Content)
	h.deps.Metrics.Content("post_update", outcome(err))
	if err != nil {
		h.respondError(c, "update post", err)
		return
	}

	view, err := h.deps.Feed.Post(ctx, caller, post.ID)
	if err != nil {
		h.respondError(c, "update post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": view})
}

func (h *handler) deletePost(c *gin.Context) {
	err := h.deps.Posts.Delete(c.Request.Context(), c.Param("postId"), callerID(c))
	h.deps.Metrics.Content("post_delete", outcome(err))
	if err != nil {
		h.respondError(c, "delete post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (h *handler) togglePostLike(c *gin.Context) {
	ctx := c.Request.Context()
	caller := callerID(c)
	postID := c.Param("postId")

	state, err := h.deps.Posts.ToggleLike(ctx, postID, caller)
	h.deps.Metrics.Content("post_like", outcome(err))
	if err != nil {
		h.respondError(c, "toggle post like", err)
		return
	}

	view, err := h.deps.Feed.Post(ctx, caller, postID)
	if err != nil {
		h.respondError(c, "toggle post like", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "post": view})
}

func (h *handler) listComments(c *gin.Context) {
	comments, err := h.deps.Feed.Comments(c.Request.Context(), callerID(c), c.Param("postId"))
	if err != nil {
		h.respondError(c, "list comments", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *handler) createComment(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "create comment", badRequest(err))
		return
	}

	ctx := c.Request.Context()
	caller := callerID(c)
	comment, err := h.deps.Comments.Create(ctx, c.Param("postId"), caller, req.Content)
	h.deps.Metrics.Content("comment_create", outcome(err))
	if err != nil {
		h.respondError(c, "create comment", err)
		return
	}

	view, err := h.deps.Feed.Comment(ctx, caller, comment)
	if err != nil {
		h.respondError(c, "create comment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully", "comment": view})
}

func (h *handler) deleteComment(c *gin.Context) {
	err := h.deps.Comments.Delete(c.Request.Context(), c.Param("commentId"), callerID(c))
	h.deps.Metrics.Content("comment_delete", outcome(err))
	if err != nil {
		h.respondError(c, "delete comment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *handler) toggleCommentLike(c *gin.Context) {
	state, err := h.deps.Comments.ToggleLike(c.Request.Context(), c.Param("commentId"), callerID(c))
	h.deps.Metrics.Content("comment_like", outcome(err))
	if err != nil {
		h.respondError(c, "toggle comment like", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}
