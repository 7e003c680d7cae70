package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusnet/backend/internal/social"
)

type searchQuery struct {
	Query    string `form:"q" binding:"max=100"`
	Course   string `form:"course" binding:"max=160"`
	Year     *int   `form:"year" binding:"omitempty,min=1900,max=2100"`
	Location string `form:"location" binding:"max=120"`
	Limit    int    `form:"limit" binding:"omitempty,min=1"`
}

func (h *handler) signup(c *gin.Context) {
	var req social.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "signup", badRequest(err))
		return
	}

	ctx := c.Request.Context()
	user, err := h.deps.Directory.Register(ctx, req)
	if err != nil {
		h.respondError(c, "signup", err)
		return
	}

	view, err := h.deps.Profiles.GetProfile(ctx, user.ID, user.ID)
	if err != nil {
		h.respondError(c, "signup", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": view})
}

func (h *handler) searchUsers(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, "search users", badRequest(err))
		return
	}

	cards, err := h.deps.Profiles.Search(c.Request.Context(), callerID(c), social.SearchCriteria{
		Query:    q.Query,
		Course:   q.Course,
		Year:     q.Year,
		Location: q.Location,
		Limit:    q.Limit,
	})
	if err != nil {
		h.respondError(c, "search users", err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *handler) pendingRequests(c *gin.Context) {
	pending, err := h.deps.Profiles.PendingRequests(c.Request.Context(), callerID(c))
	if err != nil {
		h.respondError(c, "pending requests", err)
		return
	}
	c.JSON(http.StatusOK, pending)
}

func (h *handler) sendRequest(c *gin.Context) {
	result, err := h.deps.Graph.SendRequest(c.Request.Context(), callerID(c), c.Param("targetId"))
	h.deps.Metrics.Connection("send_request", outcome(err))
	if err != nil {
		h.respondError(c, "send request", err)
		return
	}

	message := "Connection request sent"
	if result == social.AutoAccepted {
		message = "Connection request accepted"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "result": result})
}

func (h *handler) acceptRequest(c *gin.Context) {
	err := h.deps.Graph.Accept(c.Request.Context(), callerID(c), c.Param("senderId"))
	h.deps.Metrics.Connection("accept", outcome(err))
	if err != nil {
		h.respondError(c, "accept request", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Connection accepted", "status": social.StatusConnected})
}

func (h *handler) connectionStatus(c *gin.Context) {
	status, err := h.deps.Graph.Status(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, "connection status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *handler) updateProfile(c *gin.Context) {
	var req social.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, "update profile", badRequest(err))
		return
	}

	ctx := c.Request.Context()
	caller := callerID(c)
	user, err := h.deps.Directory.Update(ctx, caller, c.Param("id"), req)
	if err != nil {
		h.respondError(c, "update profile", err)
		return
	}

	view, err := h.deps.Profiles.GetProfile(ctx, user.ID, caller)
	if err != nil {
		h.respondError(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handler) getProfile(c *gin.Context) {
	view, err := h.deps.Profiles.GetProfile(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		h.respondError(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
