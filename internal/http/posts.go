package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) createPost(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userIDFrom(c), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id"), userIDFrom(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, errorMessage{Msg: "Post removed"})
}

func (h *Handler) likePost(c *gin.Context) {
	post, err := h.posts.Like(c.Request.Context(), c.Param("id"), userIDFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) unlikePost(c *gin.Context) {
	post, err := h.posts.Unlike(c.Request.Context(), c.Param("id"), userIDFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) addComment(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	post, err := h.posts.AddComment(c.Request.Context(), c.Param("id"), userIDFrom(c), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) removeComment(c *gin.Context) {
	comments, err := h.posts.RemoveComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), userIDFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, commentsToResponse(comments))
}
