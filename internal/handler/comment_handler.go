package handler

import (
	"net/http"

	"reqtrack/internal/middleware"
	"reqtrack/internal/service"
	"reqtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	requests.Use(middleware.RequireAuth())
	{
		requests.POST("/:id/comments", h.CreateComment)
		requests.GET("/:id/comments", h.ListComments)
	}

	comments := router.Group("/api/comments")
	comments.Use(middleware.RequireAuth())
	{
		comments.DELETE("/:id", h.DeleteComment)
	}
}

// CreateComment handles POST /api/requests/:id/comments
// @Summary      Post a comment
// @Description  Adds a comment to a request and bumps the request's updated_at
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Request ID"
// @Param        payload  body      service.CreateCommentDTO  true  "Comment Payload"
// @Success      201      {object}  response.Response{data=service.CommentResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.commentService.Create(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListComments handles GET /api/requests/:id/comments
// @Summary      List comments on a request
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.CommentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	result, err := h.commentService.ListByRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary      Delete a comment
// @Description  Deletes a comment. Only the author or an admin may delete; the deletion is recorded in the request history.
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
