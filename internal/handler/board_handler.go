package handler

import (
	"net/http"

	"reqtrack/internal/middleware"
	"reqtrack/internal/service"
	"reqtrack/pkg/pagination"
	"reqtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardService service.BoardService
}

func NewBoardHandler(boardService service.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *BoardHandler) RegisterRoutes(router *gin.RouterGroup) {
	board := router.Group("/api/board")
	board.Use(middleware.RequireAuth())
	{
		board.GET("", h.ListMessages)
		board.POST("", h.CreateMessage)
		board.PUT("/:id/pin", h.PinMessage)
		board.DELETE("/:id", h.DeleteMessage)
	}
}

// ListMessages handles GET /api/board
// @Summary      List board messages
// @Description  Returns board messages, pinned messages first
// @Tags         board
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response
// @Router       /api/board [get]
func (h *BoardHandler) ListMessages(c *gin.Context) {
	params := pagination.Parse(c)

	messages, total, err := h.boardService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   messages,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// CreateMessage handles POST /api/board
// @Summary      Post a board message
// @Tags         board
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBoardMessageDTO  true  "Message Payload"
// @Success      201      {object}  response.Response{data=service.BoardMessageResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/board [post]
func (h *BoardHandler) CreateMessage(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.CreateBoardMessageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.boardService.Create(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// PinMessage handles PUT /api/board/:id/pin
// @Summary      Pin or unpin a board message
// @Description  Admin only. Body {"pinned": true|false}.
// @Tags         board
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/board/{id}/pin [put]
func (h *BoardHandler) PinMessage(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var body struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		// Allow empty body — defaults to pinning
		body.Pinned = true
	}

	if err := h.boardService.SetPinned(c.Request.Context(), actor, c.Param("id"), body.Pinned); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"pinned": body.Pinned}))
}

// DeleteMessage handles DELETE /api/board/:id
// @Summary      Delete a board message
// @Description  Only the author or an admin may delete
// @Tags         board
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/board/{id} [delete]
func (h *BoardHandler) DeleteMessage(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	if err := h.boardService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
