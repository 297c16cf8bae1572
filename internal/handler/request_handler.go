package handler

import (
	"net/http"

	"reqtrack/internal/middleware"
	"reqtrack/internal/service"
	"reqtrack/pkg/pagination"
	"reqtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

// requestSortColumns is the allowlist for the list endpoint's sort parameter.
var requestSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"priority":   "priority",
	"status":     "status",
	"id":         "id",
}

type RequestHandler struct {
	requestService service.RequestService
	auditService   service.AuditService
}

func NewRequestHandler(requestService service.RequestService, auditService service.AuditService) *RequestHandler {
	return &RequestHandler{requestService: requestService, auditService: auditService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	requests.Use(middleware.RequireAuth())
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.PATCH("/:id", h.UpdateRequest)
		requests.DELETE("/:id", h.DeleteRequest)
		requests.POST("/:id/status", h.ChangeStatus)
		requests.POST("/:id/resubmit", h.Resubmit)
		requests.GET("/:id/audits", h.ListRequestAudits)
	}
}

// CreateRequest handles POST /api/requests
// @Summary      Submit a new request
// @Description  Creates a request in Submitted status and records the creation in the audit log
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestDTO  true  "Request Payload"
// @Success      201      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.CreateRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.Create(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequests handles GET /api/requests
// @Summary      List requests
// @Description  Returns requests filtered by status, category, priority, requester and keyword
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Workflow status"
// @Param        category   query     string  false  "Category"
// @Param        priority   query     string  false  "Priority (P0..P3)"
// @Param        requester  query     string  false  "Requester user id"
// @Param        q          query     string  false  "Keyword over title and description"
// @Param        sort       query     string  false  "Sort field, optionally field:desc"
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  response.Response
// @Failure      401        {object}  response.Response
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	params := pagination.Parse(c)
	filter := service.ListRequestsDTO{
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		Priority:  c.Query("priority"),
		Requester: c.Query("requester"),
		Keyword:   c.Query("q"),
		OrderBy:   pagination.ParseSort(c, requestSortColumns, "created_at desc"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	requests, total, err := h.requestService.List(c.Request.Context(), actor, filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   requests,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// GetRequest handles GET /api/requests/:id
// @Summary      Get a request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	result, err := h.requestService.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// UpdateRequest handles PATCH /api/requests/:id
// @Summary      Edit a request
// @Description  Applies a partial patch. Requesters may edit their own requests while Submitted or NeedInfo; reviewers and admins may edit any request.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Request ID"
// @Param        payload  body      service.UpdateRequestDTO  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id} [patch]
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var patch service.UpdateRequestDTO
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.Update(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ChangeStatus handles POST /api/requests/:id/status
// @Summary      Change request status
// @Description  Moves a request along the review workflow. Reviewer or admin only; every change requires a reason and is audited.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true  "Request ID"
// @Param        payload  body      service.ChangeStatusDTO  true  "Target status and reason"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/status [post]
func (h *RequestHandler) ChangeStatus(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.ChangeStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.ChangeStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Resubmit handles POST /api/requests/:id/resubmit
// @Summary      Resubmit a request
// @Description  Returns a NeedInfo, Suspended or Rejected request to the Submitted status
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "Request ID"
// @Param        payload  body      service.ResubmitDTO  false  "Optional note"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/resubmit [post]
func (h *RequestHandler) Resubmit(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	var req service.ResubmitDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		// Allow empty body — note is optional
		req.Note = ""
	}

	result, err := h.requestService.Resubmit(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteRequest handles DELETE /api/requests/:id
// @Summary      Delete a request
// @Description  Hard-deletes a request with its comments, attachments and audit rows, leaving a deletion tombstone. Admin only.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	if err := h.requestService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListRequestAudits handles GET /api/requests/:id/audits
// @Summary      Get request history
// @Description  Returns the request's audit entries newest-first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.AuditLogResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id}/audits [get]
func (h *RequestHandler) ListRequestAudits(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}

	logs, err := h.auditService.ListByRequest(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
