package handler

import (
	"net/http"

	"reqtrack/internal/middleware"
	"reqtrack/internal/permission"
	"reqtrack/internal/service"
	"reqtrack/pkg/pagination"
	"reqtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audits := router.Group("/api/audit-logs")
	audits.Use(middleware.RequireRole(permission.RoleAdmin))
	{
		audits.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs handles GET /api/audit-logs
// @Summary      List audit entries
// @Description  Returns audit entries across all requests, newest first. Admin only.
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   logs,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}
