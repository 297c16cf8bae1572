package handler

import (
	"net/http"
	"time"

	"reqtrack/internal/middleware"
	"reqtrack/internal/permission"
	"reqtrack/internal/service"
	"reqtrack/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statistics := router.Group("/api/statistics")
	statistics.Use(middleware.RequireRole(permission.RoleReviewer, permission.RoleAdmin))
	{
		statistics.GET("/overview", h.GetStatistics)
	}
}

// GetStatistics handles GET /api/statistics/overview
// @Summary      Get request statistics
// @Description  Aggregates request counts by status, priority and category over a creation-time window. Defaults to the last 30 days.
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200         {object}  response.Response{data=service.StatisticsResponse}
// @Failure      400         {object}  response.Response
// @Failure      403         {object}  response.Response
// @Router       /api/statistics/overview [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	now := time.Now()
	startDate := now.AddDate(0, 0, -30)
	endDate := now

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD"))
			return
		}
		startDate = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD"))
			return
		}
		// Include the whole end day
		endDate = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "end_date must not precede start_date"))
		return
	}

	result, err := h.statisticsService.GetStatistics(c.Request.Context(), startDate, endDate)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
