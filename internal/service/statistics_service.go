package service

import (
	"context"
	"time"

	"reqtrack/internal/model"
	"reqtrack/internal/workflow"

	"gorm.io/gorm"
)

type StatusCount struct {
	Status workflow.Status `json:"status"`
	Count  int64           `json:"count"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type StatisticsResponse struct {
	TimeRangeStartDate time.Time       `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time       `json:"time_range_end_date"`
	TotalRequests      int64           `json:"total_requests"`
	OpenRequests       int64           `json:"open_requests"`
	ResolvedRequests   int64           `json:"resolved_requests"`
	ByStatus           []StatusCount   `json:"by_status"`
	ByPriority         []PriorityCount `json:"by_priority"`
	TopCategories      []CategoryCount `json:"top_categories"`
	DailySubmissions   []DailyCount    `json:"daily_submissions"`
}

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (StatisticsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics aggregates request counts over the given creation-time window.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (StatisticsResponse, error) {
	var response StatisticsResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	inRange := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.Request{}).
			Where("created_at >= ? AND created_at <= ?", startDate, endDate)
	}

	if err := inRange().Count(&response.TotalRequests).Error; err != nil {
		return response, err
	}

	openStatuses := []workflow.Status{workflow.StatusSubmitted, workflow.StatusNeedInfo, workflow.StatusAccepted, workflow.StatusSuspended}
	if err := inRange().Where("status IN ?", openStatuses).Count(&response.OpenRequests).Error; err != nil {
		return response, err
	}

	resolvedStatuses := []workflow.Status{workflow.StatusRejected, workflow.StatusClosed}
	if err := inRange().Where("status IN ?", resolvedStatuses).Count(&response.ResolvedRequests).Error; err != nil {
		return response, err
	}

	if err := inRange().
		Select("status, COUNT(*) as count").
		Group("status").
		Order("count DESC").
		Scan(&response.ByStatus).Error; err != nil {
		return response, err
	}

	if err := inRange().
		Where("priority <> ''").
		Select("priority, COUNT(*) as count").
		Group("priority").
		Order("priority ASC").
		Scan(&response.ByPriority).Error; err != nil {
		return response, err
	}

	if err := inRange().
		Where("category <> ''").
		Select("category, COUNT(*) as count").
		Group("category").
		Order("count DESC").
		Limit(5).
		Scan(&response.TopCategories).Error; err != nil {
		return response, err
	}

	if err := inRange().
		Select("to_char(created_at, 'YYYY-MM-DD') as day, COUNT(*) as count").
		Group("day").
		Order("day ASC").
		Scan(&response.DailySubmissions).Error; err != nil {
		return response, err
	}

	return response, nil
}
