package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// ParseSort validates a "sort" query value of the form "field" or "field:desc"
// against an allowlist of sortable columns. Anything unrecognized falls back
// to the given default order clause.
func ParseSort(c *gin.Context, allowed map[string]string, fallback string) string {
	raw := c.Query("sort")
	if raw == "" {
		return fallback
	}

	field := raw
	dir := "asc"
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		field = raw[:i]
		dir = strings.ToLower(raw[i+1:])
	}
	if dir != "asc" && dir != "desc" {
		return fallback
	}

	column, ok := allowed[field]
	if !ok {
		return fallback
	}
	return column + " " + dir
}
