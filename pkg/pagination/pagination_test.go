package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func contextWithQuery(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseDefaultsAndBounds(t *testing.T) {
	cases := []struct {
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"", 1, 20, 0},
		{"page=3&limit=10", 3, 10, 20},
		{"page=0&limit=0", 1, 20, 0},
		{"page=-5&limit=-1", 1, 20, 0},
		{"limit=9999", 1, 100, 0},
		{"page=abc&limit=xyz", 1, 20, 0},
	}

	for _, tc := range cases {
		p := Parse(contextWithQuery(t, tc.query))
		require.Equal(t, tc.wantPage, p.Page, "query %q", tc.query)
		require.Equal(t, tc.wantLimit, p.Limit, "query %q", tc.query)
		require.Equal(t, tc.wantOffset, p.Offset, "query %q", tc.query)
	}
}

func TestParseSortAllowlist(t *testing.T) {
	allowed := map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"priority":  "priority",
	}

	cases := []struct {
		query string
		want  string
	}{
		{"", "created_at desc"},
		{"sort=createdAt", "created_at asc"},
		{"sort=updatedAt:desc", "updated_at desc"},
		{"sort=priority:asc", "priority asc"},
		{"sort=priority:sideways", "created_at desc"},
		{"sort=password", "created_at desc"},
		{"sort=created_at;drop+table", "created_at desc"},
	}

	for _, tc := range cases {
		got := ParseSort(contextWithQuery(t, tc.query), allowed, "created_at desc")
		require.Equal(t, tc.want, got, "query %q", tc.query)
	}
}
