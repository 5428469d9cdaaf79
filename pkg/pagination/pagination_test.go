package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paramsFor(query string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	cases := []struct {
		query  string
		page   int
		limit  int
		offset int
	}{
		{"", 1, 20, 0},
		{"page=3&limit=10", 3, 10, 20},
		{"page=0&limit=0", 1, 20, 0},
		{"page=-5&limit=-1", 1, 20, 0},
		{"limit=1000", 1, 100, 0},
		{"page=abc&limit=xyz", 1, 20, 0},
	}
	for _, tc := range cases {
		got := paramsFor(tc.query)
		if got.Page != tc.page || got.Limit != tc.limit || got.Offset != tc.offset {
			t.Errorf("Parse(%q) = %+v, want page=%d limit=%d offset=%d",
				tc.query, got, tc.page, tc.limit, tc.offset)
		}
	}
}
