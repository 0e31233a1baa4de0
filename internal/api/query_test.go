package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryContext(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return c
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 20},
		{"page=3&page_size=5", 3, 5},
		{"page=0&page_size=500", 1, 20},
		{"page=abc&page_size=-1", 1, 20},
		{"page_size=100", 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			page, size := paginate(queryContext(tt.query))
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.pageSize, size)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
}

func TestQueryParsers(t *testing.T) {
	id, err := uintQuery(queryContext("leader=7"), "leader")
	assert.NoError(t, err)
	assert.Equal(t, uint(7), *id)

	id, err = uintQuery(queryContext(""), "leader")
	assert.NoError(t, err)
	assert.Nil(t, id)

	_, err = uintQuery(queryContext("leader=-1"), "leader")
	assert.IsType(t, &ValidationError{}, err)

	d, err := dateQuery(queryContext("date=2024-02-29"), "date")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.Format(dateLayout))

	_, err = dateQuery(queryContext("date=2023-02-29"), "date")
	assert.IsType(t, &ValidationError{}, err)
}
