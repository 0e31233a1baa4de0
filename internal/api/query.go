package api

import (
	"context" // Request contexts
	"errors"  // Error inspection
	"strconv" // String conversion
	"strings" // Ordering parsing
	"time"    // Date parsing

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
	"gorm.io/gorm/clause"      // Quoted column expressions
)

const dateLayout = "2006-01-02"

// paginate reads page and page_size from the query string
func paginate(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// totalPages rounds up
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

func col(name string) clause.Column {
	return clause.Column{Name: name}
}

// exact adds column = value when value is non-empty
func exact(q *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return q
	}
	return q.Where(clause.Eq{Column: col(column), Value: value})
}

// icontains adds a case-insensitive substring match
func icontains(q *gorm.DB, column, value string) *gorm.DB {
	if value == "" {
		return q
	}
	return q.Where(containsExpr(column, value))
}

func containsExpr(column, value string) clause.Expression {
	return clause.Expr{
		SQL:  "LOWER(?) LIKE ?",
		Vars: []any{col(column), "%" + strings.ToLower(value) + "%"},
	}
}

// search ORs a substring match over several columns
func search(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	exprs := make([]clause.Expression, len(columns))
	for i, c := range columns {
		exprs[i] = containsExpr(c, term)
	}
	return q.Where(clause.Or(exprs...))
}

// order applies a comma separated ordering like "name,-power". Unknown fields are ignored.
func order(q *gorm.DB, raw string, allowed map[string]string, fallback ...string) *gorm.DB {
	applied := false
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		desc := strings.HasPrefix(f, "-")
		column, ok := allowed[strings.TrimPrefix(f, "-")]
		if !ok {
			continue
		}
		q = q.Order(clause.OrderByColumn{Column: col(column), Desc: desc})
		applied = true
	}
	if !applied {
		for _, f := range fallback {
			q = q.Order(clause.OrderByColumn{Column: col(f)})
		}
	}
	// stable pages
	return q.Order(clause.OrderByColumn{Column: col("id")})
}

// uintQuery parses an id filter; an unparsable value is a validation error
func uintQuery(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fieldError(name, "Enter a whole number.")
	}
	id := uint(v)
	return &id, nil
}

// dateQuery parses a YYYY-MM-DD filter
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fieldError(name, "Enter a valid date.")
	}
	return &d, nil
}

// pathID parses the :id segment; anything else addresses no row
func pathID(c *gin.Context, entity string) (uint, error) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || v == 0 {
		return 0, &NotFoundError{Entity: entity}
	}
	return uint(v), nil
}

// fetch loads one row by id with the given preloads
func fetch[T any](db *gorm.DB, entity string, id uint, preloads ...string) (*T, error) {
	var out T
	q := db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&out, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: entity}
		}
		return nil, err
	}
	return &out, nil
}

// exists reports whether a row with id is present
func exists[T any](db *gorm.DB, id uint) (bool, error) {
	var count int64
	var model T
	if err := db.Model(&model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// detached keeps cache invalidation running after the client hangs up
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
