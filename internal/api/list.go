package api

import (
	"context"                   // Request contexts
	"hunter_api/internal/cache" // List cache
	"hunter_api/internal/tasks" // Job queue
	"net/http"                  // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// loadPage fetches one page of items and the unpaginated total
type loadPage func(ctx context.Context, page, pageSize int) (items any, total int64, err error)

// serveList answers a list request from the cache, or loads, caches and returns the page
func serveList(c *gin.Context, lists *cache.ListCache, entity cache.Entity, resultKey string, load loadPage) {
	ctx := c.Request.Context()
	cacheKey := lists.Key(entity, c.GetHeader("Authorization"), c.Request.URL.Query())
	var cached map[string]any
	if lists.Get(ctx, cacheKey, &cached) {
		cached["cached"] = true // Indicate response is from cache
		c.JSON(http.StatusOK, cached)
		return
	}
	logrus.WithField("list", string(entity)).Info("Fetching list")
	page, pageSize := paginate(c)
	items, total, err := load(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{
		resultKey:     items,                       // Page items
		"page":        page,                        // Current page
		"page_size":   pageSize,                    // Page size
		"total":       total,                       // Total number of rows
		"total_pages": totalPages(total, pageSize), // Total pages
		"cached":      false,                       // Indicate response is not from cache
	}
	lists.Set(ctx, cacheKey, resp) // Cache the response for future requests
	c.JSON(http.StatusOK, resp)
}

// loadRows counts the filtered rows and loads one sorted page with its relations
func loadRows[T any](q *gorm.DB, page, pageSize int, sort func(*gorm.DB) *gorm.DB, preloads ...string) ([]T, int64, error) {
	q = q.Session(&gorm.Session{}) // Safe to reuse for count and find
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var rows []T
	if err := sort(q).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// invalidate drops every list page affected by a committed write
func invalidate(c *gin.Context, lists *cache.ListCache, written ...cache.Entity) {
	lists.Invalidate(detached(c), written...)
}

// notify enqueues a notification job. Failures are logged and never reach the client.
func notify(c *gin.Context, jobs tasks.Enqueuer, name string, id uint) {
	jobID, err := jobs.Enqueue(detached(c), name, id)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"job":   name,        // Job name
			"id":    id,          // Entity ID
			"error": err.Error(), // Error message
		}).Error("Failed to enqueue notification")
		return
	}
	logrus.WithFields(logrus.Fields{
		"job":    name,  // Job name
		"id":     id,    // Entity ID
		"job_id": jobID, // Queue handle
	}).Info("Notification enqueued")
}
