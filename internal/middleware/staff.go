package middleware

import (
	"hunter_api/internal/domain" // Importing domain models
	"net/http"                   // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// StaffOnlyMiddleware checks the hunter's staff flag from the database on each request
func StaffOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		hunter, ok := LoadHunter(c, db)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}
		// Token claims may be stale, the row is authoritative
		if !hunter.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
			return
		}
		c.Next()
	}
}

// LoadHunter returns the authenticated hunter, reading it once per request
func LoadHunter(c *gin.Context, db *gorm.DB) (*domain.Hunter, bool) {
	if h, exists := c.Get(HunterKey); exists {
		return h.(*domain.Hunter), true
	}
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return nil, false
	}
	var hunter domain.Hunter
	if err := db.WithContext(c.Request.Context()).First(&hunter, userID).Error; err != nil {
		return nil, false // Deleted since the token was issued
	}
	c.Set(HunterKey, &hunter)
	return &hunter, true
}
