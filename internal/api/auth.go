package api

import (
	"hunter_api/internal/domain"     // Importing domain models
	"hunter_api/internal/middleware" // Authenticated hunter
	"hunter_api/internal/utils"      // Utility functions
	"net/http"                       // HTTP status codes
	"time"                           // Token lifetimes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// TokenSettings configures token signing
type TokenSettings struct {
	Secret     string        // HMAC secret
	AccessTTL  time.Duration // Access token lifetime
	RefreshTTL time.Duration // Refresh token lifetime
}

// LoginRequest is the body of the token endpoint
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// RefreshRequest is the body of the refresh endpoint
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"` // Refresh token
}

// VerifyPasswordRequest is the body of the password check endpoint
type VerifyPasswordRequest struct {
	Password string `json:"password"` // Password to check
}

// identityOf builds the token claims for a hunter
func identityOf(conn *gorm.DB, hunter *domain.Hunter) (utils.Identity, error) {
	var led int64
	if err := conn.Model(&domain.Guild{}).Where("leader_id = ?", hunter.ID).Count(&led).Error; err != nil {
		return utils.Identity{}, err
	}
	return utils.Identity{
		UserID:   hunter.ID,
		Username: hunter.Username,
		IsAdmin:  hunter.IsStaff,
		IsLeader: led > 0,
	}, nil
}

// TokenHandler authenticates a hunter and returns an access and refresh token
func TokenHandler(db *gorm.DB, settings TokenSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		var hunter domain.Hunter // Fetch hunter from database
		if err := conn.Where("username = ?", req.Username).First(&hunter).Error; err != nil {
			// If hunter not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No active account found with the given credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(hunter.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No active account found with the given credentials"})
			return
		}
		id, err := identityOf(conn, &hunter)
		if err != nil {
			respondError(c, err)
			return
		}
		// Generate JWT token pair
		pair, err := utils.GenerateTokenPair(id, settings.Secret, settings.AccessTTL, settings.RefreshTTL)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		logrus.WithField("hunter_id", hunter.ID).Info("Token issued")
		c.JSON(http.StatusOK, pair)
	}
}

// RefreshHandler exchanges a refresh token for a new access token
func RefreshHandler(db *gorm.DB, settings TokenSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		claims, err := utils.ParseJWT(req.Refresh, utils.RefreshToken, settings.Secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
			return
		}
		conn := db.WithContext(c.Request.Context())
		var hunter domain.Hunter // Claims are rebuilt from the current row
		if err := conn.First(&hunter, claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
			return
		}
		id, err := identityOf(conn, &hunter)
		if err != nil {
			respondError(c, err)
			return
		}
		access, err := utils.GenerateJWT(id, utils.AccessToken, settings.Secret, settings.AccessTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access": access})
	}
}

// VerifyPasswordHandler tells the caller whether a password matches their own
func VerifyPasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyPasswordRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if req.Password == "" {
			respondError(c, fieldError("password", msgRequired))
			return
		}
		hunter, ok := middleware.LoadHunter(c, db.WithContext(c.Request.Context()))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}
		err := bcrypt.CompareHashAndPassword([]byte(hunter.Password), []byte(req.Password))
		c.JSON(http.StatusOK, gin.H{"valid": err == nil})
	}
}
