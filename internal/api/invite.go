package api

import (
	"hunter_api/internal/domain"     // Importing domain models
	"hunter_api/internal/middleware" // Authenticated hunter
	"hunter_api/internal/tasks"      // Notification jobs
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// GuildInviteRequest asks for an invitation email to a hunter
type GuildInviteRequest struct {
	HunterID *uint `json:"hunter_id" binding:"required"` // Invited hunter
	GuildID  *uint `json:"guild_id" binding:"required"`  // Inviting guild
}

// RaidInviteRequest asks for a raid invitation email to a hunter
type RaidInviteRequest struct {
	RaidID   *uint `json:"raid_id" binding:"required"`   // Raid
	HunterID *uint `json:"hunter_id" binding:"required"` // Invited hunter
}

// GuildInviteHandler lets a guild's leader invite a hunter by email
func GuildInviteHandler(db *gorm.DB, jobs tasks.Enqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GuildInviteRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		verr := &ValidationError{}
		if ok, err := exists[domain.Hunter](conn, *req.HunterID); err != nil {
			respondError(c, err)
			return
		} else if !ok {
			verr.Add("hunter_id", "Hunter with this ID does not exist.")
		}
		var guild domain.Guild
		if err := conn.Where("id = ?", *req.GuildID).Limit(1).Find(&guild).Error; err != nil {
			respondError(c, err)
			return
		}
		if guild.ID == 0 {
			verr.Add("guild_id", "Guild with this ID does not exist.")
		}
		if err := verr.Err(); err != nil {
			respondError(c, err)
			return
		}
		caller, ok := middleware.LoadHunter(c, conn)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}
		// Only the guild's leader may invite
		if guild.LeaderID == nil || *guild.LeaderID != caller.ID {
			respondError(c, &PermissionError{Message: "You do not have permission to invite hunters to this guild."})
			return
		}
		taskID, err := jobs.Enqueue(c.Request.Context(), tasks.JobGuildInvite, *req.HunterID, guild.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"guild_id":  guild.ID,      // Guild ID
				"hunter_id": *req.HunterID, // Invited hunter
				"error":     err.Error(),   // Error message
			}).Error("Failed to enqueue guild invite")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue invite"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"guild_id":  guild.ID,      // Guild ID
			"hunter_id": *req.HunterID, // Invited hunter
			"task_id":   taskID,        // Queue handle
		}).Info("Guild invite queued")
		c.JSON(http.StatusAccepted, gin.H{"message": "Guild invite email is being sent.", "task_id": taskID})
	}
}

// RaidInviteHandler lets staff invite a hunter to a raid by email
func RaidInviteHandler(db *gorm.DB, jobs tasks.Enqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RaidInviteRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		if ok, err := exists[domain.Raid](conn, *req.RaidID); err != nil {
			respondError(c, err)
			return
		} else if !ok {
			respondError(c, &NotFoundError{Entity: "Raid"})
			return
		}
		if ok, err := exists[domain.Hunter](conn, *req.HunterID); err != nil {
			respondError(c, err)
			return
		} else if !ok {
			respondError(c, fieldError("hunter_id", "Hunter with this ID does not exist."))
			return
		}
		taskID, err := jobs.Enqueue(c.Request.Context(), tasks.JobRaidInvite, *req.RaidID, *req.HunterID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"raid_id":   *req.RaidID,   // Raid ID
				"hunter_id": *req.HunterID, // Invited hunter
				"error":     err.Error(),   // Error message
			}).Error("Failed to enqueue raid invite")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue invite"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"raid_id":   *req.RaidID,   // Raid ID
			"hunter_id": *req.HunterID, // Invited hunter
			"task_id":   taskID,        // Queue handle
		}).Info("Raid invite queued")
		c.JSON(http.StatusAccepted, gin.H{"message": "Raid invite email is being sent.", "task_id": taskID})
	}
}
