package api

import (
	"context"                    // Request contexts
	"hunter_api/internal/cache"  // List cache
	"hunter_api/internal/domain" // Importing domain models
	"hunter_api/internal/tasks"  // Notification jobs
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // SQL expressions
)

// GuildRequest is the body of guild create and update calls
type GuildRequest struct {
	Name   *string        `json:"name" binding:"omitempty,max=100"` // Guild name
	Leader optional[uint] `json:"leader"`                           // Leading hunter
}

func (r *GuildRequest) validate(full bool) error {
	verr := &ValidationError{}
	if full {
		requireText(verr, "name", r.Name)
		if r.Leader.Value == nil {
			verr.Add("leader", msgRequired)
		}
	} else {
		notBlank(verr, "name", r.Name)
		if r.Leader.Set && r.Leader.Value == nil {
			verr.Add("leader", "This field may not be null.")
		}
	}
	return verr.Err()
}

var guildOrdering = map[string]string{
	"name":         "name",
	"founded_date": "founded_date",
}

// ListGuildsHandler lists guilds, oldest first
func ListGuildsHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveList(c, lists, cache.Guilds, "guilds", func(ctx context.Context, page, pageSize int) (any, int64, error) {
			leader, err := uintQuery(c, "leader")
			if err != nil {
				return nil, 0, err
			}
			q := db.WithContext(ctx).Model(&domain.Guild{})
			q = icontains(q, "name", c.Query("name__icontains"))
			q = search(q, c.Query("search"), "name")
			if leader != nil {
				q = q.Where("leader_id = ?", *leader)
			}
			sort := func(q *gorm.DB) *gorm.DB {
				return order(q, c.Query("ordering"), guildOrdering, "founded_date", "name")
			}
			rows, total, err := loadRows[domain.Guild](q, page, pageSize, sort, guildPreloads...)
			if err != nil {
				return nil, 0, err
			}
			return mapViews(rows, guildView), total, nil
		})
	}
}

// GetGuildHandler returns one guild with its members
func GetGuildHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Guild")
		if err != nil {
			respondError(c, err)
			return
		}
		guild, err := fetch[domain.Guild](db.WithContext(c.Request.Context()), "Guild", id, guildPreloads...)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, guildView(guild))
	}
}

// CreateGuildHandler founds a guild and makes its leader the first member
func CreateGuildHandler(db *gorm.DB, lists *cache.ListCache, jobs tasks.Enqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GuildRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(true); err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		if err := checkLeader(conn, *req.Leader.Value, 0); err != nil {
			respondError(c, err)
			return
		}
		guild := domain.Guild{Name: strings.TrimSpace(*req.Name), LeaderID: req.Leader.Value}
		// Create the guild and enrol its leader in one transaction
		err := conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(&guild).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Model(&domain.Hunter{}).
				Where("id = ?", *guild.LeaderID).
				Update("guild_id", guild.ID).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"name":   guild.Name,      // Guild name
				"leader": *guild.LeaderID, // Leader ID
				"error":  err.Error(),     // Error message
			}).Error("Guild creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guild"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"guild_id": guild.ID,        // New guild ID
			"name":     guild.Name,      // Guild name
			"leader":   *guild.LeaderID, // Leader ID
		}).Info("Guild created")
		invalidate(c, lists, cache.Guilds)
		notify(c, jobs, tasks.JobGuildCreation, guild.ID)
		respondGuild(c, conn, guild.ID, http.StatusCreated)
	}
}

// UpdateGuildHandler renames a guild or hands over leadership
func UpdateGuildHandler(db *gorm.DB, lists *cache.ListCache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Guild")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		guild, err := fetch[domain.Guild](conn, "Guild", id)
		if err != nil {
			respondError(c, err)
			return
		}
		var req GuildRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(!partial); err != nil {
			respondError(c, err)
			return
		}
		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Leader.Value != nil {
			if err := checkLeader(conn, *req.Leader.Value, id); err != nil {
				respondError(c, err)
				return
			}
			updates["leader_id"] = *req.Leader.Value
		}
		if len(updates) > 0 {
			err = conn.Transaction(func(tx *gorm.DB) error {
				return tx.Model(guild).Omit(clause.Associations).Updates(updates).Error
			})
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"guild_id": id,          // Guild ID
					"error":    err.Error(), // Error message
				}).Error("Guild update failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update guild"})
				return
			}
		}
		logrus.WithField("guild_id", id).Info("Guild updated")
		invalidate(c, lists, cache.Guilds)
		respondGuild(c, conn, id, http.StatusOK)
	}
}

// DeleteGuildHandler disbands a guild, leaving its members guildless
func DeleteGuildHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Guild")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		guild, err := fetch[domain.Guild](conn, "Guild", id)
		if err != nil {
			respondError(c, err)
			return
		}
		err = conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&domain.Hunter{}).Where("guild_id = ?", id).Update("guild_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(guild).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"guild_id": id,          // Guild ID
				"error":    err.Error(), // Error message
			}).Error("Guild deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete guild"})
			return
		}
		logrus.WithField("guild_id", id).Info("Guild deleted")
		invalidate(c, lists, cache.Guilds)
		c.Status(http.StatusNoContent)
	}
}

// checkLeader requires an existing hunter that leads no other guild
func checkLeader(conn *gorm.DB, leader, self uint) error {
	ok, err := exists[domain.Hunter](conn, leader)
	if err != nil {
		return err
	}
	if !ok {
		return fieldError("leader", invalidPK(leader))
	}
	var count int64
	q := conn.Model(&domain.Guild{}).Where("leader_id = ?", leader)
	if self != 0 {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fieldError("leader", "guild with this leader already exists.")
	}
	return nil
}

func respondGuild(c *gin.Context, conn *gorm.DB, id uint, status int) {
	guild, err := fetch[domain.Guild](conn, "Guild", id, guildPreloads...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, guildView(guild))
}
