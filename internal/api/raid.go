package api

import (
	"context"                    // Request contexts
	"fmt"                        // Message formatting
	"hunter_api/internal/cache"  // List cache
	"hunter_api/internal/domain" // Importing domain models
	"hunter_api/internal/tasks"  // Notification jobs
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation
	"time"                       // Raid dates

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // SQL expressions
)

// ParticipantInput adds a hunter to a raid being created
type ParticipantInput struct {
	HunterID *uint   `json:"hunter_id" binding:"required"`                          // Participating hunter
	Role     *string `json:"role" binding:"required,oneof=Tank DPS Healer Support"` // Raid role
}

// RaidRequest is the body of raid create and update calls
type RaidRequest struct {
	Name                 *string             `json:"name" binding:"omitempty,max=100"`               // Raid name
	Dungeon              *uint               `json:"dungeon"`                                        // Target dungeon, must be open
	Date                 *string             `json:"date" binding:"omitempty,datetime=2006-01-02"`   // YYYY-MM-DD
	Success              *bool               `json:"success"`                                        // Outcome
	ParticipationsCreate *[]ParticipantInput `json:"participations_create" binding:"omitempty,dive"` // Participants, create only
}

func (r *RaidRequest) validate(full, creating bool) error {
	verr := &ValidationError{}
	if full {
		requireText(verr, "name", r.Name)
		if r.Dungeon == nil {
			verr.Add("dungeon", msgRequired)
		}
		if r.Date == nil {
			verr.Add("date", msgRequired)
		}
	} else {
		notBlank(verr, "name", r.Name)
	}
	if !creating && r.ParticipationsCreate != nil {
		verr.Add("participations_create", "Participants can only be added when the raid is created.")
	}
	return verr.Err()
}

// date returns the requested day at midnight UTC
func (r *RaidRequest) date() time.Time {
	d, _ := time.Parse(dateLayout, *r.Date) // Format already checked by binding
	return d
}

var raidOrdering = map[string]string{
	"date": "date",
	"name": "name",
}

// ListRaidsHandler lists raids with their team strength
func ListRaidsHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveList(c, lists, cache.Raids, "raids", func(ctx context.Context, page, pageSize int) (any, int64, error) {
			on, err := dateQuery(c, "date")
			if err != nil {
				return nil, 0, err
			}
			since, err := dateQuery(c, "date__gte")
			if err != nil {
				return nil, 0, err
			}
			q := db.WithContext(ctx).Model(&domain.Raid{})
			q = icontains(q, "name", c.Query("name__icontains"))
			q = search(q, c.Query("search"), "name")
			if on != nil {
				q = q.Where(clause.Eq{Column: col("date"), Value: *on})
			}
			if since != nil {
				q = q.Where(clause.Gte{Column: col("date"), Value: *since})
			}
			sort := func(q *gorm.DB) *gorm.DB {
				return order(q, c.Query("ordering"), raidOrdering)
			}
			rows, total, err := loadRows[domain.Raid](q, page, pageSize, sort, raidPreloads...)
			if err != nil {
				return nil, 0, err
			}
			return mapViews(rows, raidView), total, nil
		})
	}
}

// GetRaidHandler returns one raid with its participants
func GetRaidHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Raid")
		if err != nil {
			respondError(c, err)
			return
		}
		raid, err := fetch[domain.Raid](db.WithContext(c.Request.Context()), "Raid", id, raidPreloads...)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, raidView(raid))
	}
}

// CreateRaidHandler schedules a raid in an open dungeon together with its participants
func CreateRaidHandler(db *gorm.DB, lists *cache.ListCache, jobs tasks.Enqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RaidRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(true, true); err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		if err := checkRaidRefs(conn, &req); err != nil {
			respondError(c, err)
			return
		}
		raid := domain.Raid{
			Name:      strings.TrimSpace(*req.Name),
			DungeonID: *req.Dungeon,
			Date:      req.date(),
		}
		if req.Success != nil {
			raid.Success = *req.Success
		}
		if req.ParticipationsCreate != nil {
			for _, p := range *req.ParticipationsCreate {
				raid.Participations = append(raid.Participations, domain.RaidParticipation{
					HunterID: *p.HunterID,
					Role:     domain.Role(*p.Role),
				})
			}
		}
		// The raid and all of its participations are written or none are
		err := conn.Transaction(func(tx *gorm.DB) error {
			return tx.Omit("Dungeon").Create(&raid).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"name":       raid.Name,      // Raid name
				"dungeon_id": raid.DungeonID, // Dungeon ID
				"error":      err.Error(),    // Error message
			}).Error("Raid creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create raid"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"raid_id":      raid.ID,                      // New raid ID
			"dungeon_id":   raid.DungeonID,               // Dungeon ID
			"date":         raid.Date.Format(dateLayout), // Raid day
			"participants": len(raid.Participations),     // Participant count
		}).Info("Raid created")
		invalidate(c, lists, cache.Raids, cache.Participations)
		notify(c, jobs, tasks.JobRaidNotification, raid.ID)
		respondRaid(c, conn, raid.ID, http.StatusCreated)
	}
}

// UpdateRaidHandler replaces (PUT) or patches (PATCH) a raid. Participants are
// managed through the participation endpoints.
func UpdateRaidHandler(db *gorm.DB, lists *cache.ListCache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Raid")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		raid, err := fetch[domain.Raid](conn, "Raid", id)
		if err != nil {
			respondError(c, err)
			return
		}
		var req RaidRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(!partial, false); err != nil {
			respondError(c, err)
			return
		}
		if err := checkRaidRefs(conn, &req); err != nil {
			respondError(c, err)
			return
		}
		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Dungeon != nil {
			updates["dungeon_id"] = *req.Dungeon
		}
		if req.Date != nil {
			updates["date"] = req.date()
		}
		if req.Success != nil {
			updates["success"] = *req.Success
		}
		if len(updates) > 0 {
			if err := conn.Model(raid).Omit(clause.Associations).Updates(updates).Error; err != nil {
				logrus.WithFields(logrus.Fields{
					"raid_id": id,          // Raid ID
					"error":   err.Error(), // Error message
				}).Error("Raid update failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update raid"})
				return
			}
		}
		logrus.WithField("raid_id", id).Info("Raid updated")
		invalidate(c, lists, cache.Raids)
		respondRaid(c, conn, id, http.StatusOK)
	}
}

// DeleteRaidHandler removes a raid and its participations
func DeleteRaidHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Raid")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		raid, err := fetch[domain.Raid](conn, "Raid", id)
		if err != nil {
			respondError(c, err)
			return
		}
		err = conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("raid_id = ?", id).Delete(&domain.RaidParticipation{}).Error; err != nil {
				return err
			}
			return tx.Delete(raid).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"raid_id": id,          // Raid ID
				"error":   err.Error(), // Error message
			}).Error("Raid deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete raid"})
			return
		}
		logrus.WithField("raid_id", id).Info("Raid deleted")
		invalidate(c, lists, cache.Raids, cache.Participations)
		c.Status(http.StatusNoContent)
	}
}

// checkRaidRefs requires an open dungeon and existing participants before any write
func checkRaidRefs(conn *gorm.DB, req *RaidRequest) error {
	verr := &ValidationError{}
	if req.Dungeon != nil {
		var dungeon domain.Dungeon
		err := conn.Where("id = ?", *req.Dungeon).Limit(1).Find(&dungeon).Error
		if err != nil {
			return err
		}
		if dungeon.ID == 0 || !dungeon.IsOpen {
			// Closed dungeons are treated as if they did not exist
			verr.Add("dungeon", invalidPK(*req.Dungeon))
		}
	}
	if req.ParticipationsCreate != nil {
		for i, p := range *req.ParticipationsCreate {
			ok, err := exists[domain.Hunter](conn, *p.HunterID)
			if err != nil {
				return err
			}
			if !ok {
				verr.Add(fmt.Sprintf("participations_create[%d].hunter_id", i), "Hunter does not exist.")
			}
		}
	}
	return verr.Err()
}

func respondRaid(c *gin.Context, conn *gorm.DB, id uint, status int) {
	raid, err := fetch[domain.Raid](conn, "Raid", id, raidPreloads...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, raidView(raid))
}
