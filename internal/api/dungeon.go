package api

import (
	"context"                    // Request contexts
	"hunter_api/internal/cache"  // List cache
	"hunter_api/internal/domain" // Importing domain models
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// DungeonRequest is the body of dungeon create and update calls
type DungeonRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`           // Dungeon name
	Rank     *string `json:"rank" binding:"omitempty,oneof=E D C B A S"` // E..S
	Location *string `json:"location" binding:"omitempty,max=200"`       // Location
	IsOpen   *bool   `json:"is_open"`                                    // Defaults to open
}

func (r *DungeonRequest) validate(full bool) error {
	verr := &ValidationError{}
	if full {
		requireText(verr, "name", r.Name)
		requireText(verr, "location", r.Location)
		if r.Rank == nil {
			verr.Add("rank", msgRequired)
		}
	} else {
		notBlank(verr, "name", r.Name)
		notBlank(verr, "location", r.Location)
	}
	return verr.Err()
}

var dungeonOrdering = map[string]string{
	"name": "name",
	"rank": "rank",
}

// ListDungeonsHandler lists the dungeons that are still open
func ListDungeonsHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveList(c, lists, cache.Dungeons, "dungeons", func(ctx context.Context, page, pageSize int) (any, int64, error) {
			q := db.WithContext(ctx).Model(&domain.Dungeon{}).Where(map[string]any{"is_open": true})
			q = search(q, c.Query("search"), "name", "location")
			sort := func(q *gorm.DB) *gorm.DB {
				return order(q, c.Query("ordering"), dungeonOrdering)
			}
			rows, total, err := loadRows[domain.Dungeon](q, page, pageSize, sort)
			if err != nil {
				return nil, 0, err
			}
			return mapViews(rows, dungeonView), total, nil
		})
	}
}

// GetDungeonHandler returns one dungeon, open or closed
func GetDungeonHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Dungeon")
		if err != nil {
			respondError(c, err)
			return
		}
		dungeon, err := fetch[domain.Dungeon](db.WithContext(c.Request.Context()), "Dungeon", id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dungeonView(dungeon))
	}
}

// CreateDungeonHandler registers a dungeon
func CreateDungeonHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DungeonRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(true); err != nil {
			respondError(c, err)
			return
		}
		dungeon := domain.Dungeon{
			Name:     strings.TrimSpace(*req.Name),
			Rank:     domain.Rank(*req.Rank),
			Location: strings.TrimSpace(*req.Location),
			IsOpen:   true,
		}
		if req.IsOpen != nil {
			dungeon.IsOpen = *req.IsOpen
		}
		// is_open has a column default, so false must be written explicitly
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&dungeon).Error; err != nil {
				return err
			}
			if dungeon.IsOpen {
				return nil
			}
			return tx.Model(&dungeon).Update("is_open", false).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"name":  dungeon.Name, // Dungeon name
				"error": err.Error(),  // Error message
			}).Error("Dungeon creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dungeon"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"dungeon_id": dungeon.ID,     // New dungeon ID
			"rank":       dungeon.Rank,   // Rank
			"is_open":    dungeon.IsOpen, // Accepting raids
		}).Info("Dungeon created")
		invalidate(c, lists, cache.Dungeons)
		c.JSON(http.StatusCreated, dungeonView(&dungeon))
	}
}

// UpdateDungeonHandler replaces (PUT) or patches (PATCH) a dungeon
func UpdateDungeonHandler(db *gorm.DB, lists *cache.ListCache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Dungeon")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		dungeon, err := fetch[domain.Dungeon](conn, "Dungeon", id)
		if err != nil {
			respondError(c, err)
			return
		}
		var req DungeonRequest // Bind JSON request to struct
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
		if req.Rank != nil {
			updates["rank"] = *req.Rank
		}
		if req.Location != nil {
			updates["location"] = strings.TrimSpace(*req.Location)
		}
		if req.IsOpen != nil {
			updates["is_open"] = *req.IsOpen
		}
		if len(updates) > 0 {
			if err := conn.Model(dungeon).Updates(updates).Error; err != nil {
				logrus.WithFields(logrus.Fields{
					"dungeon_id": id,          // Dungeon ID
					"error":      err.Error(), // Error message
				}).Error("Dungeon update failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dungeon"})
				return
			}
		}
		logrus.WithField("dungeon_id", id).Info("Dungeon updated")
		invalidate(c, lists, cache.Dungeons)
		dungeon, err = fetch[domain.Dungeon](conn, "Dungeon", id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dungeonView(dungeon))
	}
}

// DeleteDungeonHandler removes a dungeon with its raids and their participations
func DeleteDungeonHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Dungeon")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		dungeon, err := fetch[domain.Dungeon](conn, "Dungeon", id)
		if err != nil {
			respondError(c, err)
			return
		}
		err = conn.Transaction(func(tx *gorm.DB) error {
			raids := tx.Model(&domain.Raid{}).Select("id").Where("dungeon_id = ?", id)
			if err := tx.Where("raid_id IN (?)", raids).Delete(&domain.RaidParticipation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("dungeon_id = ?", id).Delete(&domain.Raid{}).Error; err != nil {
				return err
			}
			return tx.Delete(dungeon).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"dungeon_id": id,          // Dungeon ID
				"error":      err.Error(), // Error message
			}).Error("Dungeon deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete dungeon"})
			return
		}
		logrus.WithField("dungeon_id", id).Info("Dungeon deleted")
		invalidate(c, lists, cache.Dungeons, cache.Raids, cache.Participations)
		c.Status(http.StatusNoContent)
	}
}
