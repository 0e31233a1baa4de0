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

// SkillRequest is the body of skill create and update calls
type SkillRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=100"`                                // Skill name
	Element *string `json:"element" binding:"omitempty,oneof=Fire Water Earth Shadow Light"` // Elemental affinity
	Power   *int    `json:"power" binding:"omitempty,gt=0"`                                  // Must be positive
}

func (r *SkillRequest) validate(full bool) error {
	verr := &ValidationError{}
	if full {
		requireText(verr, "name", r.Name)
		if r.Element == nil {
			verr.Add("element", msgRequired)
		}
		if r.Power == nil {
			verr.Add("power", msgRequired)
		}
	} else {
		notBlank(verr, "name", r.Name)
	}
	return verr.Err()
}

var skillOrdering = map[string]string{
	"name":  "name",
	"power": "power",
}

// ListSkillsHandler lists skills
func ListSkillsHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveList(c, lists, cache.Skills, "skills", func(ctx context.Context, page, pageSize int) (any, int64, error) {
			q := db.WithContext(ctx).Model(&domain.Skill{})
			q = icontains(q, "name", c.Query("name__icontains"))
			q = exact(q, "element", c.Query("element"))
			q = search(q, c.Query("search"), "name")
			sort := func(q *gorm.DB) *gorm.DB {
				return order(q, c.Query("ordering"), skillOrdering)
			}
			rows, total, err := loadRows[domain.Skill](q, page, pageSize, sort)
			if err != nil {
				return nil, 0, err
			}
			return mapViews(rows, skillView), total, nil
		})
	}
}

// GetSkillHandler returns one skill
func GetSkillHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Skill")
		if err != nil {
			respondError(c, err)
			return
		}
		skill, err := fetch[domain.Skill](db.WithContext(c.Request.Context()), "Skill", id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, skillView(skill))
	}
}

// CreateSkillHandler adds a skill
func CreateSkillHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SkillRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(true); err != nil {
			respondError(c, err)
			return
		}
		skill := domain.Skill{
			Name:    strings.TrimSpace(*req.Name),
			Element: domain.Element(*req.Element),
			Power:   *req.Power,
		}
		if err := db.WithContext(c.Request.Context()).Create(&skill).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"name":  skill.Name,  // Skill name
				"error": err.Error(), // Error message
			}).Error("Skill creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create skill"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"skill_id": skill.ID,      // New skill ID
			"element":  skill.Element, // Element
			"power":    skill.Power,   // Power
		}).Info("Skill created")
		invalidate(c, lists, cache.Skills)
		c.JSON(http.StatusCreated, skillView(&skill))
	}
}

// UpdateSkillHandler replaces (PUT) or patches (PATCH) a skill
func UpdateSkillHandler(db *gorm.DB, lists *cache.ListCache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Skill")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		skill, err := fetch[domain.Skill](conn, "Skill", id)
		if err != nil {
			respondError(c, err)
			return
		}
		var req SkillRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(!partial); err != nil {
			respondError(c, err)
			return
		}
		if req.Name != nil {
			skill.Name = strings.TrimSpace(*req.Name)
		}
		if req.Element != nil {
			skill.Element = domain.Element(*req.Element)
		}
		if req.Power != nil {
			skill.Power = *req.Power
		}
		if err := conn.Save(skill).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"skill_id": id,          // Skill ID
				"error":    err.Error(), // Error message
			}).Error("Skill update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update skill"})
			return
		}
		logrus.WithField("skill_id", id).Info("Skill updated")
		invalidate(c, lists, cache.Skills)
		c.JSON(http.StatusOK, skillView(skill))
	}
}

// DeleteSkillHandler removes a skill and unassigns it from every hunter
func DeleteSkillHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Skill")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		skill, err := fetch[domain.Skill](conn, "Skill", id)
		if err != nil {
			respondError(c, err)
			return
		}
		err = conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM hunter_skills WHERE skill_id = ?", id).Error; err != nil {
				return err
			}
			return tx.Delete(skill).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"skill_id": id,          // Skill ID
				"error":    err.Error(), // Error message
			}).Error("Skill deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete skill"})
			return
		}
		logrus.WithField("skill_id", id).Info("Skill deleted")
		invalidate(c, lists, cache.Skills)
		c.Status(http.StatusNoContent)
	}
}
