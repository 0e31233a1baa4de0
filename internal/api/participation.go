package api

import (
	"context"                        // Request contexts
	"hunter_api/internal/cache"      // List cache
	"hunter_api/internal/domain"     // Importing domain models
	"hunter_api/internal/middleware" // Authenticated hunter
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// ParticipationRequest is the body of participation create and update calls
type ParticipationRequest struct {
	Raid        *uint   `json:"raid"`                                                   // Raid ID
	Hunter      *uint   `json:"hunter"`                                                 // Hunter ID
	Role        *string `json:"role" binding:"omitempty,oneof=Tank DPS Healer Support"` // Raid role
	DamageDealt *int    `json:"damage_dealt" binding:"omitempty,min=0"`                 // Optional damage
	HealingDone *int    `json:"healing_done" binding:"omitempty,min=0"`                 // Optional healing
}

func (r *ParticipationRequest) validate(full bool) error {
	verr := &ValidationError{}
	if full {
		if r.Raid == nil {
			verr.Add("raid", msgRequired)
		}
		if r.Hunter == nil {
			verr.Add("hunter", msgRequired)
		}
		if r.Role == nil {
			verr.Add("role", msgRequired)
		}
	}
	return verr.Err()
}

var participationOrdering = map[string]string{
	"damage_dealt": "damage_dealt",
	"healing_done": "healing_done",
}

// visibleParticipations limits non-staff hunters to their own rows
func visibleParticipations(c *gin.Context, conn *gorm.DB) (*gorm.DB, bool) {
	hunter, ok := middleware.LoadHunter(c, conn)
	if !ok {
		return nil, false
	}
	q := conn.Model(&domain.RaidParticipation{})
	if !hunter.IsStaff {
		q = q.Where("hunter_id = ?", hunter.ID)
	}
	return q, true
}

// ListParticipationsHandler lists raid participations visible to the caller
func ListParticipationsHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveList(c, lists, cache.Participations, "participations", func(ctx context.Context, page, pageSize int) (any, int64, error) {
			hunterID, err := uintQuery(c, "hunter")
			if err != nil {
				return nil, 0, err
			}
			q, ok := visibleParticipations(c, db.WithContext(ctx))
			if !ok {
				return nil, 0, &PermissionError{Message: "Authentication credentials were not provided"}
			}
			q = exact(q, "role", c.Query("role"))
			if hunterID != nil {
				q = q.Where("hunter_id = ?", *hunterID)
			}
			sort := func(q *gorm.DB) *gorm.DB {
				return order(q, c.Query("ordering"), participationOrdering)
			}
			rows, total, err := loadRows[domain.RaidParticipation](q, page, pageSize, sort, participationPreloads...)
			if err != nil {
				return nil, 0, err
			}
			return mapViews(rows, participationView), total, nil
		})
	}
}

// GetParticipationHandler returns one participation if the caller may see it
func GetParticipationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Raid participation")
		if err != nil {
			respondError(c, err)
			return
		}
		q, ok := visibleParticipations(c, db.WithContext(c.Request.Context()))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}
		p, err := fetch[domain.RaidParticipation](q, "Raid participation", id, participationPreloads...)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, participationView(p))
	}
}

// CreateParticipationHandler adds a hunter to an existing raid
func CreateParticipationHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ParticipationRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(true); err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		if err := checkParticipationRefs(conn, &req); err != nil {
			respondError(c, err)
			return
		}
		p := domain.RaidParticipation{
			RaidID:      *req.Raid,
			HunterID:    *req.Hunter,
			Role:        domain.Role(*req.Role),
			DamageDealt: req.DamageDealt,
			HealingDone: req.HealingDone,
		}
		if err := conn.Omit("Raid", "Hunter").Create(&p).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"raid_id":   p.RaidID,    // Raid ID
				"hunter_id": p.HunterID,  // Hunter ID
				"error":     err.Error(), // Error message
			}).Error("Participation creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create participation"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"participation_id": p.ID,       // New participation ID
			"raid_id":          p.RaidID,   // Raid ID
			"hunter_id":        p.HunterID, // Hunter ID
			"role":             p.Role,     // Raid role
		}).Info("Participation created")
		invalidate(c, lists, cache.Participations)
		respondParticipation(c, conn, p.ID, http.StatusCreated)
	}
}

// UpdateParticipationHandler replaces (PUT) or patches (PATCH) a participation
func UpdateParticipationHandler(db *gorm.DB, lists *cache.ListCache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Raid participation")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		p, err := fetch[domain.RaidParticipation](conn, "Raid participation", id)
		if err != nil {
			respondError(c, err)
			return
		}
		var req ParticipationRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(!partial); err != nil {
			respondError(c, err)
			return
		}
		if err := checkParticipationRefs(conn, &req); err != nil {
			respondError(c, err)
			return
		}
		updates := map[string]any{}
		if req.Raid != nil {
			updates["raid_id"] = *req.Raid
		}
		if req.Hunter != nil {
			updates["hunter_id"] = *req.Hunter
		}
		if req.Role != nil {
			updates["role"] = *req.Role
		}
		if req.DamageDealt != nil {
			updates["damage_dealt"] = *req.DamageDealt
		}
		if req.HealingDone != nil {
			updates["healing_done"] = *req.HealingDone
		}
		if len(updates) > 0 {
			if err := conn.Model(p).Omit("Raid", "Hunter").Updates(updates).Error; err != nil {
				logrus.WithFields(logrus.Fields{
					"participation_id": id,          // Participation ID
					"error":            err.Error(), // Error message
				}).Error("Participation update failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update participation"})
				return
			}
		}
		logrus.WithField("participation_id", id).Info("Participation updated")
		invalidate(c, lists, cache.Participations)
		respondParticipation(c, conn, id, http.StatusOK)
	}
}

// DeleteParticipationHandler removes a hunter from a raid
func DeleteParticipationHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Raid participation")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		p, err := fetch[domain.RaidParticipation](conn, "Raid participation", id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := conn.Delete(p).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"participation_id": id,          // Participation ID
				"error":            err.Error(), // Error message
			}).Error("Participation deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete participation"})
			return
		}
		logrus.WithField("participation_id", id).Info("Participation deleted")
		invalidate(c, lists, cache.Participations)
		c.Status(http.StatusNoContent)
	}
}

// checkParticipationRefs requires the referenced raid and hunter to exist
func checkParticipationRefs(conn *gorm.DB, req *ParticipationRequest) error {
	verr := &ValidationError{}
	if req.Raid != nil {
		ok, err := exists[domain.Raid](conn, *req.Raid)
		if err != nil {
			return err
		}
		if !ok {
			verr.Add("raid", invalidPK(*req.Raid))
		}
	}
	if req.Hunter != nil {
		ok, err := exists[domain.Hunter](conn, *req.Hunter)
		if err != nil {
			return err
		}
		if !ok {
			verr.Add("hunter", invalidPK(*req.Hunter))
		}
	}
	return verr.Err()
}

func respondParticipation(c *gin.Context, conn *gorm.DB, id uint, status int) {
	p, err := fetch[domain.RaidParticipation](conn, "Raid participation", id, participationPreloads...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, participationView(p))
}
