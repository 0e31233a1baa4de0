package api

import (
	"context"                    // Request contexts
	"fmt"                        // Ordering expression
	"hunter_api/internal/cache"  // List cache
	"hunter_api/internal/domain" // Importing domain models
	"hunter_api/internal/tasks"  // Notification jobs
	"net/http"                   // HTTP status codes
	"strings"                    // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // SQL expressions
)

// HunterRequest is the body of hunter create and update calls
type HunterRequest struct {
	Username  *string        `json:"username" binding:"omitempty,max=150"`       // Unique login name
	Password  *string        `json:"password"`                                   // Plain password, hashed before storage
	FirstName *string        `json:"first_name" binding:"omitempty,max=150"`     // First name
	LastName  *string        `json:"last_name" binding:"omitempty,max=150"`      // Last name
	Email     *string        `json:"email" binding:"omitempty,email"`            // Contact address
	Rank      *string        `json:"rank" binding:"omitempty,oneof=E D C B A S"` // E..S
	IsStaff   *bool          `json:"is_staff"`                                   // Staff flag
	Skills    *[]uint        `json:"skills"`                                     // Replaces the skill set when present
	Guild     optional[uint] `json:"guild"`                                      // Guild ID, null leaves the guild
}

// validate checks required fields. full is false for PATCH.
func (r *HunterRequest) validate(full, creating bool) error {
	verr := &ValidationError{}
	if full {
		requireText(verr, "username", r.Username)
		requireText(verr, "first_name", r.FirstName)
		requireText(verr, "last_name", r.LastName)
		if r.Rank == nil {
			verr.Add("rank", msgRequired)
		}
	} else {
		notBlank(verr, "username", r.Username)
		notBlank(verr, "first_name", r.FirstName)
		notBlank(verr, "last_name", r.LastName)
	}
	if creating {
		requireText(verr, "password", r.Password)
	} else {
		notBlank(verr, "password", r.Password)
	}
	return verr.Err()
}

// hunterOrdering maps ordering names to columns
var hunterOrdering = map[string]string{
	"date_joined": "date_joined",
	"rank":        "rank",
	"username":    "username",
}

// powerOrder sorts strongest first using the same formula as Hunter.PowerLevel
var powerOrder = func() clause.OrderBy {
	var b strings.Builder
	b.WriteString("(CASE ?")
	for _, r := range domain.Ranks {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", r, domain.BasePower(r))
	}
	b.WriteString(" ELSE 0 END + COALESCE((SELECT SUM(skills.power) FROM skills" +
		" JOIN hunter_skills ON hunter_skills.skill_id = skills.id" +
		" WHERE hunter_skills.hunter_id = hunters.id), 0)) DESC, ?")
	// An expression ordering replaces any column ordering, so the id tiebreak lives here
	return clause.OrderBy{Expression: clause.Expr{
		SQL: b.String(),
		Vars: []any{
			clause.Column{Table: "hunters", Name: "rank"},
			clause.Column{Table: "hunters", Name: "id"},
		},
	}}
}()

// ListHuntersHandler lists hunters, strongest first unless an ordering is given
func ListHuntersHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveList(c, lists, cache.Hunters, "hunters", func(ctx context.Context, page, pageSize int) (any, int64, error) {
			q := db.WithContext(ctx).Model(&domain.Hunter{})
			q = exact(q, "rank", c.Query("rank"))
			q = icontains(q, "username", c.Query("username__icontains"))
			q = search(q, c.Query("search"), "username", "first_name", "last_name")
			sort := func(q *gorm.DB) *gorm.DB {
				if raw := c.Query("ordering"); raw != "" {
					return order(q, raw, hunterOrdering)
				}
				return q.Order(powerOrder)
			}
			rows, total, err := loadRows[domain.Hunter](q, page, pageSize, sort, hunterPreloads...)
			if err != nil {
				return nil, 0, err
			}
			return mapViews(rows, hunterView), total, nil
		})
	}
}

// GetHunterHandler returns one hunter
func GetHunterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Hunter")
		if err != nil {
			respondError(c, err)
			return
		}
		hunter, err := fetch[domain.Hunter](db.WithContext(c.Request.Context()), "Hunter", id, hunterPreloads...)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, hunterView(hunter))
	}
}

// CreateHunterHandler registers a hunter and sends the welcome email
func CreateHunterHandler(db *gorm.DB, lists *cache.ListCache, jobs tasks.Enqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HunterRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(true, true); err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		skills, err := checkHunterRefs(conn, &req, 0)
		if err != nil {
			respondError(c, err)
			return
		}
		// Hash the password before storage
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		hunter := domain.Hunter{
			Username:  strings.TrimSpace(*req.Username),
			FirstName: strings.TrimSpace(*req.FirstName),
			LastName:  strings.TrimSpace(*req.LastName),
			Password:  string(hash),
			Rank:      domain.Rank(*req.Rank),
			GuildID:   req.Guild.Value,
			Skills:    skills,
		}
		if req.Email != nil {
			hunter.Email = *req.Email
		}
		if req.IsStaff != nil {
			hunter.IsStaff = *req.IsStaff
		}
		// Insert the hunter and its skill links atomically
		err = conn.Transaction(func(tx *gorm.DB) error {
			return tx.Omit("Guild", "Participations", "Skills.*").Create(&hunter).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"username": hunter.Username, // Requested username
				"error":    err.Error(),     // Error message
			}).Error("Hunter creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hunter"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"hunter_id": hunter.ID,       // New hunter ID
			"username":  hunter.Username, // Username
			"rank":      hunter.Rank,     // Rank
		}).Info("Hunter created")
		invalidate(c, lists, cache.Hunters)
		notify(c, jobs, tasks.JobHunterWelcome, hunter.ID)
		respondHunter(c, conn, hunter.ID, http.StatusCreated)
	}
}

// UpdateHunterHandler replaces (PUT) or patches (PATCH) a hunter
func UpdateHunterHandler(db *gorm.DB, lists *cache.ListCache, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Hunter")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		hunter, err := fetch[domain.Hunter](conn, "Hunter", id)
		if err != nil {
			respondError(c, err)
			return
		}
		var req HunterRequest // Bind JSON request to struct
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		if err := req.validate(!partial, false); err != nil {
			respondError(c, err)
			return
		}
		skills, err := checkHunterRefs(conn, &req, id)
		if err != nil {
			respondError(c, err)
			return
		}
		updates := map[string]any{}
		if req.Username != nil {
			updates["username"] = strings.TrimSpace(*req.Username)
		}
		if req.FirstName != nil {
			updates["first_name"] = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			updates["last_name"] = strings.TrimSpace(*req.LastName)
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.Rank != nil {
			updates["rank"] = *req.Rank
		}
		if req.IsStaff != nil {
			updates["is_staff"] = *req.IsStaff
		}
		if req.Guild.Set {
			updates["guild_id"] = req.Guild.Value
		}
		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			updates["password"] = string(hash)
		}
		err = conn.Transaction(func(tx *gorm.DB) error {
			if len(updates) > 0 {
				if err := tx.Model(hunter).Omit(clause.Associations).Updates(updates).Error; err != nil {
					return err
				}
			}
			if req.Skills == nil {
				return nil
			}
			links := tx.Model(hunter).Association("Skills")
			if len(skills) == 0 {
				return links.Clear()
			}
			return links.Replace(skills)
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"hunter_id": id,          // Hunter ID
				"error":     err.Error(), // Error message
			}).Error("Hunter update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update hunter"})
			return
		}
		logrus.WithField("hunter_id", id).Info("Hunter updated")
		invalidate(c, lists, cache.Hunters)
		respondHunter(c, conn, id, http.StatusOK)
	}
}

// DeleteHunterHandler removes a hunter, its skill links and participations, and
// clears any guild leadership it held
func DeleteHunterHandler(db *gorm.DB, lists *cache.ListCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "Hunter")
		if err != nil {
			respondError(c, err)
			return
		}
		conn := db.WithContext(c.Request.Context())
		hunter, err := fetch[domain.Hunter](conn, "Hunter", id)
		if err != nil {
			respondError(c, err)
			return
		}
		err = conn.Transaction(func(tx *gorm.DB) error {
			// Guilds led by this hunter lose their leader
			if err := tx.Model(&domain.Guild{}).Where("leader_id = ?", id).Update("leader_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Model(hunter).Association("Skills").Clear(); err != nil {
				return err
			}
			if err := tx.Where("hunter_id = ?", id).Delete(&domain.RaidParticipation{}).Error; err != nil {
				return err
			}
			return tx.Delete(hunter).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"hunter_id": id,          // Hunter ID
				"error":     err.Error(), // Error message
			}).Error("Hunter deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete hunter"})
			return
		}
		logrus.WithField("hunter_id", id).Info("Hunter deleted")
		invalidate(c, lists, cache.Hunters, cache.Participations)
		c.Status(http.StatusNoContent)
	}
}

// checkHunterRefs validates uniqueness and referenced rows before any write.
// It returns the requested skills.
func checkHunterRefs(conn *gorm.DB, req *HunterRequest, self uint) ([]domain.Skill, error) {
	verr := &ValidationError{}
	if req.Username != nil {
		var count int64
		q := conn.Model(&domain.Hunter{}).Where("username = ?", strings.TrimSpace(*req.Username))
		if self != 0 {
			q = q.Where("id <> ?", self)
		}
		if err := q.Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if g := req.Guild.Value; g != nil {
		ok, err := exists[domain.Guild](conn, *g)
		if err != nil {
			return nil, err
		}
		if !ok {
			verr.Add("guild", invalidPK(*g))
		}
	}
	var skills []domain.Skill
	if req.Skills != nil && len(*req.Skills) > 0 {
		if err := conn.Where("id IN ?", *req.Skills).Find(&skills).Error; err != nil {
			return nil, err
		}
		found := make(map[uint]bool, len(skills))
		for _, s := range skills {
			found[s.ID] = true
		}
		for _, sid := range *req.Skills {
			if !found[sid] {
				verr.Add("skills", invalidPK(sid))
			}
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return skills, nil
}

// respondHunter reloads the hunter with its relations and writes it
func respondHunter(c *gin.Context, conn *gorm.DB, id uint, status int) {
	hunter, err := fetch[domain.Hunter](conn, "Hunter", id, hunterPreloads...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, hunterView(hunter))
}
