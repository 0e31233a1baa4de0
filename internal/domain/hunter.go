package domain

import (
	"strings" // Name joining
	"time"    // Join timestamp
)

// Hunter Model
type Hunter struct {
	ID             uint                `gorm:"primaryKey"`                    // Primary key
	Username       string              `gorm:"size:150;uniqueIndex;not null"` // Unique login name
	FirstName      string              `gorm:"size:150"`                      // First name
	LastName       string              `gorm:"size:150"`                      // Last name
	Email          string              `gorm:"size:254"`                      // Address used by the notification jobs
	Password       string              `gorm:"not null"`                      // bcrypt hash
	IsStaff        bool                `gorm:"not null;default:false"`        // Staff may write most entities
	DateJoined     time.Time           `gorm:"autoCreateTime"`                // Set once on insert
	Rank           Rank                `gorm:"size:1;not null;index"`         // E..S
	GuildID        *uint               `gorm:"index"`                         // Nullable guild membership
	Guild          *Guild                                                     // Belongs-to guild
	Skills         []Skill             `gorm:"many2many:hunter_skills;"`      // Assigned skills
	Participations []RaidParticipation                                        // Raids this hunter took part in
}

// FullName joins first and last name
func (h *Hunter) FullName() string {
	return strings.TrimSpace(h.FirstName + " " + h.LastName)
}

// RaidCount is the number of loaded participations
func (h *Hunter) RaidCount() int {
	return len(h.Participations)
}
