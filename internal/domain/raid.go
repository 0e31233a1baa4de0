package domain

import "time" // Raid date

// Raid Model
type Raid struct {
	ID             uint                `gorm:"primaryKey"`                  // Primary key
	Name           string              `gorm:"size:100;not null"`           // Raid name
	DungeonID      uint                `gorm:"not null;index"`              // Target dungeon
	Dungeon        Dungeon                                                  // Belongs-to dungeon
	Date           time.Time           `gorm:"not null;index"`              // Day of the raid, stored at midnight UTC
	Success        bool                `gorm:"not null;default:false"`      // Outcome
	Participations []RaidParticipation `gorm:"constraint:OnDelete:CASCADE"` // Owned rows
}

// RaidParticipation Model
type RaidParticipation struct {
	ID          uint    `gorm:"primaryKey"`       // Primary key
	RaidID      uint    `gorm:"not null;index"`   // Owning raid
	Raid        *Raid                             // Belongs-to raid
	HunterID    uint    `gorm:"not null;index"`   // Participating hunter
	Hunter      *Hunter                           // Belongs-to hunter
	Role        Role    `gorm:"size:10;not null"` // Tank, DPS, Healer or Support
	DamageDealt *int                              // Optional, never negative
	HealingDone *int                              // Optional, never negative
}
