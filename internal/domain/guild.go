package domain

import "time" // Founding timestamp

// Guild Model
type Guild struct {
	ID          uint      `gorm:"primaryKey"`          // Primary key
	Name        string    `gorm:"size:100;not null"`   // Guild name
	FoundedDate time.Time `gorm:"autoCreateTime"`      // Set once on insert
	LeaderID    *uint     `gorm:"uniqueIndex"`         // A hunter leads at most one guild
	Leader      *Hunter   `gorm:"foreignKey:LeaderID"` // Leader, nulled when the hunter is deleted
	Members     []Hunter  `gorm:"foreignKey:GuildID"`  // Hunters whose guild_id points here
}
