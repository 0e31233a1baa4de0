package domain

// Skill Model
type Skill struct {
	ID      uint    `gorm:"primaryKey"`        // Primary key
	Name    string  `gorm:"size:100;not null"` // Skill name
	Element Element `gorm:"size:10;not null"`  // Elemental affinity
	Power   int     `gorm:"not null"`          // Always positive
}
