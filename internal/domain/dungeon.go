package domain

// Dungeon Model
type Dungeon struct {
	ID       uint   `gorm:"primaryKey"`                  // Primary key
	Name     string `gorm:"size:100;not null"`           // Dungeon name
	Rank     Rank   `gorm:"size:1;not null"`             // E..S
	Location string `gorm:"size:200;not null"`           // Where the gate opened
	IsOpen   bool   `gorm:"not null;default:true"`       // Raids can only target open dungeons
	Raids    []Raid `gorm:"constraint:OnDelete:CASCADE"` // Raids run in this dungeon
}
