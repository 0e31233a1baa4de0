package domain

// Rank is the E..S tier shared by hunters and dungeons
type Rank string

// Rank values, weakest first
const (
	RankE Rank = "E"
	RankD Rank = "D"
	RankC Rank = "C"
	RankB Rank = "B"
	RankA Rank = "A"
	RankS Rank = "S"
)

// Ranks lists every rank in ascending order
var Ranks = []Rank{RankE, RankD, RankC, RankB, RankA, RankS}

// Valid reports whether r is one of the known ranks
func (r Rank) Valid() bool {
	_, ok := basePower[r]
	return ok
}

// Display returns the human label, e.g. "C-Rank"
func (r Rank) Display() string {
	if !r.Valid() {
		return string(r)
	}
	return string(r) + "-Rank"
}

// Element of a skill
type Element string

// Element values
const (
	ElementFire   Element = "Fire"
	ElementWater  Element = "Water"
	ElementEarth  Element = "Earth"
	ElementShadow Element = "Shadow"
	ElementLight  Element = "Light"
)

// Role a hunter takes in a raid
type Role string

// Role values
const (
	RoleTank    Role = "Tank"
	RoleDPS     Role = "DPS"
	RoleHealer  Role = "Healer"
	RoleSupport Role = "Support"
)
