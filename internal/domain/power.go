package domain

// basePower is the flat strength granted by each rank
var basePower = map[Rank]int{
	RankE: 10,
	RankD: 30,
	RankC: 50,
	RankB: 80,
	RankA: 120,
	RankS: 200,
}

// BasePower returns the rank's base strength, 0 for unknown ranks
func BasePower(r Rank) int {
	return basePower[r]
}

// PowerLevel is the rank's base power plus the power of every assigned skill.
// Raid damage does not contribute. Skills must be loaded.
func (h *Hunter) PowerLevel() int {
	total := BasePower(h.Rank)
	for _, s := range h.Skills {
		total += s.Power
	}
	return total
}

// MemberCount counts the loaded members
func (g *Guild) MemberCount() int {
	return len(g.Members)
}

// TeamStrength sums the power level of every participating hunter.
// Participations must be loaded with Hunter and Hunter.Skills.
func (r *Raid) TeamStrength() int {
	total := 0
	for _, p := range r.Participations {
		if p.Hunter != nil {
			total += p.Hunter.PowerLevel()
		}
	}
	return total
}
