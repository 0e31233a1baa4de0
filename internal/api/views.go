package api

import (
	"hunter_api/internal/domain" // Importing domain models
	"time"                       // Timestamp formatting
)

// Relations each response needs loaded
var (
	hunterPreloads        = []string{"Guild", "Skills", "Participations"}
	guildPreloads         = []string{"Leader", "Members"}
	raidPreloads          = []string{"Dungeon", "Participations.Hunter.Skills"}
	participationPreloads = []string{"Hunter"}
)

// SkillView is the skill representation
type SkillView struct {
	ID      uint           `json:"id"`      // Skill ID
	Name    string         `json:"name"`    // Skill name
	Element domain.Element `json:"element"` // Elemental affinity
	Power   int            `json:"power"`   // Skill power
}

// HunterView is the hunter representation with derived values
type HunterView struct {
	ID          uint   `json:"id"`           // Hunter ID
	Username    string `json:"username"`     // Login name
	DateJoined  string `json:"date_joined"`  // RFC 3339 join time
	FullName    string `json:"full_name"`    // First and last name
	Rank        string `json:"rank"`         // E..S
	RankDisplay string `json:"rank_display"` // e.g. "C-Rank"
	Email       string `json:"email"`        // Contact address
	IsStaff     bool   `json:"is_staff"`     // Staff flag
	Guild       *uint  `json:"guild"`        // Guild ID or null
	Skills      []uint `json:"skills"`       // Skill IDs
	PowerLevel  int    `json:"power_level"`  // Base power plus skill power
	RaidCount   int    `json:"raid_count"`   // Number of participations
}

// GuildMemberView is the short hunter form embedded in guilds
type GuildMemberView struct {
	ID          uint   `json:"id"`           // Hunter ID
	FullName    string `json:"full_name"`    // First and last name
	RankDisplay string `json:"rank_display"` // e.g. "C-Rank"
}

// GuildView is the guild representation
type GuildView struct {
	ID            uint              `json:"id"`             // Guild ID
	Name          string            `json:"name"`           // Guild name
	FoundedDate   string            `json:"founded_date"`   // RFC 3339 founding time
	Leader        *uint             `json:"leader"`         // Leader ID or null
	LeaderDisplay *GuildMemberView  `json:"leader_display"` // Leader summary or null
	Members       []GuildMemberView `json:"members"`        // Member summaries
	MemberCount   int               `json:"member_count"`   // Number of members
}

// DungeonView is the dungeon representation
type DungeonView struct {
	ID          uint   `json:"id"`           // Dungeon ID
	Name        string `json:"name"`         // Dungeon name
	Rank        string `json:"rank"`         // E..S
	RankDisplay string `json:"rank_display"` // e.g. "S-Rank"
	Location    string `json:"location"`     // Location
	IsOpen      bool   `json:"is_open"`      // Accepting raids
}

// DungeonBriefView is the dungeon summary embedded in raids
type DungeonBriefView struct {
	ID   uint   `json:"id"`   // Dungeon ID
	Name string `json:"name"` // Dungeon name
	Rank string `json:"rank"` // E..S
}

// ParticipationBriefView is the participant summary embedded in raids
type ParticipationBriefView struct {
	FullName   string      `json:"full_name"`   // Hunter name
	HunterRank string      `json:"hunter_rank"` // e.g. "C-Rank"
	Role       domain.Role `json:"role"`        // Raid role
}

// RaidView is the raid representation
type RaidView struct {
	ID                 uint                     `json:"id"`                  // Raid ID
	Name               string                   `json:"name"`                // Raid name
	Dungeon            uint                     `json:"dungeon"`             // Dungeon ID
	DungeonInfo        DungeonBriefView         `json:"dungeon_info"`        // Dungeon summary
	Date               string                   `json:"date"`                // YYYY-MM-DD
	Success            bool                     `json:"success"`             // Outcome
	TeamStrength       int                      `json:"team_strength"`       // Sum of participant power levels
	ParticipationsInfo []ParticipationBriefView `json:"participations_info"` // Participants
}

// ParticipationView is the raid participation representation
type ParticipationView struct {
	ID          uint        `json:"id"`           // Participation ID
	RaidID      uint        `json:"raid_id"`      // Raid ID
	HunterID    uint        `json:"hunter_id"`    // Hunter ID
	FullName    string      `json:"full_name"`    // Hunter name
	HunterRank  string      `json:"hunter_rank"`  // e.g. "C-Rank"
	Role        domain.Role `json:"role"`         // Raid role
	DamageDealt *int        `json:"damage_dealt"` // Optional damage
	HealingDone *int        `json:"healing_done"` // Optional healing
}

func skillView(s *domain.Skill) SkillView {
	return SkillView{ID: s.ID, Name: s.Name, Element: s.Element, Power: s.Power}
}

func hunterView(h *domain.Hunter) HunterView {
	skills := make([]uint, len(h.Skills))
	for i, s := range h.Skills {
		skills[i] = s.ID
	}
	return HunterView{
		ID:          h.ID,
		Username:    h.Username,
		DateJoined:  h.DateJoined.UTC().Format(time.RFC3339),
		FullName:    h.FullName(),
		Rank:        string(h.Rank),
		RankDisplay: h.Rank.Display(),
		Email:       h.Email,
		IsStaff:     h.IsStaff,
		Guild:       h.GuildID,
		Skills:      skills,
		PowerLevel:  h.PowerLevel(),
		RaidCount:   h.RaidCount(),
	}
}

func memberView(h *domain.Hunter) GuildMemberView {
	return GuildMemberView{ID: h.ID, FullName: h.FullName(), RankDisplay: h.Rank.Display()}
}

func guildView(g *domain.Guild) GuildView {
	members := make([]GuildMemberView, len(g.Members))
	for i := range g.Members {
		members[i] = memberView(&g.Members[i])
	}
	v := GuildView{
		ID:          g.ID,
		Name:        g.Name,
		FoundedDate: g.FoundedDate.UTC().Format(time.RFC3339),
		Leader:      g.LeaderID,
		Members:     members,
		MemberCount: g.MemberCount(),
	}
	if g.Leader != nil {
		leader := memberView(g.Leader)
		v.LeaderDisplay = &leader
	}
	return v
}

func dungeonView(d *domain.Dungeon) DungeonView {
	return DungeonView{
		ID:          d.ID,
		Name:        d.Name,
		Rank:        string(d.Rank),
		RankDisplay: d.Rank.Display(),
		Location:    d.Location,
		IsOpen:      d.IsOpen,
	}
}

func raidView(r *domain.Raid) RaidView {
	parts := make([]ParticipationBriefView, 0, len(r.Participations))
	for _, p := range r.Participations {
		if p.Hunter == nil {
			continue
		}
		parts = append(parts, ParticipationBriefView{
			FullName:   p.Hunter.FullName(),
			HunterRank: p.Hunter.Rank.Display(),
			Role:       p.Role,
		})
	}
	return RaidView{
		ID:      r.ID,
		Name:    r.Name,
		Dungeon: r.DungeonID,
		DungeonInfo: DungeonBriefView{
			ID:   r.Dungeon.ID,
			Name: r.Dungeon.Name,
			Rank: string(r.Dungeon.Rank),
		},
		Date:               r.Date.UTC().Format(dateLayout),
		Success:            r.Success,
		TeamStrength:       r.TeamStrength(),
		ParticipationsInfo: parts,
	}
}

func participationView(p *domain.RaidParticipation) ParticipationView {
	v := ParticipationView{
		ID:          p.ID,
		RaidID:      p.RaidID,
		HunterID:    p.HunterID,
		Role:        p.Role,
		DamageDealt: p.DamageDealt,
		HealingDone: p.HealingDone,
	}
	if p.Hunter != nil {
		v.FullName = p.Hunter.FullName()
		v.HunterRank = p.Hunter.Rank.Display()
	}
	return v
}

// mapViews converts a page of rows
func mapViews[T, V any](rows []T, view func(*T) V) []V {
	out := make([]V, len(rows))
	for i := range rows {
		out[i] = view(&rows[i])
	}
	return out
}
