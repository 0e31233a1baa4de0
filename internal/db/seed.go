package db

import (
	"fmt"                        // Error wrapping
	"hunter_api/internal/domain" // Importing domain models
	"time"                       // Raid dates

	"github.com/sirupsen/logrus" // Logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Seed replaces every row with a small demo world. All seeded hunters share password.
func Seed(conn *gorm.DB, password string, today time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return conn.Transaction(func(tx *gorm.DB) error {
		logrus.Info("Clearing old data...")
		if err := truncateAll(tx); err != nil {
			return err
		}

		logrus.Info("Creating skills...")
		skills := []domain.Skill{
			{Name: "Fireball", Element: domain.ElementFire, Power: 50},
			{Name: "Ice Blast", Element: domain.ElementWater, Power: 40},
			{Name: "Earthquake", Element: domain.ElementEarth, Power: 70},
			{Name: "Shadow Strike", Element: domain.ElementShadow, Power: 60},
			{Name: "Holy Light", Element: domain.ElementLight, Power: 80},
		}
		if err := tx.Create(&skills).Error; err != nil {
			return fmt.Errorf("create skills: %w", err)
		}

		logrus.Info("Creating hunters...")
		admin := domain.Hunter{Username: "admin", Email: "admin@example.com", Password: string(hash), Rank: domain.RankS, IsStaff: true}
		if err := tx.Omit("Guild", "Skills", "Participations").Create(&admin).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		hunters := []domain.Hunter{
			{Username: "jinwoo", FirstName: "Jin", LastName: "Woo", Email: "jinwoo@example.com", Rank: domain.RankE},
			{Username: "david", FirstName: "David", LastName: "Porras", Email: "david@example.com", Rank: domain.RankD},
			{Username: "cj", FirstName: "CJ", LastName: "Pingal", Email: "cj@example.com", Rank: domain.RankC},
			{Username: "sung", FirstName: "Sung", LastName: "Jin", Email: "sung@example.com", Rank: domain.RankB},
		}
		for i := range hunters {
			hunters[i].Password = string(hash)
			hunters[i].Skills = []domain.Skill{skills[i%len(skills)]} // One skill each
		}
		if err := tx.Omit("Guild", "Participations", "Skills.*").Create(&hunters).Error; err != nil {
			return fmt.Errorf("create hunters: %w", err)
		}

		logrus.Info("Creating guilds...")
		guilds := []domain.Guild{
			{Name: "Hunters Guild", LeaderID: &hunters[0].ID},
			{Name: "Shadow Wolves", LeaderID: &hunters[1].ID},
		}
		for i := range guilds {
			if err := tx.Omit("Leader", "Members").Create(&guilds[i]).Error; err != nil {
				return fmt.Errorf("create guild: %w", err)
			}
			// Leaders are members of the guild they lead
			if err := tx.Model(&domain.Hunter{}).Where("id = ?", hunters[i].ID).Update("guild_id", guilds[i].ID).Error; err != nil {
				return fmt.Errorf("enrol leader: %w", err)
			}
		}

		logrus.Info("Creating dungeons...")
		dungeons := []domain.Dungeon{
			{Name: "Goblin Cave", Location: "Seoul", Rank: domain.RankE, IsOpen: true},
			{Name: "Orc Fortress", Location: "Busan", Rank: domain.RankC, IsOpen: true},
			{Name: "Dragon Lair", Location: "Jeju", Rank: domain.RankS},
		}
		if err := tx.Create(&dungeons).Error; err != nil {
			return fmt.Errorf("create dungeons: %w", err)
		}
		// The column default would reopen it
		if err := tx.Model(&dungeons[2]).Update("is_open", false).Error; err != nil {
			return fmt.Errorf("close dungeon: %w", err)
		}

		logrus.Info("Creating raids...")
		raids := []domain.Raid{
			{
				Name: "Goblin Hunt", DungeonID: dungeons[0].ID, Date: today, Success: true,
				Participations: []domain.RaidParticipation{
					{HunterID: hunters[0].ID, Role: domain.RoleTank},
					{HunterID: hunters[1].ID, Role: domain.RoleDPS},
				},
			},
			{
				Name: "Dragon Hunt", DungeonID: dungeons[2].ID, Date: today.AddDate(0, 0, -7),
				Participations: []domain.RaidParticipation{
					{HunterID: hunters[2].ID, Role: domain.RoleHealer},
				},
			},
		}
		if err := tx.Omit("Dungeon").Create(&raids).Error; err != nil {
			return fmt.Errorf("create raids: %w", err)
		}
		logrus.Info("Database populated successfully!")
		return nil
	})
}

// truncateAll deletes every row, children first
func truncateAll(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := all.Exec("DELETE FROM hunter_skills").Error; err != nil {
		return fmt.Errorf("clear hunter_skills: %w", err)
	}
	for _, model := range []any{
		&domain.RaidParticipation{},
		&domain.Raid{},
		&domain.Dungeon{},
		&domain.Guild{},
		&domain.Skill{},
		&domain.Hunter{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
