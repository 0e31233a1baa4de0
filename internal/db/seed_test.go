package db_test

import (
	"testing"
	"time"

	"hunter_api/internal/db"
	"hunter_api/internal/domain"
	"hunter_api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func count(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

func TestSeed(t *testing.T) {
	conn := testutil.NewDB(t)
	today := time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)
	require.NoError(t, db.Seed(conn, "secret", today))

	assert.Equal(t, int64(5), count(t, conn, &domain.Skill{}))
	assert.Equal(t, int64(5), count(t, conn, &domain.Hunter{}))
	assert.Equal(t, int64(2), count(t, conn, &domain.Guild{}))
	assert.Equal(t, int64(3), count(t, conn, &domain.Dungeon{}))
	assert.Equal(t, int64(2), count(t, conn, &domain.Raid{}))
	assert.Equal(t, int64(3), count(t, conn, &domain.RaidParticipation{}))

	var lair domain.Dungeon
	require.NoError(t, conn.Where("name = ?", "Dragon Lair").First(&lair).Error)
	assert.False(t, lair.IsOpen)

	var admin domain.Hunter
	require.NoError(t, conn.Where("username = ?", "admin").First(&admin).Error)
	assert.True(t, admin.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("secret")))

	var guild domain.Guild
	require.NoError(t, conn.Preload("Members").Preload("Leader").Where("name = ?", "Hunters Guild").First(&guild).Error)
	require.NotNil(t, guild.Leader)
	assert.Equal(t, "jinwoo", guild.Leader.Username)
	require.Len(t, guild.Members, 1)
	assert.Equal(t, guild.Leader.ID, guild.Members[0].ID)

	var hunt domain.Raid
	require.NoError(t, conn.Preload("Participations.Hunter.Skills").Where("name = ?", "Goblin Hunt").First(&hunt).Error)
	assert.Equal(t, "2024-05-01", hunt.Date.UTC().Format("2006-01-02"))
	// jinwoo E(10)+Fireball(50), david D(30)+Ice Blast(40)
	assert.Equal(t, 130, hunt.TeamStrength())
}

func TestSeedReplacesExistingRows(t *testing.T) {
	conn := testutil.NewDB(t)
	today := time.Now()
	require.NoError(t, db.Seed(conn, "secret", today))
	require.NoError(t, db.Seed(conn, "secret", today))

	assert.Equal(t, int64(5), count(t, conn, &domain.Hunter{}))
	assert.Equal(t, int64(3), count(t, conn, &domain.RaidParticipation{}))

	var links int64
	require.NoError(t, conn.Table("hunter_skills").Count(&links).Error)
	assert.Equal(t, int64(4), links)
}
