package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MAIL_BACKEND", "console")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestLoadConfigRequiresSecretInProd(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MAIL_BACKEND", "console")
	t.Setenv("IS_PROD", "true")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "root", DBPassword: "pw", DBHost: "db", DBName: "hunters"}
	assert.Equal(t, "root:pw@tcp(db:3306)/hunters?parseTime=true", cfg.DSN())

	cfg.DBDriver = "postgres"
	cfg.DBPort = "6543"
	cfg.DBSSLMode = "disable"
	assert.Equal(t, "host=db user=root password=pw dbname=hunters port=6543 sslmode=disable", cfg.DSN())
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	SetupLogging(&Config{LogLevel: "debug"})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)

	SetupLogging(&Config{LogLevel: "nonsense", IsProd: true})
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
}
