package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"basketball-tournament-api/auth"
	"basketball-tournament-api/models"
)

// setupTestDB opens a fresh in-memory database per test. TranslateError must
// be on, same as production, because the registration flow depends on
// gorm.ErrDuplicatedKey.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Tournament{},
		&models.Team{},
		&models.TournamentTeam{},
		&models.Registration{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "-" + uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedTournament(t *testing.T, db *gorm.DB, status models.TournamentStatus, open bool) models.Tournament {
	t.Helper()
	tour := models.Tournament{
		ID:               uuid.NewString(),
		Name:             "City Cup",
		Slug:             "city-cup",
		Date:             time.Now().Add(48 * time.Hour),
		Location:         "Riga",
		Status:           status,
		RegistrationOpen: open,
	}
	require.NoError(t, db.Create(&tour).Error)
	return tour
}

func principal(u models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Role: u.Role}
}
