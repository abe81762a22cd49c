package repos

import (
	"context"
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

// testDB opens the database named by TEST_POSTGRES_DSN and hands the test a
// transaction that is rolled back on cleanup, so tests never see each
// other's rows. Without the env var the test is skipped.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		t.Fatalf("failed to enable uuid-ossp: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Session{}, &types.BusinessPlan{}, &types.Message{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("failed to begin test transaction: %v", tx.Error)
	}
	t.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

func repoLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func seedUser(t *testing.T, tx *gorm.DB, email string) *types.User {
	t.Helper()
	repo := NewUserRepo(tx, repoLogger(t))
	user, err := repo.Create(context.Background(), tx, &types.User{
		Email:        email,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedPlan(t *testing.T, tx *gorm.DB, user *types.User, title string) *types.BusinessPlan {
	t.Helper()
	repo := NewPlanRepo(tx, repoLogger(t))
	plan, err := repo.Create(context.Background(), tx, &types.BusinessPlan{
		UserID: user.ID,
		Title:  title,
	})
	if err != nil {
		t.Fatalf("failed to seed plan: %v", err)
	}
	return plan
}
