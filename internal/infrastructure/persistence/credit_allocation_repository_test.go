package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/finance"
	"github.com/dmitriyabr/duma-erp-sub001/internal/domain/shared/valueobject"
	"github.com/dmitriyabr/duma-erp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAllocationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.CreditAllocationModel{})
	require.NoError(t, err)

	return db
}

func allocationCreatedAt(t *testing.T, studentID uuid.UUID, amount string, createdAt time.Time) *finance.CreditAllocation {
	t.Helper()
	a, err := finance.NewCreditAllocation(studentID, uuid.New(), nil,
		valueobject.NewMoney(decimal.RequireFromString(amount)), uuid.New())
	require.NoError(t, err)
	a.CreatedAt = createdAt
	a.UpdatedAt = createdAt
	return a
}

func TestGormCreditAllocationRepository_FindByStudentBetween(t *testing.T) {
	db := setupAllocationTestDB(t)
	repo := NewGormCreditAllocationRepository(db)
	ctx := context.Background()

	studentID := uuid.New()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	before := allocationCreatedAt(t, studentID, "50", time.Date(2026, 2, 28, 17, 0, 0, 0, time.UTC))
	midMonth := allocationCreatedAt(t, studentID, "100", time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC))
	lastDayNoon := allocationCreatedAt(t, studentID, "200", time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC))
	after := allocationCreatedAt(t, studentID, "75", to)
	for _, a := range []*finance.CreditAllocation{before, midMonth, lastDayNoon, after} {
		require.NoError(t, repo.Create(ctx, a))
	}

	found, err := repo.FindByStudentBetween(ctx, studentID, from, to)
	require.NoError(t, err)

	// Intra-day activity on the last day of the window is still inside it;
	// the bound at exactly `to` is not.
	require.Len(t, found, 2)
	assert.Equal(t, midMonth.ID, found[0].ID)
	assert.Equal(t, lastDayNoon.ID, found[1].ID)
}

func TestGormCreditAllocationRepository_SumByStudentBefore(t *testing.T) {
	db := setupAllocationTestDB(t)
	repo := NewGormCreditAllocationRepository(db)
	ctx := context.Background()

	studentID := uuid.New()
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, allocationCreatedAt(t, studentID, "40", cutoff.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, allocationCreatedAt(t, studentID, "60", cutoff.AddDate(0, 0, -10))))
	require.NoError(t, repo.Create(ctx, allocationCreatedAt(t, studentID, "500", cutoff)))

	total, err := repo.SumByStudentBefore(ctx, studentID, cutoff)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("100")))
}
