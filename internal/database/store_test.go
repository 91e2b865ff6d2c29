package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trading-journal-go/internal/ledger"
	"trading-journal-go/internal/models"
)

// setupTest creates an isolated in-memory database with the full schema.
func setupTest(t *testing.T) *gorm.DB {
	// Use a new, non-shared in-memory database for each test to ensure isolation.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.Operation{}, &models.Snapshot{}, &models.Setting{})
	assert.NoError(t, err)

	return db
}

func TestOperationStore_ListOrdering(t *testing.T) {
	// Arrange: insert out of order, with a timestamp tie resolved by ID.
	db := setupTest(t)
	store := NewOperationStore(db)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ops := []ledger.Operation{
		{ID: "03", Symbol: "ENI.MI", Side: ledger.SideSell, Quantity: decimal.NewFromInt(5), Price: decimal.NewFromInt(150), Timestamp: at.Add(time.Hour)},
		{ID: "02", Symbol: "ENI.MI", Side: ledger.SideBuy, Quantity: decimal.NewFromInt(5), Price: decimal.NewFromInt(120), Timestamp: at},
		{ID: "01", Symbol: "ENI.MI", Side: ledger.SideBuy, Quantity: decimal.NewFromInt(5), Price: decimal.NewFromInt(100), Timestamp: at},
	}
	for _, op := range ops {
		assert.NoError(t, store.Create(op))
	}

	// Act
	listed, err := store.ListAll()

	// Assert
	assert.NoError(t, err)
	assert.Len(t, listed, 3)
	assert.Equal(t, "01", listed[0].ID)
	assert.Equal(t, "02", listed[1].ID)
	assert.Equal(t, "03", listed[2].ID)
	assert.True(t, listed[0].Price.Equal(decimal.NewFromInt(100)))
}

func TestOperationStore_ListBySymbol(t *testing.T) {
	db := setupTest(t)
	store := NewOperationStore(db)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, store.Create(ledger.Operation{ID: "01", Symbol: "ENI.MI", Side: ledger.SideBuy, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(14), Timestamp: at}))
	assert.NoError(t, store.Create(ledger.Operation{ID: "02", Symbol: "ISP.MI", Side: ledger.SideBuy, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(2), Timestamp: at}))

	listed, err := store.ListBySymbol("ISP.MI")

	assert.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, "02", listed[0].ID)
}

func TestOperationStore_DuplicateIDRejected(t *testing.T) {
	db := setupTest(t)
	store := NewOperationStore(db)

	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	op := ledger.Operation{ID: "01", Symbol: "ENI.MI", Side: ledger.SideBuy, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(14), Timestamp: at}

	assert.NoError(t, store.Create(op))
	assert.Error(t, store.Create(op))
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	db := setupTest(t)
	store := NewSnapshotStore(db)

	at := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	assert.NoError(t, store.Save(ledger.Snapshot{TakenAt: at.Add(time.Hour), OpenCost: decimal.NewFromInt(900), MarketValue: decimal.NewFromInt(1000)}))
	assert.NoError(t, store.Save(ledger.Snapshot{TakenAt: at, OpenCost: decimal.NewFromInt(800), MarketValue: decimal.NewFromInt(850)}))

	snaps, err := store.List()

	assert.NoError(t, err)
	assert.Len(t, snaps, 2)
	assert.True(t, at.Equal(snaps[0].TakenAt))
	assert.True(t, snaps[0].MarketValue.Equal(decimal.NewFromInt(850)))
}

func TestSettingsStore_InitialBalance(t *testing.T) {
	db := setupTest(t)
	store := NewSettingsStore(db)

	// Unset: zero, not an error.
	balance, err := store.InitialBalance()
	assert.NoError(t, err)
	assert.True(t, balance.IsZero())

	// Set and overwrite.
	assert.NoError(t, store.SetInitialBalance(decimal.NewFromInt(10000)))
	assert.NoError(t, store.SetInitialBalance(decimal.NewFromInt(12500)))

	balance, err = store.InitialBalance()
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(12500)))
}
