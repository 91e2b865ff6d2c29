package database

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"trading-journal-go/internal/ledger"
	"trading-journal-go/internal/models"
)

// OperationStore is the append-only record of every buy/sell operation,
// ordered by timestamp with ULID tiebreak. It offers no update or delete:
// corrections are new compensating operations.
type OperationStore struct {
	db *gorm.DB
}

// NewOperationStore returns a store backed by db.
func NewOperationStore(db *gorm.DB) *OperationStore {
	return &OperationStore{db: db}
}

// Create appends one operation to the journal.
func (s *OperationStore) Create(op ledger.Operation) error {
	record := models.Operation{
		OpID:      op.ID,
		Symbol:    op.Symbol,
		Side:      op.Side,
		Quantity:  op.Quantity,
		Price:     op.Price,
		Fees:      op.Fees,
		Timestamp: op.Timestamp,
		Note:      op.Note,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to persist operation %s: %w", op.ID, err)
	}
	return nil
}

// ListAll returns the complete history in ledger order.
func (s *OperationStore) ListAll() ([]ledger.Operation, error) {
	var records []models.Operation
	if err := s.db.Order("timestamp, op_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return toLedgerOperations(records), nil
}

// ListBySymbol returns one instrument's history in ledger order.
func (s *OperationStore) ListBySymbol(symbol string) ([]ledger.Operation, error) {
	var records []models.Operation
	if err := s.db.Where("symbol = ?", symbol).Order("timestamp, op_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list operations for %s: %w", symbol, err)
	}
	return toLedgerOperations(records), nil
}

func toLedgerOperations(records []models.Operation) []ledger.Operation {
	ops := make([]ledger.Operation, 0, len(records))
	for _, r := range records {
		ops = append(ops, ledger.Operation{
			ID:        r.OpID,
			Symbol:    r.Symbol,
			Side:      r.Side,
			Quantity:  r.Quantity,
			Price:     r.Price,
			Fees:      r.Fees,
			Timestamp: r.Timestamp,
			Note:      r.Note,
		})
	}
	return ops
}

// SnapshotStore persists portfolio valuation snapshots. They are a
// reconstructable cache, not authoritative data.
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore returns a store backed by db.
func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save records one snapshot.
func (s *SnapshotStore) Save(snap ledger.Snapshot) error {
	record := models.Snapshot{
		TakenAt:     snap.TakenAt,
		OpenCost:    snap.OpenCost,
		MarketValue: snap.MarketValue,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

// List returns all snapshots ordered by time.
func (s *SnapshotStore) List() ([]ledger.Snapshot, error) {
	var records []models.Snapshot
	if err := s.db.Order("taken_at").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	snaps := make([]ledger.Snapshot, 0, len(records))
	for _, r := range records {
		snaps = append(snaps, ledger.Snapshot{
			TakenAt:     r.TakenAt,
			OpenCost:    r.OpenCost,
			MarketValue: r.MarketValue,
		})
	}
	return snaps, nil
}

// SettingsStore holds journal-level settings such as the initial balance.
type SettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore returns a store backed by db.
func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// InitialBalance returns the configured starting account value, zero when
// it was never set.
func (s *SettingsStore) InitialBalance() (decimal.Decimal, error) {
	var record models.Setting
	err := s.db.Where("key = ?", models.SettingInitialBalance).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read initial balance: %w", err)
	}
	value, err := decimal.NewFromString(record.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt initial balance %q: %w", record.Value, err)
	}
	return value, nil
}

// EnsureInitialBalance stores value as the starting account balance only
// when none was ever set.
func (s *SettingsStore) EnsureInitialBalance(value decimal.Decimal) error {
	record := models.Setting{Key: models.SettingInitialBalance}
	if err := s.db.Where(record).Attrs(models.Setting{Value: value.String()}).FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("failed to seed initial balance: %w", err)
	}
	return nil
}

// SetInitialBalance stores the starting account value.
func (s *SettingsStore) SetInitialBalance(value decimal.Decimal) error {
	record := models.Setting{Key: models.SettingInitialBalance}
	if err := s.db.Where(record).Assign(models.Setting{Value: value.String()}).FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("failed to store initial balance: %w", err)
	}
	return nil
}
