package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/database"
	"trading-journal-go/internal/ledger"
	"trading-journal-go/internal/quotes"
)

// Service is the position & tax ledger engine. It owns the in-memory lot
// book replayed from the operation store, accepts new operations, and
// serves the reporting surface (positions, tax, realized events, equity
// curve). The operation store is the single source of truth; everything the
// service holds is rebuildable from it.
type Service struct {
	logger   *zap.Logger
	cfg      *config.Config
	ops      *database.OperationStore
	snaps    *database.SnapshotStore
	settings *database.SettingsStore
	source   quotes.Source
	tax      ledger.TaxCalculator

	mu     sync.Mutex
	book   *ledger.Book
	events []ledger.RealizedGain
	last   ledger.Operation
}

// NewService creates the ledger engine on top of db and a price source.
func NewService(logger *zap.Logger, cfg *config.Config, db *gorm.DB, source quotes.Source) *Service {
	return &Service{
		logger:   logger.Named("journal"),
		cfg:      cfg,
		ops:      database.NewOperationStore(db),
		snaps:    database.NewSnapshotStore(db),
		settings: database.NewSettingsStore(db),
		source:   source,
		tax:      ledger.NewTaxCalculator(decimal.NewFromFloat(cfg.Tax.Rate)),
		book:     ledger.NewBook(),
	}
}

// Rebuild replays the complete operation history from the store into a
// fresh book. It also seeds the initial-balance setting from configuration
// on the very first run.
func (s *Service) Rebuild(ctx context.Context) error {
	if err := s.settings.EnsureInitialBalance(decimal.NewFromFloat(s.cfg.Journal.InitialBalance)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked()
}

func (s *Service) rebuildLocked() error {
	history, err := s.ops.ListAll()
	if err != nil {
		return err
	}

	book, events, err := ledger.Replay(history)
	if err != nil {
		// The stored history itself is inconsistent. This is the one hard
		// failure: derived state must not be served until the journal data
		// is inspected.
		s.logger.Error("Replay of operation history failed", zap.Error(err))
		return err
	}

	s.book = book
	s.events = events
	if len(history) > 0 {
		s.last = history[len(history)-1]
	} else {
		s.last = ledger.Operation{}
	}
	s.logger.Info("Rebuilt ledger from operation history",
		zap.Int("operations", len(history)),
		zap.Int("realized_events", len(events)),
		zap.Int("open_symbols", len(s.book.Symbols())),
	)
	return nil
}

// RecordOperation validates, persists, and applies a new operation,
// returning the realized-gain events it produced. The whole step is
// all-or-nothing: a rejected operation never reaches the store.
//
// A backdated operation (earlier than the newest recorded one) forces a
// full replay of the history including the newcomer, at O(total
// operations) cost.
func (s *Service) RecordOperation(ctx context.Context, op ledger.Operation) ([]ledger.RealizedGain, error) {
	if err := validateOperation(&op); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last.ID != "" && op.Before(s.last) {
		return s.recordBackdatedLocked(op)
	}

	// Forward-dated: the book advances incrementally. Reject an oversell
	// before anything is persisted.
	if op.Side == ledger.SideSell {
		available := s.book.OpenQuantity(op.Symbol)
		if available.LessThan(op.Quantity) {
			return nil, &ledger.OversellError{Symbol: op.Symbol, Requested: op.Quantity, Available: available}
		}
	}

	if err := s.ops.Create(op); err != nil {
		return nil, err
	}

	events, err := s.book.Apply(op)
	if err != nil {
		// The store and the book disagree; resync from the store before
		// reporting the failure.
		if rerr := s.rebuildLocked(); rerr != nil {
			return nil, rerr
		}
		return nil, err
	}

	s.events = append(s.events, events...)
	s.last = op
	s.logger.Info("Recorded operation",
		zap.String("id", op.ID),
		zap.String("symbol", op.Symbol),
		zap.String("side", op.Side),
		zap.String("quantity", op.Quantity.String()),
		zap.String("price", op.Price.String()),
		zap.Int("realized_events", len(events)),
	)
	return events, nil
}

// recordBackdatedLocked validates a backdated operation by replaying the
// full history with it included; only a consistent replay is persisted.
func (s *Service) recordBackdatedLocked(op ledger.Operation) ([]ledger.RealizedGain, error) {
	history, err := s.ops.ListAll()
	if err != nil {
		return nil, err
	}

	candidate := append(history, op)
	book, events, err := ledger.Replay(candidate)
	if err != nil {
		var replayErr *ledger.ReplayInconsistencyError
		if errors.As(err, &replayErr) && replayErr.OperationID != op.ID {
			// The stored history is broken independently of the newcomer.
			return nil, err
		}
		// The new operation itself would make the history inconsistent.
		return nil, fmt.Errorf("backdated operation rejected: %w", err)
	}

	if err := s.ops.Create(op); err != nil {
		return nil, err
	}

	s.book = book
	s.events = events
	if s.last.Before(op) {
		s.last = op
	}

	var emitted []ledger.RealizedGain
	for _, ev := range events {
		if ev.OperationID == op.ID {
			emitted = append(emitted, ev)
		}
	}
	s.logger.Info("Recorded backdated operation, ledger fully replayed",
		zap.String("id", op.ID),
		zap.String("symbol", op.Symbol),
		zap.Int("operations", len(candidate)),
	)
	return emitted, nil
}

func validateOperation(op *ledger.Operation) error {
	if op.Symbol == "" {
		return errors.New("operation symbol is required")
	}
	if op.Side != ledger.SideBuy && op.Side != ledger.SideSell {
		return &ledger.ErrUnknownSide{Side: op.Side}
	}
	if !op.Quantity.IsPositive() {
		return fmt.Errorf("operation quantity must be positive, got %s", op.Quantity)
	}
	if op.Price.IsNegative() {
		return fmt.Errorf("operation price must not be negative, got %s", op.Price)
	}
	if op.Fees.IsNegative() {
		return fmt.Errorf("operation fees must not be negative, got %s", op.Fees)
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now().UTC()
	}
	if op.ID == "" {
		op.ID = ledger.NewOperationID()
	}
	return nil
}

// Positions values every instrument with open lots against the price
// source. A failed quote degrades to the weighted-average acquisition
// price flagged stale; it never fails the whole request.
func (s *Service) Positions(ctx context.Context) ([]ledger.PositionValuation, error) {
	s.mu.Lock()
	symbols := s.book.Symbols()
	lotsBySymbol := make(map[string][]ledger.Lot, len(symbols))
	for _, symbol := range symbols {
		lotsBySymbol[symbol] = s.book.Lots(symbol)
	}
	s.mu.Unlock()

	positions := make([]ledger.PositionValuation, 0, len(symbols))
	for _, symbol := range symbols {
		lots := lotsBySymbol[symbol]
		quote, err := s.source.Quote(ctx, symbol)
		if err != nil {
			quote = costBasisQuote(symbol, lots)
			s.logger.Warn("No price available, valuing position at cost",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
		}
		if pos, ok := ledger.ValuePosition(symbol, lots, quote); ok {
			positions = append(positions, pos)
		}
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions, nil
}

// costBasisQuote prices lots at their weighted-average acquisition price,
// the fallback when no market price was ever obtained.
func costBasisQuote(symbol string, lots []ledger.Lot) ledger.Quote {
	quantity := decimal.Zero
	cost := decimal.Zero
	for _, l := range lots {
		quantity = quantity.Add(l.Remaining)
		cost = cost.Add(l.Cost())
	}
	price := decimal.Zero
	if quantity.IsPositive() {
		price = cost.Div(quantity).Round(8)
	}
	return ledger.Quote{Symbol: symbol, Price: price, Stale: true}
}

// TaxLiability returns the flat-rate liability on the period's net
// realized gain.
func (s *Service) TaxLiability(period ledger.Period) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tax.Liability(s.events, period)
}

// TaxWallet returns the period's realized gains/losses summary.
func (s *Service) TaxWallet(period ledger.Period) ledger.TaxWallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tax.Wallet(s.events, period)
}

// RealizedEvents returns the realized-gain events closed inside the period.
func (s *Service) RealizedEvents(period ledger.Period) []ledger.RealizedGain {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.RealizedGain
	for _, ev := range s.events {
		if period.Contains(ev.ClosedAt) {
			out = append(out, ev)
		}
	}
	return out
}

// Performance returns realized-return percentages over the standard
// reporting windows, relative to now.
func (s *Service) Performance(now time.Time) ledger.PerformanceReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Performance(s.events, now)
}

// EquityCurve builds the account-value series from realized events and
// persisted valuation snapshots, restricted to the period.
func (s *Service) EquityCurve(period ledger.Period) ([]ledger.EquityPoint, error) {
	initial, err := s.settings.InitialBalance()
	if err != nil {
		return nil, err
	}
	snapshots, err := s.snaps.List()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	events := make([]ledger.RealizedGain, len(s.events))
	copy(events, s.events)
	s.mu.Unlock()

	curve := ledger.BuildEquityCurve(initial, events, snapshots)
	return ledger.FilterCurve(curve, period), nil
}

// TakeSnapshot values the open portfolio and persists the sample for the
// equity curve.
func (s *Service) TakeSnapshot(ctx context.Context) (ledger.Snapshot, error) {
	positions, err := s.Positions(ctx)
	if err != nil {
		return ledger.Snapshot{}, err
	}

	snap := ledger.Snapshot{
		TakenAt:     time.Now().UTC(),
		OpenCost:    decimal.Zero,
		MarketValue: decimal.Zero,
	}
	for _, pos := range positions {
		snap.OpenCost = snap.OpenCost.Add(pos.CostBasis)
		snap.MarketValue = snap.MarketValue.Add(pos.MarketValue)
	}

	if err := s.snaps.Save(snap); err != nil {
		return ledger.Snapshot{}, err
	}
	s.logger.Info("Took valuation snapshot",
		zap.Int("positions", len(positions)),
		zap.String("market_value", snap.MarketValue.String()),
	)
	return snap, nil
}

// Run periodically takes valuation snapshots until the context is
// cancelled. Valuation runs off the recording path: a slow or failing
// price source never blocks the deterministic ledger.
func (s *Service) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.Journal.SnapshotIntervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting snapshot loop", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping snapshot loop...")
			return
		case <-ticker.C:
			if _, err := s.TakeSnapshot(ctx); err != nil {
				s.logger.Error("Snapshot failed", zap.Error(err))
			}
		}
	}
}
