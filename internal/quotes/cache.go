package quotes

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"trading-journal-go/internal/ledger"
)

// CachedSource decorates a Source with a TTL cache and a stale-price
// fallback. A fresh hit short-circuits the live call; when the live call
// fails, the last known price is served with the Stale flag set instead of
// failing the valuation. Only an instrument that has never been priced
// yields a PriceUnavailableError.
type CachedSource struct {
	src    Source
	fresh  *cache.Cache // TTL-bound entries
	known  *cache.Cache // last known price per symbol, never expires
	logger *zap.Logger
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource wraps src with a cache holding entries fresh for ttl.
func NewCachedSource(src Source, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		src:    src,
		fresh:  cache.New(ttl, 2*ttl),
		known:  cache.New(cache.NoExpiration, 0),
		logger: logger,
	}
}

// Quote returns a cached or live quote for the symbol, falling back to the
// last known price marked stale when the live source fails.
func (s *CachedSource) Quote(ctx context.Context, symbol string) (ledger.Quote, error) {
	if hit, found := s.fresh.Get(symbol); found {
		return hit.(ledger.Quote), nil
	}

	quote, err := s.src.Quote(ctx, symbol)
	if err == nil {
		s.fresh.Set(symbol, quote, cache.DefaultExpiration)
		s.known.Set(symbol, quote, cache.NoExpiration)
		return quote, nil
	}

	if last, found := s.known.Get(symbol); found {
		stale := last.(ledger.Quote)
		stale.Stale = true
		s.logger.Warn("Live quote failed, serving last known price",
			zap.String("symbol", symbol),
			zap.Time("as_of", stale.AsOf),
			zap.Error(err),
		)
		return stale, nil
	}

	return ledger.Quote{}, err
}
