// Package service holds the read-side orchestration between the HTTP
// handlers and the matching core.
package service

import (
	"context"
	"fmt"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/engine"
	"github.com/tickerlab/matchd/internal/store"
)

// MarketDataService answers read-only market-data queries. Depth
// queries are forwarded through the owning worker's queue, so they
// observe a consistent book and never touch it concurrently with
// matching.
type MarketDataService struct {
	eng       *engine.Engine
	trades    *store.TradeLog
	maxLevels int
}

// NewMarketDataService creates a MarketDataService. maxLevels caps the
// number of aggregated price levels a depth query may request.
func NewMarketDataService(eng *engine.Engine, trades *store.TradeLog, maxLevels int) *MarketDataService {
	return &MarketDataService{
		eng:       eng,
		trades:    trades,
		maxLevels: maxLevels,
	}
}

// Instruments returns all instrument symbols the engine has seen.
func (s *MarketDataService) Instruments() []string {
	return s.eng.Instruments()
}

// Depth returns up to levels aggregated price levels per side for the
// instrument. levels <= 0 selects the maximum; requests beyond the cap
// are a validation failure.
func (s *MarketDataService) Depth(ctx context.Context, symbol string, levels int) (engine.DepthSnapshot, error) {
	if err := domain.ValidateSymbol(symbol); err != nil {
		return engine.DepthSnapshot{}, err
	}
	if levels <= 0 {
		levels = s.maxLevels
	}
	if levels > s.maxLevels {
		return engine.DepthSnapshot{}, &domain.ValidationError{
			Message: fmt.Sprintf("levels must be between 1 and %d", s.maxLevels),
		}
	}
	return s.eng.Depth(ctx, symbol, levels)
}

// RecentTrades returns up to limit recent executions for the
// instrument in chronological order. limit <= 0 returns all retained
// trades.
func (s *MarketDataService) RecentTrades(symbol string, limit int) ([]store.Trade, error) {
	if err := domain.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	return s.trades.Recent(symbol, limit), nil
}
