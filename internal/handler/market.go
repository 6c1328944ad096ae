package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/service"
)

// MarketHandler serves the read-only market-data endpoints. It never
// mutates any book: all state it reports is produced by the matching
// core and observed through the service layer.
type MarketHandler struct {
	svc *service.MarketDataService
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(svc *service.MarketDataService) *MarketHandler {
	return &MarketHandler{svc: svc}
}

// ListInstruments handles GET /instruments.
func (h *MarketHandler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"instruments": h.svc.Instruments(),
	})
}

// GetDepth handles GET /instruments/{symbol}/depth?levels=N.
func (h *MarketHandler) GetDepth(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	levels := 0
	if raw := r.URL.Query().Get("levels"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid_request", "levels must be a positive integer")
			return
		}
		levels = v
	}

	snap, err := h.svc.Depth(r.Context(), symbol, levels)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snap)
}

// GetTrades handles GET /instruments/{symbol}/trades?limit=N.
func (h *MarketHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = v
	}

	trades, err := h.svc.RecentTrades(symbol, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"instrument": symbol,
		"trades":     trades,
	})
}

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, "invalid_request", validationErr.Message)
	case errors.Is(err, domain.ErrInvalidSymbol):
		WriteError(w, http.StatusBadRequest, "invalid_symbol", "instrument symbol must be 1-8 printable characters")
	case errors.Is(err, domain.ErrUnknownInstrument):
		WriteError(w, http.StatusNotFound, "unknown_instrument", "no orders have been seen for this instrument")
	case errors.Is(err, domain.ErrEngineStopped):
		WriteError(w, http.StatusServiceUnavailable, "engine_stopped", "the matching engine is shutting down")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
