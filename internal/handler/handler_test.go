package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/engine"
	"github.com/tickerlab/matchd/internal/event"
	"github.com/tickerlab/matchd/internal/service"
	"github.com/tickerlab/matchd/internal/store"
)

// newTestServer wires a real engine, trade log, and router behind an
// httptest server.
func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tradeLog := store.NewTradeLog(64)
	sink := event.MultiSink{tradeLog}
	eng := engine.New(sink, event.NewClock(), 64, logger)
	t.Cleanup(func() { _ = eng.Shutdown(context.Background()) })

	svc := service.NewMarketDataService(eng, tradeLog, 32)
	srv := httptest.NewServer(NewRouter(svc, logger))
	t.Cleanup(srv.Close)
	return srv, eng
}

func routeAndSettle(t *testing.T, eng *engine.Engine, cmds ...domain.Command) {
	t.Helper()
	for _, cmd := range cmds {
		if err := eng.Route(cmd); err != nil {
			t.Fatalf("route: %v", err)
		}
	}
	for _, cmd := range cmds {
		if _, err := eng.Depth(context.Background(), cmd.Instrument, 1); err != nil {
			t.Fatalf("settle %s: %v", cmd.Instrument, err)
		}
	}
}

func getJSON(t *testing.T, url string, wantStatus int, into any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d, want %d (body: %s)", url, resp.StatusCode, wantStatus, body)
	}
	if into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	getJSON(t, srv.URL+"/healthz", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestListInstruments(t *testing.T) {
	srv, eng := newTestServer(t)

	routeAndSettle(t, eng,
		domain.Command{Type: domain.CommandBuy, OrderID: 1, Instrument: "BBB", Price: 10, Quantity: 1},
		domain.Command{Type: domain.CommandBuy, OrderID: 2, Instrument: "AAA", Price: 10, Quantity: 1},
	)

	var body struct {
		Instruments []string `json:"instruments"`
	}
	getJSON(t, srv.URL+"/instruments", http.StatusOK, &body)
	if len(body.Instruments) != 2 || body.Instruments[0] != "AAA" || body.Instruments[1] != "BBB" {
		t.Errorf("instruments = %v, want [AAA BBB]", body.Instruments)
	}
}

func TestGetDepth(t *testing.T) {
	srv, eng := newTestServer(t)

	routeAndSettle(t, eng,
		domain.Command{Type: domain.CommandBuy, OrderID: 1, Instrument: "AAA", Price: 100, Quantity: 10},
		domain.Command{Type: domain.CommandSell, OrderID: 2, Instrument: "AAA", Price: 105, Quantity: 5},
	)

	var snap engine.DepthSnapshot
	getJSON(t, srv.URL+"/instruments/AAA/depth", http.StatusOK, &snap)
	if len(snap.Bids) != 1 || snap.Bids[0].Price != 100 || snap.Bids[0].Quantity != 10 {
		t.Errorf("bids = %+v, want one level 100x10", snap.Bids)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].Price != 105 {
		t.Errorf("asks = %+v, want one level at 105", snap.Asks)
	}
}

func TestGetDepth_UnknownInstrument(t *testing.T) {
	srv, _ := newTestServer(t)
	getJSON(t, srv.URL+"/instruments/NOPE/depth", http.StatusNotFound, nil)
}

func TestGetDepth_InvalidLevels(t *testing.T) {
	srv, eng := newTestServer(t)
	routeAndSettle(t, eng,
		domain.Command{Type: domain.CommandBuy, OrderID: 1, Instrument: "AAA", Price: 100, Quantity: 10},
	)

	getJSON(t, srv.URL+"/instruments/AAA/depth?levels=abc", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/instruments/AAA/depth?levels=0", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/instruments/AAA/depth?levels=9999", http.StatusBadRequest, nil)
}

func TestGetDepth_InvalidSymbol(t *testing.T) {
	srv, _ := newTestServer(t)
	getJSON(t, srv.URL+"/instruments/WAYTOOLONG/depth", http.StatusBadRequest, nil)
}

func TestGetTrades(t *testing.T) {
	srv, eng := newTestServer(t)

	routeAndSettle(t, eng,
		domain.Command{Type: domain.CommandBuy, OrderID: 1, Instrument: "AAA", Price: 100, Quantity: 10},
		domain.Command{Type: domain.CommandSell, OrderID: 2, Instrument: "AAA", Price: 100, Quantity: 4},
	)

	var body struct {
		Instrument string        `json:"instrument"`
		Trades     []store.Trade `json:"trades"`
	}
	getJSON(t, srv.URL+"/instruments/AAA/trades", http.StatusOK, &body)
	if len(body.Trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(body.Trades))
	}
	tr := body.Trades[0]
	if tr.RestingID != 1 || tr.IncomingID != 2 || tr.Price != 100 || tr.Quantity != 4 {
		t.Errorf("trade = %+v, want resting=1 incoming=2 price=100 qty=4", tr)
	}
}

func TestGetTrades_EmptyForQuietInstrument(t *testing.T) {
	srv, eng := newTestServer(t)

	routeAndSettle(t, eng,
		domain.Command{Type: domain.CommandBuy, OrderID: 1, Instrument: "AAA", Price: 100, Quantity: 10},
	)

	var body struct {
		Trades []store.Trade `json:"trades"`
	}
	getJSON(t, srv.URL+"/instruments/AAA/trades", http.StatusOK, &body)
	if len(body.Trades) != 0 {
		t.Errorf("got %d trades, want 0", len(body.Trades))
	}
}
