// Package server accepts client connections on a unix or tcp socket
// and feeds parsed commands to the engine. One goroutine per
// connection performs blocking reads; it hands each command to the
// engine in receipt order and owns nothing else, so a connection
// failure terminates only that connection.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/tickerlab/matchd/internal/domain"
	"github.com/tickerlab/matchd/internal/engine"
	"github.com/tickerlab/matchd/internal/protocol"
)

// Server listens for client connections carrying the text command
// protocol and routes every parsed command to the engine.
type Server struct {
	network string
	addr    string
	eng     *engine.Engine
	logger  *slog.Logger

	ln      net.Listener
	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

// New creates a server for the given listen network ("unix" or "tcp")
// and address.
func New(network, addr string, eng *engine.Engine, logger *slog.Logger) *Server {
	return &Server{
		network: network,
		addr:    addr,
		eng:     eng,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the listening socket. For unix sockets a stale socket
// file from a previous run is removed first.
func (s *Server) Listen() error {
	if s.network == "unix" {
		if err := os.Remove(s.addr); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}
	ln, err := net.Listen(s.network, s.addr)
	if err != nil {
		return fmt.Errorf("listen %s %s: %w", s.network, s.addr, err)
	}
	s.ln = ln
	return nil
}

// Serve accepts connections until the listener is closed, spawning a
// reader goroutine per connection. It returns nil after Shutdown.
func (s *Server) Serve() error {
	s.logger.Info("server listening",
		slog.String("network", s.network),
		slog.String("addr", s.addr),
	)
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn, uuid.NewString())
	}
}

// handleConn reads command lines from one connection and routes them
// in receipt order. EOF, read errors, and protocol errors all end just
// this connection; resting orders it submitted stay on their books.
func (s *Server) handleConn(conn net.Conn, connID string) {
	logger := s.logger.With(slog.String("conn_id", connID))
	logger.Debug("connection accepted", slog.String("remote", conn.RemoteAddr().String()))

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.wg.Done()
		logger.Debug("connection closed")
	}()

	// Cancel lines carry only an order ID, so the connection resolves
	// the instrument from the orders it has submitted. The map is
	// touched by this goroutine only. A cancel for an ID this
	// connection never sent cannot be routed to any worker and is
	// rejected outright.
	submitted := make(map[uint32]string)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd, skip, err := protocol.ParseCommand(scanner.Text())
		if err != nil {
			logger.Warn("protocol error, dropping connection", slog.String("error", err.Error()))
			return
		}
		if skip {
			continue
		}
		if cmd.Type == domain.CommandCancel {
			instrument, ok := submitted[cmd.OrderID]
			if !ok {
				s.eng.RejectCancel(cmd.OrderID)
				continue
			}
			cmd.Instrument = instrument
		} else {
			submitted[cmd.OrderID] = cmd.Instrument
		}
		if err := s.eng.Route(cmd); err != nil {
			logger.Warn("route failed", slog.String("error", err.Error()))
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("read error", slog.String("error", err.Error()))
	}
}

// Shutdown closes the listener and all open connections, then waits
// for the reader goroutines to drain or the context to expire. For
// unix sockets the socket file is removed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	if s.ln != nil {
		s.ln.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if s.network == "unix" {
		_ = os.Remove(s.addr)
	}
	return err
}

// Addr returns the listener's bound address, useful when listening on
// an ephemeral tcp port. It must be called after Listen.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}
