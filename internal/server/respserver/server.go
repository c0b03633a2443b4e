package respserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/gohermgo/respcache/internal/telemetry/metric"
)

// readBufferSize bounds a single transport read. A request frame must
// arrive within one read; frames split across reads fail decoding and
// close the connection.
const readBufferSize = 4 * 1024

// Config holds the protocol server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout is the deadline for reading a request once bytes
	// start arriving (default: 30s).
	ReadTimeout time.Duration
	// WriteTimeout is the deadline for writing a reply (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout is the deadline for an idle connection between
	// requests (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of requests per second per
	// client IP. 0 disables rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:         "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
		RateLimit:    0,
	}
}

// Server accepts connections and runs one read-decode-dispatch-write
// loop per connection until the peer closes or an error occurs. All
// connections share the same store handle.
type Server struct {
	cfg     *Config
	store   Store
	logger  *slog.Logger
	metrics *metric.Registry

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New creates a protocol server over the given store. metrics may be
// nil to disable instrumentation.
func New(cfg *Config, st Store, metrics *metric.Registry, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		logger:   logger,
		metrics:  metrics,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Start binds the listen address and begins accepting connections in a
// background goroutine.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("resp server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("resp server accept error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting connections and waits for in-flight
// connection goroutines, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			firstErr = err
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(c)
		}()
	}
}

// serveConn runs the per-connection loop: read a buffer from the
// transport, decode every complete value in it, dispatch the resulting
// commands against the store, and write each encoded reply in order.
// Failure closes only this connection.
func (s *Server) serveConn(netConn net.Conn) {
	defer netConn.Close()

	connID := ulid.Make().String()
	log := s.logger.With("conn", connID, "remote", netConn.RemoteAddr().String())
	log.Debug("connection accepted")

	if s.metrics != nil {
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
		defer s.metrics.ConnectionsActive.Dec()
	}

	readTimeout := s.cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}
	idleTimeout := s.cfg.IdleTimeout
	if idleTimeout == 0 {
		idleTimeout = 5 * time.Minute
	}

	bw := bufio.NewWriter(netConn)
	buf := make([]byte, readBufferSize)

	for {
		if err := netConn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return
		}

		n, err := netConn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("connection closed by peer")
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				log.Debug("connection timed out")
				return
			}
			log.Debug("connection read error", "error", err)
			return
		}
		if n == 0 {
			return
		}

		// Tighten to the per-request deadline while a buffer is in
		// flight; restored to the idle deadline on the next loop.
		if err := netConn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return
		}

		if !s.allow(netConn.RemoteAddr()) {
			if s.metrics != nil {
				s.metrics.RateLimited.Inc()
			}
			log.Warn("rate limit exceeded")
			_ = netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_, _ = bw.WriteString("-ERR rate limit exceeded\r\n")
			_ = bw.Flush()
			continue
		}

		data := buf[:n]
		for len(data) > 0 {
			value, rest, err := Decode(data)
			if err != nil {
				if s.metrics != nil {
					s.metrics.ProtocolErrors.Inc()
				}
				// Malformed frames close the connection without a
				// partial reply.
				log.Warn("protocol error", "error", err)
				return
			}

			cmds, err := Build(value, s.store)
			if err != nil {
				if s.metrics != nil {
					s.metrics.ProtocolErrors.Inc()
				}
				log.Warn("command error", "error", err)
				return
			}

			for _, cmd := range cmds {
				if s.metrics != nil {
					s.metrics.CommandsTotal.WithLabelValues(cmd.Name()).Inc()
				}
				if err := netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
					return
				}
				if _, err := bw.Write(cmd.Reply().Encode()); err != nil {
					log.Debug("connection write error", "error", err)
					return
				}
			}

			data = rest
		}

		if err := bw.Flush(); err != nil {
			log.Debug("connection flush error", "error", err)
			return
		}
	}
}

// allow applies the per-IP rate limit to one request buffer.
func (s *Server) allow(addr net.Addr) bool {
	if s.cfg.RateLimit <= 0 {
		return true
	}

	ip := addr.String()
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	s.limiterMu.Lock()
	lim, ok := s.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateLimit)
		s.limiters[ip] = lim
	}
	s.limiterMu.Unlock()

	return lim.Allow()
}
