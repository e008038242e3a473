// Package server implements the HTTP surface of the post service: routing,
// request validation, per-route call counting, and the server lifecycle.
package server

import (
	"context"
	"errors"
	golog "log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nicolagi/postd/storage"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Option func(*options)

type options struct {
	address string
	store   storage.Store
	limit   rate.Limit
	burst   int
}

func WithAddress(value string) Option {
	return func(o *options) {
		o.address = value
	}
}

func WithStore(value storage.Store) Option {
	return func(o *options) {
		o.store = value
	}
}

// WithRateLimit throttles requests to limit per second, allowing bursts of
// the given size. Throttled requests are delayed, not rejected. A zero or
// negative limit disables throttling.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) {
		o.limit = limit
		o.burst = burst
	}
}

type Server struct {
	opts    options
	limiter *rate.Limiter
	routes  []*route
	handler http.Handler

	ln  net.Listener
	srv *http.Server

	// Closed once Shutdown has drained in-flight requests.
	drained     chan struct{}
	drainedOnce sync.Once
}

// New returns a server ready to Listen. Without WithStore, it serves a fresh
// in-memory store holding the seed posts.
func New(opts ...Option) *Server {
	s := &Server{
		drained: make(chan struct{}),
	}
	s.opts.address = ":8000"
	for _, o := range opts {
		o(&s.opts)
	}
	if s.opts.store == nil {
		s.opts.store = storage.NewSeededStore()
	}
	if s.opts.limit > 0 {
		if s.opts.burst < 1 {
			s.opts.burst = 1
		}
		s.limiter = rate.NewLimiter(s.opts.limit, s.opts.burst)
	}
	s.routes = s.newRoutes()
	s.handler = s.newMux()
	s.srv = &http.Server{
		Handler:      s.handler,
		ErrorLog:     golog.New(log.StandardLogger().WriterLevel(log.WarnLevel), "", 0),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for use without Listen and Serve (e.g.,
// with net/http/httptest).
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Listen() (addr string, err error) {
	s.ln, err = net.Listen("tcp", s.opts.address)
	if err != nil {
		return
	}
	addr = s.ln.Addr().String()
	return
}

// Serve handles connections accepted by the listener set up by Listen. Once
// Shutdown is called, Serve returns nil, but only after Shutdown itself has
// returned, i.e., after in-flight requests completed or Shutdown gave up on
// them.
func (s *Server) Serve() error {
	err := s.srv.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-s.drained
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests to
// complete, or for ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.drainedOnce.Do(func() {
		close(s.drained)
	})
	return err
}
