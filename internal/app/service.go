// Package app assembles the store, engines, event bus and websocket gateway
// into one service that the HTTP API is served from.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rizeos/workforce/internal/adapters/repository"
	"github.com/rizeos/workforce/internal/adapters/ws"
	"github.com/rizeos/workforce/internal/chain"
	"github.com/rizeos/workforce/internal/domain/assign"
	"github.com/rizeos/workforce/internal/domain/scoring"
	"github.com/rizeos/workforce/internal/events"
	"github.com/rizeos/workforce/pkg/logger"
)

// Service owns the wiring between the components. Subscriptions are made in
// Start so that the score recomputation handler always runs before the
// dashboard gateway for the same event.
type Service struct {
	mu sync.Mutex

	store   *repository.Store
	secret  []byte
	bus     *events.Bus
	scorer  *scoring.Engine
	assign  *assign.Engine
	gateway *ws.Gateway
	handler *events.TaskCompletedHandler
	chain   chain.Logger

	maxSubscribers int
	wsWriteTimeout time.Duration
	started        bool
	logger         logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChainLogger sets the completion attestation sink.
func WithChainLogger(c chain.Logger) Option {
	return func(s *Service) {
		if c != nil {
			s.chain = c
		}
	}
}

// WithMaxSubscribers caps per-event bus subscriptions.
func WithMaxSubscribers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSubscribers = n
		}
	}
}

// WithWSWriteTimeout bounds each dashboard push write.
func WithWSWriteTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.wsWriteTimeout = d
		}
	}
}

// New constructs a Service over an already migrated store.
func New(store *repository.Store, secret []byte, opts ...Option) *Service {
	s := &Service{
		store:  store,
		secret: secret,
		chain:  chain.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and registers the event subscriptions.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	var busOpts []events.Option
	if s.maxSubscribers > 0 {
		busOpts = append(busOpts, events.WithMaxSubscribers(s.maxSubscribers))
	}
	s.bus = events.NewBus(busOpts...)
	s.scorer = scoring.NewEngine(s.store, s.store)
	s.assign = assign.NewEngine(s.store)
	var gwOpts []ws.Option
	if s.wsWriteTimeout > 0 {
		gwOpts = append(gwOpts, ws.WithWriteTimeout(s.wsWriteTimeout))
	}
	s.gateway = ws.NewGateway(s.secret, gwOpts...)
	s.handler = events.NewTaskCompletedHandler(s.scorer, s.chain)

	// Scoring subscribes first. The bus runs handlers in registration
	// order, so dashboards observe a completion only after the score
	// recompute for it has finished.
	if err := s.bus.Subscribe(events.TaskCompleted, s.handler.Handle); err != nil {
		return fmt.Errorf("subscribe scoring handler: %w", err)
	}
	if err := s.gateway.Register(s.bus); err != nil {
		return fmt.Errorf("subscribe gateway: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "workforce service started")
	return nil
}

// Stop drains in-flight attestation calls and closes dashboard connections.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.handler.Wait()
	s.gateway.Close()

	s.started = false
	s.logger.Info(context.Background(), "workforce service stopped")
}

// Bus exposes the event bus for the HTTP layer.
func (s *Service) Bus() *events.Bus { return s.bus }

// Assign exposes the recommendation engine.
func (s *Service) Assign() *assign.Engine { return s.assign }

// Gateway exposes the websocket gateway.
func (s *Service) Gateway() *ws.Gateway { return s.gateway }

// Store exposes the repository.
func (s *Service) Store() *repository.Store { return s.store }
