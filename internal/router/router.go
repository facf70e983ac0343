package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/action-router/internal/action"
	"github.com/angeloszaimis/action-router/internal/backend"
	"github.com/angeloszaimis/action-router/internal/envelope"
	"github.com/angeloszaimis/action-router/internal/metrics"
	"github.com/angeloszaimis/action-router/internal/strategy"
)

const (
	PathName         = "/Name"
	PathPolicyExpert = "/PolicyExpert"
	PathDeveloper    = "/Developer"
	PathCrew         = "/Crew"
)

type Router struct {
	strategies map[string]strategy.Strategy
	mutex      sync.RWMutex
	logger     *slog.Logger
	collector  *metrics.Collector
}

type Option func(*Router)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics reports invocations to collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(r *Router) {
		r.collector = collector
	}
}

// New returns a Router with no registered strategies.
func New(opts ...Option) *Router {
	r := &Router{
		strategies: make(map[string]strategy.Strategy),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewDefault returns a Router with the directory lookup on /Name and the
// policy, developer and crew searches on /PolicyExpert, /Developer and
// /Crew.
func NewDefault(c backend.Collaborator, directorySource string, opts ...Option) (*Router, error) {
	r := New(opts...)

	if err := r.Register(PathName, strategy.NewDirectoryStrategy(c, directorySource)); err != nil {
		return nil, err
	}

	searches := map[string]backend.SearchType{
		PathPolicyExpert: backend.SearchPolicy,
		PathDeveloper:    backend.SearchDeveloper,
		PathCrew:         backend.SearchCrew,
	}
	for path, searchType := range searches {
		s, err := strategy.NewSearchStrategy(searchType, c)
		if err != nil {
			return nil, err
		}
		if err := r.Register(path, s); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register binds apiPath to s, replacing any earlier binding.
func (r *Router) Register(apiPath string, s strategy.Strategy) error {
	if apiPath == "" {
		return errors.New("register strategy: empty API path")
	}
	if s == nil {
		return fmt.Errorf("register strategy for %s: nil strategy", apiPath)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.strategies[apiPath] = s
	return nil
}

// Route returns the strategy registered for apiPath. Matching is exact.
func (r *Router) Route(apiPath string) (strategy.Strategy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	s, ok := r.strategies[apiPath]
	if !ok {
		return nil, action.NewUnsupportedRouteError(apiPath)
	}
	return s, nil
}

// Paths returns the registered API paths in sorted order.
func (r *Router) Paths() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	paths := make([]string, 0, len(r.strategies))
	for p := range r.strategies {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Invoke runs inv through its strategy and returns exactly one envelope.
func (r *Router) Invoke(ctx context.Context, inv action.Invocation) (env envelope.Envelope) {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = WithRequestID(ctx, requestID)
	}

	logger := r.logger.With(
		slog.String("request_id", requestID),
		slog.String("api_path", inv.APIPath),
		slog.String("action_group", inv.ActionGroup))

	start := time.Now()
	r.collector.Emit(metrics.MetricEvent{
		Type:   metrics.EventRequestReceived,
		Action: inv.APIPath,
	})

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Strategy panicked", slog.Any("panic", rec))
			env = envelope.Failure(inv, action.NewUnexpectedError(fmt.Errorf("strategy panic: %v", rec)))
		}

		duration := time.Since(start)
		r.collector.Emit(metrics.MetricEvent{
			Type:       metrics.EventResponseCompleted,
			Action:     inv.APIPath,
			Duration:   duration,
			StatusCode: env.HTTPStatusCode,
		})

		logger.Info("Invocation completed",
			slog.Int("status", env.HTTPStatusCode),
			slog.Duration("duration", duration))
	}()

	result, err := r.dispatch(ctx, inv, logger)
	if err != nil {
		ae := action.AsError(err)
		logger.Warn("Invocation failed",
			slog.String("kind", ae.Kind.String()),
			slog.String("error", ae.Error()))
		return envelope.Failure(inv, ae)
	}

	return envelope.Success(inv, result)
}

func (r *Router) dispatch(ctx context.Context, inv action.Invocation, logger *slog.Logger) (any, error) {
	s, err := r.Route(inv.APIPath)
	if err != nil {
		return nil, err
	}

	r.collector.Emit(metrics.MetricEvent{
		Type:     metrics.EventStrategySelected,
		Action:   inv.APIPath,
		Strategy: s.Name(),
	})

	logger.Debug("Dispatching invocation",
		slog.String("strategy", s.Name()),
		slog.Any("parameters", inv.Parameters.Keys()))

	return strategy.Run(ctx, s, inv.Parameters)
}
