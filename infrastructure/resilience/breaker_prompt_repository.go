// Package resilience guards remote stores with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"promptbuilder/application/ports"
	"promptbuilder/domain/core/entities"
	pkgerrors "promptbuilder/pkg/errors"
)

// BreakerConfig holds configuration for the circuit breaker
type BreakerConfig struct {
	Name string
	// consecutive store failures before the breaker opens
	MaxFailures uint32
	// how long the breaker stays open before letting a probe through
	OpenTimeout time.Duration
}

// DefaultBreakerConfig returns the configuration used when none is given
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// storeHealthy reports whether err says nothing about the store's health.
// Misses, bad input and version conflicts are answers, not outages.
func storeHealthy(err error) bool {
	return err == nil ||
		pkgerrors.IsNotFound(err) ||
		pkgerrors.IsValidation(err) ||
		pkgerrors.IsConflict(err)
}

func newBreaker(cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig(cfg.Name).MaxFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: storeHealthy,
	})
}

// PromptRepository decorates a ports.PromptRepository with a circuit breaker.
// While the breaker is open every call fails fast with an Unavailable error.
type PromptRepository struct {
	next ports.PromptRepository
	cb   *gobreaker.CircuitBreaker
}

var _ ports.PromptRepository = (*PromptRepository)(nil)

// NewPromptRepository wraps next
func NewPromptRepository(next ports.PromptRepository, cfg BreakerConfig, logger *zap.Logger) *PromptRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptRepository{next: next, cb: newBreaker(cfg, logger)}
}

// State returns the breaker state: closed, half-open or open
func (r *PromptRepository) State() string {
	return r.cb.State().String()
}

func (r *PromptRepository) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, pkgerrors.NewUnavailableError("prompt store").
			WithCode(pkgerrors.CodeStoreUnavailable).
			WithCause(err)
	}
	return res, err
}

func (r *PromptRepository) Save(ctx context.Context, prompt *entities.SavedPrompt) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.next.Save(ctx, prompt)
	})
	return err
}

func (r *PromptRepository) GetByID(ctx context.Context, userID, promptID string) (*entities.SavedPrompt, error) {
	res, err := r.execute(func() (interface{}, error) {
		return r.next.GetByID(ctx, userID, promptID)
	})
	if err != nil {
		return nil, err
	}
	return res.(*entities.SavedPrompt), nil
}

func (r *PromptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.SavedPrompt, error) {
	res, err := r.execute(func() (interface{}, error) {
		return r.next.ListByUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*entities.SavedPrompt), nil
}

func (r *PromptRepository) Delete(ctx context.Context, userID, promptID string) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.next.Delete(ctx, userID, promptID)
	})
	return err
}
