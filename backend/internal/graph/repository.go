package graph

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"campusnet/backend/internal/store"
	apperrors "campusnet/backend/pkg/errors"
	"campusnet/backend/pkg/logger"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

var _ store.Store = (*Repository)(nil)

// Options tunes a Repository
type Options struct {
	Database string
	// BreakerMaxFailures consecutive store failures open the breaker
	BreakerMaxFailures uint32
	// BreakerTimeout is how long the breaker stays open before probing again
	BreakerTimeout time.Duration
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
	}
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext, opts Options) *Repository {
	r := &Repository{
		driver:   driver,
		database: opts.Database,
		logger:   logger.Named("graph"),
	}
	r.breaker = newBreaker(opts, r.logger)
	return r
}

func newBreaker(opts Options, log *zap.Logger) *gobreaker.CircuitBreaker {
	maxFailures := opts.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultOptions().BreakerMaxFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "neo4j",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Domain outcomes such as NotFound or Conflict prove the database is reachable.
		IsSuccessful: func(err error) bool {
			return err == nil || !isStoreFailure(err)
		},
	})
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// VerifyConnectivity checks that the database answers
func (r *Repository) VerifyConnectivity(ctx context.Context) error {
	_, err := r.guard("verify connectivity", func() (any, error) {
		return nil, r.driver.VerifyConnectivity(ctx)
	})
	return err
}

func (r *Repository) sessionConfig(mode neo4j.AccessMode) neo4j.SessionConfig {
	return neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database}
}

// read runs work in a managed read transaction behind the breaker
func (r *Repository) read(ctx context.Context, op string, work neo4j.ManagedTransactionWork) (any, error) {
	return r.guard(op, func() (any, error) {
		session := r.driver.NewSession(ctx, r.sessionConfig(neo4j.AccessModeRead))
		defer session.Close(ctx)
		return session.ExecuteRead(ctx, work)
	})
}

// write runs work in a managed write transaction behind the breaker.
// A domain error returned by work rolls the transaction back.
func (r *Repository) write(ctx context.Context, op string, work neo4j.ManagedTransactionWork) (any, error) {
	return r.guard(op, func() (any, error) {
		session := r.driver.NewSession(ctx, r.sessionConfig(neo4j.AccessModeWrite))
		defer session.Close(ctx)
		return session.ExecuteWrite(ctx, work)
	})
}

// guard executes fn through the circuit breaker and normalises its error
func (r *Repository) guard(op string, fn func() (any, error)) (any, error) {
	result, err := r.breaker.Execute(fn)
	if err == nil {
		return result, nil
	}

	var appErr *apperrors.BaseError
	if errors.As(err, &appErr) {
		return nil, err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, apperrors.NewStoreUnavailable(op, err)
	}

	r.logger.Error("Neo4j operation failed", zap.String("op", op), zap.Error(err))
	return nil, apperrors.NewStoreUnavailable(op, err)
}

// isStoreFailure reports whether err came from the database rather than domain rules
func isStoreFailure(err error) bool {
	var appErr *apperrors.BaseError
	if errors.As(err, &appErr) {
		return appErr.Type == apperrors.ErrorTypeUnavailable
	}
	return !errors.Is(err, context.Canceled)
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		return neoErr.Code == "Neo.ClientError.Schema.ConstraintValidationFailed"
	}
	return false
}
