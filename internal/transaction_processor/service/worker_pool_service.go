package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
)

// WorkerPoolProcessingService caps how many operations hold database connections at once.
// Callers wait for a free worker until their context ends.
type WorkerPoolProcessingService struct {
	baseService ProcessingService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

// task states
const (
	taskQueued int32 = iota
	taskStarted
	taskAbandoned
)

type outcome struct {
	result *Result
	err    error
}

func NewWorkerPoolProcessingService(
	baseService ProcessingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

func (s *WorkerPoolProcessingService) Deposit(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*Result, error) {
	return s.submit(ctx, "deposit", func() (*Result, error) {
		return s.baseService.Deposit(ctx, acc, amount)
	})
}

func (s *WorkerPoolProcessingService) Withdraw(ctx context.Context, acc *account.Account, amount decimal.Decimal) (*Result, error) {
	return s.submit(ctx, "withdraw", func() (*Result, error) {
		return s.baseService.Withdraw(ctx, acc, amount)
	})
}

func (s *WorkerPoolProcessingService) Transfer(ctx context.Context, acc *account.Account, toCard string, amount decimal.Decimal) (*Result, error) {
	return s.submit(ctx, "transfer", func() (*Result, error) {
		return s.baseService.Transfer(ctx, acc, toCard, amount)
	})
}

// submit runs fn on a pool worker and waits for it. A caller whose context ends
// while the task is still queued gets ctx.Err() and the task is dropped. Once fn
// has started the wait is not abandoned: fn decides the outcome so the caller
// never reports failure for a unit that committed.
func (s *WorkerPoolProcessingService) submit(ctx context.Context, op string, fn func() (*Result, error)) (*Result, error) {
	log := logger.FromContext(ctx, s.logger)
	log.Debug("Submitting operation to worker pool", "operation", op, "running", s.pool.Running())

	var state atomic.Int32
	resultChan := make(chan outcome, 1)
	task := func() {
		if !state.CompareAndSwap(taskQueued, taskStarted) {
			return
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			resultChan <- outcome{err: ctxErr}
			return
		}
		result, err := fn()
		resultChan <- outcome{result: result, err: err}
	}

	submitted := make(chan error, 1)
	go func() {
		submitted <- s.pool.Submit(task)
	}()

	for {
		select {
		case res := <-resultChan:
			return res.result, res.err
		case err := <-submitted:
			if err != nil {
				log.Error("Failed to submit operation to worker pool", "operation", op, "error", err)
				return nil, fmt.Errorf("failed to schedule %s: %w", op, err)
			}
			submitted = nil
		case <-ctx.Done():
			if state.CompareAndSwap(taskQueued, taskAbandoned) {
				log.Warn("Operation abandoned while waiting for a worker", "operation", op, "error", ctx.Err())
				return nil, ctx.Err()
			}
			res := <-resultChan
			return res.result, res.err
		}
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}
