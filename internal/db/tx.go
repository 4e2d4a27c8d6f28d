package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

// Querier is the common interface implemented by both *pgxpool.Pool and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter begins transactions; satisfied by *pgxpool.Pool
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txCtxKey struct{}

type txState struct {
	tx          pgx.Tx
	afterCommit []func()
}

func withTx(ctx context.Context, tx pgx.Tx) (context.Context, *txState) {
	state := &txState{tx: tx}
	return context.WithValue(ctx, txCtxKey{}, state), state
}

func stateFromCtx(ctx context.Context) (*txState, bool) {
	state, ok := ctx.Value(txCtxKey{}).(*txState)
	return state, ok
}

// InTx reports whether ctx carries an open transaction
func InTx(ctx context.Context) bool {
	_, ok := stateFromCtx(ctx)
	return ok
}

// QuerierFromCtx returns the transaction from context if present, otherwise the pool
func QuerierFromCtx(ctx context.Context, pool *pgxpool.Pool) Querier {
	if state, ok := stateFromCtx(ctx); ok {
		return state.tx
	}
	return pool
}

// AfterCommit schedules fn to run once the outermost transaction in ctx
// commits. Hooks are dropped on rollback. Outside a transaction fn runs
// immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := stateFromCtx(ctx); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}

// TxManager runs units of work inside a single database transaction
type TxManager struct {
	starter TxStarter
	timeout time.Duration
}

// NewTxManager creates a new TxManager
func NewTxManager(starter TxStarter) *TxManager {
	return &TxManager{starter: starter, timeout: 30 * time.Second}
}

// RunInTx executes fn within a transaction stored in the context.
// A call made while ctx already carries a transaction joins it: the outermost
// RunInTx owns commit and rollback.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	tx, err := m.starter.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	txCtx, state := withTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, hook := range state.afterCommit {
		hook()
	}
	return nil
}
