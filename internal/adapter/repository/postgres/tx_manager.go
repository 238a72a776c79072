package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/transferhub/internal/infrastructure/postgres/generated"
	"github.com/iho/transferhub/internal/usecase"
)

// errForeignTx is returned when a repository receives a transaction another manager opened.
var errForeignTx = errors.New("transaction was not opened by the postgres TxManager")

type beginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	pool             beginner
	statementTimeout time.Duration
}

// TxOption configures a TxManager.
type TxOption func(*TxManager)

// WithStatementTimeout caps every statement run inside transactions the manager opens.
func WithStatementTimeout(d time.Duration) TxOption {
	return func(m *TxManager) {
		m.statementTimeout = d
	}
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool, opts ...TxOption) *TxManager {
	return newTxManager(pool, opts...)
}

func newTxManager(pool beginner, opts ...TxOption) *TxManager {
	m := &TxManager{pool: pool}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	if m.statementTimeout > 0 {
		// SET does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", m.statementTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set statement timeout: %w", err)
		}
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction. Rolling back a committed transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// queriesIn binds the generated queries to tx.
func queriesIn(tx usecase.Transaction) (*generated.Queries, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, errForeignTx
	}
	return generated.New(t.tx), nil
}
