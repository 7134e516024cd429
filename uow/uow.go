// Package uow provides the unit-of-work abstraction shared by the request
// pipeline and the outbox store. A unit of work owns at most one database
// transaction at a time; all writes made through DB() between Begin and
// Commit land in that transaction and are committed or rolled back together.
package uow

import (
	"context"
	"sync"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
)

// UnitOfWork manages a transaction boundary over a single database handle.
//
// DB returns the handle queries should run against: the open transaction
// when one is active, the raw database otherwise. This lets the same store
// code run both inside and outside an explicit transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	InTransaction() bool
	DB() bun.IDB
}

// BunUnitOfWork implements UnitOfWork on top of a bun database.
// It is safe for use by a single request flow; the internal mutex only
// protects against racy Begin/Commit misuse, not for sharing one unit of
// work across concurrent requests.
type BunUnitOfWork struct {
	db *bun.DB

	mu sync.Mutex
	tx *bun.Tx
}

// New creates a UnitOfWork over the given bun database.
func New(db *bun.DB) *BunUnitOfWork {
	return &BunUnitOfWork{db: db}
}

// Begin opens a new transaction. It fails if one is already active.
func (u *BunUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx != nil {
		return errx.New("[uow]: transaction already active")
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return errx.Wrap(err)
	}
	u.tx = &tx
	return nil
}

// Commit commits the active transaction.
func (u *BunUnitOfWork) Commit(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx == nil {
		return errx.New("[uow]: no active transaction to commit")
	}

	err := u.tx.Commit()
	u.tx = nil
	if err != nil {
		return errx.Wrap(err)
	}
	return nil
}

// Rollback aborts the active transaction. Rolling back without an active
// transaction is a no-op so error paths can call it unconditionally.
func (u *BunUnitOfWork) Rollback(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback()
	u.tx = nil
	if err != nil {
		return errx.Wrap(err)
	}
	return nil
}

// InTransaction reports whether a transaction is currently active.
func (u *BunUnitOfWork) InTransaction() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tx != nil
}

// DB returns the active transaction when present, the database otherwise.
func (u *BunUnitOfWork) DB() bun.IDB {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.tx != nil {
		return u.tx
	}
	return u.db
}
