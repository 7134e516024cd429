package behavior

import (
	"context"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

// Transaction wraps handler execution in the request's unit of work.
// It activates only for requests that set RequiresTransaction and carry
// a unit of work; everything else passes through.
type Transaction struct {
	autoCommit bool
	logger     logger.Logger
}

// NewTransaction creates the transaction behavior. With autoCommit the
// transaction is committed after a successful handler run; otherwise
// the caller owns the commit.
func NewTransaction(autoCommit bool, log logger.Logger) *Transaction {
	return &Transaction{
		autoCommit: autoCommit,
		logger:     log.Named("cqrs.pipeline.transaction"),
	}
}

func (b *Transaction) Handle(ctx context.Context, req cqrs.Request, next cqrs.Next) (any, error) {
	rc := req.Context()
	if rc == nil || !rc.RequiresTransaction || rc.UnitOfWork == nil {
		return next(ctx)
	}

	u := rc.UnitOfWork
	began := false
	if !u.InTransaction() {
		if err := u.Begin(ctx); err != nil {
			return nil, &cqrs.TransactionError{RequestType: req.Name(), Operation: "begin", Err: err}
		}
		began = true
	}

	result, err := next(ctx)
	if err != nil {
		if !began {
			// An enclosing dispatch owns this transaction.
			return nil, err
		}
		if rbErr := u.Rollback(ctx); rbErr != nil {
			b.logger.WithContext(ctx).
				With("request_name", req.Name()).
				With("rollback_error", rbErr).
				Error("transaction rollback failed")
		}
		return nil, &cqrs.TransactionError{RequestType: req.Name(), Operation: "rollback", Err: err}
	}

	if began && b.autoCommit {
		if err := u.Commit(ctx); err != nil {
			if rbErr := u.Rollback(ctx); rbErr != nil {
				b.logger.WithContext(ctx).
					With("request_name", req.Name()).
					With("rollback_error", rbErr).
					Error("transaction rollback failed")
			}
			return nil, &cqrs.TransactionError{RequestType: req.Name(), Operation: "commit", Err: err}
		}
	}

	return result, nil
}
