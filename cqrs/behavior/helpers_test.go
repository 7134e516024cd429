package behavior

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/deeplines/buildingblocks/cqrs"
	"github.com/deeplines/buildingblocks/logger"
)

func newMediator(behaviors ...cqrs.Behavior) *cqrs.Mediator {
	m := cqrs.NewMediator(cqrs.WithLogger(logger.NewNop()))
	for _, b := range behaviors {
		m.AddPipelineBehavior(b)
	}
	return m
}

// fakeUnitOfWork records transaction lifecycle calls.
type fakeUnitOfWork struct {
	active     bool
	begun      int
	committed  int
	rolledBack int
	beginErr   error
	commitErr  error
}

func (f *fakeUnitOfWork) Begin(context.Context) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.begun++
	f.active = true
	return nil
}

func (f *fakeUnitOfWork) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed++
	f.active = false
	return nil
}

func (f *fakeUnitOfWork) Rollback(context.Context) error {
	if f.active {
		f.rolledBack++
		f.active = false
	}
	return nil
}

func (f *fakeUnitOfWork) InTransaction() bool { return f.active }

func (f *fakeUnitOfWork) DB() bun.IDB { return nil }
