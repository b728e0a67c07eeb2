package database

import (
	"context"
	"errors"
	"fmt"

	"pgmanager/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.uber.org/zap"
)

// Tx is the handle passed to a unit of work body.
type Tx interface {
	// OnRollback registers a compensation for a write that already happened.
	// Compensations run in reverse order when the body fails and the store
	// cannot roll back by itself.
	OnRollback(fn func(ctx context.Context) error)
}

// UnitOfWork runs a group of writes that must all apply or none.
// Repository calls inside fn must use the ctx passed to fn.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// noopTx ignores compensations; the server transaction undoes the writes.
type noopTx struct{}

func (noopTx) OnRollback(func(ctx context.Context) error) {}

// MongoUnitOfWork runs the body inside a multi-document transaction.
// It needs a replica set or sharded cluster.
type MongoUnitOfWork struct {
	client *mongo.Client
}

func NewMongoUnitOfWork(client *mongo.Client) *MongoUnitOfWork {
	return &MongoUnitOfWork{client: client}
}

func (u *MongoUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sess, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, noopTx{})
	}, txnOpts)
	return err
}

// SagaUnitOfWork runs the body directly and undoes completed steps through
// their registered compensations when a later step fails.
type SagaUnitOfWork struct{}

func NewSagaUnitOfWork() *SagaUnitOfWork { return &SagaUnitOfWork{} }

type sagaTx struct {
	compensations []func(ctx context.Context) error
}

func (t *sagaTx) OnRollback(fn func(ctx context.Context) error) {
	t.compensations = append(t.compensations, fn)
}

func (u *SagaUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &sagaTx{}
	err := fn(ctx, tx)
	if err == nil {
		return nil
	}

	// Compensate even when the caller's context is already cancelled.
	rbCtx := context.WithoutCancel(ctx)
	var rbErrs []error
	for i := len(tx.compensations) - 1; i >= 0; i-- {
		if cerr := tx.compensations[i](rbCtx); cerr != nil {
			utils.GetLogger().Error("compensation failed", zap.Int("step", i), zap.Error(cerr))
			rbErrs = append(rbErrs, cerr)
		}
	}
	if len(rbErrs) > 0 {
		return errors.Join(append([]error{err}, rbErrs...)...)
	}
	return err
}
