package database

import (
	"context"
	"errors"
	"testing"

	"pgmanager/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	utils.SetLogger(zap.NewNop())
	m.Run()
}

func TestSagaUnitOfWork_CommitSkipsCompensations(t *testing.T) {
	var undone []string
	err := NewSagaUnitOfWork().Do(context.Background(), func(ctx context.Context, tx Tx) error {
		tx.OnRollback(func(context.Context) error { undone = append(undone, "a"); return nil })
		tx.OnRollback(func(context.Context) error { undone = append(undone, "b"); return nil })
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, undone)
}

func TestSagaUnitOfWork_RollbackRunsInReverse(t *testing.T) {
	boom := errors.New("room update failed")
	var undone []string
	err := NewSagaUnitOfWork().Do(context.Background(), func(ctx context.Context, tx Tx) error {
		tx.OnRollback(func(context.Context) error { undone = append(undone, "tenant"); return nil })
		tx.OnRollback(func(context.Context) error { undone = append(undone, "bed"); return nil })
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"bed", "tenant"}, undone)
}

func TestSagaUnitOfWork_CompensationErrorsAreJoined(t *testing.T) {
	boom := utils.Conflict("bed is no longer available")
	undoErr := errors.New("network down")
	ran := 0
	err := NewSagaUnitOfWork().Do(context.Background(), func(ctx context.Context, tx Tx) error {
		tx.OnRollback(func(context.Context) error { ran++; return nil })
		tx.OnRollback(func(context.Context) error { ran++; return undoErr })
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 2, ran)
	assert.ErrorIs(t, err, undoErr)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestSagaUnitOfWork_CompensatesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var sawErr error
	_ = NewSagaUnitOfWork().Do(ctx, func(ctx context.Context, tx Tx) error {
		tx.OnRollback(func(c context.Context) error { sawErr = c.Err(); return nil })
		cancel()
		return ctx.Err()
	})
	assert.NoError(t, sawErr)
}

func TestHelloReply_SupportsTransactions(t *testing.T) {
	assert.False(t, helloReply{}.supportsTransactions())
	assert.True(t, helloReply{SetName: "rs0"}.supportsTransactions())
	assert.True(t, helloReply{Msg: "isdbgrid"}.supportsTransactions())
}

func TestChooseUnitOfWork(t *testing.T) {
	assert.IsType(t, &MongoUnitOfWork{}, chooseUnitOfWork(true, true, nil))
	assert.IsType(t, &SagaUnitOfWork{}, chooseUnitOfWork(true, false, nil))
	assert.IsType(t, &SagaUnitOfWork{}, chooseUnitOfWork(false, true, nil))
}
