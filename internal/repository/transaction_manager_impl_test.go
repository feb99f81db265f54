package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnst/pgq-consumer/internal/repository"
)

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{db: &fakeDB{}}
	tm := repository.NewTransactionManagerImpl(&fakeBeginner{tx: tx})

	boom := errors.New("insert failed")
	err := tm.WithTransaction(context.Background(), func(context.Context) error { return boom })

	require.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestWithTransaction_BeginError(t *testing.T) {
	t.Parallel()

	boom := errors.New("pool closed")
	tm := repository.NewTransactionManagerImpl(&fakeBeginner{err: boom})

	called := false
	err := tm.WithTransaction(context.Background(), func(context.Context) error {
		called = true

		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestWithTransaction_CommitError(t *testing.T) {
	t.Parallel()

	boom := errors.New("serialization failure")
	tx := &fakeTx{db: &fakeDB{}, commitErr: boom}
	tm := repository.NewTransactionManagerImpl(&fakeBeginner{tx: tx})

	err := tm.WithTransaction(context.Background(), func(context.Context) error { return nil })

	require.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
}
