package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearpool/ledger"
	"gearpool/models"
)

func TestMemStoreAtomicRollback(t *testing.T) {
	store := ledger.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.CreateGear(ctx, &models.Gear{
		ID: "g1", Name: "Tent", TotalQuantity: 5, AvailableCount: 5,
	}))

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(tx ledger.Store) error {
		if err := tx.AdjustAvailable(ctx, "g1", -2); err != nil {
			return err
		}
		if err := tx.CreateRental(ctx, &models.Rental{
			ID: "r1", BorrowerID: 1, IssuerID: 2, GearID: "g1",
			Quantity: 2, DueAt: time.Now().Add(time.Hour), Event: "x",
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	g, err := store.GetGear(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 5, g.AvailableCount, "counter change rolled back")

	r, err := store.GetRental(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, r, "inserted row rolled back")
}

func TestMemStoreAtomicCommit(t *testing.T) {
	store := ledger.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.CreateGear(ctx, &models.Gear{
		ID: "g1", Name: "Tent", TotalQuantity: 5, AvailableCount: 5,
	}))

	err := store.Atomic(ctx, func(tx ledger.Store) error {
		return tx.AdjustAvailable(ctx, "g1", -3)
	})
	require.NoError(t, err)

	g, err := store.GetGear(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, g.AvailableCount)
}

func TestMemStoreAdjustAvailableGuard(t *testing.T) {
	store := ledger.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.CreateGear(ctx, &models.Gear{
		ID: "g1", Name: "Tent", TotalQuantity: 5, AvailableCount: 1,
	}))

	t.Run("cannot go below zero", func(t *testing.T) {
		err := store.AdjustAvailable(ctx, "g1", -2)
		require.ErrorIs(t, err, ledger.ErrConflict)
	})

	t.Run("cannot exceed total", func(t *testing.T) {
		err := store.AdjustAvailable(ctx, "g1", 5)
		require.ErrorIs(t, err, ledger.ErrConflict)
	})

	g, err := store.GetGear(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, g.AvailableCount, "failed adjustments leave the counter alone")
}

func TestMemStoreNestedAtomic(t *testing.T) {
	store := ledger.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.CreateGear(ctx, &models.Gear{
		ID: "g1", Name: "Tent", TotalQuantity: 5, AvailableCount: 5,
	}))

	// a nested Atomic joins the outer scope instead of deadlocking
	err := store.Atomic(ctx, func(tx ledger.Store) error {
		return tx.Atomic(ctx, func(inner ledger.Store) error {
			return inner.AdjustAvailable(ctx, "g1", -1)
		})
	})
	require.NoError(t, err)

	g, err := store.GetGear(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 4, g.AvailableCount)
}

func TestMemStoreCreateUserDuplicate(t *testing.T) {
	store := ledger.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, &models.User{TelegramID: 7, FullName: "A", Phone: "1"}))
	err := store.CreateUser(ctx, &models.User{TelegramID: 7, FullName: "B", Phone: "2"})
	require.ErrorIs(t, err, ledger.ErrConflict)

	u, err := store.FindUser(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "A", u.FullName, "first write wins")
}

func TestMemStoreMissingRows(t *testing.T) {
	store := ledger.NewMemStore()
	ctx := context.Background()

	g, err := store.GetGear(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, g)

	r, err := store.GetRental(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, r)

	ok, err := store.UserExists(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)
}
