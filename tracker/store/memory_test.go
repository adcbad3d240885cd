package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/drinklog/tracker"
	"github.com/warp/drinklog/tracker/store"
	"github.com/warp/drinklog/tracker/storetest"
)

func TestMemory_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) tracker.Store {
		return store.NewMemory()
	})
}

func TestMemory_FindReturnsCopies(t *testing.T) {
	// GIVEN: One stored entry
	// WHEN: The caller mutates the returned slice
	// THEN: The store is unaffected

	ctx := context.Background()
	s := store.NewMemory()
	d := tracker.MustParseDate("2024-01-01")
	_, err := s.Insert(ctx, d, "water", 16)
	require.NoError(t, err)

	got, err := s.FindByDate(ctx, d)
	require.NoError(t, err)
	got[0].Quantity = 999

	again, err := s.FindByDate(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 16.0, again[0].Quantity)
}
