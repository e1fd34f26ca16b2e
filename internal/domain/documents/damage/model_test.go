package damage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
)

func TestLogValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid internal entry", func(t *testing.T) {
		log := NewInternal(id.New(), "Glucose Biscuit", 5, "crushed cartons")
		assert.NoError(t, log.Validate(ctx))
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		log := NewInternal(id.New(), "Glucose Biscuit", 0, "crushed cartons")
		assert.Error(t, log.Validate(ctx))
	})

	t.Run("missing reason rejected", func(t *testing.T) {
		log := NewInternal(id.New(), "Glucose Biscuit", 5, "")
		assert.Error(t, log.Validate(ctx))
	})

	t.Run("return entry needs source reference", func(t *testing.T) {
		log := NewFromReturn(id.New(), id.New(), "Glucose Biscuit", 5, "damaged")
		assert.NoError(t, log.Validate(ctx))

		log.SourceID = nil
		assert.Error(t, log.Validate(ctx))
	})
}

func TestCanPost_ReturnEntriesRefused(t *testing.T) {
	ctx := context.Background()

	internal := NewInternal(id.New(), "Glucose Biscuit", 5, "crushed")
	assert.NoError(t, internal.CanPost(ctx))

	fromReturn := NewFromReturn(id.New(), id.New(), "Glucose Biscuit", 5, "damaged")
	assert.Error(t, fromReturn.CanPost(ctx), "return-sourced entries own no movements")
}

func TestGenerateMovements_MatchedPair(t *testing.T) {
	ctx := context.Background()
	productID := id.New()
	log := NewInternal(productID, "Glucose Biscuit", 5, "water damage")

	set, err := log.GenerateMovements(ctx)
	require.NoError(t, err)
	require.NoError(t, set.Validate())
	require.Len(t, set.Inventory, 2)

	out, in := set.Inventory[0], set.Inventory[1]
	assert.Equal(t, entity.PoolGood, out.Pool)
	assert.Equal(t, int64(-5), out.QtyDelta.Int64())
	assert.Equal(t, entity.PoolDamaged, in.Pool)
	assert.Equal(t, int64(5), in.QtyDelta.Int64())

	// Matched pair: same product, same recorder, zero net quantity
	assert.Equal(t, out.ProductID, in.ProductID)
	assert.Equal(t, out.RecorderID, in.RecorderID)
	assert.NotEqual(t, out.LineID, in.LineID)
	assert.Equal(t, int64(0), out.QtyDelta.Int64()+in.QtyDelta.Int64())
}
