package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
)

func TestChangeStatus_HappyPath(t *testing.T) {
	ctx := context.Background()
	o := New(id.New())

	for _, target := range []Status{StatusApproved, StatusDispatched, StatusDelivered} {
		require.NoError(t, o.ChangeStatus(ctx, target))
		assert.Equal(t, target, o.Status)
	}
}

func TestChangeStatus_InvalidTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		from   Status
		target Status
	}{
		{"pending cannot be delivered", StatusPending, StatusDelivered},
		{"pending cannot be dispatched", StatusPending, StatusDispatched},
		{"delivered cannot be cancelled", StatusDelivered, StatusCancelled},
		{"cancelled is terminal", StatusCancelled, StatusApproved},
		{"returned is terminal", StatusReturned, StatusDelivered},
		{"pending cannot take returns", StatusPending, StatusReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(id.New())
			o.Status = tt.from

			err := o.ChangeStatus(ctx, tt.target)
			require.Error(t, err)

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidStatusChange, appErr.Code)
			assert.Equal(t, tt.from, o.Status, "status unchanged after rejection")
		})
	}
}

func TestChangeStatus_Cancellation(t *testing.T) {
	ctx := context.Background()

	o := New(id.New())
	require.NoError(t, o.ChangeStatus(ctx, StatusCancelled))

	o = New(id.New())
	require.NoError(t, o.ChangeStatus(ctx, StatusApproved))
	require.NoError(t, o.ChangeStatus(ctx, StatusCancelled))
}

func TestChangeStatus_ReturnFlow(t *testing.T) {
	ctx := context.Background()
	o := New(id.New())
	o.Status = StatusDelivered

	require.NoError(t, o.ChangeStatus(ctx, StatusPartiallyReturned))
	require.NoError(t, o.ChangeStatus(ctx, StatusReturned))
}

func TestChangeStatus_ReturnsBeforeDelivery(t *testing.T) {
	ctx := context.Background()

	for _, from := range []Status{StatusApproved, StatusDispatched} {
		o := New(id.New())
		o.Status = from
		require.NoError(t, o.ChangeStatus(ctx, StatusPartiallyReturned), "partial return from %s", from)

		o = New(id.New())
		o.Status = from
		require.NoError(t, o.ChangeStatus(ctx, StatusReturned), "full return from %s", from)
	}
}

func TestChangeStatus_SameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	o := New(id.New())
	version := o.Version

	require.NoError(t, o.ChangeStatus(ctx, StatusPending))
	assert.Equal(t, version, o.Version)
}

func TestIsReturnable(t *testing.T) {
	o := New(id.New())
	assert.False(t, o.IsReturnable())

	for _, s := range []Status{StatusApproved, StatusDispatched, StatusDelivered, StatusPartiallyReturned} {
		o.Status = s
		assert.True(t, o.IsReturnable(), "status %s", s)
	}

	o.Status = StatusReturned
	assert.False(t, o.IsReturnable())

	o.Status = StatusCancelled
	assert.False(t, o.IsReturnable())
}
