package object

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/propwire/propwire/internal/item"
	"github.com/propwire/propwire/internal/pubsub"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

func TestNewObjectHasIdentity(t *testing.T) {
	o := New(item.Contact, schema.V2)
	require.NotEmpty(t, o.ID())
	require.False(t, o.IsDirty())

	o2 := WithID("stable-id", item.Contact, schema.V2)
	require.Equal(t, "stable-id", o2.ID())
}

func TestCommitSuccessClearsChangeLog(t *testing.T) {
	o := New(item.Contact, schema.V2)
	require.NoError(t, o.Bag().Set(item.DisplayName, "Ada"))

	var applied []wire.UpdateOp
	ops, err := o.Commit(func(ops []wire.UpdateOp) error {
		applied = ops
		return nil
	})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, applied, ops)
	require.False(t, o.IsDirty())
}

func TestCommitFailureKeepsChangeLog(t *testing.T) {
	o := New(item.Contact, schema.V2)
	require.NoError(t, o.Bag().Set(item.DisplayName, "Ada"))

	boom := errors.New("transport down")
	_, err := o.Commit(func([]wire.UpdateOp) error { return boom })
	require.ErrorIs(t, err, boom)
	require.True(t, o.IsDirty())

	// retry succeeds and clears
	ops, err := o.Commit(func([]wire.UpdateOp) error { return nil })
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.False(t, o.IsDirty())
}

func TestCommitCleanObjectSkipsApply(t *testing.T) {
	o := New(item.Contact, schema.V2)

	called := false
	ops, err := o.Commit(func([]wire.UpdateOp) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.Empty(t, ops)
	require.False(t, called)
}

func TestCommitValidationFailureSkipsApply(t *testing.T) {
	o := New(item.Contact, schema.V2)
	// Sensitivity is CanSet only; updating it must fail before apply.
	require.NoError(t, o.Bag().Set(item.Sensitivity, "Personal"))

	called := false
	_, err := o.Commit(func([]wire.UpdateOp) error {
		called = true
		return nil
	})
	require.True(t, schema.IsValidation(err))
	require.False(t, called)
	require.True(t, o.IsDirty())
}

func TestCommitPublishesEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Events(ctx)

	o := WithID("evt-1", item.Contact, schema.V2)
	require.NoError(t, o.Bag().Set(item.DisplayName, "Ada"))
	_, err := o.Commit(func([]wire.UpdateOp) error { return nil })
	require.NoError(t, err)

	select {
	case ev := <-ch:
		require.Equal(t, pubsub.CommittedEvent, ev.Type)
		require.Equal(t, "evt-1", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("expected a commit event")
	}
}
