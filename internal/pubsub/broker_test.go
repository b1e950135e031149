package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBrokerDelivers(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := b.Subscribe(ctx)

	b.Publish(EntryEvent, "hello")

	select {
	case ev := <-ch:
		require.Equal(t, EntryEvent, ev.Type)
		require.Equal(t, "hello", ev.Payload)
		require.WithinDuration(t, time.Now(), ev.At, time.Second)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestBrokerContextCancelClosesChannel(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	select {
	case _, open := <-ch:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed on cancel")
	}
}

func TestBrokerCloseIsIdempotent(t *testing.T) {
	b := NewBroker[int]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	_, open := <-ch
	require.False(t, open)
	require.Equal(t, 0, b.Subscribers())

	// publishing and subscribing after close are no-ops
	b.Publish(EntryEvent, 1)
	ch2 := b.Subscribe(context.Background())
	_, open = <-ch2
	require.False(t, open)
}

func TestBrokerSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	_ = b.Subscribe(context.Background())
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish(EntryEvent, i)
	}
	// reaching here without deadlock is the assertion
	require.Equal(t, 1, b.Subscribers())
}
