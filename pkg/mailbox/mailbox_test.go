// Copyright 2025 The actor-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mailbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundedFIFO(t *testing.T) {
	mb := NewBounded(10, Fail)
	for i := 0; i < 10; i++ {
		require.NoError(t, mb.Enqueue(Envelope{Message: i}))
	}
	for i := 0; i < 10; i++ {
		env, err := mb.Dequeue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, env.Message)
	}
}

func TestBoundedFailPolicy(t *testing.T) {
	mb := NewBounded(1, Fail)
	require.NoError(t, mb.Enqueue(Envelope{Message: "first"}))
	err := mb.Enqueue(Envelope{Message: "second"})
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 1, mb.Len())
}

func TestBoundedDropPolicy(t *testing.T) {
	mb := NewBounded(1, DropNewest)
	require.NoError(t, mb.Enqueue(Envelope{Message: "first"}))
	err := mb.Enqueue(Envelope{Message: "second"})
	assert.ErrorIs(t, err, ErrDropped)

	// The first message survives, the dropped one is gone.
	env, ok := mb.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "first", env.Message)
	_, ok = mb.TryDequeue()
	assert.False(t, ok)
}

func TestBoundedBlockPolicy(t *testing.T) {
	mb := NewBounded(1, Block)
	require.NoError(t, mb.Enqueue(Envelope{Message: "first"}))

	sendComplete := make(chan struct{})
	go func() {
		// This enqueue should block until a dequeue happens.
		_ = mb.Enqueue(Envelope{Message: "second"})
		close(sendComplete)
	}()

	select {
	case <-sendComplete:
		t.Fatal("Enqueue did not block on a full mailbox")
	case <-time.After(50 * time.Millisecond):
	}

	env, err := mb.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", env.Message)

	select {
	case <-sendComplete:
	case <-time.After(time.Second):
		t.Fatal("Enqueue did not complete after a dequeue freed space")
	}
}

func TestBoundedDequeueContextCancellation(t *testing.T) {
	mb := NewBounded(1, Block)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mb.Dequeue(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestBoundedClose(t *testing.T) {
	mb := NewBounded(2, Block)
	require.NoError(t, mb.Enqueue(Envelope{Message: "queued"}))
	mb.Close()

	assert.ErrorIs(t, mb.Enqueue(Envelope{Message: "late"}), ErrClosed)

	// Already-queued envelopes stay readable for draining.
	env, ok := mb.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "queued", env.Message)
}

func TestBoundedCloseUnblocksSender(t *testing.T) {
	mb := NewBounded(1, Block)
	require.NoError(t, mb.Enqueue(Envelope{Message: "first"}))

	errCh := make(chan error, 1)
	go func() {
		errCh <- mb.Enqueue(Envelope{Message: "second"})
	}()
	time.Sleep(20 * time.Millisecond)
	mb.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked sender was not released by Close")
	}
}

func TestUnboundedNeverBlocks(t *testing.T) {
	mb := NewUnbounded()
	defer mb.Close()

	for i := 0; i < 10000; i++ {
		require.NoError(t, mb.Enqueue(Envelope{Message: i}))
	}

	for i := 0; i < 10000; i++ {
		env, err := mb.Dequeue(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, env.Message)
	}
}

func TestUnboundedLen(t *testing.T) {
	mb := NewUnbounded()
	defer mb.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, mb.Enqueue(Envelope{Message: i}))
	}
	assert.Eventually(t, func() bool { return mb.Len() == 100 },
		time.Second, 5*time.Millisecond)
}

func TestUnboundedCloseDrains(t *testing.T) {
	mb := NewUnbounded()
	for i := 0; i < 5; i++ {
		require.NoError(t, mb.Enqueue(Envelope{Message: i}))
	}
	mb.Close()

	assert.ErrorIs(t, mb.Enqueue(Envelope{Message: "late"}), ErrClosed)

	// Queued envelopes drain in order, then the channel closes.
	got := 0
	for env := range mb.Chan() {
		assert.Equal(t, got, env.Message)
		got++
	}
	assert.Equal(t, 5, got)
}

func TestUnboundedDequeueContextCancellation(t *testing.T) {
	mb := NewUnbounded()
	defer mb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := mb.Dequeue(ctx)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "block", Block.String())
	assert.Equal(t, "drop-newest", DropNewest.String())
	assert.Equal(t, "fail", Fail.String())
}
