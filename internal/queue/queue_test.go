package queue

import (
	"testing"

	"github.com/salmatx/bmsnode/internal/sample"
	"github.com/stretchr/testify/require"
)

func TestFIFOOrderSingleProducerConsumer(t *testing.T) {
	q := New()
	for i := 0; i < 50; i++ {
		s := sample.Sample{Timestamp: uint64(i)}
		require.True(t, q.Push(&s))
	}

	for i := 0; i < 20; i++ {
		var out sample.Sample
		require.True(t, q.Pop(&out))
		require.Equal(t, uint64(i), out.Timestamp)
	}

	for i := 50; i < 70; i++ {
		s := sample.Sample{Timestamp: uint64(i)}
		require.True(t, q.Push(&s))
	}

	for i := 20; i < 70; i++ {
		var out sample.Sample
		require.True(t, q.Pop(&out))
		require.Equal(t, uint64(i), out.Timestamp)
	}

	var out sample.Sample
	require.False(t, q.Pop(&out))
}

func TestBoundedCapacity(t *testing.T) {
	q := New()
	for i := 0; i < Capacity; i++ {
		s := sample.Sample{Timestamp: uint64(i)}
		require.True(t, q.Push(&s), "push %d should succeed", i)
	}

	overflow := sample.Sample{Timestamp: 99999}
	require.False(t, q.Push(&overflow), "601st push must fail")
	require.Equal(t, 0, q.FreeSlots())
	require.Equal(t, Capacity, q.ItemsWaiting())

	var out sample.Sample
	require.True(t, q.Pop(&out))
	require.Equal(t, uint64(0), out.Timestamp)
	require.True(t, q.Push(&overflow), "push after one pop should succeed")
}

func TestPopOnEmptyQueue(t *testing.T) {
	q := New()
	var out sample.Sample
	require.False(t, q.Pop(&out))
}

func TestZeroedAfterPop(t *testing.T) {
	q := New()
	s := sample.Sample{Timestamp: 7, PackV: 18.5}
	require.True(t, q.Push(&s))
	var out sample.Sample
	require.True(t, q.Pop(&out))
	require.Equal(t, uint64(7), out.Timestamp)
	require.Equal(t, sample.Sample{}, q.buffer[0])
}
