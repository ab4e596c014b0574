package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grovetools/forksync/pkg/models"
)

func TestQueueDrainOrder(t *testing.T) {
	q := NewQueue()
	assert.Nil(t, q.Drain())

	for i := 0; i < 3; i++ {
		q.Send(models.StatusUpdate{Index: i})
	}
	assert.Equal(t, 3, q.Len())

	events := q.Drain()
	assert.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i, ev.(models.StatusUpdate).Index)
	}
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Drain())
}

func TestQueueSendNeverBlocks(t *testing.T) {
	q := NewQueue()
	const senders, perSender = 8, 500

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				q.Send(models.StatusUpdate{Index: s, Status: models.SyncedCount(i)})
			}
		}(s)
	}
	wg.Wait()

	events := q.Drain()
	assert.Len(t, events, senders*perSender)

	// Each sender's events stay in its own send order.
	next := make([]int, senders)
	for _, ev := range events {
		su := ev.(models.StatusUpdate)
		assert.Equal(t, next[su.Index], su.Status.Count)
		next[su.Index]++
	}
}

func TestQueueNotifyCoalesces(t *testing.T) {
	q := NewQueue()
	q.Send(models.RefreshFailed{Reason: "a"})
	q.Send(models.RefreshFailed{Reason: "b"})

	select {
	case <-q.Notify():
	default:
		t.Fatal("expected a pending notification")
	}
	select {
	case <-q.Notify():
		t.Fatal("notifications should coalesce")
	default:
	}
	assert.Len(t, q.Drain(), 2)
}
