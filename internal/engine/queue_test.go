package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuedLabels(q *trainingQueue) []float64 {
	snapshot, _ := q.Snapshot()
	labels := make([]float64, len(snapshot))
	for i, ex := range snapshot {
		labels[i] = ex.Label
	}
	return labels
}

func TestQueueAddAndSnapshotOrder(t *testing.T) {
	q := newTrainingQueue(8)
	for i := 0; i < 5; i++ {
		q.Add(Example{Features: []float64{float64(i)}, Label: float64(i)})
	}

	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, queuedLabels(q))
}

func TestQueueEvictsOldestWhenFull(t *testing.T) {
	q := newTrainingQueue(3)
	for i := 0; i < 5; i++ {
		q.Add(Example{Label: float64(i)})
	}

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []float64{2, 3, 4}, queuedLabels(q))
}

func TestQueueTail(t *testing.T) {
	q := newTrainingQueue(10)
	for i := 0; i < 6; i++ {
		q.Add(Example{Label: float64(i)})
	}

	tail := q.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, 4.0, tail[0].Label)
	assert.Equal(t, 5.0, tail[1].Label)

	// Asking for more than is queued returns everything.
	assert.Len(t, q.Tail(100), 6)
}

func TestDrainThroughKeepsLateArrivals(t *testing.T) {
	q := newTrainingQueue(10)
	for i := 0; i < 4; i++ {
		q.Add(Example{Label: float64(i)})
	}

	snapshot, upto := q.Snapshot()
	require.Len(t, snapshot, 4)

	// Examples submitted while training runs on the snapshot.
	q.Add(Example{Label: 100})
	q.Add(Example{Label: 101})

	q.DrainThrough(upto)
	assert.Equal(t, []float64{100, 101}, queuedLabels(q))
}

func TestDrainThroughAfterEviction(t *testing.T) {
	q := newTrainingQueue(4)
	for i := 0; i < 4; i++ {
		q.Add(Example{Label: float64(i)})
	}

	_, upto := q.Snapshot()

	// Three more arrivals evict examples 0..2 from the snapshot's range.
	for i := 4; i < 7; i++ {
		q.Add(Example{Label: float64(i)})
	}

	// Only example 3 is still both queued and covered by the snapshot.
	q.DrainThrough(upto)
	assert.Equal(t, []float64{4, 5, 6}, queuedLabels(q))
}

func TestDrainThroughIsIdempotent(t *testing.T) {
	q := newTrainingQueue(8)
	for i := 0; i < 3; i++ {
		q.Add(Example{Label: float64(i)})
	}

	_, upto := q.Snapshot()
	q.DrainThrough(upto)
	q.DrainThrough(upto)

	assert.Zero(t, q.Len())

	q.Add(Example{Label: 9})
	assert.Equal(t, []float64{9}, queuedLabels(q))
}
