package queue

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

func titled(titles ...string) []track.Track {
	tracks := make([]track.Track, len(titles))
	for i, title := range titles {
		tracks[i] = track.Track{ID: fmt.Sprintf("id-%d", i), Title: title}
	}
	return tracks
}

func titlesOf(q *Queue) []string {
	var titles []string
	for t := range q.All() {
		titles = append(titles, t.Title)
	}
	return titles
}

// assertInvariants checks the head/rear/size relationship and that traversal agrees with Len.
func assertInvariants(t *testing.T, q *Queue) {
	t.Helper()
	assert.Equal(t, q.head == nil, q.rear == nil, "head and rear must be empty together")
	assert.Equal(t, q.head == nil, q.size == 0, "empty head must mean zero size")
	if q.rear != nil {
		assert.Nil(t, q.rear.next, "rear must be the tail of the chain")
	}
	assert.Equal(t, q.Len(), len(slices.Collect(q.All())))
}

func TestQueue_FIFOOrder(t *testing.T) {
	tests := []struct {
		name   string
		titles []string
	}{
		{name: "single track", titles: []string{"a"}},
		{name: "several tracks", titles: []string{"a", "b", "c", "d"}},
		{name: "duplicate titles", titles: []string{"x", "x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			for _, trk := range titled(tt.titles...) {
				q.Enqueue(trk)
				assertInvariants(t, q)
			}

			var got []string
			for !q.IsEmpty() {
				trk, ok := q.Dequeue()
				require.True(t, ok)
				got = append(got, trk.Title)
				assertInvariants(t, q)
			}
			assert.Equal(t, tt.titles, got)
		})
	}
}

func TestQueue_InterleavedOperations(t *testing.T) {
	q := New()
	enqueued, dequeued := 0, 0
	var want []string

	for round := 0; round < 5; round++ {
		for i := 0; i <= round; i++ {
			title := fmt.Sprintf("r%d-%d", round, i)
			q.Enqueue(track.Track{Title: title})
			want = append(want, title)
			enqueued++
		}
		// drain a little less than was added
		for i := 0; i < round; i++ {
			trk, ok := q.Dequeue()
			require.True(t, ok)
			assert.Equal(t, want[0], trk.Title)
			want = want[1:]
			dequeued++
		}
		assertInvariants(t, q)
		assert.Equal(t, enqueued-dequeued, q.Len())
		assert.Equal(t, want, titlesOf(q))
	}
}

func TestQueue_RefillAfterEmpty(t *testing.T) {
	q := New()
	for cycle := 0; cycle < 3; cycle++ {
		for _, trk := range titled("a", "b") {
			q.Enqueue(trk)
		}
		first, ok := q.Dequeue()
		require.True(t, ok)
		second, ok := q.Dequeue()
		require.True(t, ok)

		assert.Equal(t, "a", first.Title)
		assert.Equal(t, "b", second.Title)
		assert.True(t, q.IsEmpty())
		assertInvariants(t, q)
	}
}

func TestQueue_DequeueEmptyIsIdempotent(t *testing.T) {
	q := New()
	for i := 0; i < 3; i++ {
		trk, ok := q.Dequeue()
		assert.False(t, ok)
		assert.Equal(t, track.Track{}, trk)
		assert.True(t, q.IsEmpty())
		assert.Equal(t, 0, q.Len())
		assertInvariants(t, q)
	}

	q.Enqueue(track.Track{Title: "after"})
	trk, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "after", trk.Title)
}

func TestQueue_DuplicateTrack(t *testing.T) {
	q := New()
	trk := track.Track{ID: "same", Title: "Same"}
	q.Enqueue(trk)
	q.Enqueue(trk)

	first, ok := q.Dequeue()
	require.True(t, ok)
	second, ok := q.Dequeue()
	require.True(t, ok)

	assert.Equal(t, trk, first)
	assert.Equal(t, trk, second)
}

func TestQueue_AllIsRestartableAndReadOnly(t *testing.T) {
	q := New()
	for _, trk := range titled("a", "b", "c") {
		q.Enqueue(trk)
	}

	assert.Equal(t, []string{"a", "b", "c"}, titlesOf(q))
	assert.Equal(t, []string{"a", "b", "c"}, titlesOf(q))
	assert.Equal(t, 3, q.Len())

	// stopping early must not disturb the queue
	for trk := range q.All() {
		assert.Equal(t, "a", trk.Title)
		break
	}
	assert.Equal(t, []string{"a", "b", "c"}, titlesOf(q))
}

func TestQueue_AllOnEmpty(t *testing.T) {
	q := New()
	assert.Empty(t, slices.Collect(q.All()))
}

func TestQueue_DequeueUnlinksNode(t *testing.T) {
	q := New()
	for _, trk := range titled("a", "b") {
		q.Enqueue(trk)
	}
	oldHead := q.head

	_, ok := q.Dequeue()
	require.True(t, ok)
	assert.Nil(t, oldHead.next)
}

func TestQueue_LongChainTraversal(t *testing.T) {
	q := New()
	const n = 100000
	for i := 0; i < n; i++ {
		q.Enqueue(track.Track{Title: "t"})
	}

	count := 0
	for range q.All() {
		count++
	}
	assert.Equal(t, n, count)
}
