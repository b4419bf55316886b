// Package queue provides the FIFO track queue used by the playback controller.
package queue

import (
	"iter"

	"github.com/hotafrosauce1/Soundcloud-Queue/internal/domain/track"
)

// node is one link of the queue chain. The next link is owned exclusively.
type node struct {
	track track.Track
	next  *node
}

// Queue is a singly-linked FIFO of tracks awaiting playback.
// It is only accessed from the controller's single-threaded loop, so it does no locking.
//
// Invariants: head == nil iff rear == nil iff size == 0, and rear.next is always nil.
type Queue struct {
	head *node
	rear *node
	size int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends a track at the rear in O(1).
func (q *Queue) Enqueue(t track.Track) {
	n := &node{track: t}
	if q.rear == nil {
		q.head = n
		q.rear = n
	} else {
		q.rear.next = n
		q.rear = n
	}
	q.size++
}

// Dequeue removes and returns the front track in O(1).
// The boolean is false when the queue is empty; an empty queue is left untouched.
func (q *Queue) Dequeue() (track.Track, bool) {
	if q.head == nil {
		return track.Track{}, false
	}
	n := q.head
	q.head = n.next
	if q.head == nil {
		q.rear = nil
	}
	n.next = nil
	q.size--
	return n.track, true
}

// IsEmpty returns true if no track is queued.
func (q *Queue) IsEmpty() bool {
	return q.head == nil
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return q.size
}

// All returns an iterator over the queued tracks from front to rear.
// The iterator does not mutate the queue and can be ranged over repeatedly.
func (q *Queue) All() iter.Seq[track.Track] {
	return func(yield func(track.Track) bool) {
		for n := q.head; n != nil; n = n.next {
			if !yield(n.track) {
				return
			}
		}
	}
}
