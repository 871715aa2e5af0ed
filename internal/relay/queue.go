package relay

import "sync"

// chunkQueue is an unbounded single-producer/single-consumer FIFO of byte
// chunks. The producer is the background input reader, the consumer the
// relay loop; nothing else touches it.
type chunkQueue struct {
	mu     sync.Mutex
	chunks [][]byte
}

func newChunkQueue() *chunkQueue {
	return &chunkQueue{}
}

// Push appends a chunk.
func (q *chunkQueue) Push(chunk []byte) {
	q.mu.Lock()
	q.chunks = append(q.chunks, chunk)
	q.mu.Unlock()
}

// Pop removes and returns the oldest chunk.
func (q *chunkQueue) Pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.chunks) == 0 {
		return nil, false
	}
	chunk := q.chunks[0]
	q.chunks = q.chunks[1:]
	return chunk, true
}

// Peek returns the oldest chunk without removing it.
func (q *chunkQueue) Peek() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.chunks) == 0 {
		return nil, false
	}
	return q.chunks[0], true
}

// Drop discards the oldest chunk.
func (q *chunkQueue) Drop() {
	q.mu.Lock()
	if len(q.chunks) > 0 {
		q.chunks = q.chunks[1:]
	}
	q.mu.Unlock()
}

// TrimFront discards the first n bytes of the oldest chunk, keeping the
// remainder at the head of the queue. Used after a partial write.
func (q *chunkQueue) TrimFront(n int) {
	q.mu.Lock()
	if len(q.chunks) > 0 {
		if n >= len(q.chunks[0]) {
			q.chunks = q.chunks[1:]
		} else {
			q.chunks[0] = q.chunks[0][n:]
		}
	}
	q.mu.Unlock()
}

// Len returns the number of queued chunks.
func (q *chunkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunks)
}
