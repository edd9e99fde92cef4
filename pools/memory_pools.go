// Package pools provides memory pooling to reduce garbage collection
// overhead on the hot path of chunked CSV processing: one buffer per
// written record, one map per parsed row.
package pools

import (
	"bytes"
	"sync"
)

// BufferPool provides a pool of byte buffers sized for RFC 4180 record
// assembly.
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified initial size
func NewBufferPool(initialSize int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, initialSize))
			},
		},
		size: initialSize,
	}
}

// Get retrieves a buffer from the pool
func (p *BufferPool) Get() *bytes.Buffer {
	buf := p.pool.Get().(*bytes.Buffer)
	buf.Reset() // Clear the buffer before use
	return buf
}

// Put returns a buffer to the pool for reuse
func (p *BufferPool) Put(buf *bytes.Buffer) {
	// Only put back buffers that aren't too large to prevent memory bloat
	if buf.Cap() <= p.size*4 { // Allow up to 4x the initial size
		p.pool.Put(buf)
	}
}

// MapPool provides a pool of string maps for CSV row parsing. GTFS rows
// are reused once per chunk: filled by the reader, read by the
// predicate and collector, then returned.
type MapPool struct {
	pool sync.Pool
}

// NewMapPool creates a new map pool
func NewMapPool() *MapPool {
	return &MapPool{
		pool: sync.Pool{
			New: func() interface{} {
				return make(map[string]string)
			},
		},
	}
}

// Get retrieves a map from the pool
func (p *MapPool) Get() map[string]string {
	m := p.pool.Get().(map[string]string)
	for k := range m {
		delete(m, k)
	}
	return m
}

// Put returns a map to the pool for reuse
func (p *MapPool) Put(m map[string]string) {
	if len(m) <= 100 { // reasonable limit for a GTFS CSV row
		p.pool.Put(m)
	}
}
