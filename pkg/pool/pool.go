// Object pools for reducing GC pressure in hot paths
//
// Provides reusable object pools for the types churned while parsing and
// re-emitting large G-code files:
// - String maps (for instruction word arguments)
// - Byte buffers (for formatting output lines)
//
// Usage:
//
//	args := pool.GetArgsMap()
//	defer pool.PutArgsMap(args)
//	// use args...
//
// Copyright (C) 2026 Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package pool

import (
	"sync"
)

// ArgsMap pool - for instruction argument maps
var argsMapPool = sync.Pool{
	New: func() any {
		return make(map[byte]string, 8) // X/Y/Z/E/F plus a few spares
	},
}

// GetArgsMap gets an argument map from the pool
func GetArgsMap() map[byte]string {
	return argsMapPool.Get().(map[byte]string)
}

// PutArgsMap returns an argument map to the pool after clearing it
func PutArgsMap(m map[byte]string) {
	if m == nil {
		return
	}
	clear(m)
	argsMapPool.Put(m)
}

// ByteBuffer pool - for output line formatting
type ByteBuffer struct {
	buf []byte
}

var byteBufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{
			buf: make([]byte, 0, 64), // Common line size
		}
	},
}

// GetByteBuffer gets a byte buffer from the pool
func GetByteBuffer() *ByteBuffer {
	b := byteBufferPool.Get().(*ByteBuffer)
	b.buf = b.buf[:0] // Reset length but keep capacity
	return b
}

// PutByteBuffer returns a byte buffer to the pool
func PutByteBuffer(b *ByteBuffer) {
	if b == nil {
		return
	}
	// Don't pool oversized buffers (> 4KB)
	if cap(b.buf) > 4096 {
		return
	}
	byteBufferPool.Put(b)
}

// Bytes returns the buffer's byte slice
func (b *ByteBuffer) Bytes() []byte {
	return b.buf
}

// String returns the buffer contents as a string
func (b *ByteBuffer) String() string {
	return string(b.buf)
}

// Write appends bytes to the buffer
func (b *ByteBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte
func (b *ByteBuffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// WriteString appends a string
func (b *ByteBuffer) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// Len returns the buffer length
func (b *ByteBuffer) Len() int {
	return len(b.buf)
}

// Reset clears the buffer
func (b *ByteBuffer) Reset() {
	b.buf = b.buf[:0]
}
