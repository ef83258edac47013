// Package ioutil provides pooled rendering buffers.
package ioutil

import (
	"io"
	"strings"
	"sync"

	"braces.dev/errtrace"
)

// Buffer is a growable byte buffer with random access and rewind support.
// It is used to render addresses without intermediate string allocations.
type Buffer struct {
	b []byte
}

// Write implements [io.Writer]. It never fails.
func (buf *Buffer) Write(p []byte) (int, error) {
	buf.b = append(buf.b, p...)
	return len(p), nil
}

// WriteString implements [io.StringWriter]. It never fails.
func (buf *Buffer) WriteString(s string) (int, error) {
	buf.b = append(buf.b, s...)
	return len(s), nil
}

// WriteByte implements [io.ByteWriter]. It never fails.
func (buf *Buffer) WriteByte(c byte) error {
	buf.b = append(buf.b, c)
	return nil
}

// Len returns the number of written bytes.
func (buf *Buffer) Len() int { return len(buf.b) }

// At returns the byte at position i.
func (buf *Buffer) At(i int) byte { return buf.b[i] }

// Bytes returns the written bytes. The slice is valid until the next buffer modification.
func (buf *Buffer) Bytes() []byte { return buf.b }

// String returns the written bytes as string.
func (buf *Buffer) String() string { return string(buf.b) }

// Rewind truncates the buffer back to position pos.
func (buf *Buffer) Rewind(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos < len(buf.b) {
		buf.b = buf.b[:pos]
	}
}

// Insert shifts bytes starting from pos to the right and writes s at pos.
func (buf *Buffer) Insert(pos int, s string) {
	if pos >= len(buf.b) {
		buf.b = append(buf.b, s...)
		return
	}
	n := len(buf.b)
	buf.b = append(buf.b, s...)
	copy(buf.b[pos+len(s):], buf.b[pos:n])
	copy(buf.b[pos:], s)
}

// IndexAny returns the index of the first byte from chars at or after position from, or -1.
func (buf *Buffer) IndexAny(from int, chars string) int {
	if from < 0 {
		from = 0
	}
	if from >= len(buf.b) {
		return -1
	}
	for i, c := range buf.b[from:] {
		if strings.IndexByte(chars, c) >= 0 {
			return from + i
		}
	}
	return -1
}

// Reset empties the buffer keeping the allocated memory.
func (buf *Buffer) Reset() { buf.b = buf.b[:0] }

const maxPooledCap = 64 << 10

var bufPool = &sync.Pool{
	New: func() any { return &Buffer{b: make([]byte, 0, 256)} },
}

// GetBuffer acquires an empty buffer from the pool.
func GetBuffer() *Buffer {
	return bufPool.Get().(*Buffer) //nolint:forcetypeassert
}

// FreeBuffer returns buf to the pool.
func FreeBuffer(buf *Buffer) {
	if buf == nil || cap(buf.b) > maxPooledCap {
		return
	}
	buf.Reset()
	bufPool.Put(buf)
}

// RenderTo runs fn against a buffer and flushes the result to w.
// When w is a [*Buffer] fn writes into it directly.
func RenderTo(w io.Writer, fn func(buf *Buffer)) (int, error) {
	if buf, ok := w.(*Buffer); ok {
		start := buf.Len()
		fn(buf)
		return buf.Len() - start, nil
	}

	buf := GetBuffer()
	defer FreeBuffer(buf)
	fn(buf)
	return errtrace.Wrap2(w.Write(buf.Bytes()))
}

// Render runs fn against a pooled buffer and returns the result as string.
func Render(fn func(buf *Buffer)) string {
	buf := GetBuffer()
	defer FreeBuffer(buf)
	fn(buf)
	return buf.String()
}
