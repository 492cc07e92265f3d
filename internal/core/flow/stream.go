package flow

import (
	"bytes"
	"io"
	"os"
	"sync"
)

// Stream is the byte-sequence payload of a stream port. A single producer
// writes and closes it; once closed the content is immutable and any number
// of consumers may open independent readers over it. The content is spooled
// to a temporary file so large payloads never live in memory.
//
// The engine guarantees producers finish before consumers observe the
// stream, so Stream never supports concurrent read/write sharing.
type Stream struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	closed bool
}

// NewStream creates an empty, writable stream. The backing file is created
// lazily on first write, so streams that stay empty cost nothing.
func NewStream() *Stream {
	return &Stream{}
}

// Write appends bytes to the stream. It fails with ErrStreamClosed after
// Close has been called.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStreamClosed
	}
	if s.file == nil {
		f, err := os.CreateTemp("", "portflow-stream-*")
		if err != nil {
			return 0, err
		}
		s.file = f
		s.path = f.Name()
	}
	return s.file.Write(p)
}

// Close flushes and seals the write side. Closing an already-closed stream
// is a no-op so publishers can close defensively.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Closed reports whether the write side has been sealed.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Open returns an independent reader over the completed content. It fails
// with ErrStreamOpen while the write side is still open.
func (s *Stream) Open() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		return nil, ErrStreamOpen
	}
	if s.path == "" {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return os.Open(s.path)
}

// Bytes reads the full completed content into memory. Intended for small
// payloads and tests.
func (s *Stream) Bytes() ([]byte, error) {
	r, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Remove deletes the backing file. Safe to call once no readers remain.
func (s *Stream) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	path := s.path
	s.path = ""
	return os.Remove(path)
}
