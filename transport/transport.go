// Package transport defines the byte-stream collaborator surface of
// the protocol engine.
//
// A transport delivers one complete message per exchange; how those
// messages are framed on the wire (end-of-message delimiters, chunked
// framing, an SSH subchannel, TLS) is the transport implementation's
// concern and not specified here. Pair provides an in-memory
// implementation connecting two peers, used by tests and embedders.
package transport

import (
	"io"
	"sync"
)

// Stream exchanges complete NETCONF message payloads with a peer.
type Stream interface {
	// Recv returns the next complete message from the peer,
	// blocking until one is available. io.EOF is returned once the
	// peer has closed and all delivered messages are consumed.
	Recv() ([]byte, error)
	// Send delivers one complete message to the peer
	Send([]byte) error
	// Close tears the stream down; the peer's Recv drains then
	// returns io.EOF
	Close() error
}

// Pair returns two connected in-memory Streams. Messages sent on one
// side arrive, in order, at the other side's Recv.
func Pair() (Stream, Stream) {
	ab := make(chan []byte, pairDepth)
	ba := make(chan []byte, pairDepth)
	a := &memStream{in: ba, out: ab}
	b := &memStream{in: ab, out: ba}
	return a, b
}

// pairDepth bounds the number of undelivered messages per direction
const pairDepth = 64

type memStream struct {
	in  <-chan []byte
	out chan<- []byte

	mu     sync.Mutex
	closed bool
}

func (s *memStream) Recv() ([]byte, error) {
	msg, ok := <-s.in
	if !ok {
		return nil, io.EOF
	}
	return msg, nil
}

func (s *memStream) Send(msg []byte) (err error) {
	defer func() {
		// sending on the closed channel panics; report it as a
		// closed pipe instead
		if recover() != nil {
			err = io.ErrClosedPipe
		}
	}()
	buf := make([]byte, len(msg))
	copy(buf, msg)
	s.out <- buf
	return nil
}

func (s *memStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.out)
	}
	return nil
}
