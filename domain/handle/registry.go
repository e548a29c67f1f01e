// Package handle manages ephemeral references to in-memory binary blobs (the
// original problem image, the cropped submission preview). Every handle is
// acquired once, released exactly once, and never dereferenced afterwards; the
// session state machine's transition logic is the only caller of Release.
package handle

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Handle is an opaque reference to a registered blob. The zero value is not a
// valid handle.
type Handle string

// Zero reports whether h is the zero handle.
func (h Handle) Zero() bool { return h == "" }

var (
	ErrUnknownHandle  = errors.New("handle: unknown or already released")
	ErrDoubleRelease  = errors.New("handle: released twice")
	ErrInvalidAcquire = errors.New("handle: empty blob")
)

// Registry owns handle validity. Counters are kept for leak verification in
// tests and for the debug stats line.
type Registry struct {
	mu       sync.Mutex
	blobs    map[Handle][]byte
	released map[Handle]struct{}
	acquired int
	freed    int
}

func NewRegistry() *Registry {
	return &Registry{
		blobs:    make(map[Handle][]byte),
		released: make(map[Handle]struct{}),
	}
}

// Acquire registers a blob and returns its handle.
func (r *Registry) Acquire(blob []byte) (Handle, error) {
	if len(blob) == 0 {
		return "", ErrInvalidAcquire
	}
	h := Handle(uuid.NewString())
	r.mu.Lock()
	r.blobs[h] = blob
	r.acquired++
	r.mu.Unlock()
	return h, nil
}

// Release invalidates h. Releasing an already-released handle is an error so
// that the exactly-once discipline is checkable rather than silently absorbed.
func (r *Registry) Release(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[h]; !ok {
		if _, was := r.released[h]; was {
			return ErrDoubleRelease
		}
		return ErrUnknownHandle
	}
	delete(r.blobs, h)
	r.released[h] = struct{}{}
	r.freed++
	return nil
}

// Bytes dereferences h. Dereferencing after release is a contract violation
// and returns an error rather than stale data.
func (r *Registry) Bytes(h Handle) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blob, ok := r.blobs[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return blob, nil
}

// Live returns the number of currently valid handles.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blobs)
}

// Acquired returns the total number of Acquire calls that succeeded.
func (r *Registry) Acquired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired
}

// Released returns the total number of Release calls that succeeded.
func (r *Registry) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.freed
}
