package session

import (
	"context"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
	"github.com/snapsolve/snapsolve-go/domain/handle"
	"github.com/snapsolve/snapsolve-go/domain/region"
)

// State enumerates the finite states of a solve session.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateProcessing
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateProcessing:
		return "processing"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OriginKind tags whether the in-flight or completed request came from an
// image region or typed text.
type OriginKind int

const (
	OriginNone OriginKind = iota
	OriginImage
	OriginText
)

func (k OriginKind) String() string {
	switch k {
	case OriginImage:
		return "image"
	case OriginText:
		return "text"
	default:
		return "none"
	}
}

// Origin is a tagged variant: exactly one of Region/Text is meaningful,
// selected by Kind. It replaces implicit which-field-is-set typing.
type Origin struct {
	Kind   OriginKind
	Text   string                  // Kind == OriginText
	Region *region.ExtractedRegion // Kind == OriginImage
}

// Solver is the external solve collaborator, specified at its boundary only.
// Both calls block until the collaborator answers; failures carry a
// human-readable message.
type Solver interface {
	SolveImage(ctx context.Context, payload, mediaType string) (string, error)
	SolveText(ctx context.Context, problem string) (string, error)
}

// Listener is called on each committed state transition.
type Listener func(prev, next State)

// Snapshot is a consistent read of the session for presenters. Handles in the
// snapshot are valid until the next transition that drops their referent.
type Snapshot struct {
	State        State
	Origin       Origin
	Solution     string
	FailMessage  string // non-empty exactly in StateFailed
	SelectionErr string // last extraction failure while Selecting, cleared on transition
	Frame        geometry.DisplayFrame
	SourceHandle handle.Handle // live while Selecting
	RegionHandle handle.Handle // live from successful extraction until reset
}

// StateSource provides read access for presenters.
type StateSource interface {
	Current() State
	Snapshot() Snapshot
}

// InputOps are the user-action entry points the view layer drives.
type InputOps interface {
	EventImageChosen(src *region.SourceImage)
	EventFrameLaidOut(frame geometry.DisplayFrame)
	EventConfirmSelection(rect geometry.SelectionRect)
	EventCancelSelection()
	EventTextSubmitted(text string)
	EventReset()
}

// Lifecycle controls shutdown.
type Lifecycle interface {
	Close()
}

// Contract aggregates what the app container wires together.
type Contract interface {
	StateSource
	InputOps
	Lifecycle
	AddListener(Listener)
}
