package presenter

import (
	"errors"
	"image"
	"testing"

	"github.com/snapsolve/snapsolve-go/domain/geometry"
	"github.com/snapsolve/snapsolve-go/domain/region"
)

type mockOps struct {
	images   int
	frames   int
	confirms int
	cancels  int
	texts    []string
	resets   int
}

func (m *mockOps) EventImageChosen(*region.SourceImage)         { m.images++ }
func (m *mockOps) EventFrameLaidOut(geometry.DisplayFrame)      { m.frames++ }
func (m *mockOps) EventConfirmSelection(geometry.SelectionRect) { m.confirms++ }
func (m *mockOps) EventCancelSelection()                        { m.cancels++ }
func (m *mockOps) EventTextSubmitted(s string)                  { m.texts = append(m.texts, s) }
func (m *mockOps) EventReset()                                  { m.resets++ }

type fixedGate bool

func (g fixedGate) Busy() bool { return bool(g) }

func testSnapper(fail bool) Snapper {
	return func() (*region.SourceImage, error) {
		if fail {
			return nil, errors.New("no screen")
		}
		return region.FromRaster(image.NewRGBA(image.Rect(0, 0, 8, 8)), "image/png")
	}
}

func TestSubmitPresenter_TextAndReset(t *testing.T) {
	ops := &mockOps{}
	p := NewSubmitPresenter(ops, fixedGate(false), nil, nil)
	p.SubmitText("2x+5=15")
	if len(ops.texts) != 1 || ops.texts[0] != "2x+5=15" {
		t.Fatalf("text not forwarded: %v", ops.texts)
	}
	p.Reset()
	if ops.resets != 1 {
		t.Fatalf("reset not forwarded")
	}
}

func TestSubmitPresenter_BusyGateBlocksSubmissions(t *testing.T) {
	ops := &mockOps{}
	p := NewSubmitPresenter(ops, fixedGate(true), testSnapper(false), nil)
	p.SubmitText("x")
	p.SnapScreen()
	p.ConfirmSelection(geometry.SelectionRect{X: 0, Y: 0, W: 5, H: 5})
	p.Reset()
	if len(ops.texts) != 0 || ops.images != 0 || ops.confirms != 0 || ops.resets != 0 {
		t.Fatalf("busy gate must block all submissions: %+v", ops)
	}
	// cancel is not a submission and stays allowed
	p.CancelSelection()
	if ops.cancels != 1 {
		t.Fatalf("cancel must pass the gate")
	}
}

func TestSubmitPresenter_SnapScreen(t *testing.T) {
	ops := &mockOps{}
	p := NewSubmitPresenter(ops, fixedGate(false), testSnapper(false), nil)
	p.SnapScreen()
	if ops.images != 1 {
		t.Fatalf("snap must feed an image event")
	}

	failing := NewSubmitPresenter(ops, fixedGate(false), testSnapper(true), nil)
	failing.SnapScreen()
	if ops.images != 1 {
		t.Fatalf("failed snap must not feed an image event")
	}
}

func TestSubmitPresenter_IncompleteRectDropped(t *testing.T) {
	ops := &mockOps{}
	p := NewSubmitPresenter(ops, fixedGate(false), nil, nil)
	p.ConfirmSelection(geometry.SelectionRect{X: 5, Y: 5, W: 0, H: 10})
	if ops.confirms != 0 {
		t.Fatalf("incomplete rect must be dropped before the FSM")
	}
	p.ConfirmSelection(geometry.SelectionRect{X: 5, Y: 5, W: 10, H: 10})
	if ops.confirms != 1 {
		t.Fatalf("complete rect must be forwarded")
	}
}
