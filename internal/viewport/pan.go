package viewport

import "gonum.org/v1/gonum/spatial/r2"

// PanPhase is the state of the drag state machine.
type PanPhase int

const (
	// PanIdle: no button held.
	PanIdle PanPhase = iota
	// PanPressed: button held, no frame pending.
	PanPressed
	// PanFrameScheduled: button held and a frame will apply the motion so far.
	PanFrameScheduled
)

func (p PanPhase) String() string {
	switch p {
	case PanIdle:
		return "idle"
	case PanPressed:
		return "pressed"
	case PanFrameScheduled:
		return "frame-scheduled"
	default:
		return "unknown"
	}
}

// PanState tracks a drag. LastCursor is the position the transform was last
// brought in line with. FramePending outlives the drag that scheduled the
// frame and is only cleared when that frame runs.
type PanState struct {
	Phase        PanPhase
	LastCursor   r2.Vec
	FramePending bool
}

// InProgress reports whether a motion frame is pending.
func (p PanState) InProgress() bool {
	return p.FramePending
}

// Press starts a drag at cursor.
func (p *PanState) Press(cursor r2.Vec) {
	p.Phase = PanPressed
	p.LastCursor = cursor
}

// Motion records that the pointer moved. It returns true when the caller must
// schedule a frame; bursts of motion before that frame runs return false.
func (p *PanState) Motion() bool {
	if p.Phase == PanIdle {
		return false
	}
	p.Phase = PanFrameScheduled
	if p.FramePending {
		return false
	}
	p.FramePending = true
	return true
}

// Frame consumes the pending motion and returns the delta to apply. ok is
// false when the drag ended before the frame ran.
func (p *PanState) Frame(cursor r2.Vec) (delta r2.Vec, ok bool) {
	p.FramePending = false
	if p.Phase != PanFrameScheduled {
		return r2.Vec{}, false
	}
	delta = r2.Sub(cursor, p.LastCursor)
	p.LastCursor = cursor
	p.Phase = PanPressed
	return delta, true
}

// Release ends the drag. A pending frame stays queued but applies nothing
// unless a new drag moves before it runs.
func (p *PanState) Release(cursor r2.Vec) {
	p.LastCursor = cursor
	p.Phase = PanIdle
}
