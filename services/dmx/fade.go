package dmx

import (
	"dmxnode-go/errcode"
	"dmxnode-go/x/mathx"
)

// Fade is a non-blocking linear interpolation of one channel group toward a
// target vector. At most one fade is active per group; restarting an active
// fade re-snapshots from the current (possibly mid-fade) buffer values.
type Fade struct {
	buf      *FrameBuffer
	channels []uint16 // the group, fixed at construction

	start      []uint8
	target     []uint8
	startMs    int64
	durationMs uint32
	active     bool
}

// NewFade binds a fade engine to a channel group. Channels must be valid
// universe channels; the group is fixed for the engine's lifetime.
func NewFade(buf *FrameBuffer, channels []uint16) *Fade {
	return &Fade{
		buf:      buf,
		channels: channels,
		start:    make([]uint8, len(channels)),
		target:   make([]uint8, len(channels)),
	}
}

func (f *Fade) Active() bool { return f.active }

// Start captures the group's current buffer values as the start snapshot and
// arms the fade. The buffer itself is not touched until the next Tick, so
// there is no visible jump before interpolation begins.
func (f *Fade) Start(target []uint8, durationMs uint32, nowMs int64) error {
	if len(target) != len(f.channels) {
		return errcode.InvalidPayload
	}
	copy(f.start, f.buf.Snapshot(f.channels))
	copy(f.target, target)
	f.startMs = nowMs
	f.durationMs = durationMs
	f.active = true
	return nil
}

// Tick advances the interpolation. Values are rounded during the fade and
// snapped exactly to the target at completion, so there is no cumulative
// drift regardless of how many ticks land in between.
func (f *Fade) Tick(nowMs int64) {
	if !f.active {
		return
	}
	elapsed := nowMs - f.startMs
	if elapsed >= int64(f.durationMs) || f.durationMs == 0 {
		for i, ch := range f.channels {
			f.buf.data[ch-1] = f.target[i]
		}
		f.active = false
		return
	}
	for i, ch := range f.channels {
		v := mathx.Lerp8(f.start[i], f.target[i], elapsed, int64(f.durationMs))
		if f.buf.data[ch-1] != v {
			f.buf.data[ch-1] = v
		}
	}
}
