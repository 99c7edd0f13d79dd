package dmx

import (
	"time"

	"dmxnode-go/types"
	"dmxnode-go/x/timex"
)

// Transmitter emits one DMX512 frame per period from the FrameBuffer.
// Transmission is fire-and-forget: DMX512 is unidirectional and a damaged
// frame is simply superseded by the next one.
type Transmitter struct {
	line   Line
	buf    *FrameBuffer
	period time.Duration
	last   time.Time
	frames uint32

	// start code + 512 channels, assembled per send
	wire [NumChannels + 1]uint8
}

func NewTransmitter(line Line, buf *FrameBuffer, frameHz uint32) *Transmitter {
	if frameHz == 0 {
		frameHz = DefaultFrameHz
	}
	return &Transmitter{
		line:   line,
		buf:    buf,
		period: timex.PeriodFromHz(frameHz),
	}
}

// Period returns the nominal inter-frame gap.
func (t *Transmitter) Period() time.Duration { return t.period }

// Frames returns the number of frames sent since start.
func (t *Transmitter) Frames() uint32 { return t.frames }

// SetFrameRate changes the cadence from the next tick on.
func (t *Transmitter) SetFrameRate(frameHz uint32) {
	if frameHz == 0 {
		return
	}
	t.period = timex.PeriodFromHz(frameHz)
}

// Tick sends at most one frame. If the elapsed time since the previous send
// reaches the period the frame goes out immediately and the send time is
// recorded; a late tick does not trigger compensating bursts.
func (t *Transmitter) Tick(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.period {
		return false
	}
	t.sendFrame()
	t.last = now
	return true
}

// sendFrame produces one DMX512-A frame: driver enable, break, MAB, restored
// 250k 8N2 framing, start code, 512 channel bytes ascending, full flush,
// driver disable.
func (t *Transmitter) sendFrame() {
	t.frames++

	t.line.EnableDriver(true)

	_ = t.line.SendBreak(BreakTime, MABTime)
	_ = t.line.SetBaudRate(BaudRate)
	_ = t.line.SetFormat(DataBits, StopBits, uint8(types.ParityNone))

	t.wire[0] = StartCode
	copy(t.wire[1:], t.buf.data[:])
	_, _ = t.line.Write(t.wire[:])

	_ = t.line.Flush()

	t.line.EnableDriver(false)
}
