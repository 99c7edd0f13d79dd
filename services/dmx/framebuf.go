package dmx

import (
	"dmxnode-go/errcode"
	"dmxnode-go/types"
	"dmxnode-go/x/mathx"
)

// NumChannels is the size of one DMX512 universe.
const NumChannels = 512

// FrameBuffer is the single source of truth for what goes on the wire.
// Channels are 1-indexed 1..512; the wire start code is not addressable.
// It is owned by the service loop and must only be touched from there.
type FrameBuffer struct {
	data [NumChannels]uint8
}

// Set writes one channel. The channel must be 1..512.
func (b *FrameBuffer) Set(ch uint16, v uint8) error {
	if !mathx.Between(ch, 1, NumChannels) {
		return errcode.InvalidChannel
	}
	b.data[ch-1] = v
	return nil
}

// Get reads one channel; out-of-range channels read as 0.
func (b *FrameBuffer) Get(ch uint16) uint8 {
	if !mathx.Between(ch, 1, NumChannels) {
		return 0
	}
	return b.data[ch-1]
}

// Apply writes an ordered list of pairs atomically: every pair is validated
// before any is applied, so a bad pair leaves the buffer untouched.
func (b *FrameBuffer) Apply(pairs []types.ChannelValue) error {
	for _, p := range pairs {
		if !mathx.Between(p.Channel, 1, NumChannels) {
			return errcode.InvalidChannel
		}
		if p.Value > 255 {
			return errcode.InvalidValue
		}
	}
	for _, p := range pairs {
		b.data[p.Channel-1] = uint8(p.Value)
	}
	return nil
}

// Snapshot copies the current values of a channel group, in group order.
// Channels in the group are assumed to be pre-validated.
func (b *FrameBuffer) Snapshot(channels []uint16) []uint8 {
	out := make([]uint8, len(channels))
	for i, ch := range channels {
		out[i] = b.data[ch-1]
	}
	return out
}
