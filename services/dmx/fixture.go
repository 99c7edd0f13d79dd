package dmx

import (
	"dmxnode-go/types"
	"dmxnode-go/x/mathx"
)

// Fixture maps the fixed preset slot order onto a contiguous block of
// universe channels starting at Base: pan, pan-fine, tilt, tilt-fine, speed,
// dimmer, strobe, red, green, blue, white.
type Fixture struct {
	Base uint16
}

// NewFixture clamps base so the full 11-channel block fits in the universe.
// A zero base selects channel 1.
func NewFixture(base uint16) Fixture {
	if base == 0 {
		base = 1
	}
	base = mathx.Min(base, NumChannels-types.PresetLen+1)
	return Fixture{Base: base}
}

// PositionChannels returns the five mover channels, in slot order.
func (f Fixture) PositionChannels() []uint16 {
	return f.channels(types.SlotPan, types.SlotSpeed)
}

// ColorChannels returns the six colour channels, in slot order.
func (f Fixture) ColorChannels() []uint16 {
	return f.channels(types.SlotDimmer, types.SlotWhite)
}

func (f Fixture) channels(from, to int) []uint16 {
	out := make([]uint16, 0, to-from+1)
	for s := from; s <= to; s++ {
		out = append(out, f.Base+uint16(s))
	}
	return out
}
