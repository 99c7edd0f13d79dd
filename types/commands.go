package types

// ------------------------
// DMX command payloads
//
// These are the validated, strongly-typed shapes the core accepts.
// Whatever listener feeds the bus (console, MQTT bridge, web UI) is
// responsible for parsing its own wire format into these structs.
// ------------------------

// PresetLen is the fixed slot count of a preset: five position channels
// followed by six colour channels.
const PresetLen = 11

// Preset slot offsets, in fixed channel order.
const (
	SlotPan = iota
	SlotPanFine
	SlotTilt
	SlotTiltFine
	SlotSpeed
	SlotDimmer
	SlotStrobe
	SlotRed
	SlotGreen
	SlotBlue
	SlotWhite
)

// Preset is one saved look. Length must be exactly PresetLen; commands
// carrying a preset of any other length are rejected whole.
type Preset []uint8

// SetChannel writes one channel. Channel is 1..512, Value 0..255; the wide
// integer types exist so out-of-range requests survive decoding and can be
// rejected explicitly.
type SetChannel struct {
	Channel uint16 `json:"channel"`
	Value   uint16 `json:"value"`
}

// ChannelValue is one pair of a batch.
type ChannelValue struct {
	Channel uint16 `json:"channel"`
	Value   uint16 `json:"value"`
}

// SetBatch applies an ordered list of pairs atomically: one invalid pair
// rejects the entire batch.
type SetBatch struct {
	Pairs []ChannelValue `json:"pairs"`
}

// DemoStart activates the preset demo sequence. Zero MoveDelayMs/HoldTimeMs
// select the defaults (1000 ms / 5000 ms).
type DemoStart struct {
	Presets     []Preset `json:"presets"`
	MoveDelayMs uint32   `json:"move_delay_ms,omitempty"`
	HoldTimeMs  uint32   `json:"hold_time_ms,omitempty"`
}

// DemoStop deactivates the sequencer and invalidates the persisted config.
type DemoStop struct{}

// ------------------------
// Demo configuration
// ------------------------

// DemoConfig is the persisted demo sequence: 2..10 presets plus timing.
type DemoConfig struct {
	Presets     []Preset `json:"presets"`
	MoveDelayMs uint32   `json:"move_delay_ms"`
	HoldTimeMs  uint32   `json:"hold_time_ms"`
}

// Default timings applied at the command boundary when omitted.
const (
	DefaultMoveDelayMs = 1000
	DefaultHoldTimeMs  = 5000
)

// Preset count bounds for a demo sequence.
const (
	MinPresets = 2
	MaxPresets = 10
)
