package types

// ------------------------
// Node configuration
// ------------------------

// DMXConfig is the per-node tuning published retained on config/dmx.
// Zero values select the defaults.
type DMXConfig struct {
	FixtureBase uint16 `json:"fixture_base"` // first universe channel of the fixture
	FrameHz     uint32 `json:"frame_hz"`     // DMX refresh rate
	FadeMs      uint32 `json:"fade_ms"`      // demo fade duration
}
