package dmx

import (
	"dmxnode-go/errcode"
	"dmxnode-go/types"
)

// DefaultFadeMs is the fixed fade duration of demo FadeOut/FadeIn.
const DefaultFadeMs = 5000

// DemoState is the sequencer's phase within one preset cycle.
type DemoState uint8

const (
	DemoIdle DemoState = iota
	DemoFadeOut
	DemoMove
	DemoWaitMove
	DemoFadeIn
	DemoHold
)

func (s DemoState) String() string {
	switch s {
	case DemoFadeOut:
		return "fade_out"
	case DemoMove:
		return "move"
	case DemoWaitMove:
		return "wait_move"
	case DemoFadeIn:
		return "fade_in"
	case DemoHold:
		return "hold"
	default:
		return "idle"
	}
}

// ConfigStore persists a demo configuration across power loss.
type ConfigStore interface {
	Save(cfg types.DemoConfig) error
	Load() (types.DemoConfig, bool)
	Clear() error
}

// Sequencer cycles an ordered preset list:
// FadeOut -> Move -> WaitMove -> FadeIn -> Hold -> FadeOut(next)...
// Colour is faded through the Fade engine; position is written directly
// (mover channels are mechanically slow, interpolating them is meaningless).
// Entry actions run exactly once per state entry.
type Sequencer struct {
	buf   *FrameBuffer
	fade  *Fade
	fix   Fixture
	store ConfigStore

	cfg       types.DemoConfig
	idx       int // preset currently shown; target is always the next one
	state     DemoState
	enteredMs int64
	fadeMs    uint32
	active    bool
}

func NewSequencer(buf *FrameBuffer, fade *Fade, fix Fixture, store ConfigStore) *Sequencer {
	return &Sequencer{
		buf:    buf,
		fade:   fade,
		fix:    fix,
		store:  store,
		state:  DemoIdle,
		fadeMs: DefaultFadeMs,
	}
}

func (s *Sequencer) Active() bool      { return s.active }
func (s *Sequencer) State() DemoState  { return s.state }
func (s *Sequencer) PresetIndex() int  { return s.idx }
func (s *Sequencer) Config() types.DemoConfig { return s.cfg }

// SetFadeDuration overrides the demo fade time. Zero keeps the default.
func (s *Sequencer) SetFadeDuration(ms uint32) {
	if ms > 0 {
		s.fadeMs = ms
	}
}

func validateDemo(cfg types.DemoConfig) error {
	n := len(cfg.Presets)
	if n < types.MinPresets || n > types.MaxPresets {
		return errcode.InvalidPresetCount
	}
	for _, p := range cfg.Presets {
		if len(p) != types.PresetLen {
			return errcode.InvalidPreset
		}
	}
	return nil
}

// Start validates, persists and activates a new demo configuration.
// On rejection nothing changes: no partial activation, no store write.
func (s *Sequencer) Start(cfg types.DemoConfig, nowMs int64) error {
	if err := validateDemo(cfg); err != nil {
		return err
	}
	if err := s.store.Save(cfg); err != nil {
		return err
	}
	s.begin(cfg, nowMs)
	return nil
}

// Resume activates a previously persisted configuration without re-saving.
// Used at boot when the store holds a valid record.
func (s *Sequencer) Resume(cfg types.DemoConfig, nowMs int64) error {
	if err := validateDemo(cfg); err != nil {
		return err
	}
	s.begin(cfg, nowMs)
	return nil
}

func (s *Sequencer) begin(cfg types.DemoConfig, nowMs int64) {
	s.cfg = cfg
	s.idx = 0
	s.active = true
	s.enterFadeOut(nowMs)
}

// Stop deactivates the sequencer and invalidates the persisted config.
// The buffer keeps its last written values; there is no forced blackout.
func (s *Sequencer) Stop() {
	s.active = false
	s.state = DemoIdle
	_ = s.store.Clear()
}

// nextPreset is the preset being transitioned to this cycle.
func (s *Sequencer) nextPreset() types.Preset {
	return s.cfg.Presets[(s.idx+1)%len(s.cfg.Presets)]
}

func (s *Sequencer) enterFadeOut(nowMs int64) {
	s.state = DemoFadeOut
	dark := make([]uint8, types.SlotWhite-types.SlotDimmer+1)
	_ = s.fade.Start(dark, s.fadeMs, nowMs)
}

func (s *Sequencer) enterMove(nowMs int64) {
	s.state = DemoMove
	p := s.nextPreset()
	for i, ch := range s.fix.PositionChannels() {
		s.buf.data[ch-1] = p[types.SlotPan+i]
	}
	s.enteredMs = nowMs
}

func (s *Sequencer) enterFadeIn(nowMs int64) {
	s.state = DemoFadeIn
	p := s.nextPreset()
	_ = s.fade.Start(p[types.SlotDimmer:types.SlotWhite+1], s.fadeMs, nowMs)
}

// Tick advances the state machine. It must run after the fade tick in the
// control loop so fade completion is observed on the same iteration.
func (s *Sequencer) Tick(nowMs int64) {
	if !s.active {
		return
	}
	switch s.state {
	case DemoFadeOut:
		if !s.fade.Active() {
			s.enterMove(nowMs)
		}
	case DemoMove:
		// Position written on entry; the wait clock started there too.
		s.state = DemoWaitMove
	case DemoWaitMove:
		if nowMs-s.enteredMs >= int64(s.cfg.MoveDelayMs) {
			s.enterFadeIn(nowMs)
		}
	case DemoFadeIn:
		if !s.fade.Active() {
			s.state = DemoHold
			s.enteredMs = nowMs
		}
	case DemoHold:
		if nowMs-s.enteredMs >= int64(s.cfg.HoldTimeMs) {
			s.idx = (s.idx + 1) % len(s.cfg.Presets)
			s.enterFadeOut(nowMs)
		}
	}
}
