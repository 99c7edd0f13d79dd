package dmx

import (
	"testing"

	"dmxnode-go/errcode"
	"dmxnode-go/types"
)

type fakeStore struct {
	saved  *types.DemoConfig
	clears int
}

func (s *fakeStore) Save(cfg types.DemoConfig) error {
	c := cfg
	s.saved = &c
	return nil
}

func (s *fakeStore) Load() (types.DemoConfig, bool) {
	if s.saved == nil {
		return types.DemoConfig{}, false
	}
	return *s.saved, true
}

func (s *fakeStore) Clear() error {
	s.saved = nil
	s.clears++
	return nil
}

func presetOf(vals ...uint8) types.Preset {
	p := make(types.Preset, types.PresetLen)
	copy(p, vals)
	return p
}

// demoRig wires a sequencer exactly the way the service does: fixture at
// base 1, fade over the colour group, short timings for fast tests.
type demoRig struct {
	buf   FrameBuffer
	fade  *Fade
	seq   *Sequencer
	store *fakeStore
}

func newDemoRig() *demoRig {
	r := &demoRig{store: &fakeStore{}}
	fix := NewFixture(1)
	r.fade = NewFade(&r.buf, fix.ColorChannels())
	r.seq = NewSequencer(&r.buf, r.fade, fix, r.store)
	r.seq.SetFadeDuration(50)
	return r
}

// tick mirrors the control loop order: fade first, sequencer after.
func (r *demoRig) tick(nowMs int64) {
	r.fade.Tick(nowMs)
	r.seq.Tick(nowMs)
}

func (r *demoRig) tickUntil(t *testing.T, want DemoState, from, to, step int64) int64 {
	t.Helper()
	for ms := from; ms <= to; ms += step {
		r.tick(ms)
		if r.seq.State() == want {
			return ms
		}
	}
	t.Fatalf("state %v not reached by %d ms (at %v)", want, to, r.seq.State())
	return 0
}

var (
	demoP0 = presetOf(10, 0, 20, 0, 0, 255, 0, 200, 0, 0, 0)
	demoP1 = presetOf(90, 0, 80, 0, 0, 255, 0, 0, 0, 200, 0)
)

func startDemo(t *testing.T, r *demoRig) {
	t.Helper()
	cfg := types.DemoConfig{
		Presets:     []types.Preset{demoP0, demoP1},
		MoveDelayMs: 100,
		HoldTimeMs:  200,
	}
	if err := r.seq.Start(cfg, 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func TestSequencerValidation(t *testing.T) {
	r := newDemoRig()

	cases := []struct {
		name string
		cfg  types.DemoConfig
		want errcode.Code
	}{
		{"no presets", types.DemoConfig{}, errcode.InvalidPresetCount},
		{"one preset", types.DemoConfig{Presets: []types.Preset{demoP0}}, errcode.InvalidPresetCount},
		{"eleven presets", types.DemoConfig{Presets: make([]types.Preset, 11)}, errcode.InvalidPresetCount},
		{"short preset", types.DemoConfig{Presets: []types.Preset{demoP0, {1, 2, 3}}}, errcode.InvalidPreset},
	}
	for _, tc := range cases {
		err := r.seq.Start(tc.cfg, 0)
		if errcode.Of(err) != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
		if r.seq.Active() {
			t.Fatalf("%s: rejected Start activated the sequencer", tc.name)
		}
		if r.store.saved != nil {
			t.Fatalf("%s: rejected Start wrote the store", tc.name)
		}
	}

	// Boundary counts are accepted.
	two := types.DemoConfig{Presets: []types.Preset{demoP0, demoP1}}
	if err := r.seq.Start(two, 0); err != nil {
		t.Fatalf("2 presets: %v", err)
	}
	ten := types.DemoConfig{Presets: make([]types.Preset, 10)}
	for i := range ten.Presets {
		ten.Presets[i] = presetOf()
	}
	if err := r.seq.Start(ten, 0); err != nil {
		t.Fatalf("10 presets: %v", err)
	}
}

func TestSequencerStartPersists(t *testing.T) {
	r := newDemoRig()
	startDemo(t, r)

	if r.store.saved == nil {
		t.Fatalf("Start did not persist the configuration")
	}
	if got := len(r.store.saved.Presets); got != 2 {
		t.Fatalf("persisted %d presets, want 2", got)
	}
	if !r.seq.Active() || r.seq.State() != DemoFadeOut {
		t.Fatalf("after Start: active=%v state=%v", r.seq.Active(), r.seq.State())
	}
}

func TestSequencerStateOrder(t *testing.T) {
	r := newDemoRig()
	_ = r.buf.Set(6, 255) // dimmer up so FadeOut has something to do
	startDemo(t, r)

	r.tickUntil(t, DemoMove, 0, 100, 1)
	r.tickUntil(t, DemoWaitMove, 51, 100, 1)
	r.tickUntil(t, DemoFadeIn, 52, 300, 1)
	r.tickUntil(t, DemoHold, 151, 400, 1)
	// Hold expires, the cycle restarts toward the other preset.
	r.tickUntil(t, DemoFadeOut, 201, 600, 1)

	if got := r.seq.PresetIndex(); got != 1 {
		t.Fatalf("preset index after first cycle = %d, want 1", got)
	}
}

func TestSequencerFadeOutReachesDark(t *testing.T) {
	r := newDemoRig()
	for ch := uint16(6); ch <= 11; ch++ {
		_ = r.buf.Set(ch, 200)
	}
	startDemo(t, r)

	r.tickUntil(t, DemoMove, 0, 100, 1)
	for ch := uint16(6); ch <= 11; ch++ {
		if got := r.buf.Get(ch); got != 0 {
			t.Fatalf("channel %d = %d after fade out, want 0", ch, got)
		}
	}
}

func TestSequencerMoveWritesNextPosition(t *testing.T) {
	r := newDemoRig()
	startDemo(t, r)

	r.tickUntil(t, DemoMove, 0, 100, 1)
	// First transition targets the second preset.
	for i := types.SlotPan; i <= types.SlotSpeed; i++ {
		ch := uint16(1 + i)
		if got := r.buf.Get(ch); got != demoP1[i] {
			t.Fatalf("position channel %d = %d, want %d", ch, got, demoP1[i])
		}
	}
}

func TestSequencerAlternatesTargets(t *testing.T) {
	r := newDemoRig()
	startDemo(t, r)

	// Ticking at 1 ms granularity, record each preset whose position lands
	// in the buffer across three full cycles.
	var targets []uint8
	var last uint8
	for ms := int64(0); ms < 2000; ms++ {
		r.tick(ms)
		pan := r.buf.Get(1)
		if pan != last && pan != 0 {
			targets = append(targets, pan)
			last = pan
		}
	}
	want := []uint8{demoP1[types.SlotPan], demoP0[types.SlotPan], demoP1[types.SlotPan]}
	if len(targets) < len(want) {
		t.Fatalf("observed %d move targets, want at least %d", len(targets), len(want))
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("move target %d = %d, want %d (sequence %v)", i, targets[i], want[i], targets)
		}
	}
}

func TestSequencerFadeInReachesColour(t *testing.T) {
	r := newDemoRig()
	startDemo(t, r)

	r.tickUntil(t, DemoHold, 0, 500, 1)
	for i := types.SlotDimmer; i <= types.SlotWhite; i++ {
		ch := uint16(1 + i)
		if got := r.buf.Get(ch); got != demoP1[i] {
			t.Fatalf("colour channel %d = %d, want %d", ch, got, demoP1[i])
		}
	}
}

func TestSequencerStop(t *testing.T) {
	r := newDemoRig()
	startDemo(t, r)
	r.tickUntil(t, DemoHold, 0, 500, 1)

	snapshot := r.buf.Snapshot([]uint16{1, 6, 10})
	r.seq.Stop()

	if r.seq.Active() || r.seq.State() != DemoIdle {
		t.Fatalf("after Stop: active=%v state=%v", r.seq.Active(), r.seq.State())
	}
	if r.store.clears != 1 {
		t.Fatalf("Stop cleared store %d times, want 1", r.store.clears)
	}

	// The buffer is frozen, not blacked out; further ticks change nothing.
	for ms := int64(500); ms < 1000; ms += 10 {
		r.tick(ms)
	}
	after := r.buf.Snapshot([]uint16{1, 6, 10})
	for i := range snapshot {
		if snapshot[i] != after[i] {
			t.Fatalf("buffer changed after Stop: %v -> %v", snapshot, after)
		}
	}
}

func TestSequencerResumeDoesNotSave(t *testing.T) {
	r := newDemoRig()
	cfg := types.DemoConfig{
		Presets:     []types.Preset{demoP0, demoP1},
		MoveDelayMs: 100,
		HoldTimeMs:  200,
	}
	if err := r.seq.Resume(cfg, 0); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if r.store.saved != nil {
		t.Fatalf("Resume re-wrote the store")
	}
	if !r.seq.Active() || r.seq.State() != DemoFadeOut {
		t.Fatalf("after Resume: active=%v state=%v", r.seq.Active(), r.seq.State())
	}
}

func TestSequencerRestartResetsCycle(t *testing.T) {
	r := newDemoRig()
	startDemo(t, r)
	r.tickUntil(t, DemoHold, 0, 500, 1)
	r.tickUntil(t, DemoFadeOut, 201, 600, 1) // idx now 1

	startDemo(t, r)
	if got := r.seq.PresetIndex(); got != 0 {
		t.Fatalf("restart kept preset index %d, want 0", got)
	}
	if r.seq.State() != DemoFadeOut {
		t.Fatalf("restart state = %v, want fade_out", r.seq.State())
	}
}
