package dmx

import (
	"context"
	"time"

	"dmxnode-go/bus"
	"dmxnode-go/errcode"
	"dmxnode-go/types"
	"dmxnode-go/x/mathx"
	"dmxnode-go/x/timex"
)

// Bus surface:
//
//	dmx/ctrl/set        SetChannel
//	dmx/ctrl/batch      SetBatch
//	dmx/ctrl/demo_start DemoStart
//	dmx/ctrl/demo_stop  DemoStop (payload ignored)
//	dmx/state           retained NodeState
//	dmx/demo            retained DemoState
//	dmx/frames          retained FrameStats, every frameStatsEvery frames
//	config/dmx          retained DMXConfig or JSON-decoded map
var (
	topicCtrl   = bus.T("dmx", "ctrl", bus.WildAll)
	topicConfig = bus.T("config", "dmx")
	topicState  = bus.T("dmx", "state")
	topicDemo   = bus.T("dmx", "demo")
	topicFrames = bus.T("dmx", "frames")
)

const frameStatsEvery = 100

// Service owns the universe state and runs the cooperative control loop:
// commands are applied synchronously between ticks, then the transmitter,
// fade engine and sequencer are ticked once each. The FrameBuffer has no
// locking; everything that touches it runs on this loop.
type Service struct {
	conn  *bus.Connection
	buf   FrameBuffer
	fix   Fixture
	tx    *Transmitter
	fade  *Fade
	seq   *Sequencer
	store ConfigStore

	tickEvery time.Duration
}

func New(conn *bus.Connection, line Line, store ConfigStore, cfg types.DMXConfig) *Service {
	s := &Service{
		conn:      conn,
		fix:       NewFixture(cfg.FixtureBase),
		store:     store,
		tickEvery: time.Millisecond,
	}
	s.fade = NewFade(&s.buf, s.fix.ColorChannels())
	s.tx = NewTransmitter(line, &s.buf, cfg.FrameHz)
	s.seq = NewSequencer(&s.buf, s.fade, s.fix, store)
	s.seq.SetFadeDuration(cfg.FadeMs)
	return s
}

// Run drives the control loop until ctx is cancelled. A valid persisted demo
// configuration auto-resumes before the first tick.
func (s *Service) Run(ctx context.Context) {
	ctrl := s.conn.Subscribe(topicCtrl)
	defer s.conn.Unsubscribe(ctrl)
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	if cfg, ok := s.store.Load(); ok {
		if err := s.seq.Resume(cfg, timex.NowMs()); err == nil {
			println("[dmx] resumed demo:", len(cfg.Presets), "presets")
		}
	}
	s.pubState("ready", "")
	s.pubDemo()

	tick := time.NewTicker(s.tickEvery)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.pubState("stopped", "context_cancelled")
			return
		case msg := <-cfgSub.Channel():
			s.handleConfig(msg.Payload)
		case msg := <-ctrl.Channel():
			s.handleControl(msg)
		case <-tick.C:
			s.tick(time.Now())
		}
	}
}

// tick runs one loop iteration: frame out if due, then fade, then sequencer
// (sequencer last so fade completion is seen on the same iteration).
func (s *Service) tick(now time.Time) {
	if s.tx.Tick(now) {
		if f := s.tx.Frames(); f%frameStatsEvery == 0 {
			s.conn.Publish(s.conn.NewMessage(topicFrames,
				types.FrameStats{Frames: f, TSms: now.UnixMilli()}, true))
		}
	}
	nowMs := now.UnixMilli()
	s.fade.Tick(nowMs)
	s.seq.Tick(nowMs)
}

// -----------------------------------------------------------------------------
// Commands
// -----------------------------------------------------------------------------

func (s *Service) handleControl(msg *bus.Message) {
	// dmx/ctrl/<verb>
	if msg.Topic.Len() < 3 {
		s.replyErr(msg, errcode.InvalidTopic)
		return
	}
	verb, _ := msg.Topic.At(2).(string)

	switch verb {
	case "set":
		p, ok := msg.Payload.(types.SetChannel)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		s.finish(msg, s.applySet(p))

	case "batch":
		p, ok := msg.Payload.(types.SetBatch)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		s.finish(msg, s.applyBatch(p))

	case "demo_start":
		p, ok := msg.Payload.(types.DemoStart)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		err := s.startDemo(p)
		if err == nil {
			s.pubDemo()
		}
		s.finish(msg, err)

	case "demo_stop":
		s.seq.Stop()
		s.pubDemo()
		s.finish(msg, nil)

	default:
		s.replyErr(msg, errcode.Unsupported)
	}
}

func (s *Service) applySet(p types.SetChannel) error {
	if !mathx.Between(p.Channel, 1, NumChannels) {
		return errcode.InvalidChannel
	}
	if p.Value > 255 {
		return errcode.InvalidValue
	}
	return s.buf.Set(p.Channel, uint8(p.Value))
}

func (s *Service) applyBatch(p types.SetBatch) error {
	if len(p.Pairs) == 0 {
		return errcode.InvalidBatch
	}
	return s.buf.Apply(p.Pairs)
}

func (s *Service) startDemo(p types.DemoStart) error {
	cfg := types.DemoConfig{
		Presets:     p.Presets,
		MoveDelayMs: p.MoveDelayMs,
		HoldTimeMs:  p.HoldTimeMs,
	}
	if cfg.MoveDelayMs == 0 {
		cfg.MoveDelayMs = types.DefaultMoveDelayMs
	}
	if cfg.HoldTimeMs == 0 {
		cfg.HoldTimeMs = types.DefaultHoldTimeMs
	}
	return s.seq.Start(cfg, timex.NowMs())
}

// -----------------------------------------------------------------------------
// Node configuration
// -----------------------------------------------------------------------------

func (s *Service) handleConfig(payload any) {
	switch v := payload.(type) {
	case types.DMXConfig:
		s.applyConfig(v)
	case map[string]any:
		s.applyConfig(types.DMXConfig{
			FixtureBase: uint16(numField(v, "fixture_base")),
			FrameHz:     numField(v, "frame_hz"),
			FadeMs:      numField(v, "fade_ms"),
		})
	}
}

func (s *Service) applyConfig(cfg types.DMXConfig) {
	if cfg.FrameHz > 0 {
		s.tx.SetFrameRate(cfg.FrameHz)
	}
	if cfg.FadeMs > 0 {
		s.seq.SetFadeDuration(cfg.FadeMs)
	}
	if cfg.FixtureBase > 0 && cfg.FixtureBase != s.fix.Base {
		if s.seq.Active() {
			println("[dmx] fixture base change ignored: demo active")
			return
		}
		s.fix = NewFixture(cfg.FixtureBase)
		s.fade = NewFade(&s.buf, s.fix.ColorChannels())
		s.seq.fade = s.fade
		s.seq.fix = s.fix
	}
}

// numField pulls a numeric JSON field regardless of decoder representation.
func numField(m map[string]any, key string) uint32 {
	switch n := m[key].(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return uint32(n)
	case int:
		if n < 0 {
			return 0
		}
		return uint32(n)
	case int64:
		if n < 0 {
			return 0
		}
		return uint32(n)
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Replies + retained state
// -----------------------------------------------------------------------------

func (s *Service) finish(msg *bus.Message, err error) {
	if err != nil {
		s.replyErr(msg, errcode.Of(err))
		return
	}
	s.replyOK(msg)
}

func (s *Service) replyOK(msg *bus.Message) {
	if !msg.CanReply() {
		return
	}
	_ = s.conn.Reply(msg, types.OKReply{OK: true}, false)
}

func (s *Service) replyErr(msg *bus.Message, code errcode.Code) {
	if !msg.CanReply() {
		return
	}
	_ = s.conn.Reply(msg, types.ErrorReply{OK: false, Error: string(code)}, false)
}

func (s *Service) pubState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(topicState,
		types.NodeState{Level: level, Status: status, TSms: timex.NowMs()}, true))
}

func (s *Service) pubDemo() {
	preset := -1
	if s.seq.Active() {
		preset = s.seq.PresetIndex()
	}
	s.conn.Publish(s.conn.NewMessage(topicDemo,
		types.DemoState{Active: s.seq.Active(), Preset: preset, TSms: timex.NowMs()}, true))
}
