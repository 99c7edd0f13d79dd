package dmx

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"dmxnode-go/bus"
	"dmxnode-go/services/store"
	"dmxnode-go/types"
)

// countingLine is a race-safe line fake for tests that run the service loop
// in a goroutine.
type countingLine struct {
	frames atomic.Uint32
}

func (l *countingLine) EnableDriver(bool) {}
func (l *countingLine) SendBreak(breakLow, markAfter time.Duration) error {
	l.frames.Add(1)
	return nil
}
func (l *countingLine) SetBaudRate(uint32) error      { return nil }
func (l *countingLine) SetFormat(_, _, _ uint8) error { return nil }
func (l *countingLine) Write(p []byte) (int, error)   { return len(p), nil }
func (l *countingLine) Flush() error                  { return nil }

type serviceRig struct {
	bus    *bus.Bus
	cli    *bus.Connection
	line   *countingLine
	store  *store.Store
	svc    *Service
	cancel context.CancelFunc
}

func newServiceRig(t *testing.T) *serviceRig {
	t.Helper()
	r := &serviceRig{
		bus:   bus.NewBus(32),
		line:  &countingLine{},
		store: store.New(&store.MemNV{}),
	}
	r.cli = r.bus.NewConnection("test-client")
	r.svc = New(r.bus.NewConnection("dmx"), r.line, r.store, types.DMXConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.svc.Run(ctx)
	t.Cleanup(cancel)

	// Wait for the retained "ready" state so the control subscription exists
	// before the first request is published.
	r.waitRetained(t, bus.T("dmx", "state"), func(p any) bool {
		s, ok := p.(types.NodeState)
		return ok && s.Level == "ready"
	})
	return r
}

func (r *serviceRig) request(t *testing.T, verb string, payload any) *bus.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg := r.cli.NewMessage(bus.T("dmx", "ctrl", verb), payload, false)
	reply, err := r.cli.RequestWait(ctx, msg)
	if err != nil {
		t.Fatalf("%s: no reply: %v", verb, err)
	}
	return reply
}

func (r *serviceRig) requestOK(t *testing.T, verb string, payload any) {
	t.Helper()
	reply := r.request(t, verb, payload)
	if _, ok := reply.Payload.(types.OKReply); !ok {
		t.Fatalf("%s: expected OK, got %#v", verb, reply.Payload)
	}
}

func (r *serviceRig) requestErr(t *testing.T, verb string, payload any, code string) {
	t.Helper()
	reply := r.request(t, verb, payload)
	e, ok := reply.Payload.(types.ErrorReply)
	if !ok {
		t.Fatalf("%s: expected error reply, got %#v", verb, reply.Payload)
	}
	if e.Error != code {
		t.Fatalf("%s: error = %q, want %q", verb, e.Error, code)
	}
}

// waitRetained subscribes and waits for a retained (or fresh) message on the
// topic that passes accept.
func (r *serviceRig) waitRetained(t *testing.T, topic bus.Topic, accept func(any) bool) any {
	t.Helper()
	sub := r.cli.Subscribe(topic)
	defer r.cli.Unsubscribe(sub)

	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-sub.Channel():
			if accept(msg.Payload) {
				return msg.Payload
			}
		case <-deadline:
			t.Fatalf("no matching retained message on %v", topic)
		}
	}
}

func TestServiceReportsReady(t *testing.T) {
	r := newServiceRig(t)
	r.waitRetained(t, bus.T("dmx", "state"), func(p any) bool {
		s, ok := p.(types.NodeState)
		return ok && s.Level == "ready"
	})
}

func TestServiceSetCommand(t *testing.T) {
	r := newServiceRig(t)

	r.requestOK(t, "set", types.SetChannel{Channel: 5, Value: 128})
	r.requestErr(t, "set", types.SetChannel{Channel: 600, Value: 1}, "invalid_channel")
	r.requestErr(t, "set", types.SetChannel{Channel: 5, Value: 300}, "invalid_value")
	r.requestErr(t, "set", "not a struct", "invalid_payload")

	// Stop the loop, then inspect the buffer without racing it.
	r.cancel()
	r.waitRetained(t, bus.T("dmx", "state"), func(p any) bool {
		s, ok := p.(types.NodeState)
		return ok && s.Level == "stopped"
	})
	if got := r.svc.buf.Get(5); got != 128 {
		t.Fatalf("channel 5 = %d, want 128", got)
	}
}

func TestServiceBatchCommand(t *testing.T) {
	r := newServiceRig(t)

	r.requestOK(t, "batch", types.SetBatch{Pairs: []types.ChannelValue{
		{Channel: 1, Value: 1},
		{Channel: 2, Value: 2},
	}})
	r.requestErr(t, "batch", types.SetBatch{}, "invalid_batch")
	r.requestErr(t, "batch", types.SetBatch{Pairs: []types.ChannelValue{
		{Channel: 1, Value: 9},
		{Channel: 0, Value: 9},
	}}, "invalid_channel")

	r.cancel()
	r.waitRetained(t, bus.T("dmx", "state"), func(p any) bool {
		s, ok := p.(types.NodeState)
		return ok && s.Level == "stopped"
	})
	if r.svc.buf.Get(1) != 1 || r.svc.buf.Get(2) != 2 {
		t.Fatalf("batch not applied: ch1=%d ch2=%d", r.svc.buf.Get(1), r.svc.buf.Get(2))
	}
}

func TestServiceUnknownVerb(t *testing.T) {
	r := newServiceRig(t)
	r.requestErr(t, "strobe_all", nil, "unsupported")
}

func TestServiceDemoStartStop(t *testing.T) {
	r := newServiceRig(t)

	r.requestErr(t, "demo_start",
		types.DemoStart{Presets: []types.Preset{demoP0}}, "invalid_preset_count")

	r.requestOK(t, "demo_start", types.DemoStart{
		Presets: []types.Preset{demoP0, demoP1},
	})
	r.waitRetained(t, bus.T("dmx", "demo"), func(p any) bool {
		s, ok := p.(types.DemoState)
		return ok && s.Active
	})

	// Defaults were applied and persisted.
	cfg, ok := r.store.Load()
	if !ok {
		t.Fatalf("demo_start did not persist")
	}
	if cfg.MoveDelayMs != types.DefaultMoveDelayMs || cfg.HoldTimeMs != types.DefaultHoldTimeMs {
		t.Fatalf("persisted timings %d/%d, want defaults", cfg.MoveDelayMs, cfg.HoldTimeMs)
	}

	r.requestOK(t, "demo_stop", types.DemoStop{})
	r.waitRetained(t, bus.T("dmx", "demo"), func(p any) bool {
		s, ok := p.(types.DemoState)
		return ok && !s.Active
	})
	if _, ok := r.store.Load(); ok {
		t.Fatalf("demo_stop left the stored config valid")
	}
}

func TestServiceAutoResume(t *testing.T) {
	nv := &store.MemNV{}
	st := store.New(nv)
	if err := st.Save(types.DemoConfig{
		Presets:     []types.Preset{demoP0, demoP1},
		MoveDelayMs: 100,
		HoldTimeMs:  200,
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	b := bus.NewBus(32)
	svc := New(b.NewConnection("dmx"), &countingLine{}, st, types.DMXConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Run(ctx)

	cli := b.NewConnection("observer")
	sub := cli.Subscribe(bus.T("dmx", "demo"))
	defer cli.Unsubscribe(sub)

	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-sub.Channel():
			if s, ok := msg.Payload.(types.DemoState); ok && s.Active {
				return // resumed from storage without any command
			}
		case <-deadline:
			t.Fatalf("demo did not auto-resume from the stored config")
		}
	}
}

func TestServiceTransmitsFrames(t *testing.T) {
	r := newServiceRig(t)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.line.frames.Load() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("transmitter sent %d frames in 2s, want at least 2", r.line.frames.Load())
}
