package main

import (
	"context"
	"time"

	"dmxnode-go/bus"
	"dmxnode-go/internal/platform"
	"dmxnode-go/services/config"
	"dmxnode-go/services/dmx"
	"dmxnode-go/services/heartbeat"
	"dmxnode-go/services/store"
	"dmxnode-go/types"
)

const nodeID = "stagebar"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(startupDelay)
	println("boot", nodeID)

	ctx := context.WithValue(context.Background(), config.CtxNodeKey, nodeID)

	b := bus.NewBus(16)

	// Config first so its retained sections are waiting for everyone else.
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	svc := dmx.New(
		b.NewConnection("dmx"),
		platform.NewLine(),
		store.New(platform.NewNV()),
		types.DMXConfig{FrameHz: dmx.DefaultFrameHz, FadeMs: dmx.DefaultFadeMs},
	)

	startConsole(ctx, b.NewConnection("console"))

	svc.Run(ctx)
}
