package heartbeat

import (
	"context"
	"time"

	"dmxnode-go/bus"
	"dmxnode-go/types"
	"dmxnode-go/x/timex"
)

var (
	topicConfig = bus.T("config", "heartbeat")
	topicBeat   = bus.T("node", "heartbeat")
)

// Service publishes a retained liveness beat so bus observers can tell a
// quiet node from a dead one. DMX itself carries no acknowledgements.
type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case <-tick.C:
			conn.Publish(conn.NewMessage(topicBeat,
				types.NodeState{Level: "ready", TSms: timex.NowMs()}, true))
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv) * time.Second)
					println("[heartbeat] interval set")
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
