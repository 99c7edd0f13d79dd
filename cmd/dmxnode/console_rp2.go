//go:build rp2040

package main

import (
	"context"
	"time"

	"dmxnode-go/bus"
)

const startupDelay = 2 * time.Second

// On the MCU there is no shell; control arrives over the bus from other
// on-device services.
func startConsole(context.Context, *bus.Connection) {}
