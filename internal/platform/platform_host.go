//go:build !rp2040

package platform

import (
	"sync/atomic"
	"time"

	"dmxnode-go/services/dmx"
	"dmxnode-go/services/store"
)

// NewLine returns a host stand-in for the DMX line: no hardware, just a
// frame counter, so the full stack runs on a workstation.
func NewLine() dmx.Line { return &hostLine{} }

// NewNV returns a file-backed record slot so host runs survive restarts the
// way flash does on the MCU.
func NewNV() store.NV { return &store.FileNV{Path: "dmxnode.nv"} }

type hostLine struct {
	frames uint32
}

func (l *hostLine) EnableDriver(bool) {}

func (l *hostLine) SendBreak(breakLow, markAfter time.Duration) error {
	atomic.AddUint32(&l.frames, 1)
	return nil
}

func (l *hostLine) SetBaudRate(uint32) error          { return nil }
func (l *hostLine) SetFormat(_, _, _ uint8) error     { return nil }
func (l *hostLine) Write(p []byte) (int, error)       { return len(p), nil }
func (l *hostLine) Flush() error                      { return nil }
