package dmx

import "time"

// DMX512-A line parameters.
const (
	BaudRate  = 250_000
	DataBits  = 8
	StopBits  = 2
	StartCode = 0x00

	BreakTime = 92 * time.Microsecond // line low, frame start
	MABTime   = 12 * time.Microsecond // mark after break, line high

	DefaultFrameHz = 40 // 25 ms frame period
)

// Line is the transmit side of a DMX bus. Implementations wrap a hardware
// UART plus the TX and driver-enable pins (rp2040 build) or a recording fake
// (host build and tests).
//
// SendBreak owns the only busy-wait in the system: it holds TX low for the
// break and high for the mark-after-break by taking manual control of the
// pin. Callers restore framing with SetBaudRate/SetFormat afterwards, the
// same way the serial peripheral is stopped and restarted around a break.
type Line interface {
	// EnableDriver gates the RS-485 line driver.
	EnableDriver(on bool)

	// SendBreak drives the line low for breakLow, then high for markAfter.
	// Both are minimum durations; overshoot is harmless per DMX512-A.
	SendBreak(breakLow, markAfter time.Duration) error

	// SetBaudRate / SetFormat restore normal asynchronous framing after a
	// break. Parity: 0 none, 1 even, 2 odd.
	SetBaudRate(baud uint32) error
	SetFormat(databits, stopbits, parity uint8) error

	Write(p []byte) (int, error)

	// Flush blocks until all written bytes are on the wire.
	Flush() error
}
