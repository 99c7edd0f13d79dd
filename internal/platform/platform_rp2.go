//go:build rp2040

package platform

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"dmxnode-go/services/dmx"
	"dmxnode-go/services/store"
)

// Default wiring for the RP2040 node: UART0 TX on GP0, RS-485 driver enable
// on GP2 (MAX485 DE/RE tied together).
const (
	txPin = machine.GP0
	rxPin = machine.GP1
	dePin = machine.GP2
)

// NewLine configures UART0 for DMX framing and returns the transmit line.
func NewLine() dmx.Line {
	de := dePin
	de.Configure(machine.PinConfig{Mode: machine.PinOutput})
	de.Low()

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{BaudRate: dmx.BaudRate, TX: txPin, RX: rxPin})
	_ = u.SetFormat(dmx.DataBits, dmx.StopBits, uartx.ParityNone)
	return &rp2Line{uart: u, tx: txPin, de: de}
}

// NewNV returns the flash-backed record slot for the demo configuration.
func NewNV() store.NV { return store.NewFlashNV() }

type rp2Line struct {
	uart    *uartx.UART
	tx      machine.Pin
	de      machine.Pin
	pending int
}

func (l *rp2Line) EnableDriver(on bool) { l.de.Set(on) }

// SendBreak takes the TX pin away from the UART and drives the line levels
// manually, then hands the pin back. Callers restore baud and format.
func (l *rp2Line) SendBreak(breakLow, markAfter time.Duration) error {
	l.tx.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.tx.Low()
	busyDelay(breakLow)
	l.tx.High()
	busyDelay(markAfter)
	l.tx.Configure(machine.PinConfig{Mode: machine.PinUART})
	return nil
}

func (l *rp2Line) SetBaudRate(baud uint32) error {
	l.uart.SetBaudRate(baud)
	return nil
}

func (l *rp2Line) SetFormat(databits, stopbits, parity uint8) error {
	var par uartx.UARTParity
	switch parity {
	case 1:
		par = uartx.ParityEven
	case 2:
		par = uartx.ParityOdd
	default:
		par = uartx.ParityNone
	}
	return l.uart.SetFormat(databits, stopbits, par)
}

func (l *rp2Line) Write(p []byte) (int, error) {
	n, err := l.uart.Write(p)
	l.pending += n
	return n, err
}

// Flush waits out the airtime of everything written since the last flush:
// 250 kbaud 8N2 is 11 bit times per byte, 44 us.
func (l *rp2Line) Flush() error {
	byteTime := 11 * time.Second / dmx.BaudRate
	time.Sleep(time.Duration(l.pending) * byteTime)
	l.pending = 0
	return nil
}

// busyDelay spins for d. Only the sub-100 us break/MAB line states use it;
// timer granularity is too coarse there.
func busyDelay(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}
