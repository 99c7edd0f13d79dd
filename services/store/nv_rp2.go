//go:build rp2040

package store

import (
	"machine"

	"dmxnode-go/errcode"
	"tinygo.org/x/drivers/flash"
)

var errShortSlot = &errcode.E{C: errcode.StoreShort, Op: "store.write"}

// FlashNV keeps the record at the start of the first sector of the external
// SPI flash. The record is far smaller than a sector, so a write is one
// erase plus one program.
type FlashNV struct {
	dev *flash.Device
}

func NewFlashNV() *FlashNV {
	dev := flash.NewSPI(
		machine.SPI1,
		machine.SPI1_SDO_PIN,
		machine.SPI1_SDI_PIN,
		machine.SPI1_SCK_PIN,
		machine.GPIO13,
	)
	_ = dev.Configure(&flash.DeviceConfig{Identifier: flash.DefaultDeviceIdentifier})
	return &FlashNV{dev: dev}
}

func (f *FlashNV) ReadRecord(buf []byte) error {
	if _, err := f.dev.ReadAt(buf, 0); err != nil {
		return &errcode.E{C: errcode.StoreIO, Op: "store.read", Err: err}
	}
	return nil
}

func (f *FlashNV) WriteRecord(data []byte) error {
	if err := f.dev.EraseSector(0); err != nil {
		return &errcode.E{C: errcode.StoreIO, Op: "store.erase", Err: err}
	}
	if _, err := f.dev.WriteAt(data, 0); err != nil {
		return &errcode.E{C: errcode.StoreIO, Op: "store.write", Err: err}
	}
	return nil
}
