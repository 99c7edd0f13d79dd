//go:build !rp2040

package store

import (
	"os"

	"dmxnode-go/errcode"
)

var errShortSlot = &errcode.E{C: errcode.StoreShort, Op: "store.write"}

// FileNV keeps the record in a small file, giving the host build the same
// power-loss persistence the MCU gets from flash. A missing file reads as
// zeroes (erased storage).
type FileNV struct {
	Path string
}

func (f *FileNV) ReadRecord(buf []byte) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			for i := range buf {
				buf[i] = 0
			}
			return nil
		}
		return &errcode.E{C: errcode.StoreIO, Op: "store.read", Err: err}
	}
	for i := range buf {
		buf[i] = 0
	}
	copy(buf, data)
	return nil
}

func (f *FileNV) WriteRecord(data []byte) error {
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return &errcode.E{C: errcode.StoreIO, Op: "store.write", Err: err}
	}
	return nil
}
