package store

import (
	"encoding/binary"

	"dmxnode-go/errcode"
	"dmxnode-go/types"
)

// On-storage record layout (little-endian):
//
//	magic      4 bytes  "DMX1"
//	count      1 byte   number of meaningful presets (2..10)
//	moveDelay  4 bytes  ms
//	holdTime   4 bytes  ms
//	presets   110 bytes 10 x 11 slots, only count entries meaningful
//
// The record is valid only while the magic matches; Clear zeroes just the
// magic, leaving a stale payload inert until the next Save.
const (
	RecordSize = 4 + 1 + 4 + 4 + types.MaxPresets*types.PresetLen

	offMagic   = 0
	offCount   = 4
	offMove    = 5
	offHold    = 9
	offPresets = 13
)

var magic = [4]byte{'D', 'M', 'X', '1'}

// NV is one fixed-size non-volatile record slot. Read fills buf with
// RecordSize bytes; erased or never-written storage must read as something,
// not fail — whatever it reads simply won't carry the magic.
type NV interface {
	ReadRecord(buf []byte) error
	WriteRecord(data []byte) error
}

// Store persists the demo configuration with a validity marker.
type Store struct {
	nv NV
}

func New(nv NV) *Store { return &Store{nv: nv} }

// Save encodes and writes the full record, marker included.
func (s *Store) Save(cfg types.DemoConfig) error {
	n := len(cfg.Presets)
	if n < types.MinPresets || n > types.MaxPresets {
		return errcode.InvalidPresetCount
	}
	var rec [RecordSize]byte
	copy(rec[offMagic:], magic[:])
	rec[offCount] = uint8(n)
	binary.LittleEndian.PutUint32(rec[offMove:], cfg.MoveDelayMs)
	binary.LittleEndian.PutUint32(rec[offHold:], cfg.HoldTimeMs)
	for i, p := range cfg.Presets {
		if len(p) != types.PresetLen {
			return errcode.InvalidPreset
		}
		copy(rec[offPresets+i*types.PresetLen:], p)
	}
	return s.nv.WriteRecord(rec[:])
}

// Load returns the stored configuration and true when the marker is intact.
// Any mismatch, including all-zero erased storage or a read failure, is
// reported as absent, never as an error: a node without a stored demo is a
// normal condition.
func (s *Store) Load() (types.DemoConfig, bool) {
	var rec [RecordSize]byte
	if err := s.nv.ReadRecord(rec[:]); err != nil {
		return types.DemoConfig{}, false
	}
	if [4]byte(rec[offMagic:offMagic+4]) != magic {
		return types.DemoConfig{}, false
	}
	n := int(rec[offCount])
	if n < types.MinPresets || n > types.MaxPresets {
		// Marker intact but count mangled: treat as absent rather than
		// resuming a demo we cannot index safely.
		return types.DemoConfig{}, false
	}
	cfg := types.DemoConfig{
		MoveDelayMs: binary.LittleEndian.Uint32(rec[offMove:]),
		HoldTimeMs:  binary.LittleEndian.Uint32(rec[offHold:]),
		Presets:     make([]types.Preset, n),
	}
	for i := 0; i < n; i++ {
		p := make(types.Preset, types.PresetLen)
		copy(p, rec[offPresets+i*types.PresetLen:])
		cfg.Presets[i] = p
	}
	return cfg, true
}

// Clear invalidates the marker without erasing the payload.
func (s *Store) Clear() error {
	var rec [RecordSize]byte
	if err := s.nv.ReadRecord(rec[:]); err != nil {
		// Nothing readable to preserve; write a zeroed record.
		rec = [RecordSize]byte{}
	}
	for i := range rec[offMagic : offMagic+4] {
		rec[offMagic+i] = 0
	}
	return s.nv.WriteRecord(rec[:])
}
