package store

// MemNV is an in-memory record slot. Fresh instances read as all zeroes,
// which models erased storage: present, readable, carrying no valid marker.
type MemNV struct {
	data [RecordSize]byte
}

func (m *MemNV) ReadRecord(buf []byte) error {
	copy(buf, m.data[:])
	return nil
}

func (m *MemNV) WriteRecord(data []byte) error {
	if len(data) > RecordSize {
		return errShortSlot
	}
	copy(m.data[:], data)
	return nil
}
