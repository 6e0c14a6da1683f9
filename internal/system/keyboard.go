package system

import "encoding/binary"

const (
	evKey = 0x01

	// Linux input-event-codes.h
	KeyR  = 19
	KeyF4 = 62
)

// KeyHandlers maps key presses to actions. Nil handlers are ignored.
type KeyHandlers struct {
	OnRedraw func()
	OnExit   func()
}

// keyPresses extracts the codes of key-down events from a buffer of
// input_event records. Each record is a timeval of tvSize bytes followed by
// u16 type, u16 code and s32 value.
func keyPresses(buf []byte, tvSize int) []uint16 {
	eventSize := tvSize + 8
	var codes []uint16
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ == evKey && value == 1 {
			codes = append(codes, code)
		}
	}
	return codes
}

// dispatch runs the handler for code. It reports whether the reader should
// stop.
func (h KeyHandlers) dispatch(code uint16) bool {
	switch code {
	case KeyR:
		if h.OnRedraw != nil {
			h.OnRedraw()
		}
	case KeyF4:
		if h.OnExit != nil {
			h.OnExit()
			return true
		}
	}
	return false
}
