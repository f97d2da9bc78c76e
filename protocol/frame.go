package protocol

import "errors"

// ErrFrameTooLong means a payload does not fit in one frame
var ErrFrameTooLong = errors.New("frame too long")

// Frame is one validated frame. Payload aliases the scanned buffer.
type Frame struct {
	Seq     uint8
	Payload []byte
}

// IsAck reports whether the frame is a bare acknowledgement
func (f Frame) IsAck() bool {
	return len(f.Payload) == 0
}

// AppendFrame appends a complete frame carrying payload to dst
func AppendFrame(dst []byte, seq uint8, payload []byte) ([]byte, error) {
	n := FrameMin + len(payload)
	if n > FrameMax {
		return dst, ErrFrameTooLong
	}
	start := len(dst)
	dst = append(dst, uint8(n), seq)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, uint8(crc>>8), uint8(crc), SyncByte), nil
}

// Scanner splits a byte stream into frames.
// After a corrupt frame it discards input up to the next sync byte.
type Scanner struct {
	synced bool

	// OnSync is called when the scanner regains sync after corruption
	OnSync func()

	// Dropped counts frames rejected for a bad length, sequence byte, trailer or CRC
	Dropped uint32
}

// NewScanner returns a scanner that starts in sync
func NewScanner() *Scanner {
	return &Scanner{synced: true}
}

// Reset puts the scanner back in sync
func (s *Scanner) Reset() {
	s.synced = true
}

// Scan calls fn for every complete frame in data and returns the number of
// bytes consumed. An incomplete trailing frame is left unconsumed.
func (s *Scanner) Scan(data []byte, fn func(Frame)) int {
	total := len(data)
	for len(data) > 0 {
		if !s.synced {
			i := 0
			for i < len(data) && data[i] != SyncByte {
				i++
			}
			if i == len(data) {
				data = nil
				break
			}
			data = data[i+1:]
			s.synced = true
			if s.OnSync != nil {
				s.OnSync()
			}
			continue
		}

		if data[0] == SyncByte {
			data = data[1:]
			continue
		}
		if len(data) < FrameMin {
			break
		}

		n := int(data[posLen])
		if n < FrameMin || n > FrameMax || data[posSeq]&^SeqMask != SeqDest {
			s.drop()
			continue
		}
		if len(data) < n {
			break
		}
		if data[n-trailerSync] != SyncByte {
			s.drop()
			continue
		}
		got := uint16(data[n-trailerCRC])<<8 | uint16(data[n-trailerCRC+1])
		if got != CRC16(data[:n-TrailerSize]) {
			s.drop()
			continue
		}

		f := Frame{Seq: data[posSeq], Payload: data[HeaderSize : n-TrailerSize]}
		data = data[n:]
		fn(f)
	}
	return total - len(data)
}

func (s *Scanner) drop() {
	s.synced = false
	s.Dropped++
}

var errHandlerPanic = errors.New("message handler panicked")
