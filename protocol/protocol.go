// Package protocol implements the framed control link between the clock and a host.
//
// A frame is [len][0x10|seq][payload][crc hi][crc lo][0x7E], where len counts
// the whole frame. The payload holds messages, each a VLQ message ID followed
// by VLQ arguments. A frame with an empty payload acknowledges everything
// before the sequence number it carries.
package protocol

// Version is reported in the identify dictionary
const Version = "0.1.0"

// Frame layout
const (
	HeaderSize  = 2
	TrailerSize = 3
	FrameMin    = HeaderSize + TrailerSize
	FrameMax    = 64

	posLen      = 0
	posSeq      = 1
	trailerCRC  = 3
	trailerSync = 1

	SyncByte = 0x7E
	SeqDest  = 0x10
	SeqMask  = 0x0F

	// OutputMax is the size of a firmware output scratch buffer
	OutputMax = 512
)

// NextSeq returns the sequence number following seq
func NextSeq(seq uint8) uint8 {
	return ((seq + 1) & SeqMask) | SeqDest
}
