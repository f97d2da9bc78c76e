// Package ledstrip drives a WS2812 strip from a PIO state machine.
//
// The strip shows one color at a time: Display pushes the same GRB word
// once per LED.
package ledstrip

import "lcdclock/core"

// TxFIFO is the transmit side of a PIO state machine.
// rp2-pio's StateMachine satisfies it.
type TxFIFO interface {
	IsTxFIFOFull() bool
	TxPut(data uint32)
}

// DefaultCount is the number of LEDs on the clock's strip
const DefaultCount = 6

// Strip is a uniform-color LED strip
type Strip struct {
	tx    TxFIFO
	count int
	color core.RGB8
}

// NewStrip wraps a running state machine. count <= 0 selects DefaultCount.
func NewStrip(tx TxFIFO, count int) *Strip {
	if count <= 0 {
		count = DefaultCount
	}
	return &Strip{tx: tx, count: count}
}

// Len returns the number of LEDs
func (s *Strip) Len() int {
	return s.count
}

// Color returns the last color displayed
func (s *Strip) Color() core.RGB8 {
	return s.color
}

// Pack builds the wire word: green, red, blue from the top byte down, low byte unused.
// The state machine shifts it out MSB first with a 24-bit autopull threshold.
func Pack(r, g, b uint8) uint32 {
	return uint32(g)<<24 | uint32(r)<<16 | uint32(b)<<8
}

// Display sets every LED to (r, g, b).
// It spins while the TX FIFO is full, so it returns once the last word is queued.
func (s *Strip) Display(r, g, b uint8) {
	word := Pack(r, g, b)
	for i := 0; i < s.count; i++ {
		for s.tx.IsTxFIFOFull() {
		}
		s.tx.TxPut(word)
	}
	s.color = core.RGB8{R: r, G: g, B: b}
}

// SetColor is Display for a core.RGB8
func (s *Strip) SetColor(c core.RGB8) {
	s.Display(c.R, c.G, c.B)
}
