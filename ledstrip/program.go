package ledstrip

import (
	"errors"

	"lcdclock/core"
)

// PIO instruction memory size
const maxInstructions = 32

// Bit-cell phases in PIO cycles: line high for T1 on every bit, kept high
// for T2 more on a one, then low for T3.
const (
	T1 = 2
	T2 = 5
	T3 = 3

	CyclesPerBit = T1 + T2 + T3

	// BitRate is the LED wire rate in bits per second
	BitRate = 800_000

	// TargetHz is the PIO instruction rate the divider has to produce
	TargetHz = BitRate * CyclesPerBit
)

// PIO opcodes (bits 15:13)
const (
	opJMP uint16 = 0b000 << 13
	opOUT uint16 = 0b011 << 13
	opMOV uint16 = 0b101 << 13
)

// JmpCond selects the JMP condition
type JmpCond uint8

const (
	JmpAlways JmpCond = iota
	JmpXZero          // !x
	JmpXDec           // x--
	JmpYZero          // !y
	JmpYDec           // y--
	JmpXNotY          // x!=y
	JmpPin
	JmpOSRNotEmpty // !osre
)

// OutDest selects the OUT destination
type OutDest uint8

const (
	OutPins OutDest = iota
	OutX
	OutY
	OutNull
	OutPindirs
	OutPC
	OutISR
	OutExec
)

// Instruction is one PIO instruction with its side-set value and delay
type Instruction struct {
	Label string // documentation only
	word  uint16
	Side  uint8
	Delay uint8
}

// Jmp jumps to addr when cond holds
func Jmp(cond JmpCond, addr uint8) Instruction {
	return Instruction{word: opJMP | uint16(cond)<<5 | uint16(addr&0x1f)}
}

// Out shifts bits out of the OSR into dest
func Out(dest OutDest, bits uint8) Instruction {
	return Instruction{word: opOUT | uint16(dest)<<5 | uint16(bits&0x1f)}
}

// Nop encodes as "mov y, y"
func Nop() Instruction {
	return Instruction{word: opMOV | 0b010<<5 | 0b010}
}

// WithSide returns the instruction with a side-set value
func (i Instruction) WithSide(v uint8) Instruction {
	i.Side = v
	return i
}

// WithDelay returns the instruction with extra delay cycles
func (i Instruction) WithDelay(cycles uint8) Instruction {
	i.Delay = cycles
	return i
}

// Named returns the instruction with a label
func (i Instruction) Named(label string) Instruction {
	i.Label = label
	return i
}

// Cycles returns how long the instruction holds the state machine
func (i Instruction) Cycles() int {
	return 1 + int(i.Delay)
}

// Program is a PIO program with its wrap points and side-set width.
// Side-set is mandatory on every instruction (no enable bit).
type Program struct {
	Instructions []Instruction
	SideSetBits  uint8
	WrapTarget   uint8
	Wrap         uint8
}

var (
	errProgramTooLarge = errors.New("PIO program too large")
	errDelayTooLarge   = errors.New("PIO delay exceeds field width")
	errSideTooLarge    = errors.New("PIO side-set value exceeds field width")
	errBadWrap         = errors.New("PIO wrap outside program")
)

// Assemble encodes the program into instruction words for origin 0
func (p Program) Assemble() ([]uint16, error) {
	if len(p.Instructions) > maxInstructions {
		return nil, core.Wrap(core.ErrSetupFailure, errProgramTooLarge)
	}
	if int(p.Wrap) >= len(p.Instructions) || p.WrapTarget > p.Wrap {
		return nil, core.Wrap(core.ErrSetupFailure, errBadWrap)
	}

	delayBits := 5 - p.SideSetBits
	maxDelay := uint8(1)<<delayBits - 1
	maxSide := uint8(1)<<p.SideSetBits - 1

	words := make([]uint16, len(p.Instructions))
	for i, in := range p.Instructions {
		if in.Delay > maxDelay {
			return nil, core.Wrap(core.ErrSetupFailure, errDelayTooLarge)
		}
		if in.Side > maxSide {
			return nil, core.Wrap(core.ErrSetupFailure, errSideTooLarge)
		}
		field := uint16(in.Side)<<delayBits | uint16(in.Delay)
		words[i] = in.word | field<<8
	}
	return words, nil
}

// WS2812Program is the bit-cell generator. Each bit costs CyclesPerBit cycles:
//
//	bitloop: out x, 1       side 0 [T3-1]  ; line low, fetch next bit
//	         jmp !x do_zero side 1 [T1-1]  ; line high
//	         jmp bitloop    side 1 [T2-1]  ; one: stay high
//	do_zero: nop            side 0 [T2-1]  ; zero: go low
func WS2812Program() Program {
	const doZero = 3
	return Program{
		Instructions: []Instruction{
			Out(OutX, 1).WithSide(0).WithDelay(T3 - 1).Named("bitloop"),
			Jmp(JmpXZero, doZero).WithSide(1).WithDelay(T1 - 1),
			Jmp(JmpAlways, 0).WithSide(1).WithDelay(T2 - 1),
			Nop().WithSide(0).WithDelay(T2 - 1).Named("do_zero"),
		},
		SideSetBits: 1,
		WrapTarget:  0,
		Wrap:        3,
	}
}
