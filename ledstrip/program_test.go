package ledstrip

import (
	"errors"
	"testing"

	"lcdclock/core"
)

func TestWS2812ProgramEncoding(t *testing.T) {
	words, err := WS2812Program().Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	want := []uint16{
		0x6221, // out x, 1        side 0 [2]
		0x1123, // jmp !x 3        side 1 [1]
		0x1400, // jmp 0           side 1 [4]
		0xa442, // nop             side 0 [4]
	}
	if len(words) != len(want) {
		t.Fatalf("got %d words, want %d", len(words), len(want))
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d = 0x%04x, want 0x%04x", i, words[i], want[i])
		}
	}
}

// runBits interprets the assembled program for the small instruction subset
// it uses and returns the side-set pin level for every PIO cycle.
func runBits(t *testing.T, p Program, words []uint16, bits []bool) []bool {
	t.Helper()
	var wave []bool
	pc := uint8(p.WrapTarget)
	var x uint32
	next := 0

	for next < len(bits) || pc != p.WrapTarget {
		w := words[pc]
		side := w>>12&1 == 1
		delay := int(w >> 8 & 0xf)
		jumped := false

		switch w >> 13 {
		case 0b011: // out x, 1
			if next >= len(bits) {
				t.Fatal("program pulled more bits than supplied")
			}
			x = 0
			if bits[next] {
				x = 1
			}
			next++
		case 0b000:
			cond := w >> 5 & 0x7
			addr := uint8(w & 0x1f)
			if cond == uint16(JmpAlways) || cond == uint16(JmpXZero) && x == 0 {
				pc = addr
				jumped = true
			}
		case 0b101: // nop
		default:
			t.Fatalf("unexpected opcode in word 0x%04x", w)
		}

		for i := 0; i <= delay; i++ {
			wave = append(wave, side)
		}
		if !jumped {
			if pc == p.Wrap {
				pc = p.WrapTarget
			} else {
				pc++
			}
		}
	}
	return wave
}

func highCycles(cell []bool) int {
	n := 0
	for _, v := range cell {
		if v {
			n++
		}
	}
	return n
}

func TestWS2812BitTiming(t *testing.T) {
	prog := WS2812Program()
	words, err := prog.Assemble()
	if err != nil {
		t.Fatal(err)
	}

	bits := []bool{true, false, false, true, true, false}
	wave := runBits(t, prog, words, bits)

	if len(wave) != len(bits)*CyclesPerBit {
		t.Fatalf("waveform is %d cycles, want %d", len(wave), len(bits)*CyclesPerBit)
	}

	for i, bit := range bits {
		cell := wave[i*CyclesPerBit : (i+1)*CyclesPerBit]
		want := T1
		if bit {
			want = T1 + T2
		}
		if got := highCycles(cell); got != want {
			t.Errorf("bit %d (%v): high for %d cycles, want %d", i, bit, got, want)
		}
	}
}

func TestAssembleRejects(t *testing.T) {
	tests := []struct {
		name string
		prog Program
	}{
		{
			name: "too large",
			prog: Program{Instructions: make([]Instruction, maxInstructions+1), Wrap: 0},
		},
		{
			name: "delay overflow",
			prog: Program{Instructions: []Instruction{Nop().WithDelay(16)}, SideSetBits: 1},
		},
		{
			name: "side overflow",
			prog: Program{Instructions: []Instruction{Nop().WithSide(2)}, SideSetBits: 1},
		},
		{
			name: "wrap outside",
			prog: Program{Instructions: []Instruction{Nop()}, Wrap: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.prog.Assemble(); !errors.Is(err, core.ErrSetupFailure) {
				t.Errorf("err = %v, want ErrSetupFailure", err)
			}
		})
	}
}

func TestClockDivider(t *testing.T) {
	div, err := ClockDivider(125_000_000, TargetHz)
	if err != nil {
		t.Fatalf("ClockDivider: %v", err)
	}
	if div.Int != 15 || div.Frac != 160 {
		t.Errorf("divider = %d+%d/256, want 15+160/256", div.Int, div.Frac)
	}

	// recombined ratio within 1/256 of 125/8
	exact := uint64(125_000_000) * 256
	got := uint64(div.Ratio256()) * TargetHz
	diff := exact - got
	if got > exact {
		diff = got - exact
	}
	if diff > TargetHz {
		t.Errorf("ratio off by %d/256 of a cycle", diff/TargetHz)
	}
}

func TestClockDividerRange(t *testing.T) {
	tests := []struct {
		sys, target uint32
		ok          bool
	}{
		{133_000_000, TargetHz, true},
		{TargetHz, TargetHz, true},
		{TargetHz - 1, TargetHz, false},
		{125_000_000, 0, false},
		{0xFFFF * 10, 10, true},
		{0x10000 * 10, 10, false},
	}
	for _, tt := range tests {
		_, err := ClockDivider(tt.sys, tt.target)
		if tt.ok && err != nil {
			t.Errorf("ClockDivider(%d, %d): %v", tt.sys, tt.target, err)
		}
		if !tt.ok && !errors.Is(err, core.ErrSetupFailure) {
			t.Errorf("ClockDivider(%d, %d) = %v, want ErrSetupFailure", tt.sys, tt.target, err)
		}
	}
}
