//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 timer peripheral: a free-running 64-bit microsecond counter
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // raw high word
	timerTIMERAWL = timerBase + 0x0C // raw low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// uptimeMicros reads the full 64-bit timer
func uptimeMicros() uint64 {
	// high, low, high again to detect a carry between the reads
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}
