package display

// Panel is one of the six displays, left to right
type Panel uint8

const (
	D1 Panel = iota
	D2
	D3
	D4
	D5
	D6
)

// NumPanels is the number of panels sharing the bus
const NumPanels = 6

// Panels lists every panel in left-to-right order
var Panels = [NumPanels]Panel{D1, D2, D3, D4, D5, D6}

// The decoder on the select lines numbers the panels in reverse
var selectCodes = [NumPanels]uint8{
	D1: 5,
	D2: 4,
	D3: 3,
	D4: 2,
	D5: 1,
	D6: 0,
}

// deselectCode drives every select line high, which the decoder maps to no panel
const deselectCode = 0b111

// Valid reports whether p names one of the six panels
func (p Panel) Valid() bool {
	return p < NumPanels
}

// SelectCode returns the 3-bit code asserted on CSA1 (bit 0), CSA2 (bit 1) and CSA3 (bit 2)
func (p Panel) SelectCode() uint8 {
	return selectCodes[p]
}

func (p Panel) String() string {
	if !p.Valid() {
		return "D?"
	}
	return string([]byte{'D', '1' + byte(p)})
}

// PanelFromCode returns the panel selected by a 3-bit code
func PanelFromCode(code uint8) (Panel, bool) {
	for p, c := range selectCodes {
		if c == code {
			return Panel(p), true
		}
	}
	return 0, false
}
