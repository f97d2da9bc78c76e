package display

// ST7789 opcodes used by the panels
const (
	SLPOUT    = 0x11 // sleep out
	INVON     = 0x21 // display inversion on
	DISPON    = 0x29 // display on
	CASET     = 0x2A // column address set
	RASET     = 0x2B // row address set
	RAMWR     = 0x2C // memory write
	MADCTL    = 0x36 // memory data access control
	COLMOD    = 0x3A // interface pixel format
	PORCTRL   = 0xB2 // porch setting
	GCTRL     = 0xB7 // gate control
	VCOMS     = 0xBB
	LCMCTRL   = 0xC0
	VDVVRHEN  = 0xC2 // VDV and VRH command enable
	VRHS      = 0xC3
	VDVS      = 0xC4
	FRCTRL2   = 0xC6 // frame rate control in normal mode
	PWCTRL1   = 0xD0 // power control 1
	PVGAMCTRL = 0xE0 // positive voltage gamma
	NVGAMCTRL = 0xE1 // negative voltage gamma
)

type initStep struct {
	cmd  byte
	data []byte
}

// Panel bring-up sequence. The voltage and gamma values come from the
// panel vendor's sample code and are not derived.
var initSequence = []initStep{
	{MADCTL, []byte{0x00}},
	{COLMOD, []byte{0x55}}, // 16 bits/pixel
	{PORCTRL, []byte{0x0C, 0x0C, 0x00, 0x33, 0x33}},
	{GCTRL, []byte{0x35}},
	{VCOMS, []byte{0x19}},
	{LCMCTRL, []byte{0x2C}},
	{VDVVRHEN, []byte{0x01}},
	{VRHS, []byte{0x12}},
	{VDVS, []byte{0x20}},
	{FRCTRL2, []byte{0x0F}},
	{PWCTRL1, []byte{0xA4, 0xA1}},
	{PVGAMCTRL, []byte{0xD0, 0x04, 0x0D, 0x11, 0x13, 0x2B, 0x3F, 0x54, 0x4C, 0x18, 0x0D, 0x0B, 0x1F, 0x23}},
	{NVGAMCTRL, []byte{0xD0, 0x04, 0x0C, 0x11, 0x13, 0x2C, 0x3F, 0x44, 0x51, 0x2F, 0x1F, 0x1F, 0x20, 0x23}},
	{INVON, nil},
	{SLPOUT, nil},
	{DISPON, nil},
}
