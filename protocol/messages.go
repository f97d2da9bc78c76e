package protocol

// Message names and argument formats.
// The firmware registers them in this order, so identify_response and
// identify always hold IDs 0 and 1. The host learns the others from the
// dictionary returned by identify.
const (
	MsgIdentifyResponse = "identify_response"
	MsgIdentify         = "identify"
	MsgError            = "error"
	MsgFill             = "fill"
	MsgBrightness       = "brightness"
	MsgStrip            = "strip"
	MsgStripMode        = "strip_mode"
	MsgGetTime          = "get_time"
	MsgTime             = "time"
	MsgSetTime          = "set_time"
	MsgGetEnv           = "get_env"
	MsgEnv              = "env"
	MsgShowTime         = "show_time"
	MsgDebug            = "debug"
	MsgDone             = "done"
)

const (
	FmtIdentifyResponse = "offset=%u data=%.*s"
	FmtIdentify         = "offset=%u count=%c"
	FmtError            = "cmd=%hu kind=%c"
	FmtFill             = "panel=%c color=%hu"
	FmtBrightness       = "level=%hu"
	FmtStrip            = "r=%c g=%c b=%c"
	FmtStripMode        = "mode=%c"
	FmtTime             = "unix=%u"
	FmtSetTime          = "unix=%u"
	FmtEnv              = "temperature=%i pressure=%i humidity=%i"
	FmtDone             = "cmd=%hu"
	FmtDebug            = "enable=%c"
)

// Fixed IDs
const (
	IdentifyResponseID = 0
	IdentifyID         = 1
)

// IdentifyChunk is the most dictionary bytes one identify_response carries
const IdentifyChunk = 40
