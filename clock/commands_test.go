package clock

import (
	"strings"
	"testing"
	"time"

	"lcdclock/core"
	"lcdclock/display"
	"lcdclock/ledstrip"
	"lcdclock/protocol"
)

type reply struct {
	name string
	args []uint32
}

// host plays the other end of the link against a fixture
type host struct {
	t    *testing.T
	link *Link
	out  *protocol.ScratchOutput
	seq  uint8
	ids  map[string]uint16
	msgs map[uint16]string
}

func newHost(t *testing.T, f *fixture) *host {
	out := protocol.NewScratchOutput()
	l := NewLink(f.clock, out)
	h := &host{t: t, link: l, out: out, seq: protocol.SeqDest}
	h.ids = core.ParseDictionary(l.Dictionary())
	h.msgs = make(map[uint16]string)
	for name, id := range h.ids {
		h.msgs[id] = name
	}
	return h
}

// send delivers one command and returns the replies, decoding every
// argument as an unsigned VLQ except env's signed ones
func (h *host) send(name string, args ...uint32) []reply {
	h.t.Helper()
	id, ok := h.ids[name]
	if !ok {
		h.t.Fatalf("no %q in dictionary", name)
	}
	return h.sendID(id, args...)
}

func (h *host) sendID(id uint16, args ...uint32) []reply {
	h.t.Helper()
	payload := protocol.NewScratchOutput()
	protocol.EncodeVLQUint(payload, uint32(id))
	for _, a := range args {
		protocol.EncodeVLQUint(payload, a)
	}
	frame, err := protocol.AppendFrame(nil, h.seq, payload.Result())
	if err != nil {
		h.t.Fatal(err)
	}
	h.seq = protocol.NextSeq(h.seq)

	h.out.Reset()
	h.link.Receive(protocol.NewSliceInputBuffer(frame))

	var replies []reply
	protocol.NewScanner().Scan(h.out.Result(), func(f protocol.Frame) {
		if f.IsAck() {
			return
		}
		data := f.Payload
		msgID, err := protocol.DecodeVLQUint(&data)
		if err != nil {
			h.t.Fatal(err)
		}
		r := reply{name: h.msgs[uint16(msgID)]}
		for len(data) > 0 {
			if r.name == protocol.MsgEnv {
				v, err := protocol.DecodeVLQInt(&data)
				if err != nil {
					h.t.Fatal(err)
				}
				r.args = append(r.args, uint32(v))
				continue
			}
			if r.name == protocol.MsgIdentifyResponse && len(r.args) == 1 {
				b, err := protocol.DecodeVLQBytes(&data)
				if err != nil {
					h.t.Fatal(err)
				}
				for _, c := range b {
					r.args = append(r.args, uint32(c))
				}
				continue
			}
			v, err := protocol.DecodeVLQUint(&data)
			if err != nil {
				h.t.Fatal(err)
			}
			r.args = append(r.args, v)
		}
		replies = append(replies, r)
	})
	return replies
}

func (h *host) expectDone(name string, args ...uint32) {
	h.t.Helper()
	got := h.send(name, args...)
	if len(got) != 1 || got[0].name != protocol.MsgDone || got[0].args[0] != uint32(h.ids[name]) {
		h.t.Fatalf("%s: replies %+v, want done", name, got)
	}
}

func (h *host) expectError(name string, code uint8, args ...uint32) {
	h.t.Helper()
	got := h.send(name, args...)
	if len(got) != 1 || got[0].name != protocol.MsgError {
		h.t.Fatalf("%s: replies %+v, want error", name, got)
	}
	if got[0].args[0] != uint32(h.ids[name]) || got[0].args[1] != uint32(code) {
		h.t.Errorf("%s: error %v, want cmd %d code %d", name, got[0].args, h.ids[name], code)
	}
}

func TestDictionaryOrder(t *testing.T) {
	h := newHost(t, newFixture(t))
	if h.ids[protocol.MsgIdentifyResponse] != protocol.IdentifyResponseID || h.ids[protocol.MsgIdentify] != protocol.IdentifyID {
		t.Errorf("fixed ids moved: %v", h.ids)
	}
	for _, name := range []string{
		protocol.MsgError, protocol.MsgDone, protocol.MsgFill, protocol.MsgBrightness, protocol.MsgStrip,
		protocol.MsgStripMode, protocol.MsgGetTime, protocol.MsgTime, protocol.MsgSetTime,
		protocol.MsgGetEnv, protocol.MsgEnv, protocol.MsgShowTime, protocol.MsgDebug,
	} {
		if _, ok := h.ids[name]; !ok {
			t.Errorf("%s missing from dictionary", name)
		}
	}
	if !strings.Contains(h.link.Dictionary(), "fill "+protocol.FmtFill+"\n") {
		t.Errorf("dictionary lacks fill format:\n%s", h.link.Dictionary())
	}
}

func TestIdentifyChunks(t *testing.T) {
	h := newHost(t, newFixture(t))

	var dict []byte
	for offset := uint32(0); ; {
		got := h.send(protocol.MsgIdentify, offset, 255)
		if len(got) != 1 || got[0].name != protocol.MsgIdentifyResponse || got[0].args[0] != offset {
			t.Fatalf("identify at %d: %+v", offset, got)
		}
		chunk := got[0].args[1:]
		if len(chunk) > protocol.IdentifyChunk {
			t.Fatalf("chunk of %d bytes", len(chunk))
		}
		for _, c := range chunk {
			dict = append(dict, byte(c))
		}
		offset += uint32(len(chunk))
		if len(chunk) < protocol.IdentifyChunk {
			break
		}
	}
	if string(dict) != h.link.Dictionary() {
		t.Errorf("reassembled dictionary differs:\n%s", dict)
	}
}

func TestFillCommand(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	h := newHost(t, f)

	h.expectDone(protocol.MsgFill, uint32(display.D3), uint32(core.Red.RGB565()))
	if got := f.ramWrites(); len(got) != 1 || got[0] != display.D3 {
		t.Errorf("fill wrote %v, want D3", got)
	}

	h.expectError(protocol.MsgFill, core.CodeOutOfBounds, 6, 0)
	h.expectError(protocol.MsgFill, core.CodeOutOfBounds, 0, 0x10000)
}

func TestBrightnessCommand(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	h := newHost(t, f)

	h.expectDone(protocol.MsgBrightness, 0x1234)
	if got := f.pwm.Duties[len(f.pwm.Duties)-1]; got != 0x1234 {
		t.Errorf("duty = 0x%04X", got)
	}
	h.expectError(protocol.MsgBrightness, core.CodeOutOfBounds, 0x10000)
}

func TestStripCommands(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	h := newHost(t, f)

	h.expectDone(protocol.MsgStrip, 10, 20, 30)
	if f.fifo.last != ledstrip.Pack(10, 20, 30) {
		t.Errorf("strip word 0x%08X", f.fifo.last)
	}
	h.expectError(protocol.MsgStrip, core.CodeOutOfBounds, 10, 256, 30)

	h.expectDone(protocol.MsgStripMode, uint32(ledstrip.ModeCyan))
	if m := f.clock.State().Strip().Mode; m != ledstrip.ModeCyan {
		t.Errorf("mode = %s", m)
	}
	h.expectError(protocol.MsgStripMode, core.CodeOutOfBounds, 42)
}

func TestTimeCommands(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	h := newHost(t, f)

	want := time.Date(2026, 10, 18, 7, 8, 9, 0, time.UTC)
	h.expectDone(protocol.MsgSetTime, uint32(want.Unix()))

	got := h.send(protocol.MsgGetTime)
	if len(got) != 1 || got[0].name != protocol.MsgTime || got[0].args[0] != uint32(want.Unix()) {
		t.Fatalf("get_time: %+v, want %d", got, want.Unix())
	}

	f.rec.Reset()
	h.expectDone(protocol.MsgShowTime)
	if n := len(f.ramWrites()); n != display.NumPanels {
		t.Errorf("show_time drew %d panels", n)
	}
}

func TestEnvCommand(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	h := newHost(t, f)

	got := h.send(protocol.MsgGetEnv)
	if len(got) != 1 || got[0].name != protocol.MsgEnv || len(got[0].args) != 3 {
		t.Fatalf("get_env: %+v", got)
	}
}

func TestEnvCommandBeforeInit(t *testing.T) {
	f := newFixture(t)
	f.env.Registers[0xD0] = 0x58
	f.clock.Init()
	h := newHost(t, f)

	got := h.send(protocol.MsgGetEnv)
	if len(got) != 1 || got[0].name != protocol.MsgError {
		t.Fatalf("get_env: %+v, want error", got)
	}
}

func TestUnknownCommandIsReported(t *testing.T) {
	h := newHost(t, newFixture(t))

	got := h.sendID(200)
	if len(got) != 1 || got[0].name != protocol.MsgError || got[0].args[1] != uint32(core.CodeUnknown) {
		t.Fatalf("replies %+v, want error with unknown kind", got)
	}
}

func TestDebugCommand(t *testing.T) {
	h := newHost(t, newFixture(t))
	t.Cleanup(func() { core.SetDebugEnabled(false) })

	h.expectDone(protocol.MsgDebug, 1)
	if !core.IsDebugEnabled() {
		t.Error("debug not enabled")
	}
	h.expectDone(protocol.MsgDebug, 0)
	if core.IsDebugEnabled() {
		t.Error("debug still enabled")
	}
	h.expectError(protocol.MsgDebug, core.CodeOutOfBounds, 2)
}
