package protocol

import "sync/atomic"

// Dispatcher handles one message from the host.
// It decodes its own arguments and advances data past them.
type Dispatcher func(msgID uint16, data *[]byte) error

// Transport is the clock's end of the link.
// It validates frames, acknowledges them, and dispatches the messages of
// every frame that arrives in sequence.
type Transport struct {
	scanner  *Scanner
	nextSeq  uint32 // sequence expected from the host
	output   OutputBuffer
	dispatch Dispatcher

	onReset func()
	onFlush func()
	onError func(msgID uint16, err error)

	frames uint32
}

// NewTransport writes acknowledgements and responses to output
func NewTransport(output OutputBuffer, dispatch Dispatcher) *Transport {
	t := &Transport{
		scanner:  NewScanner(),
		nextSeq:  SeqDest,
		output:   output,
		dispatch: dispatch,
	}
	t.scanner.OnSync = t.sendAck
	return t
}

// Receive consumes every complete frame in input
func (t *Transport) Receive(input InputBuffer) {
	n := t.scanner.Scan(input.Data(), t.handleFrame)
	if n > 0 {
		input.Pop(n)
	}
}

func (t *Transport) handleFrame(f Frame) {
	expected := uint8(atomic.LoadUint32(&t.nextSeq))

	// the host restarts its sequence at SeqDest when it reconnects
	if f.Seq == SeqDest && expected != SeqDest {
		expected = SeqDest
		atomic.StoreUint32(&t.nextSeq, SeqDest)
		if t.onReset != nil {
			t.onReset()
		}
	}

	if f.Seq == expected {
		atomic.StoreUint32(&t.nextSeq, uint32(NextSeq(f.Seq)))
		atomic.AddUint32(&t.frames, 1)
		t.parseFrame(f.Payload)
	}
	// out-of-sequence frames are answered with the expected sequence, which the host treats as a NAK
	t.sendAck()
}

func (t *Transport) parseFrame(payload []byte) {
	var msgID uint16
	defer func() {
		if r := recover(); r != nil {
			t.scanner.Reset()
			t.report(msgID, errHandlerPanic)
		}
	}()

	for len(payload) > 0 {
		id, err := DecodeVLQUint(&payload)
		if err != nil {
			t.report(0, err)
			return
		}
		msgID = uint16(id)
		if t.dispatch == nil {
			continue
		}
		if err := t.dispatch(msgID, &payload); err != nil {
			// arguments of the failed message are not consumed reliably
			t.report(msgID, err)
			return
		}
	}
}

func (t *Transport) report(msgID uint16, err error) {
	if t.onError != nil {
		t.onError(msgID, err)
	}
}

func (t *Transport) sendAck() {
	seq := uint8(atomic.LoadUint32(&t.nextSeq))
	crc := CRC16([]byte{FrameMin, seq})
	t.output.Output([]byte{FrameMin, seq, uint8(crc >> 8), uint8(crc), SyncByte})
	if t.onFlush != nil {
		t.onFlush()
	}
}

// EncodeFrame writes one frame whose payload is produced by body
func (t *Transport) EncodeFrame(body func(output OutputBuffer)) {
	start := t.output.CurPosition()
	t.output.Output([]byte{0, uint8(atomic.LoadUint32(&t.nextSeq))})
	body(t.output)

	n := len(t.output.DataSince(start))
	t.output.Update(start, uint8(n+TrailerSize))
	crc := CRC16(t.output.DataSince(start))
	t.output.Output([]byte{uint8(crc >> 8), uint8(crc), SyncByte})
}

// Send writes one message in its own frame
func (t *Transport) Send(msgID uint16, args func(output OutputBuffer)) {
	t.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(msgID))
		if args != nil {
			args(output)
		}
	})
}

// Frames returns the number of in-sequence frames dispatched
func (t *Transport) Frames() uint32 {
	return atomic.LoadUint32(&t.frames)
}

// Dropped returns the number of corrupt frames discarded
func (t *Transport) Dropped() uint32 {
	return t.scanner.Dropped
}

// Reset forgets the host's sequence, for example after a USB reconnect
func (t *Transport) Reset() {
	t.scanner.Reset()
	atomic.StoreUint32(&t.nextSeq, SeqDest)
	if t.onReset != nil {
		t.onReset()
	}
}

// SetResetCallback is called when the host restarts its sequence
func (t *Transport) SetResetCallback(fn func()) {
	t.onReset = fn
}

// SetFlushCallback is called after every acknowledgement so it can leave ahead of responses
func (t *Transport) SetFlushCallback(fn func()) {
	t.onFlush = fn
}

// SetErrorCallback receives the message ID and error of every failed dispatch
func (t *Transport) SetErrorCallback(fn func(msgID uint16, err error)) {
	t.onError = fn
}
