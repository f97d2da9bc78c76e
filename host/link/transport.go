package link

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"lcdclock/protocol"

	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("transport closed")

// Message is one message received from the clock
type Message struct {
	ID   uint16
	Args []byte // VLQ arguments after the ID
}

// Transport is the host end of the link.
// It numbers outgoing frames, waits for their acknowledgements and queues
// incoming messages for Receive.
type Transport struct {
	port io.ReadWriteCloser
	log  zerolog.Logger

	seq     uint32 // next sequence to send
	scanner *protocol.Scanner
	input   *protocol.FifoBuffer

	acks      chan uint8
	responses chan Message

	writeMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewTransport starts reading from port
func NewTransport(port io.ReadWriteCloser, log zerolog.Logger) *Transport {
	t := &Transport{
		port:      port,
		log:       log,
		seq:       protocol.SeqDest,
		scanner:   protocol.NewScanner(),
		input:     protocol.NewFifoBuffer(1024),
		acks:      make(chan uint8, 4),
		responses: make(chan Message, 32),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// Send frames one message and waits for the clock to acknowledge it
func (t *Transport) Send(msgID uint16, args func(protocol.OutputBuffer), timeout time.Duration) error {
	out := protocol.NewScratchOutput()
	protocol.EncodeVLQUint(out, uint32(msgID))
	if args != nil {
		args(out)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	seq := uint8(atomic.LoadUint32(&t.seq))
	frame, err := protocol.AppendFrame(nil, seq, out.Result())
	if err != nil {
		return fmt.Errorf("message %d: %w", msgID, err)
	}

	t.drainAcks()
	t.log.Trace().Hex("frame", frame).Msg("send")
	if _, err := t.port.Write(frame); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return t.waitAck(seq, timeout)
}

func (t *Transport) waitAck(seq uint8, timeout time.Duration) error {
	want := protocol.NextSeq(seq)
	deadline := time.After(timeout)
	for {
		select {
		case got := <-t.acks:
			if got != want {
				// the clock repeats the sequence it expects when a frame is lost
				t.log.Debug().Uint8("want", want).Uint8("got", got).Msg("nak")
				return fmt.Errorf("nak: clock expects sequence %#02x, sent %#02x", got, seq)
			}
			atomic.StoreUint32(&t.seq, uint32(want))
			return nil
		case <-deadline:
			return fmt.Errorf("no ack for sequence %#02x after %v", seq, timeout)
		case <-t.stop:
			return ErrClosed
		}
	}
}

func (t *Transport) drainAcks() {
	for {
		select {
		case <-t.acks:
		default:
			return
		}
	}
}

// Receive returns the next queued message
func (t *Transport) Receive(timeout time.Duration) (Message, error) {
	select {
	case m := <-t.responses:
		return m, nil
	case <-time.After(timeout):
		return Message{}, fmt.Errorf("no response after %v", timeout)
	case <-t.stop:
		return Message{}, ErrClosed
	}
}

// Resync restarts the sequence. The clock treats SeqDest as a reconnect.
func (t *Transport) Resync() {
	atomic.StoreUint32(&t.seq, protocol.SeqDest)
	t.drainAcks()
	for {
		select {
		case <-t.responses:
		default:
			return
		}
	}
}

func (t *Transport) readLoop() {
	defer close(t.done)
	buf := make([]byte, 256)
	for {
		select {
		case <-t.stop:
			return
		default:
		}

		n, err := t.port.Read(buf)
		if n > 0 {
			t.feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			t.log.Debug().Err(err).Msg("read")
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// feed queues p for the scanner, draining complete frames whenever the FIFO
// fills, and returns the number of bytes that did not fit
func (t *Transport) feed(p []byte) int {
	for len(p) > 0 {
		n := t.input.Write(p)
		p = p[n:]
		t.process()
		if n == 0 {
			break
		}
	}
	if len(p) > 0 {
		t.log.Warn().Int("dropped", len(p)).Int("buffered", t.input.Available()).Msg("input buffer full")
	}
	return len(p)
}

func (t *Transport) process() {
	n := t.scanner.Scan(t.input.Data(), t.dispatch)
	t.input.Pop(n)
}

func (t *Transport) dispatch(f protocol.Frame) {
	if f.IsAck() {
		select {
		case t.acks <- f.Seq:
		default:
		}
		return
	}

	payload := append([]byte(nil), f.Payload...)
	id, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		t.log.Warn().Err(err).Msg("bad message id")
		return
	}
	m := Message{ID: uint16(id), Args: payload}
	select {
	case t.responses <- m:
	default:
		// drop the oldest so a stalled reader sees the latest state
		select {
		case <-t.responses:
		default:
		}
		t.responses <- m
	}
}

// Dropped returns the number of corrupt frames discarded
func (t *Transport) Dropped() uint32 {
	return t.scanner.Dropped
}

// Close stops the reader and closes the port
func (t *Transport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.stop)
		err = t.port.Close()
		<-t.done
	})
	return err
}
