package link

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcdclock/protocol"
)

// bufferedTransport is a Transport without a port or read goroutine
func bufferedTransport(size int, log *bytes.Buffer) *Transport {
	return &Transport{
		log:       zerolog.New(log),
		scanner:   protocol.NewScanner(),
		input:     protocol.NewFifoBuffer(size),
		acks:      make(chan uint8, 8),
		responses: make(chan Message, 8),
	}
}

func TestFeedDrainsBetweenWrites(t *testing.T) {
	var log bytes.Buffer
	tr := bufferedTransport(16, &log)

	var data []byte
	seq := uint8(protocol.SeqDest)
	for i := 0; i < 5; i++ {
		var err error
		data, err = protocol.AppendFrame(data, seq, nil)
		require.NoError(t, err)
		seq = protocol.NextSeq(seq)
	}
	require.Greater(t, len(data), 16)

	assert.Equal(t, 0, tr.feed(data))
	assert.Len(t, tr.acks, 5)
	assert.Empty(t, log.String())
}

func TestFeedWarnsOnOverflow(t *testing.T) {
	var log bytes.Buffer
	tr := bufferedTransport(8, &log)

	// the start of a maximum-length frame that never completes
	data := make([]byte, 20)
	data[0] = protocol.FrameMax
	data[1] = protocol.SeqDest

	assert.Equal(t, 13, tr.feed(data))
	assert.Equal(t, 7, tr.input.Available())
	assert.Contains(t, log.String(), "input buffer full")
	assert.Contains(t, log.String(), `"dropped":13`)
}
