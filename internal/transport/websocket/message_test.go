package websocket

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clientFrame - encodes a frame the way a browser does, with a mask.
func clientFrame(opCode byte, fin bool, payload []byte) []byte {
	mask := []byte{0x11, 0x22, 0x33, 0x44}

	first := opCode
	if fin {
		first |= 0x80
	}

	buf := []byte{first}
	switch {
	case len(payload) < 126:
		buf = append(buf, 0x80|byte(len(payload)))
	case len(payload) < 1<<16:
		buf = append(buf, 0x80|126)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)))
	default:
		buf = append(buf, 0x80|127)
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(payload)))
	}

	buf = append(buf, mask...)
	for i, b := range payload {
		buf = append(buf, b^mask[i%4])
	}

	return buf
}

func textFrame(t *testing.T, action string, payload any) []byte {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	message, err := json.Marshal(Message{Action: action, Payload: raw})
	require.NoError(t, err)

	return clientFrame(opText, true, message)
}

type testConn struct {
	in    *bytes.Buffer
	out   *bytes.Buffer
	bufrw *bufio.ReadWriter
}

func newTestConn(frames ...[]byte) *testConn {
	in := bytes.NewBuffer(bytes.Join(frames, nil))
	out := &bytes.Buffer{}

	return &testConn{
		in:    in,
		out:   out,
		bufrw: bufio.NewReadWriter(bufio.NewReader(in), bufio.NewWriter(out)),
	}
}

// frames - decodes everything the server wrote.
func (that *testConn) frames(t *testing.T) []frame {
	t.Helper()

	reader := bufio.NewReader(bytes.NewReader(that.out.Bytes()))

	var frames []frame
	for {
		f, err := readFrame(reader)
		if errors.Is(err, io.EOF) {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}
}

// responses - decodes the text messages the server wrote.
func (that *testConn) responses(t *testing.T) []Message {
	t.Helper()

	var messages []Message
	for _, f := range that.frames(t) {
		require.Equal(t, opText, f.opCode)
		require.True(t, f.isFin)

		var message Message
		require.NoError(t, json.Unmarshal(f.payload, &message))
		messages = append(messages, message)
	}

	return messages
}

func decodeResponse(t *testing.T, message Message) Payload {
	t.Helper()

	var payload Payload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return payload
}

func newTestServer() *Server {
	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)), &mockGameManager{})
}

func TestReadRequest(t *testing.T) {
	server := newTestServer()

	t.Run("Unmasks a text frame", func(t *testing.T) {
		// Given: a masked client frame
		conn := newTestConn(clientFrame(opText, true, []byte(`{"action":"connect"}`)))

		// When: reading the request
		body, err := server.readRequest(conn.bufrw)

		// Then: the plain message is returned
		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"connect"}`, string(body))
	})

	t.Run("Joins fragmented frames", func(t *testing.T) {
		conn := newTestConn(
			clientFrame(opText, false, []byte(`{"action":`)),
			clientFrame(0x0, true, []byte(`"game:new"}`)),
		)

		body, err := server.readRequest(conn.bufrw)

		require.NoError(t, err)
		assert.JSONEq(t, `{"action":"game:new"}`, string(body))
	})

	t.Run("Reads extended payload lengths", func(t *testing.T) {
		long := bytes.Repeat([]byte("a"), 300)
		conn := newTestConn(clientFrame(opText, true, long))

		body, err := server.readRequest(conn.bufrw)

		require.NoError(t, err)
		assert.Equal(t, long, body)
	})

	t.Run("Answers pings", func(t *testing.T) {
		// Given: a ping before the message
		conn := newTestConn(
			clientFrame(opPing, true, []byte("hi")),
			clientFrame(opText, true, []byte(`{}`)),
		)

		// When: reading the request
		body, err := server.readRequest(conn.bufrw)

		// Then: the message is returned and a pong with the same data was written
		require.NoError(t, err)
		assert.Equal(t, []byte(`{}`), body)

		frames := conn.frames(t)
		require.Len(t, frames, 1)
		assert.Equal(t, opPong, frames[0].opCode)
		assert.Equal(t, []byte("hi"), frames[0].payload)
	})

	t.Run("Close frame", func(t *testing.T) {
		conn := newTestConn(clientFrame(opClose, true, nil))

		_, err := server.readRequest(conn.bufrw)

		require.ErrorIs(t, err, ErrConnectionClosed)
	})

	t.Run("Too large frame", func(t *testing.T) {
		header := []byte{0x80 | opText, 127}
		header = binary.BigEndian.AppendUint64(header, maxMessageSize+1)
		conn := newTestConn(header)

		_, err := server.readRequest(conn.bufrw)

		require.ErrorIs(t, err, ErrMessageTooLarge)
	})

	t.Run("Truncated frame", func(t *testing.T) {
		full := clientFrame(opText, true, []byte(`{"action":"connect"}`))
		conn := newTestConn(full[:len(full)-3])

		_, err := server.readRequest(conn.bufrw)

		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestWriteFrame(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		lengthCode byte
		headerSize int
	}{
		{"short payload", 5, 5, 2},
		{"16 bit length", 200, 126, 4},
		{"64 bit length", 70000, 127, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a payload of the given size
			payload := bytes.Repeat([]byte("x"), tt.size)
			out := &bytes.Buffer{}

			// When: writing it as a text frame
			err := writeFrame(bufio.NewWriter(out), frame{isFin: true, opCode: opText, length: uint64(tt.size), payload: payload})

			// Then: the header is unmasked and followed by the payload
			require.NoError(t, err)

			written := out.Bytes()
			require.Len(t, written, tt.headerSize+tt.size)
			assert.Equal(t, 0x80|opText, written[0])
			assert.Equal(t, tt.lengthCode, written[1])
			assert.Equal(t, payload, written[tt.headerSize:])

			size, err := readPayloadLength(bytes.NewReader(written[2:tt.headerSize]), written[1])
			require.NoError(t, err)
			assert.Equal(t, uint64(tt.size), size)
		})
	}
}
