package smp

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Sink accepts one fully framed ACL data packet. A blocking transport
// ignores the context and returns once the bytes are accepted; a
// suspending transport honors cancellation while waiting. Either way the
// engine issues at most one write at a time per session.
type Sink interface {
	Write(ctx context.Context, frame []byte) (int, error)
}

// SinkFunc adapts a plain write function into a blocking Sink.
type SinkFunc func(frame []byte) (int, error)

func (f SinkFunc) Write(_ context.Context, frame []byte) (int, error) {
	return f(frame)
}

// encodeSMP wraps an SM PDU in its L2CAP frame [Vol 3, Part A, 3.1]:
// little-endian payload length, the fixed SMP channel id, payload.
func encodeSMP(p pdu) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 4+len(p)))
	binary.Write(buf, binary.LittleEndian, uint16(len(p)))
	binary.Write(buf, binary.LittleEndian, CidSMP)
	buf.Write(p)
	return buf.Bytes()
}

// encodeACL wraps an L2CAP frame in an ACL data packet addressed to the
// connection handle [Vol 2, Part E, 5.4.2]: first-automatically-flushable
// boundary flag, no broadcast.
func encodeACL(handle uint16, frame []byte) []byte {
	out := make([]byte, 4+len(frame))
	out[0] = byte(handle)
	out[1] = byte(handle>>8)&0x0f | pbfFirstAutoFlushable<<4
	binary.LittleEndian.PutUint16(out[2:4], uint16(len(frame)))
	copy(out[4:], frame)
	return out
}

func (e *Engine) send(ctx context.Context, handle uint16, p pdu) error {
	frame := encodeACL(handle, encodeSMP(p))
	e.Debugf("tx [%X]", frame)

	if _, err := e.sink.Write(ctx, frame); err != nil {
		return errors.Wrap(err, "smp tx")
	}
	return nil
}

// Packet reads the fields of an ACL data packet.
type Packet []byte

func (a Packet) Handle() uint16 { return uint16(a[0]) | (uint16(a[1]&0x0f) << 8) }
func (a Packet) Pbf() int       { return (int(a[1]) >> 4) & 0x3 }
func (a Packet) Bcf() int       { return (int(a[1]) >> 6) & 0x3 }
func (a Packet) Dlen() int      { return int(a[2]) | (int(a[3]) << 8) }
func (a Packet) Data() []byte   { return a[4:] }

// Frame reads the fields of a basic L2CAP frame.
type Frame []byte

func (f Frame) Dlen() int      { return int(binary.LittleEndian.Uint16(f[0:2])) }
func (f Frame) Cid() uint16    { return binary.LittleEndian.Uint16(f[2:4]) }
func (f Frame) Payload() []byte { return f[4:] }
