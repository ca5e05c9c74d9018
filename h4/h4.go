// Package h4 carries ACL data packets over a UART link to a Bluetooth
// controller using the H4 packet framing [Vol 4, Part A]. It implements
// the engine's byte sink on the transmit side and reassembles inbound
// ACL packets on the receive side.
package h4

import (
	"context"
	"encoding/binary"
	"io"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"

	"github.com/blekit/ble"
)

const (
	pktTypeCommand = 0x01
	pktTypeACLData = 0x02
	pktTypeEvent   = 0x04

	aclHeaderLen = 5 // packet type + handle/flags + data length
	evtHeaderLen = 3 // packet type + event code + parameter length

	rxQueueSize = 64
)

// H4 owns one serial port. Writes are serialized; reads run on an
// internal loop feeding ReadPacket.
type H4 struct {
	ble.Logger

	sp  io.ReadWriteCloser
	rmu sync.Mutex
	wmu sync.Mutex

	frame        []byte
	frameTimeout time.Time
	skip         int

	rxQueue chan []byte

	done chan struct{}
	cmu  sync.Mutex
}

func New(opts serial.OpenOptions) (*H4, error) {
	// byte-at-a-time reads with a short inter-character timeout keep the
	// reassembly loop responsive
	opts.MinimumReadSize = 0
	opts.InterCharacterTimeout = 100

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open serial port")
	}

	h := &H4{
		Logger:  ble.GetLogger().ChildLogger(map[string]interface{}{"task": "h4"}),
		sp:      sp,
		done:    make(chan struct{}),
		rxQueue: make(chan []byte, rxQueueSize),
	}

	go h.rxLoop()

	return h, nil
}

// Write frames one ACL data packet and hands it to the serial port. The
// context is consulted before the port write; the write itself blocks
// until the port accepts the bytes.
func (h *H4) Write(ctx context.Context, pkt []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()

	n, err := h.sp.Write(append([]byte{pktTypeACLData}, pkt...))
	h.Debugf("write [% 0x], %v, %v", pkt, n, err)
	if err != nil {
		return 0, errors.Wrap(err, "h4 write")
	}

	return n - 1, nil
}

// ReadPacket returns the next reassembled inbound ACL data packet,
// without the H4 packet type octet.
func (h *H4) ReadPacket(ctx context.Context) ([]byte, error) {
	if !h.isOpen() {
		return nil, io.EOF
	}

	h.rmu.Lock()
	defer h.rmu.Unlock()

	select {
	case pkt := <-h.rxQueue:
		return pkt[1:], nil
	case <-h.done:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *H4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
		return errors.Wrap(h.sp.Close(), "close serial port")
	}
}

func (h *H4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return h.sp != nil
	}
}

func (h *H4) rxLoop() {
	tmp := make([]byte, 512)
	for {
		select {
		case <-h.done:
			return
		default:
		}

		n, err := h.sp.Read(tmp)
		if err != nil || n == 0 {
			continue
		}

		h.frameAssemble(tmp[:n])
	}
}

// frameAssemble accumulates serial reads into complete ACL data packets.
// Event packets from the controller are consumed and discarded here;
// connection management owns those and is outside this transport.
func (h *H4) frameAssemble(b []byte) {
	switch {
	case len(b) == 0:
		return
	case time.Now().After(h.frameTimeout):
		fallthrough
	case h.frame == nil:
		h.frameReset()
	default:
		// ok
	}

	// tail of a previously skipped event packet
	if h.skip > 0 {
		n := h.skip
		if n > len(b) {
			n = len(b)
		}
		h.skip -= n
		b = b[n:]
		if len(b) == 0 {
			return
		}
	}

	var more []byte
	var done []byte
	var fresh bool

	if len(h.frame) == 0 {
		// events belong to connection management and are skipped whole,
		// parameter bytes included, so one spanning two reads cannot
		// shift the acl framing
		if len(b) >= evtHeaderLen && b[0] == pktTypeEvent {
			h.Debugf("skipping event 0x%02x", b[1])
			total := evtHeaderLen + int(b[2])
			if total >= len(b) {
				h.skip = total - len(b)
				return
			}
			h.frameAssemble(b[total:])
			return
		}
		if len(b) < aclHeaderLen {
			h.Debugf("short read %v", len(b))
			return
		}
		if b[0] != pktTypeACLData {
			h.Debugf("dropping packet type 0x%02x", b[0])
			return
		}

		fresh = true
		h.frame = append(h.frame, b[:aclHeaderLen]...)
	}

	start := 0
	if fresh {
		start = aclHeaderLen
	}

	rem := b[start:]
	exp := int(binary.LittleEndian.Uint16(h.frame[3:5]))
	need := exp + aclHeaderLen - len(h.frame)

	switch {
	case len(rem) < need:
		h.frame = append(h.frame, rem...)
	case len(rem) == need:
		done = append(h.frame, rem...)
	case len(rem) > need:
		done = append(h.frame, rem[:need]...)
		more = rem[need:]
	}

	if len(done) != 0 {
		h.rxQueue <- done
		h.frameReset()
	}

	if len(more) != 0 {
		h.frameAssemble(more)
	}
}

func (h *H4) frameReset() {
	h.frame = make([]byte, 0, 256)
	h.skip = 0
	h.frameTimeout = time.Now().Add(time.Millisecond * 500)
}
