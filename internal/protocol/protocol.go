// Package protocol implements the wire codec between the pacman server and
// its clients: four framed messages over two half-duplex FIFOs, as
// specified in spec.md §4.1. All multi-byte integers are little-endian —
// the source this was distilled from used host-endian ints, which the spec
// calls out as an open question (§9); this rewrite fixes the byte order so
// the wire format is stable across hosts.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Op identifies the four message kinds. A single op-code byte heads every
// frame on the wire.
type Op byte

const (
	OpConnect    Op = 1
	OpPlay       Op = 2
	OpDisconnect Op = 3
	OpBoard      Op = 4
)

// MaxPipePathLength bounds a FIFO path embedded in a CONNECT frame. Chosen
// to match the conventional sockaddr_un path budget the original server's
// fixed-width fields were sized against.
const MaxPipePathLength = 108

// byteOrder is the wire's fixed integer encoding.
var byteOrder = binary.LittleEndian

// ConnectRequest is the CONNECT (req) body: the client's own request- and
// notify-pipe paths, each NUL-padded to MaxPipePathLength.
type ConnectRequest struct {
	ReqPipePath   string
	NotifPipePath string
}

// EncodeConnectRequest renders a CONNECT frame: op-code byte followed by
// the two fixed-width path fields.
func EncodeConnectRequest(req ConnectRequest) ([]byte, error) {
	if len(req.ReqPipePath) >= MaxPipePathLength || len(req.NotifPipePath) >= MaxPipePathLength {
		return nil, fmt.Errorf("pipe path exceeds %d bytes", MaxPipePathLength-1)
	}
	buf := make([]byte, 1+2*MaxPipePathLength)
	buf[0] = byte(OpConnect)
	copy(buf[1:1+MaxPipePathLength], req.ReqPipePath)
	copy(buf[1+MaxPipePathLength:], req.NotifPipePath)
	return buf, nil
}

// DecodeConnectRequest parses a full CONNECT frame body (everything after
// the op-code byte has already been consumed by the caller).
func DecodeConnectRequest(body []byte) (ConnectRequest, error) {
	if len(body) != 2*MaxPipePathLength {
		return ConnectRequest{}, fmt.Errorf("connect body: want %d bytes, got %d", 2*MaxPipePathLength, len(body))
	}
	return ConnectRequest{
		ReqPipePath:   cstr(body[:MaxPipePathLength]),
		NotifPipePath: cstr(body[MaxPipePathLength:]),
	}, nil
}

func cstr(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// ReadConnectRequest reads a whole CONNECT frame body from r, looping
// until the full frame has arrived or EOF is hit. The C source this was
// distilled from issued a single read() of the whole frame and could
// observe a short read if the client's writes were split; §9 requires
// looping here instead.
func ReadConnectRequest(r io.Reader) (ConnectRequest, error) {
	body := make([]byte, 2*MaxPipePathLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return ConnectRequest{}, err
	}
	return DecodeConnectRequest(body)
}

// EncodeConnectAck renders the CONNECT (ack) frame: op-code then a single
// status byte (0 = ok, non-zero = refuse).
func EncodeConnectAck(ok bool) []byte {
	status := byte(0)
	if !ok {
		status = 1
	}
	return []byte{byte(OpConnect), status}
}

// ReadConnectAck reads a CONNECT (ack) frame's status byte (op-code
// already consumed by the caller via ReadOp) and reports whether the
// server accepted the connection.
func ReadConnectAck(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] == 0, nil
}

// PlayDirection is one of the four client-driven movement keys. 'Q' is
// handled entirely client-side and never appears on the wire.
type PlayDirection byte

const (
	DirUp    PlayDirection = 'W'
	DirLeft  PlayDirection = 'A'
	DirDown  PlayDirection = 'S'
	DirRight PlayDirection = 'D'
)

// ValidPlayDirection reports whether b is one of W,A,S,D.
func ValidPlayDirection(b byte) bool {
	switch PlayDirection(b) {
	case DirUp, DirLeft, DirDown, DirRight:
		return true
	default:
		return false
	}
}

// EncodePlay renders a PLAY frame: op-code then the direction byte.
func EncodePlay(dir PlayDirection) []byte {
	return []byte{byte(OpPlay), byte(dir)}
}

// EncodeDisconnect renders a bodiless DISCONNECT frame.
func EncodeDisconnect() []byte {
	return []byte{byte(OpDisconnect)}
}

// BoardFrame is the server->client BOARD frame body.
type BoardFrame struct {
	Width    int32
	Height   int32
	Tempo    int32
	Victory  int32
	GameOver int32
	Points   int32
	Cells    []byte
}

// EncodeBoardFrame renders a full BOARD frame: op-code, the six int32
// fields, then the width*height cell bytes. The caller must have taken a
// single consistent snapshot of the board before calling this (spec §4.3,
// §8: frame bytes must be internally consistent).
func EncodeBoardFrame(f BoardFrame) []byte {
	n := len(f.Cells)
	buf := make([]byte, 1+6*4+n)
	buf[0] = byte(OpBoard)
	off := 1
	for _, v := range []int32{f.Width, f.Height, f.Tempo, f.Victory, f.GameOver, f.Points} {
		byteOrder.PutUint32(buf[off:off+4], uint32(v))
		off += 4
	}
	copy(buf[off:], f.Cells)
	return buf
}

// ReadBoardFrame reads a BOARD frame body (op-code already consumed) from
// r: the six int32 header fields first, then width*height cell bytes,
// since the header is what gives the cell count.
func ReadBoardFrame(r io.Reader) (BoardFrame, error) {
	var hdr [6 * 4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return BoardFrame{}, err
	}
	f := BoardFrame{
		Width:    int32(byteOrder.Uint32(hdr[0:4])),
		Height:   int32(byteOrder.Uint32(hdr[4:8])),
		Tempo:    int32(byteOrder.Uint32(hdr[8:12])),
		Victory:  int32(byteOrder.Uint32(hdr[12:16])),
		GameOver: int32(byteOrder.Uint32(hdr[16:20])),
		Points:   int32(byteOrder.Uint32(hdr[20:24])),
	}
	if f.Width < 0 || f.Height < 0 {
		return BoardFrame{}, fmt.Errorf("board frame: negative dimensions %dx%d", f.Width, f.Height)
	}
	cells := make([]byte, int(f.Width)*int(f.Height))
	if _, err := io.ReadFull(r, cells); err != nil {
		return BoardFrame{}, err
	}
	f.Cells = cells
	return f, nil
}

// ReadOp reads the single op-code byte heading any frame. A zero-byte or
// negative read (io.EOF or any other error) must be treated by the caller
// as "peer gone" per spec §4.4/§7.
func ReadOp(r io.Reader) (Op, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Op(b[0]), nil
}

// ReadPlayDirection reads the single direction byte following a PLAY
// op-code.
func ReadPlayDirection(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
