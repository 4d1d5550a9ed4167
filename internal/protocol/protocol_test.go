package protocol

import (
	"bytes"
	"io"
	"testing"
)

func TestConnectRequestRoundTrip(t *testing.T) {
	req := ConnectRequest{ReqPipePath: "/tmp/p1_request", NotifPipePath: "/tmp/p1_notification"}
	encoded, err := EncodeConnectRequest(req)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if Op(encoded[0]) != OpConnect {
		t.Fatalf("op-code = %d, want %d", encoded[0], OpConnect)
	}
	got, err := ReadConnectRequest(bytes.NewReader(encoded[1:]))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != req {
		t.Fatalf("got %+v, want %+v", got, req)
	}
}

func TestConnectRequestPathTooLong(t *testing.T) {
	long := make([]byte, MaxPipePathLength)
	for i := range long {
		long[i] = 'x'
	}
	_, err := EncodeConnectRequest(ConnectRequest{ReqPipePath: string(long), NotifPipePath: "/tmp/n"})
	if err == nil {
		t.Fatal("expected error for oversized path")
	}
}

func TestConnectAck(t *testing.T) {
	ok := EncodeConnectAck(true)
	if len(ok) != 2 || ok[0] != byte(OpConnect) || ok[1] != 0 {
		t.Fatalf("ack ok frame = %v", ok)
	}
	refuse := EncodeConnectAck(false)
	if len(refuse) != 2 || refuse[1] == 0 {
		t.Fatalf("ack refuse frame = %v", refuse)
	}
}

func TestReadConnectAck(t *testing.T) {
	ok, err := ReadConnectAck(bytes.NewReader(EncodeConnectAck(true)[1:]))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v, want true/nil", ok, err)
	}
	refused, err := ReadConnectAck(bytes.NewReader(EncodeConnectAck(false)[1:]))
	if err != nil || refused {
		t.Fatalf("ok=%v err=%v, want false/nil", refused, err)
	}
}

func TestPlayEncodeValidity(t *testing.T) {
	for _, d := range []PlayDirection{DirUp, DirLeft, DirDown, DirRight} {
		if !ValidPlayDirection(byte(d)) {
			t.Fatalf("direction %c should be valid", d)
		}
		frame := EncodePlay(d)
		if Op(frame[0]) != OpPlay || PlayDirection(frame[1]) != d {
			t.Fatalf("encode play %c = %v", d, frame)
		}
	}
	if ValidPlayDirection('Q') {
		t.Fatal("Q must never be a valid server-side PLAY direction")
	}
}

func TestBoardFrameRoundTrip(t *testing.T) {
	f := BoardFrame{
		Width: 3, Height: 2, Tempo: 50, Victory: 0, GameOver: 0, Points: 7,
		Cells: []byte("  X   "),
	}
	encoded := EncodeBoardFrame(f)
	if Op(encoded[0]) != OpBoard {
		t.Fatalf("op-code = %d", encoded[0])
	}
	got, err := ReadBoardFrame(bytes.NewReader(encoded[1:]))
	if err != nil {
		t.Fatalf("read board frame: %v", err)
	}
	if got.Width != f.Width || got.Height != f.Height || got.Tempo != f.Tempo ||
		got.Points != f.Points || !bytes.Equal(got.Cells, f.Cells) {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestReadOpShortReadIsEOF(t *testing.T) {
	_, err := ReadOp(bytes.NewReader(nil))
	if err != io.EOF {
		t.Fatalf("err = %v, want io.EOF reading op-code from empty reader", err)
	}
}

func TestReadConnectRequestShortRead(t *testing.T) {
	// Simulates the split-write short-read scenario spec §9 calls out:
	// the frame is truncated, so the reader must report an error rather
	// than silently parsing garbage.
	truncated := make([]byte, MaxPipePathLength) // half of the expected 2*MaxPipePathLength
	_, err := ReadConnectRequest(bytes.NewReader(truncated))
	if err == nil {
		t.Fatal("expected error for truncated connect body")
	}
}
