package fdpass

import (
	"bytes"
	"io"
	"os"
	"testing"

	"golang.org/x/sys/unix"
)

func socketpair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

// TestRoundTripVariousPayloadSizes covers property 7: for payloads from 0 up
// to twice a typical MTU, a sender/receiver pair transfers both fd and
// payload exactly.
func TestRoundTripVariousPayloadSizes(t *testing.T) {
	sizes := []int{0, 1, 64, 1500, 2900, 2 * 1500}

	for _, size := range sizes {
		size := size
		t.Run("", func(t *testing.T) {
			sender, receiver := socketpair(t)

			r, w, err := os.Pipe()
			if err != nil {
				t.Fatalf("pipe: %v", err)
			}
			defer r.Close()
			defer w.Close()

			payload := bytes.Repeat([]byte{0xAB}, size)
			if _, err := w.Write([]byte("seed")); err != nil {
				t.Fatalf("seed write: %v", err)
			}

			done := make(chan error, 1)
			go func() {
				done <- SendFdWithPayload(sender, int(r.Fd()), payload)
			}()

			got, err := RecvFdWithPayload(receiver, size+1024)
			if err != nil {
				t.Fatalf("RecvFdWithPayload: %v", err)
			}
			if err := <-done; err != nil {
				t.Fatalf("SendFdWithPayload: %v", err)
			}
			defer unix.Close(got.FD)

			if got.Truncated {
				t.Fatal("unexpected truncation")
			}
			if !bytes.Equal(got.Payload, payload) {
				t.Fatalf("payload mismatch: got %d bytes, want %d", len(got.Payload), len(payload))
			}

			recvFile := os.NewFile(uintptr(got.FD), "received")
			defer recvFile.Close()
			buf := make([]byte, 4)
			if _, err := io.ReadFull(recvFile, buf); err != nil {
				t.Fatalf("read from received fd: %v", err)
			}
			if string(buf) != "seed" {
				t.Fatalf("received fd did not read through to the original pipe: got %q", buf)
			}
		})
	}
}

// TestScenarioFLargePayloadOversizedBuffer mirrors a 65,536-byte payload
// plus STDIN_FILENO sent over a socketpair and received with a 70,000-byte
// buffer: payload must come through whole and untruncated.
func TestScenarioFLargePayloadOversizedBuffer(t *testing.T) {
	sender, receiver := socketpair(t)

	payload := bytes.Repeat([]byte{0x5A}, 65536)

	done := make(chan error, 1)
	go func() {
		done <- SendFdWithPayload(sender, unix.Stdin, payload)
	}()

	got, err := RecvFdWithPayload(receiver, 70000)
	if err != nil {
		t.Fatalf("RecvFdWithPayload: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendFdWithPayload: %v", err)
	}
	defer unix.Close(got.FD)

	if got.Truncated {
		t.Fatal("expected truncated=false")
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Fatalf("payload mismatch: got %d bytes, want %d", len(got.Payload), len(payload))
	}
	if got.FD < 0 {
		t.Fatal("expected a valid duplicate fd")
	}
}

func TestRecvFdWithPayloadInvalidSocketIsError(t *testing.T) {
	_, err := RecvFdWithPayload(-1, 16)
	if err == nil {
		t.Fatal("expected error for invalid socket fd")
	}
}

func TestSendFdWithPayloadInvalidSocketIsError(t *testing.T) {
	err := SendFdWithPayload(-1, unix.Stdin, []byte("x"))
	if err == nil {
		t.Fatal("expected error for invalid socket fd")
	}
}

func TestRecvFdWithPayloadNoFDSentIsError(t *testing.T) {
	sender, receiver := socketpair(t)

	done := make(chan error, 1)
	go func() {
		_, _, err := sendmsgRetryEINTR(sender, []byte("hello"), nil)
		done <- err
	}()

	_, err := RecvFdWithPayload(receiver, 16)
	if err == nil {
		t.Fatal("expected error when no fd is received")
	}
	if err := <-done; err != nil {
		t.Fatalf("sendmsg: %v", err)
	}
}
