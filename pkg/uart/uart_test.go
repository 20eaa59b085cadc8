package uart

import (
	"errors"
	"strings"
	"testing"

	"github.com/mbalug7/go-nxtiot/pkg/board"
	"github.com/mbalug7/go-nxtiot/pkg/hal"
)

func newTestUART(t *testing.T) (*UART, *usartSim) {
	t.Helper()
	sim := newUSARTSim()
	u := New(sim.dev, nil)
	if err := u.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return u, sim
}

func TestInitOnce(t *testing.T) {
	u, _ := newTestUART(t)
	if err := u.Init(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Init = %v, want ErrAlreadyInitialized", err)
	}
}

func TestNotInitialized(t *testing.T) {
	u := New(newUSARTSim().dev, nil)
	if err := u.Send("AT\n"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Send = %v, want ErrNotInitialized", err)
	}
	if _, err := u.Read(make([]byte, 4)); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Read = %v, want ErrNotInitialized", err)
	}
	if err := u.Flush(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Flush = %v, want ErrNotInitialized", err)
	}
}

func TestSend(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "command", text: "AT$I=10\n", want: "AT$I=10\n"},
		{name: "empty", text: "", want: ""},
		{name: "stops at terminator", text: "AT\x00garbage", want: "AT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, sim := newTestUART(t)
			if err := u.Send(tc.text); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if got := sim.sent(); got != tc.want {
				t.Errorf("sent %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReadLine(t *testing.T) {
	u, sim := newTestUART(t)
	sim.receive("C0FFEE42\nOK\n")

	buf := make([]byte, 20)
	n, err := u.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := string(buf[:n]); got != "C0FFEE42" {
		t.Errorf("Read = %q, want %q", got, "C0FFEE42")
	}
	if buf[n] != 0x00 {
		t.Errorf("buf[%d] = %#02x, want terminator", n, buf[n])
	}
	if sim.buffered() != 3 {
		t.Errorf("%d bytes left in FIFO, want 3", sim.buffered())
	}

	line, err := u.ReadLine(20)
	if err != nil || line != "OK" {
		t.Errorf("ReadLine = %q, %v, want OK", line, err)
	}
}

func TestReadKeepsCarriageReturn(t *testing.T) {
	u, sim := newTestUART(t)
	sim.receive("OK\r\n")
	line, _ := u.ReadLine(8)
	if line != "OK\r" {
		t.Errorf("ReadLine = %q, want %q", line, "OK\r")
	}
}

func TestReadNeverOverflows(t *testing.T) {
	for capacity := 1; capacity <= 12; capacity++ {
		for length := 0; length <= 12; length++ {
			u, sim := newTestUART(t)
			input := strings.Repeat("x", length)
			sim.receive(input + "\n")

			buf := make([]byte, capacity+1)
			for i := range buf {
				buf[i] = 0xAA
			}
			n, err := u.Read(buf[:capacity])
			if err != nil {
				t.Fatalf("cap %d len %d: %v", capacity, length, err)
			}

			want := length
			if want > capacity-1 {
				want = capacity - 1
			}
			if n != want {
				t.Fatalf("cap %d len %d: n = %d, want %d", capacity, length, n, want)
			}
			if buf[n] != 0x00 {
				t.Fatalf("cap %d len %d: not terminated at %d", capacity, length, n)
			}
			if buf[capacity] != 0xAA {
				t.Fatalf("cap %d len %d: wrote past capacity", capacity, length)
			}
			for i := n + 1; i < capacity; i++ {
				if buf[i] != 0x00 {
					t.Fatalf("cap %d len %d: buf[%d] = %#02x, want zeroed", capacity, length, i, buf[i])
				}
			}
		}
	}
}

func TestReadZeroCapacity(t *testing.T) {
	u, _ := newTestUART(t)
	if _, err := u.Read(nil); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Read(nil) = %v, want ErrShortBuffer", err)
	}
}

func TestFlush(t *testing.T) {
	u, sim := newTestUART(t)
	if err := u.Flush(); err != nil {
		t.Fatalf("Flush on empty FIFO: %v", err)
	}
	sim.receive("stale bytes")
	if err := u.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sim.buffered() != 0 {
		t.Errorf("%d bytes left after Flush", sim.buffered())
	}
}

func TestReceivePending(t *testing.T) {
	u, sim := newTestUART(t)
	u.EnableReceiveInterrupt()

	if u.Pending() {
		t.Fatalf("pending before any byte")
	}
	sim.receive("hi\n")
	if !u.Pending() {
		t.Fatalf("pending not set by interrupt")
	}
	if sim.mem.Peek(board.UCSR0B)&hal.Bit(bitRXCIE0) != 0 {
		t.Fatalf("interrupt not disabled by handler")
	}

	if !u.TakePending() {
		t.Fatalf("TakePending = false")
	}
	if u.Pending() || u.TakePending() {
		t.Fatalf("flag not cleared")
	}

	line, _ := u.ReadLine(20)
	if line != "hi" {
		t.Errorf("ReadLine = %q", line)
	}
	_ = u.Flush()
	u.EnableReceiveInterrupt()
	sim.receive("x")
	if !u.TakePending() {
		t.Errorf("re-armed interrupt did not set pending")
	}
}

func TestSecondInterruptIsNotTracked(t *testing.T) {
	u, sim := newTestUART(t)
	u.EnableReceiveInterrupt()
	sim.receive("ab")

	if !u.TakePending() {
		t.Fatalf("first byte did not set pending")
	}
	if u.TakePending() {
		t.Errorf("second byte was tracked as another pending reception")
	}
}
