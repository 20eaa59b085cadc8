package wisol

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mbalug7/go-nxtiot/pkg/board"
	"github.com/mbalug7/go-nxtiot/pkg/gpio"
	"github.com/mbalug7/go-nxtiot/pkg/hal"
	"github.com/mbalug7/go-nxtiot/pkg/uart"
)

var errSilent = errors.New("modem did not answer")

// modemDevice is a uart.Device with a simulated Wisol module on the other end.
// The module only answers while its enable line on PORTD is high.
type modemDevice struct {
	mem     *hal.Memory
	cfg     uart.Config
	line    []byte
	rx      []byte
	answers map[string]string
	seen    []string
}

func (obj *modemDevice) Configure(cfg uart.Config) error {
	obj.cfg = cfg
	return nil
}

func (obj *modemDevice) powered() bool {
	return obj.mem.Peek(board.PORTD)&hal.Bit(board.WisolEnable.Bit) != 0
}

func (obj *modemDevice) WriteByte(c byte) error {
	obj.line = append(obj.line, c)
	if c != '\n' {
		return nil
	}
	cmd := string(obj.line)
	obj.line = obj.line[:0]
	obj.seen = append(obj.seen, cmd)
	if answer, ok := obj.answers[cmd]; ok && obj.powered() {
		obj.rx = append(obj.rx, answer...)
	}
	return nil
}

func (obj *modemDevice) ReadByte() (byte, error) {
	if len(obj.rx) == 0 {
		return 0, errSilent
	}
	c := obj.rx[0]
	obj.rx = obj.rx[1:]
	return c, nil
}

func (obj *modemDevice) DataReady() bool            { return len(obj.rx) > 0 }
func (obj *modemDevice) SetReceiveInterrupt(bool)   {}
func (obj *modemDevice) SetInterruptHandler(func()) {}

func newBoard(t *testing.T) (*Module, *modemDevice) {
	mem := hal.NewMemory()
	dev := &modemDevice{
		mem: mem,
		answers: map[string]string{
			"AT$I=10\n": "001D5A3F\r\n",
			"AT$I=11\n": "7F3A2C1B0E9D8C7B\r\n",
		},
	}
	logger := slog.New(&TestHandler{t: t})
	port := gpio.NewPort(mem, board.WisolEnable.Port)
	m := NewModule(port, board.WisolEnable.Bit, uart.New(dev, logger), logger)
	m.sleep = func(time.Duration) {}
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, dev
}

func TestBoardReadsIDAndPAC(t *testing.T) {
	m, dev := newBoard(t)
	if dev.cfg != uart.DefaultConfig() {
		t.Errorf("line configured as %s", dev.cfg)
	}
	if ddr := dev.mem.Peek(board.PORTD - 1); ddr != hal.Bit(board.WisolEnable.Bit) {
		t.Errorf("DDRD = %#02x, want enable pin output", ddr)
	}

	buf := make([]byte, 20)
	n, err := m.GetID(buf)
	if err != nil {
		t.Fatalf("GetID: %v", err)
	}
	if got := string(buf[:n]); got != "001D5A3F\r" {
		t.Errorf("GetID = %q", got)
	}

	n, err = m.GetPAC(buf)
	if err != nil {
		t.Fatalf("GetPAC: %v", err)
	}
	if got := string(buf[:n]); got != "7F3A2C1B0E9D8C7B\r" {
		t.Errorf("GetPAC = %q", got)
	}

	if dev.powered() {
		t.Errorf("module left powered")
	}
}

func TestBoardSendMessage(t *testing.T) {
	m, dev := newBoard(t)
	if err := m.SendMessage([]byte{0xCA, 0xFE}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(dev.seen) != 1 || dev.seen[0] != "AT$SF=%s%s\n" {
		t.Errorf("modem saw %q", dev.seen)
	}
	if dev.powered() {
		t.Errorf("module left powered")
	}
}

func TestBoardSilentModem(t *testing.T) {
	m, dev := newBoard(t)
	dev.answers = nil
	_, err := m.GetID(make([]byte, 20))
	if !errors.Is(err, errSilent) {
		t.Errorf("GetID = %v, want %v", err, errSilent)
	}
	if dev.powered() {
		t.Errorf("module left powered")
	}
}

func TestBoardReadIntoEmptyBuffer(t *testing.T) {
	for _, buf := range [][]byte{nil, {}} {
		m, dev := newBoard(t)
		if _, err := m.GetID(buf); !errors.Is(err, hal.ErrShortBuffer) {
			t.Errorf("GetID(%#v) = %v, want ErrShortBuffer", buf, err)
		}
		if len(dev.seen) != 0 || len(dev.rx) != 0 {
			t.Errorf("modem saw %q, %q left unread", dev.seen, dev.rx)
		}

		pac := make([]byte, 20)
		n, err := m.GetPAC(pac)
		if err != nil {
			t.Fatalf("GetPAC: %v", err)
		}
		if got := string(pac[:n]); got != "7F3A2C1B0E9D8C7B\r" {
			t.Errorf("GetPAC after failed GetID = %q", got)
		}
	}
}
