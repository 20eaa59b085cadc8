// Package uart implements the byte level serial transport: blocking send and
// line read, flush, and the receive interrupt with its single pending flag.
package uart

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mbalug7/go-nxtiot/pkg/hal"
	"go.uber.org/atomic"
)

var (
	ErrNotInitialized     = errors.New("uart not initialized")
	ErrAlreadyInitialized = errors.New("uart already initialized")
	ErrShortBuffer        = hal.ErrShortBuffer
)

// Device is the serial hardware under the transport.
type Device interface {
	// Configure sets the frame format and enables both directions.
	Configure(cfg Config) error
	// WriteByte blocks until the transmit buffer is empty.
	WriteByte(c byte) error
	// ReadByte blocks until a byte was received.
	ReadByte() (byte, error)
	DataReady() bool
	SetReceiveInterrupt(enabled bool)
	// SetInterruptHandler installs the function run on receive complete
	// while the receive interrupt is enabled.
	SetInterruptHandler(fn func())
}

// UART is the transport. Exactly one caller may own it at a time.
type UART struct {
	dev         Device
	logger      *slog.Logger
	initialized bool
	pending     *atomic.Bool
}

func New(dev Device, logger *slog.Logger) *UART {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &UART{
		dev:     dev,
		logger:  logger,
		pending: atomic.NewBool(false),
	}
}

// Init configures the line as 9600 8N1. It may be called only once.
func (obj *UART) Init() error {
	if obj.initialized {
		return ErrAlreadyInitialized
	}
	cfg := DefaultConfig()
	if err := obj.dev.Configure(cfg); err != nil {
		return fmt.Errorf("failed to init uart: %w", err)
	}
	obj.dev.SetInterruptHandler(obj.onReceive)
	obj.initialized = true
	obj.logger.Debug("uart initialized", slog.String("format", cfg.String()))
	return nil
}

// onReceive runs in interrupt context. A second byte arriving before the main
// flow re-enables the interrupt raises nothing.
func (obj *UART) onReceive() {
	obj.pending.Store(true)
	obj.dev.SetReceiveInterrupt(false)
}

// Send transmits text up to its end or the first NUL byte.
func (obj *UART) Send(text string) error {
	if !obj.initialized {
		return ErrNotInitialized
	}
	for i := 0; i < len(text) && text[i] != 0x00; i++ {
		if err := obj.dev.WriteByte(text[i]); err != nil {
			return fmt.Errorf("failed to send data: %w", err)
		}
	}
	return nil
}

// Read stores received bytes in buf until a newline arrives or len(buf)-1
// bytes are stored, then NUL terminates at buf[n]. The newline is consumed but
// not stored. Bytes that did not fit stay in the device.
func (obj *UART) Read(buf []byte) (int, error) {
	if !obj.initialized {
		return 0, ErrNotInitialized
	}
	if len(buf) == 0 {
		return 0, ErrShortBuffer
	}
	clear(buf)

	n := 0
	for n < len(buf)-1 {
		c, err := obj.dev.ReadByte()
		if err != nil {
			buf[n] = 0x00
			return n, fmt.Errorf("failed to receive data: %w", err)
		}
		if c == '\n' {
			break
		}
		buf[n] = c
		n++
	}
	buf[n] = 0x00
	if n == len(buf)-1 {
		obj.logger.Debug("uart read reached buffer capacity", slog.Int("capacity", len(buf)))
	}
	return n, nil
}

// ReadLine reads one line of at most capacity-1 bytes.
func (obj *UART) ReadLine(capacity int) (string, error) {
	if capacity <= 0 {
		return "", ErrShortBuffer
	}
	buf := make([]byte, capacity)
	n, err := obj.Read(buf)
	return string(buf[:n]), err
}

func (obj *UART) EnableReceiveInterrupt() {
	obj.dev.SetReceiveInterrupt(true)
}

func (obj *UART) DisableReceiveInterrupt() {
	obj.dev.SetReceiveInterrupt(false)
}

// Flush discards received bytes while the device reports data ready.
func (obj *UART) Flush() error {
	if !obj.initialized {
		return ErrNotInitialized
	}
	dropped := 0
	for obj.dev.DataReady() {
		if _, err := obj.dev.ReadByte(); err != nil {
			return fmt.Errorf("failed to flush uart: %w", err)
		}
		dropped++
	}
	if dropped > 0 {
		obj.logger.Debug("uart flushed", slog.Int("bytes", dropped))
	}
	return nil
}

// Pending reports whether a receive interrupt fired and was not taken yet.
func (obj *UART) Pending() bool {
	return obj.pending.Load()
}

// TakePending clears the pending flag and reports whether it was set.
func (obj *UART) TakePending() bool {
	return obj.pending.Swap(false)
}
