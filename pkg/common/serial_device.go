package common

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mbalug7/go-nxtiot/pkg/uart"
	"github.com/tarm/serial"
	"go.uber.org/atomic"
)

var (
	ErrNotConfigured     = errors.New("serial device not configured")
	ErrAlreadyConfigured = errors.New("serial device already configured")
	ErrClosed            = errors.New("serial device closed")
)

type serialStream interface {
	io.ReadWriteCloser
	Flush() error
}

// allow tests to override the serial port
var openPort = func(cfg *serial.Config) (serialStream, error) {
	port, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return port, nil
}

var serialParityMap = map[uart.Parity]serial.Parity{
	uart.ParityNone: serial.ParityNone,
	uart.ParityEven: serial.ParityEven,
	uart.ParityOdd:  serial.ParityOdd,
}

var serialStopBitsMap = map[int]serial.StopBits{
	1: serial.Stop1,
	2: serial.Stop2,
}

// SerialDevice is a uart.Device on a tty. A reader goroutine moves received
// bytes into a bounded FIFO, the way the USART hardware buffers them. Bytes
// arriving while the FIFO is full are dropped.
type SerialDevice struct {
	tty          string
	pollInterval time.Duration
	stream       serialStream   // serial port needed to communicate with the module
	fifo         chan byte      // received bytes not read yet
	done         chan struct{}  // closed by Close
	failed       chan struct{}  // closed by the reader on a port error
	readErr      error          // port error, valid once failed is closed
	wg           sync.WaitGroup // reader goroutine
	rxInterrupt  *atomic.Bool   // receive interrupt armed
	drops        *atomic.Uint32 // bytes lost on a full FIFO
	muHandler    sync.Mutex     // handler protection mutex
	handler      func()         // receive interrupt handler
	closeOnce    sync.Once
}

func NewSerialDevice(tty string, fifoSize int, pollInterval time.Duration) *SerialDevice {
	if fifoSize <= 0 {
		fifoSize = 64
	}
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &SerialDevice{
		tty:          tty,
		pollInterval: pollInterval,
		fifo:         make(chan byte, fifoSize),
		done:         make(chan struct{}),
		failed:       make(chan struct{}),
		rxInterrupt:  atomic.NewBool(false),
		drops:        atomic.NewUint32(0),
	}
}

// Configure opens the port with the frame format and starts receiving.
func (obj *SerialDevice) Configure(cfg uart.Config) error {
	if obj.stream != nil {
		return ErrAlreadyConfigured
	}
	parity, ok := serialParityMap[cfg.Parity]
	if !ok {
		return fmt.Errorf("unsupported parity: %s", cfg.Parity)
	}
	stopBits, ok := serialStopBitsMap[cfg.StopBits]
	if !ok {
		return fmt.Errorf("unsupported stop bits: %d", cfg.StopBits)
	}
	config := &serial.Config{
		Name:        obj.tty,
		Baud:        cfg.BaudRate,
		Size:        byte(cfg.DataBits),
		Parity:      parity,
		StopBits:    stopBits,
		ReadTimeout: obj.pollInterval,
	}
	stream, err := openPort(config)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", obj.tty, err)
	}
	obj.stream = stream
	obj.wg.Add(1)
	go obj.readLoop()
	return nil
}

func (obj *SerialDevice) readLoop() {
	defer obj.wg.Done()
	buf := make([]byte, 64)
	for {
		n, err := obj.stream.Read(buf)
		for i := 0; i < n; i++ {
			obj.receive(buf[i])
		}
		select {
		case <-obj.done:
			return
		default:
		}
		// tarm/serial reports an expired read timeout as io.EOF
		if err != nil && !errors.Is(err, io.EOF) {
			obj.readErr = fmt.Errorf("failed to receive data: %w", err)
			close(obj.failed)
			return
		}
	}
}

func (obj *SerialDevice) receive(c byte) {
	select {
	case obj.fifo <- c:
	default:
		obj.drops.Inc()
		return
	}
	if !obj.rxInterrupt.Load() {
		return
	}
	obj.muHandler.Lock()
	handler := obj.handler
	obj.muHandler.Unlock()
	if handler != nil {
		handler()
	}
}

func (obj *SerialDevice) WriteByte(c byte) error {
	if obj.stream == nil {
		return ErrNotConfigured
	}
	_, err := obj.stream.Write([]byte{c})
	if err != nil {
		return fmt.Errorf("failed to send data: %w", err)
	}
	return nil
}

// ReadByte blocks until a byte is in the FIFO. It has no timeout.
func (obj *SerialDevice) ReadByte() (byte, error) {
	select {
	case c := <-obj.fifo:
		return c, nil
	default:
	}
	select {
	case c := <-obj.fifo:
		return c, nil
	case <-obj.done:
		return 0, ErrClosed
	case <-obj.failed:
		return 0, obj.readErr
	}
}

func (obj *SerialDevice) DataReady() bool {
	return len(obj.fifo) > 0
}

func (obj *SerialDevice) SetReceiveInterrupt(enabled bool) {
	obj.rxInterrupt.Store(enabled)
}

func (obj *SerialDevice) SetInterruptHandler(fn func()) {
	obj.muHandler.Lock()
	defer obj.muHandler.Unlock()
	obj.handler = fn
}

// Drops returns the number of bytes lost on a full FIFO.
func (obj *SerialDevice) Drops() uint32 {
	return obj.drops.Load()
}

func (obj *SerialDevice) Close() (err error) {
	obj.closeOnce.Do(func() {
		close(obj.done)
		if obj.stream == nil {
			return
		}
		err = obj.stream.Close()
		obj.wg.Wait()
		if err != nil {
			err = fmt.Errorf("failed to close serial stream: %w", err)
		}
	})
	return err
}
