// Package common drives the NXTIOT peripherals from a Linux host: GPIO lines
// through the GPIO character device and the modem UART through a tty.
package common

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Config selects the host resources wired to the module.
type Config struct {
	TTY          string        // serial port name
	GPIOChip     string        // GPIO chip name, 5.5+ Linux kernel needed
	EnableLine   uint8         // Wisol enable line offset
	LEDLine      uint8         // LED line offset
	SwitchLine   uint8         // push button line offset
	FIFOSize     int           // receive FIFO depth
	PollInterval time.Duration // serial read timeout used to poll for shutdown
}

// DefaultConfig fits a Raspberry Pi 4 with the module on the primary UART.
func DefaultConfig() Config {
	return Config{
		TTY:          "/dev/ttyS0",
		GPIOChip:     "gpiochip0",
		EnableLine:   23,
		LEDLine:      24,
		SwitchLine:   25,
		FIFOSize:     64,
		PollInterval: 100 * time.Millisecond,
	}
}

type lineOffset struct {
	offset *uint8
}

// LineOffsetFlag is a flag.Value for a GPIO line offset. Values that do not
// fit a uint8 are rejected by flag.Parse.
func LineOffsetFlag(offset *uint8) flag.Value {
	return &lineOffset{offset: offset}
}

func (obj *lineOffset) String() string {
	if obj.offset == nil {
		return "0"
	}
	return strconv.Itoa(int(*obj.offset))
}

func (obj *lineOffset) Set(s string) error {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return fmt.Errorf("invalid GPIO line offset %q, want 0-255", s)
	}
	*obj.offset = uint8(v)
	return nil
}

// HWHandler owns the GPIO chip and the serial device of one board.
type HWHandler struct {
	Config Config
	Port   *GPIOPort
	Serial *SerialDevice
}

// NewHWHandler opens the GPIO chip. The serial port is opened when the UART
// on top of Serial is initialized.
func NewHWHandler(cfg Config) (*HWHandler, error) {
	port, err := NewGPIOPort(cfg.GPIOChip)
	if err != nil {
		return nil, err
	}
	return &HWHandler{
		Config: cfg,
		Port:   port,
		Serial: NewSerialDevice(cfg.TTY, cfg.FIFOSize, cfg.PollInterval),
	}, nil
}

func (obj *HWHandler) Close() (err error) {
	err = obj.Serial.Close()
	if err != nil {
		return fmt.Errorf("failed to close serial device: %w", err)
	}
	err = obj.Port.Close()
	if err != nil {
		return fmt.Errorf("failed to close GPIO port: %w", err)
	}
	return nil
}
