package common

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mbalug7/go-nxtiot/pkg/hal"
	"github.com/warthog618/gpiod"
)

var ErrPinNotInitialized = errors.New("pin not initialized")

type gpioLine interface {
	Value() (int, error)
	SetValue(value int) error
	Close() error
}

// GPIOPort is a hal.Port on a Linux GPIO chip. Pin numbers are line offsets.
type GPIOPort struct {
	chip    *gpiod.Chip
	request func(offset int, mode hal.PinMode) (gpioLine, error)
	mu      sync.Mutex // lines map protection mutex
	lines   map[uint8]gpioLine
}

func NewGPIOPort(gpioChip string) (*GPIOPort, error) {
	c, err := gpiod.NewChip(gpioChip, gpiod.WithConsumer("nxtiot"))
	if err != nil {
		return nil, fmt.Errorf("failed to create GPIO chip: %w", err)
	}
	port := newGPIOPort(func(offset int, mode hal.PinMode) (gpioLine, error) {
		l, err := c.RequestLine(offset, lineOptions(mode)...)
		if err != nil {
			return nil, err
		}
		return l, nil
	})
	port.chip = c
	return port, nil
}

func newGPIOPort(request func(offset int, mode hal.PinMode) (gpioLine, error)) *GPIOPort {
	return &GPIOPort{
		request: request,
		lines:   make(map[uint8]gpioLine),
	}
}

func lineOptions(mode hal.PinMode) []gpiod.LineReqOption {
	switch mode {
	case hal.PinInput:
		return []gpiod.LineReqOption{gpiod.AsInput}
	case hal.PinInputPullUp:
		return []gpiod.LineReqOption{gpiod.AsInput, gpiod.WithPullUp}
	default:
		return []gpiod.LineReqOption{gpiod.AsOutput(0)}
	}
}

// InitPin requests the line in mode, releasing an earlier request of it.
func (obj *GPIOPort) InitPin(pin uint8, mode hal.PinMode) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if l, ok := obj.lines[pin]; ok {
		if err := l.Close(); err != nil {
			return fmt.Errorf("failed to release GPIO line %d: %w", pin, err)
		}
		delete(obj.lines, pin)
	}
	l, err := obj.request(int(pin), mode)
	if err != nil {
		return fmt.Errorf("failed to request GPIO line %d as %s: %w", pin, mode, err)
	}
	obj.lines[pin] = l
	return nil
}

func (obj *GPIOPort) line(pin uint8) (gpioLine, error) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	l, ok := obj.lines[pin]
	if !ok {
		return nil, fmt.Errorf("GPIO line %d: %w", pin, ErrPinNotInitialized)
	}
	return l, nil
}

func (obj *GPIOPort) WritePin(pin uint8, state hal.PinState) error {
	l, err := obj.line(pin)
	if err != nil {
		return err
	}
	err = l.SetValue(int(state))
	if err != nil {
		return fmt.Errorf("failed to set GPIO line %d %s: %w", pin, state, err)
	}
	return nil
}

// TogglePin writes the inverse of the value the line reports.
func (obj *GPIOPort) TogglePin(pin uint8) error {
	l, err := obj.line(pin)
	if err != nil {
		return err
	}
	val, err := l.Value()
	if err != nil {
		return fmt.Errorf("failed to get GPIO line %d value: %w", pin, err)
	}
	err = l.SetValue(val ^ 1)
	if err != nil {
		return fmt.Errorf("failed to toggle GPIO line %d: %w", pin, err)
	}
	return nil
}

func (obj *GPIOPort) ReadPin(pin uint8) (hal.PinState, error) {
	l, err := obj.line(pin)
	if err != nil {
		return hal.PinLow, err
	}
	val, err := l.Value()
	if err != nil {
		return hal.PinLow, fmt.Errorf("failed to get GPIO line %d value: %w", pin, err)
	}
	if val != 0 {
		return hal.PinHigh, nil
	}
	return hal.PinLow, nil
}

func (obj *GPIOPort) Close() error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	for pin, l := range obj.lines {
		if err := l.Close(); err != nil {
			return fmt.Errorf("failed to close GPIO line %d: %w", pin, err)
		}
		delete(obj.lines, pin)
	}
	if obj.chip != nil {
		if err := obj.chip.Close(); err != nil {
			return fmt.Errorf("failed to close GPIO chip: %w", err)
		}
	}
	return nil
}
